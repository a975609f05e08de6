package exif

import (
    "errors"
    "fmt"
    "sort"

    "encoding/binary"

    "github.com/dsoprea/go-logging"

    "github.com/TechnikTobi/little-exif/exifcommon"
)

var (
    ifdLogger = log.NewLogger("exif.ifd")
)

var (
    // ErrEntryNotFound is returned when the requested tag has no entry in the
    // requested IFD.
    ErrEntryNotFound = errors.New("entry not found")

    // ErrLinkEntryNotSettable is returned when a caller tries to store one of
    // the child-IFD link tags directly. The parent/child relationship is
    // authoritative; link entries exist only in the serialized form.
    ErrLinkEntryNotSettable = errors.New("child-IFD link entries are synthesized at serialization and can not be set")

    // ErrMakerNoteOpaque is returned when a caller tries to set structured
    // values inside the maker-note.
    ErrMakerNoteOpaque = errors.New("maker-note is an opaque blob and can not carry structured values")
)

// Ifd is one image file directory: an ordered collection of entries with a
// group identity. Entries are kept sorted by ascending tag-ID, with at most
// one entry per tag.
type Ifd struct {
    name    string
    entries []*IfdTagEntry
}

func newIfd(name string) *Ifd {
    return &Ifd{
        name:    name,
        entries: make([]*IfdTagEntry, 0),
    }
}

// Name returns the group identity of this IFD.
func (ifd *Ifd) Name() string {
    return ifd.name
}

// Entries returns the entries in ascending tag order.
func (ifd *Ifd) Entries() []*IfdTagEntry {
    return ifd.entries
}

// Count returns the number of entries.
func (ifd *Ifd) Count() int {
    return len(ifd.entries)
}

// GetEntry returns the entry for the given tag.
func (ifd *Ifd) GetEntry(tagId uint16) (ite *IfdTagEntry, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    i := ifd.search(tagId)
    if i == len(ifd.entries) || ifd.entries[i].TagId() != tagId {
        log.Panic(ErrEntryNotFound)
    }

    return ifd.entries[i], nil
}

// SetEntry inserts the entry, replacing any prior entry under the same tag.
func (ifd *Ifd) SetEntry(ite *IfdTagEntry) {
    i := ifd.search(ite.TagId())

    if i < len(ifd.entries) && ifd.entries[i].TagId() == ite.TagId() {
        ifd.entries[i] = ite
        return
    }

    ifd.entries = append(ifd.entries, nil)
    copy(ifd.entries[i+1:], ifd.entries[i:])
    ifd.entries[i] = ite
}

// DeleteEntry removes the entry for the given tag if present.
func (ifd *Ifd) DeleteEntry(tagId uint16) {
    i := ifd.search(tagId)
    if i == len(ifd.entries) || ifd.entries[i].TagId() != tagId {
        return
    }

    copy(ifd.entries[i:], ifd.entries[i+1:])
    ifd.entries = ifd.entries[:len(ifd.entries)-1]
}

func (ifd *Ifd) search(tagId uint16) int {
    return sort.Search(len(ifd.entries), func(i int) bool {
        return ifd.entries[i].TagId() >= tagId
    })
}

func (ifd *Ifd) String() string {
    return fmt.Sprintf("Ifd<NAME=[%s] COUNT=(%d)>", ifd.name, len(ifd.entries))
}

// IfdTree is the in-memory IFD hierarchy: IFD0 with its Exif, GPS, and
// thumbnail relatives, the interoperability IFD under Exif, and the opaque
// maker-note blob under Exif. The child links are relationships of the tree,
// not entries; the offsets serialized into the link entries are computed at
// serialization time and are never authoritative here.
type IfdTree struct {
    byteOrder binary.ByteOrder

    ifds map[string]*Ifd

    // makerNote is round-tripped verbatim. Internal offsets are not
    // rewritten on relocation.
    makerNote []byte

    // thumbnail is the raw IFD1 thumbnail image, resolved on parse and
    // re-addressed on serialization.
    thumbnail []byte
}

// NewIfdTree returns an empty tree with the given byte order.
func NewIfdTree(byteOrder binary.ByteOrder) *IfdTree {
    return &IfdTree{
        byteOrder: byteOrder,
        ifds:      make(map[string]*Ifd),
    }
}

// ByteOrder returns the byte order the tree was parsed with (or will be
// serialized with).
func (it *IfdTree) ByteOrder() binary.ByteOrder {
    return it.byteOrder
}

// Ifd returns the IFD with the given group name, creating it if necessary.
func (it *IfdTree) Ifd(ifdName string) *Ifd {
    ifd, found := it.ifds[ifdName]
    if found == false {
        ifd = newIfd(ifdName)
        it.ifds[ifdName] = ifd
    }

    return ifd
}

// Insert places the entry into the named group, replacing any prior entry
// under the same tag. Link tags and the maker-note group are rejected.
func (it *IfdTree) Insert(ifdName string, ite *IfdTagEntry) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if ifdName == IfdMakerNote {
        log.Panic(ErrMakerNoteOpaque)
    }

    if _, isLink := IfdTagNames[ite.TagId()]; isLink == true {
        log.Panic(ErrLinkEntryNotSettable)
    } else if ite.TagId() == TagMakerNote && ifdName == IfdExif {
        log.Panic(ErrMakerNoteOpaque)
    }

    it.Ifd(ifdName).SetEntry(ite)

    return nil
}

// GetEntry returns the entry under the named group for the given tag.
func (it *IfdTree) GetEntry(ifdName string, tagId uint16) (ite *IfdTagEntry, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    ifd, found := it.ifds[ifdName]
    if found == false {
        log.Panic(ErrEntryNotFound)
    }

    ite, err = ifd.GetEntry(tagId)
    log.PanicIf(err)

    return ite, nil
}

// Remove deletes the entry under the named group for the given tag.
func (it *IfdTree) Remove(ifdName string, tagId uint16) {
    ifd, found := it.ifds[ifdName]
    if found == false {
        return
    }

    ifd.DeleteEntry(tagId)
}

// SetStandardTag encodes the given value per the taxonomy and places the
// entry in the tag's home IFD. The caller can not choose the placement.
func (it *IfdTree) SetStandardTag(tagName string, value interface{}) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    ti := GetTagIndex()

    indexed, err := ti.GetWithName(tagName)
    log.PanicIf(err)

    ve := exifcommon.NewValueEncoder(it.byteOrder)

    ed, err := ve.EncodeWithType(indexed.Type, value)
    log.PanicIf(err)

    if indexed.Count != 0 && ed.UnitCount != indexed.Count {
        ifdLogger.Warningf(nil, "tag [%s] prescribes (%d) units but (%d) were encoded", tagName, indexed.Count, ed.UnitCount)
    }

    ite := NewIfdTagEntry(indexed.Id, ed.Type, ed.UnitCount, ed.Encoded)

    err = it.Insert(indexed.IfdName, ite)
    log.PanicIf(err)

    return nil
}

// GetStandardTag returns the decoded value for the named tag from its home
// IFD.
func (it *IfdTree) GetStandardTag(tagName string) (value interface{}, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    ti := GetTagIndex()

    indexed, err := ti.GetWithName(tagName)
    log.PanicIf(err)

    ite, err := it.GetEntry(indexed.IfdName, indexed.Id)
    log.PanicIf(err)

    value, err = ite.Value(it.byteOrder)
    log.PanicIf(err)

    return value, nil
}

// RemoveStandardTag deletes the named tag from its home IFD.
func (it *IfdTree) RemoveStandardTag(tagName string) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    ti := GetTagIndex()

    indexed, err := ti.GetWithName(tagName)
    log.PanicIf(err)

    it.Remove(indexed.IfdName, indexed.Id)

    return nil
}

// SetMakerNote stores the opaque maker-note blob.
func (it *IfdTree) SetMakerNote(blob []byte) {
    it.makerNote = blob
}

// MakerNote returns the opaque maker-note blob, or nil.
func (it *IfdTree) MakerNote() []byte {
    return it.makerNote
}

// SetThumbnail stores the raw IFD1 thumbnail image.
func (it *IfdTree) SetThumbnail(data []byte) {
    it.thumbnail = data
}

// Thumbnail returns the raw IFD1 thumbnail image, or nil.
func (it *IfdTree) Thumbnail() []byte {
    return it.thumbnail
}

// Equals compares two trees structurally (groups, entries, maker-note, and
// thumbnail, but not byte order).
func (it *IfdTree) Equals(other *IfdTree) bool {
    names := []string{IfdStandard, IfdExif, IfdIop, IfdGps, IfdThumbnail}

    for _, name := range names {
        left := it.Ifd(name)
        right := other.Ifd(name)

        if left.Count() != right.Count() {
            return false
        }

        for i, ite := range left.Entries() {
            oite := right.Entries()[i]

            if ite.TagId() != oite.TagId() || ite.TagTypeRaw() != oite.TagTypeRaw() || ite.UnitCount() != oite.UnitCount() {
                return false
            }

            if string(ite.Encoded()) != string(oite.Encoded()) {
                return false
            }
        }
    }

    if string(it.makerNote) != string(other.makerNote) {
        return false
    }

    if string(it.thumbnail) != string(other.thumbnail) {
        return false
    }

    return true
}
