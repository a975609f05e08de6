package exif

import (
    "errors"
    "fmt"

    "github.com/dsoprea/go-logging"
    "gopkg.in/yaml.v2"

    "github.com/TechnikTobi/little-exif/exifcommon"
)

var (
    tagsLogger = log.NewLogger("exif.tags")
)

var (
    // ErrTagNotFound is returned when the tag is not known to the taxonomy.
    ErrTagNotFound = errors.New("tag not found")
)

const (
    // IfdStandard is the name of the primary IFD.
    IfdStandard = "IFD0"

    // IfdExif is the name of the EXIF sub-IFD.
    IfdExif = "Exif"

    // IfdGps is the name of the GPS sub-IFD.
    IfdGps = "GPSInfo"

    // IfdIop is the name of the interoperability sub-IFD.
    IfdIop = "Iop"

    // IfdThumbnail is the name of the thumbnail IFD, chained from IFD0.
    IfdThumbnail = "IFD1"

    // IfdMakerNote is the pseudo-group owning the opaque maker-note blob.
    IfdMakerNote = "MakerNote"
)

const (
    // TagExifIfd is the IFD0 entry linking to the EXIF sub-IFD.
    TagExifIfd = uint16(0x8769)

    // TagGpsIfd is the IFD0 entry linking to the GPS sub-IFD.
    TagGpsIfd = uint16(0x8825)

    // TagIopIfd is the EXIF-IFD entry linking to the interoperability sub-IFD.
    TagIopIfd = uint16(0xa005)

    // TagMakerNote is the EXIF-IFD entry carrying the opaque maker-note.
    TagMakerNote = uint16(0x927c)

    // TagThumbnailOffset and TagThumbnailLength describe the raw thumbnail
    // image reachable from IFD1.
    TagThumbnailOffset = uint16(0x0201)
    TagThumbnailLength = uint16(0x0202)
)

var (
    // IfdTagIds maps a child IFD name to the tag-ID under which it is linked
    // from its parent.
    IfdTagIds = map[string]uint16{
        IfdExif: TagExifIfd,
        IfdGps:  TagGpsIfd,
        IfdIop:  TagIopIfd,
    }

    // IfdTagNames is the reverse of IfdTagIds.
    IfdTagNames = map[uint16]string{
        TagExifIfd: IfdExif,
        TagGpsIfd:  IfdGps,
        TagIopIfd:  IfdIop,
    }

    // ifdParents names the IFD that owns each child-IFD link entry.
    ifdParents = map[string]string{
        IfdExif: IfdStandard,
        IfdGps:  IfdStandard,
        IfdIop:  IfdExif,
    }
)

// IndexedTag describes one tag of the taxonomy: its canonical name, home IFD,
// expected data format, and expected unit count (zero meaning variable).
type IndexedTag struct {
    Id      uint16
    Name    string
    IfdName string
    Type    exifcommon.TagTypePrimitive
    Count   uint32
}

// String returns a descriptive string.
func (it IndexedTag) String() string {
    return fmt.Sprintf("TAG<ID=(0x%04x) NAME=[%s] IFD=[%s]>", it.Id, it.Name, it.IfdName)
}

// IsName returns true if this tag is under the given IFD with the given name.
func (it IndexedTag) IsName(ifdName, name string) bool {
    return it.Name == name && it.IfdName == ifdName
}

type encodedTag struct {
    // id is signed for YAML's sake (the table is written in hex).
    Id       int    `yaml:"id"`
    Name     string `yaml:"name"`
    TypeName string `yaml:"type_name"`
    Count    uint32 `yaml:"count"`
}

// TagIndex is the closed mapping of known tags, grouped by home IFD. Unknown
// tags are still accepted during parsing; they just never match here.
type TagIndex struct {
    tagsByIfd  map[string]map[uint16]*IndexedTag
    tagsByName map[string]*IndexedTag
}

// NewTagIndex returns a loaded TagIndex.
func NewTagIndex() *TagIndex {
    ti := new(TagIndex)

    err := ti.load()
    log.PanicIf(err)

    return ti
}

func (ti *TagIndex) load() (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    // Read the tags database, which is a YAML blob in tags_data.go .

    encodedIfds := make(map[string][]encodedTag)

    err = yaml.Unmarshal([]byte(tagsYaml), encodedIfds)
    log.PanicIf(err)

    ti.tagsByIfd = make(map[string]map[uint16]*IndexedTag)
    ti.tagsByName = make(map[string]*IndexedTag)

    for ifdName, tags := range encodedIfds {
        for _, tagInfo := range tags {
            tagId := uint16(tagInfo.Id)

            tagType, found := exifcommon.GetTypeByName(tagInfo.TypeName)
            if found == false {
                log.Panicf("type [%s] for tag (0x%04x) is not valid", tagInfo.TypeName, tagId)
            }

            it := &IndexedTag{
                Id:      tagId,
                Name:    tagInfo.Name,
                IfdName: ifdName,
                Type:    tagType,
                Count:   tagInfo.Count,
            }

            family, found := ti.tagsByIfd[ifdName]
            if found == false {
                family = make(map[uint16]*IndexedTag)
                ti.tagsByIfd[ifdName] = family
            }

            if _, found := family[tagId]; found == true {
                log.Panicf("tag (0x%04x) is defined more than once for IFD [%s]", tagId, ifdName)
            }

            family[tagId] = it

            // Names collide between IFD0 and IFD1 (the thumbnail IFD reuses
            // the image-structure tags); the primary-IFD entry wins the name
            // lookup.
            if existing, found := ti.tagsByName[tagInfo.Name]; found == false || existing.IfdName == IfdThumbnail {
                ti.tagsByName[tagInfo.Name] = it
            }
        }
    }

    return nil
}

// Get looks a tag up by the IFD it appears in and its tag-ID.
func (ti *TagIndex) Get(ifdName string, tagId uint16) (it *IndexedTag, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    family, found := ti.tagsByIfd[ifdName]
    if found == false {
        log.Panic(ErrTagNotFound)
    }

    it, found = family[tagId]
    if found == false {
        log.Panic(ErrTagNotFound)
    }

    return it, nil
}

// GetWithName looks a tag up by its canonical name. The taxonomy dictates the
// home IFD; a caller can not place a known tag anywhere else.
func (ti *TagIndex) GetWithName(name string) (it *IndexedTag, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    it, found := ti.tagsByName[name]
    if found == false {
        log.Panic(ErrTagNotFound)
    }

    return it, nil
}

var (
    tagIndex *TagIndex
)

// GetTagIndex returns the process-wide taxonomy instance.
func GetTagIndex() *TagIndex {
    if tagIndex == nil {
        tagIndex = NewTagIndex()
    }

    return tagIndex
}
