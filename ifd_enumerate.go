package exif

import (
    "encoding/binary"

    "github.com/dsoprea/go-logging"

    "github.com/TechnikTobi/little-exif/exifcommon"
)

var (
    ifdEnumerateLogger = log.NewLogger("exif.ifd_enumerate")
)

// IfdEnumerate knows how to decode the IFD chain and all of the tags it
// describes. Note that the IFDs and the actual values float throughout the
// whole EXIF block, but the IFD itself has just a minor header and a set of
// repeating, statically-sized records. So, the tags (though not their values)
// are fairly simple to enumerate.
type IfdEnumerate struct {
    data      []byte
    byteOrder binary.ByteOrder
    cursor    *exifcommon.BinaryCursor
}

// NewIfdEnumerate returns a new enumerator over a payload whose offsets are
// relative to the start of `data` (the first byte of the TIFF header).
func NewIfdEnumerate(data []byte, byteOrder binary.ByteOrder) *IfdEnumerate {
    return &IfdEnumerate{
        data:      data,
        byteOrder: byteOrder,
        cursor:    exifcommon.NewBinaryCursorWithBytes(data, byteOrder),
    }
}

// parsedIfd is the raw result of decoding one IFD block.
type parsedIfd struct {
    entries       []*IfdTagEntry
    childOffsets  map[string]uint32
    nextIfdOffset uint32
}

// readValue resolves one entry's value bytes per the inline rule: a total
// length of at most four bytes lives in the value field itself; anything
// longer lives at the 32-bit offset the field holds.
func (ie *IfdEnumerate) readValue(size int, rawValueField []byte) (encoded []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if size <= 4 {
        encoded = make([]byte, size)
        copy(encoded, rawValueField[:size])

        return encoded, nil
    }

    valueOffset := ie.byteOrder.Uint32(rawValueField)

    position := ie.cursor.Position()

    err = ie.cursor.SeekAbsolute(int64(valueOffset))
    log.PanicIf(err)

    encoded, err = ie.cursor.ReadBytes(size)
    log.PanicIf(err)

    err = ie.cursor.SeekAbsolute(position)
    log.PanicIf(err)

    return encoded, nil
}

// parseIfd decodes the IFD block at the given offset. Child-IFD link entries
// are resolved into childOffsets and stripped; the maker-note entry is
// captured into the tree as a verbatim blob.
func (ie *IfdEnumerate) parseIfd(ifdName string, ifdOffset uint32, tree *IfdTree) (pi *parsedIfd, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    ifdEnumerateLogger.Debugf(nil, "Parsing IFD [%s] at offset (0x%04x).", ifdName, ifdOffset)

    err = ie.cursor.SeekAbsolute(int64(ifdOffset))
    log.PanicIf(err)

    tagCount, err := ie.cursor.ReadUint16()
    log.PanicIf(err)

    ifdEnumerateLogger.Debugf(nil, "Current IFD tag-count: (%d)", tagCount)

    ti := GetTagIndex()

    pi = &parsedIfd{
        entries:      make([]*IfdTagEntry, 0, tagCount),
        childOffsets: make(map[string]uint32),
    }

    for i := uint16(0); i < tagCount; i++ {
        tagId, err := ie.cursor.ReadUint16()
        log.PanicIf(err)

        tagTypeRaw, err := ie.cursor.ReadUint16()
        log.PanicIf(err)

        unitCount, err := ie.cursor.ReadUint32()
        log.PanicIf(err)

        rawValueField, err := ie.cursor.ReadBytes(4)
        log.PanicIf(err)

        // Child-IFD links are relationships, not data. Resolve and strip.
        childIfdName, isLink := IfdTagNames[tagId]
        if isLink == true && ifdParents[childIfdName] == ifdName {
            pi.childOffsets[childIfdName] = ie.byteOrder.Uint32(rawValueField)
            continue
        }

        if tagId == TagMakerNote && ifdName == IfdExif {
            blob, err := ie.readValue(int(unitCount), rawValueField)
            log.PanicIf(err)

            tree.SetMakerNote(blob)
            continue
        }

        tagType := exifcommon.TagTypePrimitive(tagTypeRaw)
        if tagType.IsValid() == false {
            // An undeclarable format. Preserve the raw value field verbatim
            // so that the entry survives a round-trip.
            ifdEnumerateLogger.Warningf(nil, "Tag (0x%04x) in IFD [%s] declares unknown format (%d) and will be preserved verbatim.", tagId, ifdName, tagTypeRaw)

            raw := make([]byte, 4)
            copy(raw, rawValueField)

            pi.entries = append(pi.entries, NewIfdTagEntryWithRawType(tagId, tagTypeRaw, unitCount, raw))
            continue
        }

        if indexed, err := ti.Get(ifdName, tagId); err == nil {
            if indexed.Type != tagType {
                // Non-fatal; the declared format wins.
                ifdEnumerateLogger.Warningf(nil, "Tag [%s] (0x%04x) declares format [%s] but the taxonomy prescribes [%s].", indexed.Name, tagId, tagType.String(), indexed.Type.String())
            }
        } else if log.Is(err, ErrTagNotFound) == false {
            log.Panic(err)
        }

        size := int(unitCount) * tagType.Size()

        encoded, err := ie.readValue(size, rawValueField)
        log.PanicIf(err)

        pi.entries = append(pi.entries, NewIfdTagEntry(tagId, tagType, unitCount, encoded))
    }

    nextIfdOffset, err := ie.cursor.ReadUint32()
    log.PanicIf(err)

    ifdEnumerateLogger.Debugf(nil, "Next IFD at offset: (0x%08x)", nextIfdOffset)

    pi.nextIfdOffset = nextIfdOffset

    return pi, nil
}

type queuedIfd struct {
    Name   string
    Offset uint32
}

// Collect enumerates the IFD graph from the root offset and assembles the
// IfdTree. An offset visited twice is a fatal cycle.
func (ie *IfdEnumerate) Collect(rootIfdOffset uint32) (tree *IfdTree, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    tree = NewIfdTree(ie.byteOrder)

    queue := []queuedIfd{
        {
            Name:   IfdStandard,
            Offset: rootIfdOffset,
        },
    }

    visited := make(map[uint32]struct{})

    for len(queue) > 0 {
        name := queue[0].Name
        offset := queue[0].Offset

        queue = queue[1:]

        if _, found := visited[offset]; found == true {
            log.Panic(ErrOffsetCycle)
        }

        visited[offset] = struct{}{}

        pi, err := ie.parseIfd(name, offset, tree)
        log.PanicIf(err)

        ifd := tree.Ifd(name)
        for _, ite := range pi.entries {
            ifd.SetEntry(ite)
        }

        // Descend into the sub-IFDs that appeared as link entries.
        for childName, childOffset := range pi.childOffsets {
            queue = append(queue, queuedIfd{
                Name:   childName,
                Offset: childOffset,
            })
        }

        // Only IFD0 chains: its next-IFD link leads to the thumbnail IFD.
        if name == IfdStandard && pi.nextIfdOffset != 0 {
            queue = append(queue, queuedIfd{
                Name:   IfdThumbnail,
                Offset: pi.nextIfdOffset,
            })
        }
    }

    err = ie.collectThumbnail(tree)
    log.PanicIf(err)

    return tree, nil
}

// collectThumbnail resolves the raw thumbnail image referenced from IFD1 and
// strips the two addressing entries; they are recomputed at serialization.
func (ie *IfdEnumerate) collectThumbnail(tree *IfdTree) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    ifd1 := tree.Ifd(IfdThumbnail)

    offsetEntry, err := ifd1.GetEntry(TagThumbnailOffset)
    if err != nil {
        if log.Is(err, ErrEntryNotFound) == true {
            return nil
        }

        log.Panic(err)
    }

    lengthEntry, err := ifd1.GetEntry(TagThumbnailLength)
    if err != nil {
        if log.Is(err, ErrEntryNotFound) == true {
            return nil
        }

        log.Panic(err)
    }

    offsetValue, err := offsetEntry.Value(ie.byteOrder)
    log.PanicIf(err)

    lengthValue, err := lengthEntry.Value(ie.byteOrder)
    log.PanicIf(err)

    offsets, offsetOk := offsetValue.([]uint32)
    lengths, lengthOk := lengthValue.([]uint32)

    if offsetOk == false || lengthOk == false || len(offsets) != 1 || len(lengths) != 1 {
        ifdEnumerateLogger.Warningf(nil, "Thumbnail addressing entries are malformed; thumbnail not extracted.")
        return nil
    }

    start := int(offsets[0])
    end := start + int(lengths[0])

    if start < 0 || end > len(ie.data) {
        ifdEnumerateLogger.Warningf(nil, "Thumbnail region (%d)-(%d) is out of bounds; thumbnail not extracted.", start, end)
        return nil
    }

    thumbnail := make([]byte, end-start)
    copy(thumbnail, ie.data[start:end])

    tree.SetThumbnail(thumbnail)

    ifd1.DeleteEntry(TagThumbnailOffset)
    ifd1.DeleteEntry(TagThumbnailLength)

    return nil
}
