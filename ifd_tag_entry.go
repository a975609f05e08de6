package exif

import (
    "fmt"

    "encoding/binary"

    "github.com/dsoprea/go-logging"

    "github.com/TechnikTobi/little-exif/exifcommon"
)

var (
    iteLogger = log.NewLogger("exif.ifd_tag_entry")
)

// IfdTagEntry is one parsed or constructed IFD entry: a (tag, format, value)
// triple. The value is held fully decoded to raw bytes (never as an offset);
// offsets are an artifact of the serialized form only.
type IfdTagEntry struct {
    tagId uint16

    // tagTypeRaw is the data format exactly as declared in the entry header.
    // It is outside 1..12 for unknown-format entries, which are preserved
    // verbatim.
    tagTypeRaw uint16

    unitCount uint32

    // encoded is the complete value byte-sequence under the owning tree's
    // byte order. For unknown-format entries this is the raw 4-byte value
    // field.
    encoded []byte
}

// NewIfdTagEntry returns an entry for the given raw components.
func NewIfdTagEntry(tagId uint16, tagType exifcommon.TagTypePrimitive, unitCount uint32, encoded []byte) *IfdTagEntry {
    return &IfdTagEntry{
        tagId:      tagId,
        tagTypeRaw: uint16(tagType),
        unitCount:  unitCount,
        encoded:    encoded,
    }
}

// NewIfdTagEntryWithRawType returns an entry that preserves a format outside
// 1..12 exactly as declared.
func NewIfdTagEntryWithRawType(tagId uint16, tagTypeRaw uint16, unitCount uint32, encoded []byte) *IfdTagEntry {
    return &IfdTagEntry{
        tagId:      tagId,
        tagTypeRaw: tagTypeRaw,
        unitCount:  unitCount,
        encoded:    encoded,
    }
}

// TagId returns the 16-bit tag code.
func (ite *IfdTagEntry) TagId() uint16 {
    return ite.tagId
}

// TagType returns the data format. Check IsUnknownType before trusting it.
func (ite *IfdTagEntry) TagType() exifcommon.TagTypePrimitive {
    return exifcommon.TagTypePrimitive(ite.tagTypeRaw)
}

// TagTypeRaw returns the declared format verbatim.
func (ite *IfdTagEntry) TagTypeRaw() uint16 {
    return ite.tagTypeRaw
}

// IsUnknownType returns true if the declared format is outside 1..12.
func (ite *IfdTagEntry) IsUnknownType() bool {
    return ite.TagType().IsValid() == false
}

// UnitCount returns the component count.
func (ite *IfdTagEntry) UnitCount() uint32 {
    return ite.unitCount
}

// Size returns the total encoded byte length of the value.
func (ite *IfdTagEntry) Size() int {
    return len(ite.encoded)
}

// IsInline implements the inline rule: a value of at most four bytes is
// stored directly in the entry's value field.
func (ite *IfdTagEntry) IsInline() bool {
    return ite.Size() <= 4
}

// Encoded returns the raw encoded value bytes.
func (ite *IfdTagEntry) Encoded() []byte {
    return ite.encoded
}

// Value decodes the entry under the given byte order.
func (ite *IfdTagEntry) Value(byteOrder binary.ByteOrder) (value interface{}, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if ite.IsUnknownType() == true {
        // No interpretation is possible; surface the raw bytes.
        return ite.encoded, nil
    }

    parser := new(exifcommon.Parser)

    value, err = parser.ParseValue(ite.TagType(), ite.encoded, ite.unitCount, byteOrder)
    log.PanicIf(err)

    return value, nil
}

func (ite *IfdTagEntry) String() string {
    return fmt.Sprintf("IfdTagEntry<TAG-ID=(0x%04x) TYPE=(%d) COUNT=(%d) SIZE=(%d)>", ite.tagId, ite.tagTypeRaw, ite.unitCount, ite.Size())
}
