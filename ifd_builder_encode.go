package exif

import (
    "encoding/binary"

    "github.com/dsoprea/go-logging"

    "github.com/TechnikTobi/little-exif/exifcommon"
)

var (
    ifdByteEncoderLogger = log.NewLogger("exif.ifd_builder_encode")
)

const (
    // ifdEntrySize is tag(2) + format(2) + count(4) + value-or-offset(4).
    ifdEntrySize = 12
)

// IfdByteEncoder knows how to lay out and emit a complete EXIF payload from
// an IfdTree. Layout is planned first (every IFD table and every overflow
// value block gets a fixed offset), then the bytes are emitted in one pass.
type IfdByteEncoder struct {
}

// NewIfdByteEncoder returns a new IfdByteEncoder.
func NewIfdByteEncoder() *IfdByteEncoder {
    return new(IfdByteEncoder)
}

// encodedIfdPlan carries one IFD's working entries and planned offsets.
type encodedIfdPlan struct {
    name    string
    entries []*IfdTagEntry

    // offset is where the IFD's entry table begins.
    offset uint32

    // dataOffset is where the IFD's overflow value region begins (directly
    // after the table).
    dataOffset uint32

    // nextIfdOffset is the value of the trailing next-IFD link field.
    nextIfdOffset uint32
}

func (plan *encodedIfdPlan) tableSize() uint32 {
    return 2 + uint32(len(plan.entries))*ifdEntrySize + 4
}

// dataSize sums the overflow value blocks. The maker-note entry is excluded;
// its bytes live in the dedicated maker-note block.
func (plan *encodedIfdPlan) dataSize() uint32 {
    size := uint32(0)

    for _, ite := range plan.entries {
        if ite.TagId() == TagMakerNote && plan.name == IfdExif {
            continue
        }

        if ite.IsInline() == false {
            size += uint32(ite.Size())
        }
    }

    return size
}

func newLongEntry(tagId uint16, value uint32, tree *IfdTree) *IfdTagEntry {
    ve := exifcommon.NewValueEncoder(tree.ByteOrder())

    ed, err := ve.Encode([]uint32{value})
    log.PanicIf(err)

    return NewIfdTagEntry(tagId, exifcommon.TypeLong, 1, ed.Encoded)
}

// EncodeToExifPayload serializes the tree to a complete EXIF payload,
// beginning with the TIFF header, under the tree's byte order.
func (ibe *IfdByteEncoder) EncodeToExifPayload(tree *IfdTree) (data []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    makerNote := tree.MakerNote()
    thumbnail := tree.Thumbnail()

    iopPresent := tree.Ifd(IfdIop).Count() > 0
    exifPresent := tree.Ifd(IfdExif).Count() > 0 || len(makerNote) > 0 || iopPresent
    gpsPresent := tree.Ifd(IfdGps).Count() > 0
    ifd1Present := tree.Ifd(IfdThumbnail).Count() > 0 || len(thumbnail) > 0

    // Build the working entry lists. Link entries are synthesized here, with
    // placeholder values, for every non-empty sub-IFD; their offsets are
    // patched once the layout is fixed.

    buildPlan := func(name string) *encodedIfdPlan {
        working := newIfd(name)

        for _, ite := range tree.Ifd(name).Entries() {
            working.SetEntry(ite)
        }

        return &encodedIfdPlan{
            name:    name,
            entries: working.entries,
        }
    }

    ifd0Plan := buildPlan(IfdStandard)
    exifPlan := buildPlan(IfdExif)
    iopPlan := buildPlan(IfdIop)
    gpsPlan := buildPlan(IfdGps)
    ifd1Plan := buildPlan(IfdThumbnail)

    injectPlaceholder := func(plan *encodedIfdPlan, tagId uint16) {
        working := &Ifd{name: plan.name, entries: plan.entries}
        working.SetEntry(newLongEntry(tagId, 0, tree))
        plan.entries = working.entries
    }

    if exifPresent == true {
        injectPlaceholder(ifd0Plan, TagExifIfd)
    }

    if gpsPresent == true {
        injectPlaceholder(ifd0Plan, TagGpsIfd)
    }

    if iopPresent == true {
        injectPlaceholder(exifPlan, TagIopIfd)
    }

    if len(makerNote) > 0 {
        mnEntry := NewIfdTagEntry(TagMakerNote, exifcommon.TypeUndefined, uint32(len(makerNote)), makerNote)

        working := &Ifd{name: IfdExif, entries: exifPlan.entries}
        working.SetEntry(mnEntry)
        exifPlan.entries = working.entries
    }

    if len(thumbnail) > 0 {
        injectPlaceholder(ifd1Plan, TagThumbnailOffset)
        injectPlaceholder(ifd1Plan, TagThumbnailLength)
    }

    // Fix the layout: the 8-byte TIFF header, then each IFD's table and
    // overflow region in serialization order, with the maker-note and
    // thumbnail blocks at their planned positions.

    offset := uint32(TiffHeaderSize)

    plans := make([]*encodedIfdPlan, 0, 5)

    place := func(plan *encodedIfdPlan) {
        plan.offset = offset
        plan.dataOffset = offset + plan.tableSize()
        offset += plan.tableSize() + plan.dataSize()

        plans = append(plans, plan)
    }

    place(ifd0Plan)

    if exifPresent == true {
        place(exifPlan)
    }

    if iopPresent == true {
        place(iopPlan)
    }

    makerNoteOffset := uint32(0)
    if len(makerNote) > 4 {
        makerNoteOffset = offset
        offset += uint32(len(makerNote))
    }

    if gpsPresent == true {
        place(gpsPlan)
    }

    if ifd1Present == true {
        place(ifd1Plan)
    }

    thumbnailOffset := uint32(0)
    if len(thumbnail) > 0 {
        thumbnailOffset = offset
        offset += uint32(len(thumbnail))
    }

    // Patch the synthesized entries now that every offset is known.

    patch := func(plan *encodedIfdPlan, tagId uint16, value uint32) {
        working := &Ifd{name: plan.name, entries: plan.entries}
        working.SetEntry(newLongEntry(tagId, value, tree))
        plan.entries = working.entries
    }

    if exifPresent == true {
        patch(ifd0Plan, TagExifIfd, exifPlan.offset)
    }

    if gpsPresent == true {
        patch(ifd0Plan, TagGpsIfd, gpsPlan.offset)
    }

    if iopPresent == true {
        patch(exifPlan, TagIopIfd, iopPlan.offset)
    }

    if len(thumbnail) > 0 {
        patch(ifd1Plan, TagThumbnailOffset, thumbnailOffset)
        patch(ifd1Plan, TagThumbnailLength, uint32(len(thumbnail)))
    }

    if ifd1Present == true {
        ifd0Plan.nextIfdOffset = ifd1Plan.offset
    }

    // Emit.

    cursor := exifcommon.NewBinaryCursor(tree.ByteOrder())

    bom := littleEndianBom
    if tree.ByteOrder() == binary.BigEndian {
        bom = bigEndianBom
    }

    err = cursor.WriteBytes(bom)
    log.PanicIf(err)

    err = cursor.WriteUint16(tiffMagic)
    log.PanicIf(err)

    err = cursor.WriteUint32(ExifDefaultFirstIfdOffset)
    log.PanicIf(err)

    for _, plan := range plans {
        err := ibe.encodeIfd(cursor, plan, makerNoteOffset)
        log.PanicIf(err)

        if plan.name == IfdIop || (plan.name == IfdExif && iopPresent == false) {
            if makerNoteOffset != 0 {
                err := cursor.WriteBytes(makerNote)
                log.PanicIf(err)
            }
        }
    }

    if len(thumbnail) > 0 {
        err := cursor.WriteBytes(thumbnail)
        log.PanicIf(err)
    }

    data = cursor.Bytes()

    if uint32(len(data)) != offset {
        log.Panicf("encoded payload length (%d) does not match the planned layout (%d)", len(data), offset)
    }

    return data, nil
}

// encodeIfd emits one IFD's entry table followed by its overflow value
// region. Entries are already in ascending tag order; overflow blocks are
// assigned contiguously in that same order, with no padding between blocks.
func (ibe *IfdByteEncoder) encodeIfd(cursor *exifcommon.BinaryCursor, plan *encodedIfdPlan, makerNoteOffset uint32) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    err = cursor.WriteUint16(uint16(len(plan.entries)))
    log.PanicIf(err)

    dataOffset := plan.dataOffset

    for _, ite := range plan.entries {
        err := cursor.WriteUint16(ite.TagId())
        log.PanicIf(err)

        err = cursor.WriteUint16(ite.TagTypeRaw())
        log.PanicIf(err)

        err = cursor.WriteUint32(ite.UnitCount())
        log.PanicIf(err)

        isMakerNote := ite.TagId() == TagMakerNote && plan.name == IfdExif

        if isMakerNote == true && ite.IsInline() == false {
            err := cursor.WriteUint32(makerNoteOffset)
            log.PanicIf(err)
        } else if ite.IsInline() == true {
            field := make([]byte, 4)
            copy(field, ite.Encoded())

            err := cursor.WriteBytes(field)
            log.PanicIf(err)
        } else {
            err := cursor.WriteUint32(dataOffset)
            log.PanicIf(err)

            dataOffset += uint32(ite.Size())
        }
    }

    err = cursor.WriteUint32(plan.nextIfdOffset)
    log.PanicIf(err)

    for _, ite := range plan.entries {
        if ite.TagId() == TagMakerNote && plan.name == IfdExif {
            continue
        }

        if ite.IsInline() == false {
            err := cursor.WriteBytes(ite.Encoded())
            log.PanicIf(err)
        }
    }

    return nil
}
