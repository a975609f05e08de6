// Package heicstructure locates and rewrites the EXIF item inside a HEIF/HEIC
// ISOBMFF container. The EXIF payload is an item declared in the meta box
// (iinf/iloc) whose bytes live in mdat or idat; rewriting it means replanning
// box sizes bottom-up and patching every other item's absolute offsets for
// the resulting layout shift.
package heicstructure

import (
    "bytes"
    "errors"

    "encoding/binary"

    "github.com/dsoprea/go-logging"
)

var (
    heicLogger = log.NewLogger("heicstructure.heic")
)

var (
    // ErrNotHeif is returned when the stream is not an ISOBMFF file.
    ErrNotHeif = errors.New("not heif data")

    // ErrNoExif is returned when no EXIF item is present.
    ErrNoExif = errors.New("no exif data")

    // ErrHeifStructureInvalid is returned when a required box (meta, iinf,
    // iloc) is missing or malformed.
    ErrHeifStructureInvalid = errors.New("heif structure invalid")
)

const (
    boxFtyp = "ftyp"
    boxMeta = "meta"
    boxIinf = "iinf"
    boxInfe = "infe"
    boxIloc = "iloc"
    boxIdat = "idat"
    boxMdat = "mdat"

    itemTypeExif = "Exif"
)

// topBox is one top-level box, with enough position bookkeeping to map old
// file offsets to new ones after the layout changes.
type topBox struct {
    boxType    string
    data       []byte
    ext        bool
    oldStart   int64
    oldSize    int64
    headerSize int64
    newStart   int64
}

func (tb *topBox) newSize() int64 {
    return tb.headerSize + int64(len(tb.data))
}

// metaChild is one box inside the meta box, with its absolute position in the
// original file.
type metaChild struct {
    boxType  string
    data     []byte
    ext      bool
    oldStart int64
}

func (mc *metaChild) headerSize() int64 {
    if mc.ext == true {
        return 16
    }

    return 8
}

// infeEntry is one item-info entry. Raw bytes are preserved; the item-ID and
// type are decoded for the versions that carry a type (2 and 3).
type infeEntry struct {
    data     []byte
    ext      bool
    itemId   uint32
    itemType string
    parsed   bool
}

type itemInfo struct {
    versionFlags []byte
    entries      []*infeEntry
}

type locExtent struct {
    index  uint64
    offset uint64
    length uint64
}

type locItem struct {
    itemId             uint32
    constructionMethod uint16
    dataReferenceIndex uint16
    baseOffset         uint64
    extents            []locExtent
}

type itemLocation struct {
    version    byte
    flags      []byte
    offsetSize int
    lengthSize int
    indexSize  int
    items      []*locItem
}

// HeicMedia is a parsed HEIF container.
type HeicMedia struct {
    boxes []*topBox

    meta         *topBox
    metaChildren []*metaChild

    iinf *itemInfo
    iloc *itemLocation

    // iinfIndex and ilocIndex locate the two boxes within metaChildren.
    iinfIndex int
    ilocIndex int
}

// ParseBytes parses the container's box tree, including the meta subtree.
func ParseBytes(data []byte) (hm *HeicMedia, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if len(data) < 8 || string(data[4:8]) != boxFtyp {
        log.Panic(ErrNotHeif)
    }

    hm = &HeicMedia{
        boxes:     make([]*topBox, 0),
        iinfIndex: -1,
        ilocIndex: -1,
    }

    position := int64(0)
    for position+8 <= int64(len(data)) {
        size := int64(binary.BigEndian.Uint32(data[position : position+4]))
        boxType := string(data[position+4 : position+8])

        headerSize := int64(8)
        if size == 1 {
            if position+16 > int64(len(data)) {
                log.Panic(ErrHeifStructureInvalid)
            }

            size = int64(binary.BigEndian.Uint64(data[position+8 : position+16]))
            headerSize = 16
        } else if size == 0 {
            size = int64(len(data)) - position
        }

        if size < headerSize || position+size > int64(len(data)) {
            log.Panic(ErrHeifStructureInvalid)
        }

        boxData := make([]byte, size-headerSize)
        copy(boxData, data[position+headerSize:position+size])

        hm.boxes = append(hm.boxes, &topBox{
            boxType:    boxType,
            data:       boxData,
            ext:        headerSize == 16,
            oldStart:   position,
            oldSize:    size,
            headerSize: headerSize,
        })

        position += size
    }

    for _, tb := range hm.boxes {
        if tb.boxType == boxMeta {
            hm.meta = tb
            break
        }
    }

    if hm.meta != nil {
        err := hm.parseMeta()
        log.PanicIf(err)
    }

    return hm, nil
}

// parseMeta splits the meta FullBox into its children and decodes iinf and
// iloc.
func (hm *HeicMedia) parseMeta() (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    content := hm.meta.data
    if len(content) < 4 {
        log.Panic(ErrHeifStructureInvalid)
    }

    hm.metaChildren = make([]*metaChild, 0)

    // Children follow the four version/flags bytes.
    position := int64(4)
    for position+8 <= int64(len(content)) {
        size := int64(binary.BigEndian.Uint32(content[position : position+4]))
        boxType := string(content[position+4 : position+8])

        headerSize := int64(8)
        if size == 1 {
            if position+16 > int64(len(content)) {
                log.Panic(ErrHeifStructureInvalid)
            }

            size = int64(binary.BigEndian.Uint64(content[position+8 : position+16]))
            headerSize = 16
        } else if size == 0 {
            size = int64(len(content)) - position
        }

        if size < headerSize || position+size > int64(len(content)) {
            log.Panic(ErrHeifStructureInvalid)
        }

        childData := make([]byte, size-headerSize)
        copy(childData, content[position+headerSize:position+size])

        hm.metaChildren = append(hm.metaChildren, &metaChild{
            boxType:  boxType,
            data:     childData,
            ext:      headerSize == 16,
            oldStart: hm.meta.oldStart + hm.meta.headerSize + position,
        })

        position += size
    }

    for i, mc := range hm.metaChildren {
        switch mc.boxType {
        case boxIinf:
            hm.iinfIndex = i

            hm.iinf, err = parseIinf(mc.data)
            log.PanicIf(err)
        case boxIloc:
            hm.ilocIndex = i

            hm.iloc, err = parseIloc(mc.data)
            log.PanicIf(err)
        }
    }

    return nil
}

func parseIinf(data []byte) (ii *itemInfo, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if len(data) < 4 {
        log.Panic(ErrHeifStructureInvalid)
    }

    ii = &itemInfo{
        versionFlags: data[:4],
        entries:      make([]*infeEntry, 0),
    }

    version := data[0]

    position := int64(4)
    if version == 0 {
        position += 2
    } else {
        position += 4
    }

    // The declared entry-count is re-derived from the actual child boxes at
    // emission.

    for position+8 <= int64(len(data)) {
        size := int64(binary.BigEndian.Uint32(data[position : position+4]))
        boxType := string(data[position+4 : position+8])

        headerSize := int64(8)
        if size == 1 {
            size = int64(binary.BigEndian.Uint64(data[position+8 : position+16]))
            headerSize = 16
        } else if size == 0 {
            size = int64(len(data)) - position
        }

        if size < headerSize || position+size > int64(len(data)) {
            log.Panic(ErrHeifStructureInvalid)
        }

        if boxType != boxInfe {
            position += size
            continue
        }

        entryData := make([]byte, size-headerSize)
        copy(entryData, data[position+headerSize:position+size])

        entry := &infeEntry{
            data: entryData,
            ext:  headerSize == 16,
        }

        decodeInfe(entry)

        ii.entries = append(ii.entries, entry)

        position += size
    }

    return ii, nil
}

func decodeInfe(entry *infeEntry) {
    data := entry.data
    if len(data) < 4 {
        return
    }

    version := data[0]

    switch version {
    case 2:
        if len(data) < 12 {
            return
        }

        entry.itemId = uint32(binary.BigEndian.Uint16(data[4:6]))
        entry.itemType = string(data[8:12])
        entry.parsed = true
    case 3:
        if len(data) < 14 {
            return
        }

        entry.itemId = binary.BigEndian.Uint32(data[4:8])
        entry.itemType = string(data[10:14])
        entry.parsed = true
    }
}

func parseIloc(data []byte) (il *itemLocation, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if len(data) < 8 {
        log.Panic(ErrHeifStructureInvalid)
    }

    il = &itemLocation{
        version: data[0],
        flags:   data[1:4],
        items:   make([]*locItem, 0),
    }

    offsetSize := int(data[4] >> 4)
    lengthSize := int(data[4] & 0x0f)
    baseOffsetSize := int(data[5] >> 4)

    indexSize := 0
    if il.version >= 1 {
        indexSize = int(data[5] & 0x0f)
    }

    il.offsetSize = offsetSize
    il.lengthSize = lengthSize
    il.indexSize = indexSize

    position := int64(6)

    readUint := func(width int) uint64 {
        if position+int64(width) > int64(len(data)) {
            log.Panic(ErrHeifStructureInvalid)
        }

        var value uint64
        for i := 0; i < width; i++ {
            value = value<<8 | uint64(data[position])
            position++
        }

        return value
    }

    var itemCount uint32
    if il.version < 2 {
        itemCount = uint32(readUint(2))
    } else {
        itemCount = uint32(readUint(4))
    }

    for i := uint32(0); i < itemCount; i++ {
        item := new(locItem)

        if il.version < 2 {
            item.itemId = uint32(readUint(2))
        } else {
            item.itemId = uint32(readUint(4))
        }

        if il.version == 1 || il.version == 2 {
            item.constructionMethod = uint16(readUint(2)) & 0x000f
        }

        item.dataReferenceIndex = uint16(readUint(2))
        item.baseOffset = readUint(baseOffsetSize)

        extentCount := int(readUint(2))

        item.extents = make([]locExtent, 0, extentCount)
        for e := 0; e < extentCount; e++ {
            var extent locExtent

            if il.version >= 1 && indexSize > 0 {
                extent.index = readUint(indexSize)
            }

            // The base offset folds into the extent offsets; everything
            // downstream works with the sums.
            extent.offset = item.baseOffset + readUint(offsetSize)
            extent.length = readUint(lengthSize)

            item.extents = append(item.extents, extent)
        }

        item.baseOffset = 0

        il.items = append(il.items, item)
    }

    return il, nil
}

// emitIloc re-encodes the item-location box with four-byte offset and length
// fields and the base offsets folded into the extents.
func emitIloc(il *itemLocation) []byte {
    b := new(bytes.Buffer)

    b.WriteByte(il.version)
    b.Write(il.flags)

    indexSize := 0
    if il.version >= 1 {
        indexSize = il.indexSize
    }

    b.WriteByte(byte(4<<4 | 4))
    b.WriteByte(byte(indexSize))

    writeUint := func(value uint64, width int) {
        for i := width - 1; i >= 0; i-- {
            b.WriteByte(byte(value >> (8 * uint(i))))
        }
    }

    if il.version < 2 {
        writeUint(uint64(len(il.items)), 2)
    } else {
        writeUint(uint64(len(il.items)), 4)
    }

    for _, item := range il.items {
        if il.version < 2 {
            writeUint(uint64(item.itemId), 2)
        } else {
            writeUint(uint64(item.itemId), 4)
        }

        if il.version == 1 || il.version == 2 {
            writeUint(uint64(item.constructionMethod), 2)
        }

        writeUint(uint64(item.dataReferenceIndex), 2)

        // The base-offset width is zero; offsets are absolute in the
        // extents.

        writeUint(uint64(len(item.extents)), 2)

        for _, extent := range item.extents {
            if il.version >= 1 && indexSize > 0 {
                writeUint(extent.index, indexSize)
            }

            writeUint(extent.offset, 4)
            writeUint(extent.length, 4)
        }
    }

    return b.Bytes()
}

// emitIinf re-encodes the item-info box around the (possibly extended) entry
// list.
func emitIinf(ii *itemInfo) []byte {
    b := new(bytes.Buffer)

    b.Write(ii.versionFlags)

    version := ii.versionFlags[0]
    if version == 0 {
        count := make([]byte, 2)
        binary.BigEndian.PutUint16(count, uint16(len(ii.entries)))
        b.Write(count)
    } else {
        count := make([]byte, 4)
        binary.BigEndian.PutUint32(count, uint32(len(ii.entries)))
        b.Write(count)
    }

    for _, entry := range ii.entries {
        writeBoxHeader(b, boxInfe, len(entry.data), entry.ext)
        b.Write(entry.data)
    }

    return b.Bytes()
}

func writeBoxHeader(b *bytes.Buffer, boxType string, contentLength int, ext bool) {
    if ext == true {
        b.Write([]byte{0x00, 0x00, 0x00, 0x01})
        b.WriteString(boxType)

        size := make([]byte, 8)
        binary.BigEndian.PutUint64(size, uint64(contentLength)+16)
        b.Write(size)

        return
    }

    size := make([]byte, 4)
    binary.BigEndian.PutUint32(size, uint32(contentLength)+8)
    b.Write(size)
    b.WriteString(boxType)
}

func (hm *HeicMedia) requireMeta() {
    if hm.meta == nil || hm.iinf == nil || hm.iloc == nil {
        log.Panic(ErrHeifStructureInvalid)
    }
}

func (hm *HeicMedia) exifItemId() (itemId uint32, found bool) {
    for _, entry := range hm.iinf.entries {
        if entry.parsed == true && entry.itemType == itemTypeExif {
            return entry.itemId, true
        }
    }

    return 0, false
}

func (hm *HeicMedia) findLocItem(itemId uint32) *locItem {
    for _, item := range hm.iloc.items {
        if item.itemId == itemId {
            return item
        }
    }

    return nil
}

func (hm *HeicMedia) idatChild() *metaChild {
    for _, mc := range hm.metaChildren {
        if mc.boxType == boxIdat {
            return mc
        }
    }

    return nil
}

// Extract returns the EXIF payload, starting at the TIFF header. The item's
// extents are concatenated and the leading 32-bit offset-to-TIFF-header field
// is stripped.
func (hm *HeicMedia) Extract(fileData []byte) (rawExif []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    hm.requireMeta()

    itemId, found := hm.exifItemId()
    if found == false {
        log.Panic(ErrNoExif)
    }

    item := hm.findLocItem(itemId)
    if item == nil {
        log.Panic(ErrHeifStructureInvalid)
    }

    b := new(bytes.Buffer)

    for _, extent := range item.extents {
        switch item.constructionMethod {
        case 0:
            start := int64(extent.offset)
            end := start + int64(extent.length)

            if start < 0 || end > int64(len(fileData)) {
                log.Panic(ErrHeifStructureInvalid)
            }

            b.Write(fileData[start:end])
        case 1:
            idat := hm.idatChild()
            if idat == nil {
                log.Panic(ErrHeifStructureInvalid)
            }

            start := int64(extent.offset)
            end := start + int64(extent.length)

            if start < 0 || end > int64(len(idat.data)) {
                log.Panic(ErrHeifStructureInvalid)
            }

            b.Write(idat.data[start:end])
        default:
            log.Panic(ErrHeifStructureInvalid)
        }
    }

    itemData := b.Bytes()
    if len(itemData) < 4 {
        log.Panic(ErrNoExif)
    }

    tiffHeaderOffset := int(binary.BigEndian.Uint32(itemData[:4]))

    payload := itemData[4:]
    if tiffHeaderOffset > len(payload) {
        log.Panic(ErrHeifStructureInvalid)
    }

    payload = payload[tiffHeaderOffset:]

    // Some producers write the APP1 signature in front of the TIFF header.
    if len(payload) >= 6 && string(payload[:6]) == "Exif\x00\x00" {
        payload = payload[6:]
    }

    return payload, nil
}

// Replace installs the payload as the EXIF item. The item data (a zero
// offset-to-TIFF field followed by the payload) is appended to mdat; the
// item's location is rewritten to a single absolute extent; and, when no EXIF
// item exists yet, new iinf and iloc entries are added. Box sizes are
// recomputed bottom-up and every other item's absolute offsets are patched
// for the shift.
func (hm *HeicMedia) Replace(rawExif []byte) (newData []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    hm.requireMeta()

    itemData := make([]byte, 4+len(rawExif))
    copy(itemData[4:], rawExif)

    // Find or declare the item.

    itemId, found := hm.exifItemId()
    if found == false {
        itemId = hm.nextItemId()

        infeData := new(bytes.Buffer)
        infeData.Write([]byte{0x02, 0x00, 0x00, 0x00})

        idBytes := make([]byte, 2)
        binary.BigEndian.PutUint16(idBytes, uint16(itemId))
        infeData.Write(idBytes)

        infeData.Write([]byte{0x00, 0x00})
        infeData.WriteString(itemTypeExif)
        infeData.WriteByte(0x00)

        hm.iinf.entries = append(hm.iinf.entries, &infeEntry{
            data:     infeData.Bytes(),
            itemId:   itemId,
            itemType: itemTypeExif,
            parsed:   true,
        })
    }

    // Append the item bytes to the last mdat box, creating one if the file
    // has none.

    var mdat *topBox
    for _, tb := range hm.boxes {
        if tb.boxType == boxMdat {
            mdat = tb
        }
    }

    if mdat == nil {
        mdat = &topBox{
            boxType:    boxMdat,
            data:       make([]byte, 0),
            oldStart:   -1,
            headerSize: 8,
        }

        hm.boxes = append(hm.boxes, mdat)
    }

    extentWithinMdat := int64(len(mdat.data))
    mdat.data = append(mdat.data, itemData...)

    item := hm.findLocItem(itemId)
    if item == nil {
        item = &locItem{
            itemId: itemId,
        }

        hm.iloc.items = append(hm.iloc.items, item)
    }

    item.constructionMethod = 0
    item.dataReferenceIndex = 0
    item.baseOffset = 0
    item.extents = []locExtent{
        {
            // The absolute offset is patched after the layout pass.
            offset: 0,
            length: uint64(len(itemData)),
        },
    }

    newData, err = hm.relayout(mdat, item, extentWithinMdat)
    log.PanicIf(err)

    return newData, nil
}

// Clear removes the EXIF item declarations. The dead item bytes stay in mdat;
// every remaining offset is repaired for the meta box shrinking.
func (hm *HeicMedia) Clear() (newData []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    hm.requireMeta()

    itemId, found := hm.exifItemId()
    if found == false {
        return hm.relayoutBytes()
    }

    entries := make([]*infeEntry, 0, len(hm.iinf.entries))
    for _, entry := range hm.iinf.entries {
        if entry.parsed == true && entry.itemId == itemId {
            continue
        }

        entries = append(entries, entry)
    }

    hm.iinf.entries = entries

    items := make([]*locItem, 0, len(hm.iloc.items))
    for _, item := range hm.iloc.items {
        if item.itemId == itemId {
            continue
        }

        items = append(items, item)
    }

    hm.iloc.items = items

    return hm.relayoutBytes()
}

func (hm *HeicMedia) relayoutBytes() (newData []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    newData, err = hm.relayout(nil, nil, 0)
    log.PanicIf(err)

    return newData, nil
}

func (hm *HeicMedia) nextItemId() uint32 {
    next := uint32(0)

    for _, entry := range hm.iinf.entries {
        if entry.parsed == true && entry.itemId > next {
            next = entry.itemId
        }
    }

    for _, item := range hm.iloc.items {
        if item.itemId > next {
            next = item.itemId
        }
    }

    return next + 1
}

// relayout is the two-pass re-emission: sizes are computed bottom-up with the
// rebuilt iinf/iloc in place, then boxes are emitted top-down with every
// absolute offset translated into the new layout.
func (hm *HeicMedia) relayout(exifMdat *topBox, exifItem *locItem, extentWithinMdat int64) (newData []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    // Pass one: sizes. The iloc encoding below has fixed field widths, so
    // its length is already final even though the offsets are not.

    iinfData := emitIinf(hm.iinf)
    ilocData := emitIloc(hm.iloc)

    hm.metaChildren[hm.iinfIndex].data = iinfData
    hm.metaChildren[hm.ilocIndex].data = ilocData

    metaContent := new(bytes.Buffer)
    metaContent.Write(hm.meta.data[:4])

    childNewStarts := make([]int64, len(hm.metaChildren))

    for i, mc := range hm.metaChildren {
        childNewStarts[i] = int64(metaContent.Len())

        writeBoxHeader(metaContent, mc.boxType, len(mc.data), mc.ext)
        metaContent.Write(mc.data)
    }

    hm.meta.data = metaContent.Bytes()

    position := int64(0)
    for _, tb := range hm.boxes {
        tb.newStart = position
        position += tb.newSize()
    }

    // Absolute offsets map through the box (or meta child) that contained
    // them; everything inside an unmodified region shifts by that region's
    // delta.

    type region struct {
        oldStart int64
        oldEnd   int64
        newStart int64
    }

    regions := make([]region, 0, len(hm.boxes)+len(hm.metaChildren))

    for _, tb := range hm.boxes {
        if tb.oldStart == -1 {
            continue
        }

        if tb == hm.meta {
            for j, mc := range hm.metaChildren {
                if mc.boxType == boxIinf || mc.boxType == boxIloc {
                    continue
                }

                regions = append(regions, region{
                    oldStart: mc.oldStart,
                    oldEnd:   mc.oldStart + mc.headerSize() + int64(len(mc.data)),
                    newStart: tb.newStart + tb.headerSize + childNewStarts[j],
                })
            }

            continue
        }

        regions = append(regions, region{
            oldStart: tb.oldStart,
            oldEnd:   tb.oldStart + tb.oldSize,
            newStart: tb.newStart,
        })
    }

    mapOffset := func(old uint64) uint64 {
        o := int64(old)

        for _, r := range regions {
            if o >= r.oldStart && o < r.oldEnd {
                return uint64(o - r.oldStart + r.newStart)
            }
        }

        heicLogger.Warningf(nil, "Offset (%d) maps into no region; left unpatched.", old)

        return old
    }

    // Pass two: patch the offsets and emit.

    for _, item := range hm.iloc.items {
        if item == exifItem {
            item.extents[0].offset = uint64(exifMdat.newStart + exifMdat.headerSize + extentWithinMdat)
            continue
        }

        if item.constructionMethod != 0 {
            // idat-relative offsets do not move with the file layout.
            continue
        }

        for e := range item.extents {
            item.extents[e].offset = mapOffset(item.extents[e].offset)
        }
    }

    ilocData = emitIloc(hm.iloc)
    hm.metaChildren[hm.ilocIndex].data = ilocData

    metaContent = new(bytes.Buffer)
    metaContent.Write(hm.meta.data[:4])

    for _, mc := range hm.metaChildren {
        writeBoxHeader(metaContent, mc.boxType, len(mc.data), mc.ext)
        metaContent.Write(mc.data)
    }

    hm.meta.data = metaContent.Bytes()

    out := new(bytes.Buffer)
    for _, tb := range hm.boxes {
        writeBoxHeader(out, tb.boxType, len(tb.data), tb.ext)
        out.Write(tb.data)
    }

    return out.Bytes(), nil
}

// Extract returns the EXIF payload carried by the HEIF container.
func Extract(data []byte) (rawExif []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    hm, err := ParseBytes(data)
    log.PanicIf(err)

    rawExif, err = hm.Extract(data)
    log.PanicIf(err)

    return rawExif, nil
}

// Replace returns a new HEIF container carrying the payload as its EXIF
// item.
func Replace(data []byte, rawExif []byte) (newData []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    hm, err := ParseBytes(data)
    log.PanicIf(err)

    newData, err = hm.Replace(rawExif)
    log.PanicIf(err)

    return newData, nil
}

// Clear returns a new HEIF container with the EXIF item declarations
// removed.
func Clear(data []byte) (newData []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    hm, err := ParseBytes(data)
    log.PanicIf(err)

    newData, err = hm.Clear()
    log.PanicIf(err)

    return newData, nil
}
