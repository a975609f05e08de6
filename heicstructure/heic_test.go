package heicstructure

import (
    "bytes"
    "testing"

    "encoding/binary"

    "github.com/dsoprea/go-logging"
)

func boxBytes(boxType string, data []byte) []byte {
    b := new(bytes.Buffer)

    size := make([]byte, 4)
    binary.BigEndian.PutUint32(size, uint32(len(data))+8)
    b.Write(size)

    b.WriteString(boxType)
    b.Write(data)

    return b.Bytes()
}

var testImageBytes = []byte{0xab, 0xcd, 0xef, 0x01, 0x02, 0x03, 0x04, 0x05}

// makeTestHeic builds a minimal HEIC: ftyp, a meta box declaring one image
// item whose bytes live in mdat, and the mdat box itself.
func makeTestHeic() []byte {
    ftyp := boxBytes(boxFtyp, []byte("heic\x00\x00\x00\x00heicmif1"))

    hdlr := new(bytes.Buffer)
    hdlr.Write(make([]byte, 8))
    hdlr.WriteString("pict")
    hdlr.Write(make([]byte, 13))

    pitm := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x01}

    infe := new(bytes.Buffer)
    infe.Write([]byte{0x02, 0x00, 0x00, 0x00})
    infe.Write([]byte{0x00, 0x01})
    infe.Write([]byte{0x00, 0x00})
    infe.WriteString("hvc1")
    infe.WriteByte(0x00)

    iinf := new(bytes.Buffer)
    iinf.Write([]byte{0x00, 0x00, 0x00, 0x00})
    iinf.Write([]byte{0x00, 0x01})
    iinf.Write(boxBytes(boxInfe, infe.Bytes()))

    buildIloc := func(imageOffset uint32) []byte {
        iloc := new(bytes.Buffer)
        iloc.Write([]byte{0x00, 0x00, 0x00, 0x00})
        iloc.WriteByte(0x44)
        iloc.WriteByte(0x00)
        iloc.Write([]byte{0x00, 0x01})

        iloc.Write([]byte{0x00, 0x01})
        iloc.Write([]byte{0x00, 0x00})
        iloc.Write([]byte{0x00, 0x01})

        offset := make([]byte, 4)
        binary.BigEndian.PutUint32(offset, imageOffset)
        iloc.Write(offset)

        length := make([]byte, 4)
        binary.BigEndian.PutUint32(length, uint32(len(testImageBytes)))
        iloc.Write(length)

        return iloc.Bytes()
    }

    buildMeta := func(imageOffset uint32) []byte {
        meta := new(bytes.Buffer)
        meta.Write([]byte{0x00, 0x00, 0x00, 0x00})
        meta.Write(boxBytes("hdlr", hdlr.Bytes()))
        meta.Write(boxBytes("pitm", pitm))
        meta.Write(boxBytes(boxIinf, iinf.Bytes()))
        meta.Write(boxBytes(boxIloc, buildIloc(imageOffset)))

        return boxBytes(boxMeta, meta.Bytes())
    }

    // The iloc length does not depend on the offset value, so the image
    // item's absolute position can be computed before it is written.

    metaSize := len(buildMeta(0))
    imageOffset := uint32(len(ftyp) + metaSize + 8)

    out := new(bytes.Buffer)
    out.Write(ftyp)
    out.Write(buildMeta(imageOffset))
    out.Write(boxBytes(boxMdat, testImageBytes))

    return out.Bytes()
}

var testExifPayload = []byte{
    'I', 'I', 0x2a, 0x00,
    0x08, 0x00, 0x00, 0x00,
    0x00, 0x00,
    0x00, 0x00, 0x00, 0x00,
}

func TestReplace_AddFromScratch(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    heicData := makeTestHeic()

    newData, err := Replace(heicData, testExifPayload)
    log.PanicIf(err)

    hm, err := ParseBytes(newData)
    log.PanicIf(err)

    // A new item of type Exif was declared.

    exifId, found := hm.exifItemId()
    if found == false {
        t.Fatalf("no exif item was declared")
    } else if exifId != 2 {
        t.Fatalf("item-ID not correct: (%d)", exifId)
    } else if len(hm.iinf.entries) != 2 {
        t.Fatalf("infe count not correct: (%d)", len(hm.iinf.entries))
    }

    // Its single extent points at the appended mdat region: a zero
    // offset-to-TIFF field followed by the payload.

    item := hm.findLocItem(exifId)
    if item == nil {
        t.Fatalf("no iloc entry for the exif item")
    } else if len(item.extents) != 1 {
        t.Fatalf("extent count not correct: (%d)", len(item.extents))
    }

    extent := item.extents[0]

    itemData := newData[extent.offset : extent.offset+extent.length]
    if bytes.Equal(itemData[:4], []byte{0, 0, 0, 0}) == false {
        t.Fatalf("offset-to-TIFF field must be zero: % x", itemData[:4])
    } else if bytes.Equal(itemData[4:], testExifPayload) == false {
        t.Fatalf("payload not stored correctly")
    }

    // The pre-existing image item's offset was adjusted for the meta box
    // growth: it must still point at the image bytes.

    imageItem := hm.findLocItem(1)
    if imageItem == nil {
        t.Fatalf("image item lost")
    }

    imageExtent := imageItem.extents[0]

    recoveredImage := newData[imageExtent.offset : imageExtent.offset+imageExtent.length]
    if bytes.Equal(recoveredImage, testImageBytes) == false {
        t.Fatalf("image item offset not patched correctly: % x", recoveredImage)
    }

    // And the payload extracts back out.

    recovered, err := Extract(newData)
    log.PanicIf(err)

    if bytes.Equal(recovered, testExifPayload) == false {
        t.Fatalf("payload not preserved")
    }
}

func TestReplace_Existing(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    first, err := Replace(makeTestHeic(), testExifPayload)
    log.PanicIf(err)

    larger := append(append([]byte{}, testExifPayload...), 0xaa, 0xbb, 0xcc)

    second, err := Replace(first, larger)
    log.PanicIf(err)

    hm, err := ParseBytes(second)
    log.PanicIf(err)

    if len(hm.iinf.entries) != 2 {
        t.Fatalf("replacing must not declare another item: (%d)", len(hm.iinf.entries))
    }

    recovered, err := Extract(second)
    log.PanicIf(err)

    if bytes.Equal(recovered, larger) == false {
        t.Fatalf("payload not preserved")
    }

    // The image item must still resolve.

    imageItem := hm.findLocItem(1)
    imageExtent := imageItem.extents[0]

    recoveredImage := second[imageExtent.offset : imageExtent.offset+imageExtent.length]
    if bytes.Equal(recoveredImage, testImageBytes) == false {
        t.Fatalf("image item disturbed")
    }
}

func TestExtract_NoExif(t *testing.T) {
    _, err := Extract(makeTestHeic())
    if err == nil {
        t.Fatalf("expected no-exif failure")
    } else if log.Is(err, ErrNoExif) == false {
        t.Fatalf("wrong error: %v", err)
    }
}

func TestExtract_StripsSignature(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    withSignature := append([]byte("Exif\x00\x00"), testExifPayload...)

    data, err := Replace(makeTestHeic(), withSignature)
    log.PanicIf(err)

    // Our writer stores the payload verbatim behind the zero offset field;
    // the reader strips the signature it finds there.

    recovered, err := Extract(data)
    log.PanicIf(err)

    if bytes.Equal(recovered, testExifPayload) == false {
        t.Fatalf("signature not stripped: % x", recovered)
    }
}

func TestParseBytes_NotHeif(t *testing.T) {
    _, err := ParseBytes([]byte("certainly not an isobmff stream"))
    if err == nil {
        t.Fatalf("expected not-heif failure")
    } else if log.Is(err, ErrNotHeif) == false {
        t.Fatalf("wrong error: %v", err)
    }
}

func TestReplace_NoMeta(t *testing.T) {
    data := boxBytes(boxFtyp, []byte("heic\x00\x00\x00\x00heic"))

    _, err := Replace(data, testExifPayload)
    if err == nil {
        t.Fatalf("expected structure failure")
    } else if log.Is(err, ErrHeifStructureInvalid) == false {
        t.Fatalf("wrong error: %v", err)
    }
}

func TestClear(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    withExif, err := Replace(makeTestHeic(), testExifPayload)
    log.PanicIf(err)

    cleared, err := Clear(withExif)
    log.PanicIf(err)

    hm, err := ParseBytes(cleared)
    log.PanicIf(err)

    if _, found := hm.exifItemId(); found == true {
        t.Fatalf("exif item not removed")
    }

    // The image item survives the meta shrink.

    imageItem := hm.findLocItem(1)
    imageExtent := imageItem.extents[0]

    recoveredImage := cleared[imageExtent.offset : imageExtent.offset+imageExtent.length]
    if bytes.Equal(recoveredImage, testImageBytes) == false {
        t.Fatalf("image item disturbed by clear")
    }
}
