package jxlstructure

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

func makeTestJxl() []byte {
    b := new(bytes.Buffer)

    b.Write(jxlSignatureBox)
    b.Write(boxBytes("ftyp", []byte("jxl \x00\x00\x00\x00jxl ")))
    b.Write(boxBytes("jxlc", []byte{0xff, 0x0a, 0x01, 0x02, 0x03}))

    return b.Bytes()
}

var testExifPayload = []byte{
    'I', 'I', 0x2a, 0x00,
    0x08, 0x00, 0x00, 0x00,
    0x00, 0x00,
    0x00, 0x00, 0x00, 0x00,
}

func TestReplace_InsertBeforeCodestream(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    newData, err := Replace(makeTestJxl(), testExifPayload)
    log.PanicIf(err)

    jm, err := ParseBytes(newData)
    log.PanicIf(err)

    boxes := jm.Boxes()
    if len(boxes) != 4 {
        t.Fatalf("box count not correct: (%d)", len(boxes))
    } else if boxes[2].BoxType != "Exif" || boxes[3].BoxType != "jxlc" {
        t.Fatalf("the Exif box must precede the codestream: [%s] [%s]", boxes[2].BoxType, boxes[3].BoxType)
    }

    // The box opens with a zero offset-to-TIFF-header field.

    if bytes.Equal(boxes[2].Data[:4], []byte{0, 0, 0, 0}) == false {
        t.Fatalf("offset field must be zero: % x", boxes[2].Data[:4])
    }

    recovered, err := jm.Extract()
    log.PanicIf(err)

    if bytes.Equal(recovered, testExifPayload) == false {
        t.Fatalf("payload not preserved")
    }
}

func TestReplace_InPlace(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    first, err := Replace(makeTestJxl(), testExifPayload)
    log.PanicIf(err)

    larger := append(append([]byte{}, testExifPayload...), 0xaa, 0xbb)

    second, err := Replace(first, larger)
    log.PanicIf(err)

    jm, err := ParseBytes(second)
    log.PanicIf(err)

    exifBoxes := 0
    for _, box := range jm.Boxes() {
        if box.BoxType == "Exif" {
            exifBoxes++
        }
    }

    if exifBoxes != 1 {
        t.Fatalf("replacement must be in place: (%d) exif boxes", exifBoxes)
    }

    recovered, err := Extract(second)
    log.PanicIf(err)

    if bytes.Equal(recovered, larger) == false {
        t.Fatalf("payload not preserved")
    }
}

func TestExtract_NonZeroOffsetField(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    // Four bytes of padding declared by the offset field.

    boxData := new(bytes.Buffer)
    boxData.Write([]byte{0x00, 0x00, 0x00, 0x04})
    boxData.Write([]byte{0xde, 0xad, 0xbe, 0xef})
    boxData.Write(testExifPayload)

    b := new(bytes.Buffer)
    b.Write(jxlSignatureBox)
    b.Write(boxBytes("ftyp", []byte("jxl \x00\x00\x00\x00jxl ")))
    b.Write(boxBytes("Exif", boxData.Bytes()))
    b.Write(boxBytes("jxlc", []byte{0x01}))

    recovered, err := Extract(b.Bytes())
    log.PanicIf(err)

    if bytes.Equal(recovered, testExifPayload) == false {
        t.Fatalf("offset field not honored: % x", recovered)
    }
}

func TestParseBytes_RejectsRawCodestream(t *testing.T) {
    _, err := ParseBytes([]byte{0xff, 0x0a, 0x00, 0x01})
    if err == nil {
        t.Fatalf("expected unsupported-jxl failure")
    } else if log.Is(err, ErrUnsupportedJxl) == false {
        t.Fatalf("wrong error: %v", err)
    }
}

func TestParseBytes_NotJxl(t *testing.T) {
    _, err := ParseBytes([]byte("this is not a jxl stream at all"))
    if err == nil {
        t.Fatalf("expected not-jxl failure")
    } else if log.Is(err, ErrNotJxl) == false {
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

    withExif, err := Replace(makeTestJxl(), testExifPayload)
    log.PanicIf(err)

    cleared, err := Clear(withExif)
    log.PanicIf(err)

    if bytes.Equal(cleared, makeTestJxl()) == false {
        t.Fatalf("clear must restore the original stream")
    }
}
