package webpstructure

import (
    "bytes"
    "testing"

    "encoding/binary"

    "github.com/dsoprea/go-logging"
)

func chunkBytes(fourCc string, data []byte) []byte {
    b := new(bytes.Buffer)
    b.WriteString(fourCc)

    size := make([]byte, 4)
    binary.LittleEndian.PutUint32(size, uint32(len(data)))
    b.Write(size)

    b.Write(data)

    if len(data)%2 == 1 {
        b.WriteByte(0)
    }

    return b.Bytes()
}

func riffBytes(chunks ...[]byte) []byte {
    body := new(bytes.Buffer)
    body.WriteString("WEBP")

    for _, c := range chunks {
        body.Write(c)
    }

    b := new(bytes.Buffer)
    b.WriteString("RIFF")

    size := make([]byte, 4)
    binary.LittleEndian.PutUint32(size, uint32(body.Len()))
    b.Write(size)

    b.Write(body.Bytes())

    return b.Bytes()
}

func makeExtendedWebp() []byte {
    vp8x := make([]byte, 10)
    return riffBytes(chunkBytes("VP8X", vp8x), chunkBytes("VP8L", []byte{0x2f, 0x00, 0x00, 0x00, 0x00, 0x00}))
}

func makeLosslessWebp() []byte {
    // A 16x8 canvas: width-1=15, height-1=7.
    vp8l := []byte{0x2f, 0x0f, 0xc0, 0x01, 0x00, 0x00}
    return riffBytes(chunkBytes("VP8L", vp8l))
}

var testExifPayload = []byte{
    'I', 'I', 0x2a, 0x00,
    0x08, 0x00, 0x00, 0x00,
    0x00, 0x00,
    0x00, 0x00, 0x00, 0x00,
}

func TestReplace_Extended(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    newData, err := Replace(makeExtendedWebp(), testExifPayload)
    log.PanicIf(err)

    wm, err := ParseBytes(newData)
    log.PanicIf(err)

    chunks := wm.Chunks()
    if chunks[0].FourCc != "VP8X" {
        t.Fatalf("first chunk must stay VP8X")
    } else if chunks[0].Data[0]&0x08 == 0 {
        t.Fatalf("the VP8X EXIF feature flag must be set")
    }

    recovered, err := wm.Extract()
    log.PanicIf(err)

    if bytes.Equal(recovered, testExifPayload) == false {
        t.Fatalf("payload not preserved")
    }

    // The RIFF size covers everything after the first eight bytes.

    declared := binary.LittleEndian.Uint32(newData[4:8])
    if int(declared) != len(newData)-8 {
        t.Fatalf("riff size parity violated: (%d) != (%d)", declared, len(newData)-8)
    }
}

func TestReplace_OddPayloadPadded(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    oddPayload := append(append([]byte{}, testExifPayload...), 0x55)

    newData, err := Replace(makeExtendedWebp(), oddPayload)
    log.PanicIf(err)

    if len(newData)%2 != 0 {
        t.Fatalf("an odd chunk must carry exactly one pad byte")
    }

    recovered, err := Extract(newData)
    log.PanicIf(err)

    if bytes.Equal(recovered, oddPayload) == false {
        t.Fatalf("odd payload not preserved")
    }

    declared := binary.LittleEndian.Uint32(newData[4:8])
    if int(declared) != len(newData)-8 {
        t.Fatalf("riff size parity violated")
    }
}

func TestReplace_UpgradesLossless(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    newData, err := Replace(makeLosslessWebp(), testExifPayload)
    log.PanicIf(err)

    wm, err := ParseBytes(newData)
    log.PanicIf(err)

    chunks := wm.Chunks()
    if chunks[0].FourCc != "VP8X" {
        t.Fatalf("lossless stream must be upgraded to extended form")
    }

    if chunks[0].Data[0]&0x08 == 0 {
        t.Fatalf("the EXIF feature flag must be set")
    }

    // Canvas dimensions carried over from the VP8L header: 16x8.

    width := 1 + int(chunks[0].Data[4]) | int(chunks[0].Data[5])<<8 | int(chunks[0].Data[6])<<16
    height := 1 + int(chunks[0].Data[7]) | int(chunks[0].Data[8])<<8 | int(chunks[0].Data[9])<<16

    if width != 16 || height != 8 {
        t.Fatalf("canvas not correct: (%d)x(%d)", width, height)
    }
}

func TestReplace_RejectsLossySimple(t *testing.T) {
    lossy := riffBytes(chunkBytes("VP8 ", []byte{0x00, 0x01}))

    _, err := Replace(lossy, testExifPayload)
    if err == nil {
        t.Fatalf("expected unsupported-webp failure")
    } else if log.Is(err, ErrUnsupportedWebp) == false {
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

    withExif, err := Replace(makeExtendedWebp(), testExifPayload)
    log.PanicIf(err)

    cleared, err := Clear(withExif)
    log.PanicIf(err)

    wm, err := ParseBytes(cleared)
    log.PanicIf(err)

    if _, exifChunk := wm.findChunk("EXIF"); exifChunk != nil {
        t.Fatalf("exif chunk not removed")
    }

    if wm.Chunks()[0].Data[0]&0x08 != 0 {
        t.Fatalf("the EXIF feature flag must be cleared")
    }
}

func TestParseBytes_NotWebp(t *testing.T) {
    _, err := ParseBytes([]byte("RIFFxxxxWAVE"))
    if err == nil {
        t.Fatalf("expected not-webp failure")
    } else if log.Is(err, ErrNotWebp) == false {
        t.Fatalf("wrong error: %v", err)
    }
}
