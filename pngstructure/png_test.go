package pngstructure

import (
    "bytes"
    "fmt"
    "strconv"
    "testing"

    "compress/zlib"
    "encoding/binary"
    "encoding/hex"
    "hash/crc32"

    "github.com/dsoprea/go-logging"

    exif "github.com/TechnikTobi/little-exif"
)

func makeTestPng() []byte {
    ihdrData := make([]byte, 13)
    binary.BigEndian.PutUint32(ihdrData[0:4], 1)
    binary.BigEndian.PutUint32(ihdrData[4:8], 1)
    ihdrData[8] = 8

    cs := &ChunkSlice{
        chunks: []*Chunk{
            {Type: "IHDR", Data: ihdrData},
            {Type: "IDAT", Data: []byte{0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00, 0xff, 0xff}},
            {Type: "IEND", Data: nil},
        },
    }

    return cs.Bytes()
}

func exifPayloadWithDescription(description string) []byte {
    tree := exif.NewIfdTree(binary.LittleEndian)

    err := tree.SetStandardTag("ImageDescription", description)
    log.PanicIf(err)

    data, err := exif.BuildExifPayload(tree)
    log.PanicIf(err)

    return data
}

func TestReplace_InsertAfterIhdr(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    pngData := makeTestPng()

    rawExif := exifPayloadWithDescription("hi")

    newData, err := Replace(pngData, rawExif)
    log.PanicIf(err)

    cs, err := ParseBytes(newData)
    log.PanicIf(err)

    chunks := cs.Chunks()
    if len(chunks) != 4 {
        t.Fatalf("chunk count not correct: (%d)", len(chunks))
    } else if chunks[0].Type != "IHDR" || chunks[1].Type != "eXIf" {
        t.Fatalf("the eXIf chunk must directly follow IHDR: [%s] [%s]", chunks[0].Type, chunks[1].Type)
    }

    expectedPayload := []byte{
        0x49, 0x49, 0x2a, 0x00,
        0x08, 0x00, 0x00, 0x00,
        0x01, 0x00,
        0x0e, 0x01, 0x02, 0x00, 0x03, 0x00, 0x00, 0x00, 0x68, 0x69, 0x00, 0x00,
        0x00, 0x00, 0x00, 0x00,
    }

    if bytes.Equal(chunks[1].Data, expectedPayload) == false {
        t.Fatalf("payload not correct:\n  actual: % x\nexpected: % x", chunks[1].Data, expectedPayload)
    }

    // Every stored CRC must verify against type||data.

    position := 8
    for position < len(newData) {
        length := int(binary.BigEndian.Uint32(newData[position : position+4]))

        crc := crc32.ChecksumIEEE(newData[position+4 : position+8+length])
        stored := binary.BigEndian.Uint32(newData[position+8+length : position+12+length])

        if crc != stored {
            t.Fatalf("crc not correct for chunk at offset (%d)", position)
        }

        position += 12 + length
    }
}

func TestExtract_RoundTrip(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    rawExif := exifPayloadWithDescription("Hello World!")

    newData, err := Replace(makeTestPng(), rawExif)
    log.PanicIf(err)

    recovered, err := Extract(newData)
    log.PanicIf(err)

    if bytes.Equal(recovered, rawExif) == false {
        t.Fatalf("extracted payload not identical")
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

    first, err := Replace(makeTestPng(), exifPayloadWithDescription("one"))
    log.PanicIf(err)

    second, err := Replace(first, exifPayloadWithDescription("two"))
    log.PanicIf(err)

    cs, err := ParseBytes(second)
    log.PanicIf(err)

    exifChunks := 0
    for _, c := range cs.Chunks() {
        if c.Type == "eXIf" {
            exifChunks++
        }
    }

    if exifChunks != 1 {
        t.Fatalf("replacement must be in place: (%d) exif chunks", exifChunks)
    }
}

func TestExtract_LegacyZtxt(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    rawExif := exifPayloadWithDescription("hi")

    // Build the legacy profile: "exif", a padded decimal length, and the hex
    // bytes wrapped every thirty-six characters.

    hexBody := hex.EncodeToString(rawExif)

    profile := new(bytes.Buffer)
    profile.WriteString("\nexif\n")
    profile.WriteString(fmt.Sprintf("%8s\n", strconv.Itoa(len(rawExif))))

    for len(hexBody) > 36 {
        profile.WriteString(hexBody[:36])
        profile.WriteByte('\n')
        hexBody = hexBody[36:]
    }

    profile.WriteString(hexBody)
    profile.WriteByte('\n')

    compressed := new(bytes.Buffer)
    zw := zlib.NewWriter(compressed)

    _, err := zw.Write(profile.Bytes())
    log.PanicIf(err)

    err = zw.Close()
    log.PanicIf(err)

    ztxtData := new(bytes.Buffer)
    ztxtData.WriteString("Raw profile type exif")
    ztxtData.WriteByte(0)
    ztxtData.WriteByte(0)
    ztxtData.Write(compressed.Bytes())

    ihdrData := make([]byte, 13)

    cs := &ChunkSlice{
        chunks: []*Chunk{
            {Type: "IHDR", Data: ihdrData},
            {Type: "zTXt", Data: ztxtData.Bytes()},
            {Type: "IEND", Data: nil},
        },
    }

    recovered, err := Extract(cs.Bytes())
    log.PanicIf(err)

    if bytes.Equal(recovered, rawExif) == false {
        t.Fatalf("legacy profile not decoded correctly:\n  actual: % x\nexpected: % x", recovered, rawExif)
    }
}

func TestExtract_NoExif(t *testing.T) {
    _, err := Extract(makeTestPng())
    if err == nil {
        t.Fatalf("expected no-exif failure")
    } else if log.Is(err, ErrNoExif) == false {
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

    withExif, err := Replace(makeTestPng(), exifPayloadWithDescription("hi"))
    log.PanicIf(err)

    cleared, err := Clear(withExif)
    log.PanicIf(err)

    if bytes.Equal(cleared, makeTestPng()) == false {
        t.Fatalf("clear must restore the original stream")
    }
}

func TestParseBytes_NotPng(t *testing.T) {
    _, err := ParseBytes([]byte{0x00, 0x01, 0x02})
    if err == nil {
        t.Fatalf("expected not-png failure")
    } else if log.Is(err, ErrNotPng) == false {
        t.Fatalf("wrong error: %v", err)
    }
}
