// Package webpstructure locates and rewrites the EXIF chunk inside a WebP
// RIFF container. Extended (VP8X) and lossless (VP8L) streams are supported;
// a lossless stream is upgraded to the extended form on write.
package webpstructure

import (
    "bytes"
    "errors"

    "encoding/binary"

    "github.com/dsoprea/go-logging"
)

var (
    webpLogger = log.NewLogger("webpstructure.webp")
)

var (
    // ErrNotWebp is returned when the stream is not a RIFF/WEBP container.
    ErrNotWebp = errors.New("not webp data")

    // ErrNoExif is returned when no EXIF chunk is present.
    ErrNoExif = errors.New("no exif data")

    // ErrUnsupportedWebp is returned for simple lossy (VP8) streams, which
    // have no place to carry metadata.
    ErrUnsupportedWebp = errors.New("simple lossy webp can not carry exif")
)

const (
    chunkVp8  = "VP8 "
    chunkVp8l = "VP8L"
    chunkVp8x = "VP8X"
    chunkExif = "EXIF"
    chunkXmp  = "XMP "

    // vp8xExifFlag is bit 3 of the VP8X feature-flags byte.
    vp8xExifFlag = byte(1 << 3)
)

// Chunk is one RIFF chunk. Odd-sized chunks are padded with a single zero
// byte on emission; the pad is not part of Data.
type Chunk struct {
    FourCc string
    Data   []byte
}

// WebpMedia is a parsed WebP container.
type WebpMedia struct {
    chunks []*Chunk
}

// Chunks returns the chunks in file order.
func (wm *WebpMedia) Chunks() []*Chunk {
    return wm.chunks
}

// ParseBytes splits a WebP stream into its RIFF chunks.
func ParseBytes(data []byte) (wm *WebpMedia, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
        log.Panic(ErrNotWebp)
    }

    declaredSize := int(binary.LittleEndian.Uint32(data[4:8]))
    if declaredSize != len(data)-8 {
        webpLogger.Warningf(nil, "RIFF size (%d) does not match the file size (%d); it will be recomputed.", declaredSize, len(data)-8)
    }

    wm = &WebpMedia{
        chunks: make([]*Chunk, 0),
    }

    position := 12
    for position+8 <= len(data) {
        fourCc := string(data[position : position+4])
        size := int(binary.LittleEndian.Uint32(data[position+4 : position+8]))

        if position+8+size > len(data) {
            log.Panicf("chunk [%s] extends beyond the stream", fourCc)
        }

        chunkData := make([]byte, size)
        copy(chunkData, data[position+8:position+8+size])

        wm.chunks = append(wm.chunks, &Chunk{
            FourCc: fourCc,
            Data:   chunkData,
        })

        position += 8 + size
        if size%2 == 1 {
            // Odd chunks carry one pad byte.
            position++
        }
    }

    return wm, nil
}

// Bytes re-emits the container, recomputing the RIFF size and padding every
// odd chunk with exactly one zero byte.
func (wm *WebpMedia) Bytes() []byte {
    body := new(bytes.Buffer)
    body.WriteString("WEBP")

    for _, c := range wm.chunks {
        size := make([]byte, 4)
        binary.LittleEndian.PutUint32(size, uint32(len(c.Data)))

        body.WriteString(c.FourCc)
        body.Write(size)
        body.Write(c.Data)

        if len(c.Data)%2 == 1 {
            body.WriteByte(0)
        }
    }

    out := new(bytes.Buffer)
    out.WriteString("RIFF")

    riffSize := make([]byte, 4)
    binary.LittleEndian.PutUint32(riffSize, uint32(body.Len()))
    out.Write(riffSize)

    out.Write(body.Bytes())

    return out.Bytes()
}

func (wm *WebpMedia) findChunk(fourCc string) (index int, chunk *Chunk) {
    for i, c := range wm.chunks {
        if c.FourCc == fourCc {
            return i, c
        }
    }

    return -1, nil
}

// Extract returns the EXIF payload, starting at the TIFF header.
func (wm *WebpMedia) Extract() (rawExif []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    _, exifChunk := wm.findChunk(chunkExif)
    if exifChunk == nil {
        log.Panic(ErrNoExif)
    }

    rawExif = exifChunk.Data

    // Some producers keep the APP1 signature in front of the TIFF header.
    if len(rawExif) >= 6 && string(rawExif[:6]) == "Exif\x00\x00" {
        rawExif = rawExif[6:]
    }

    return rawExif, nil
}

// Replace installs the payload as the EXIF chunk. A simple lossless stream is
// upgraded to the extended form first; a simple lossy stream is rejected.
func (wm *WebpMedia) Replace(rawExif []byte) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if len(wm.chunks) == 0 {
        log.Panic(ErrNotWebp)
    }

    switch wm.chunks[0].FourCc {
    case chunkVp8x:
        // Already extended.
    case chunkVp8l:
        err := wm.upgradeToExtended()
        log.PanicIf(err)
    case chunkVp8:
        log.Panic(ErrUnsupportedWebp)
    default:
        log.Panic(ErrNotWebp)
    }

    wm.chunks[0].Data[0] |= vp8xExifFlag

    exifChunk := &Chunk{
        FourCc: chunkExif,
        Data:   rawExif,
    }

    if i, existing := wm.findChunk(chunkExif); existing != nil {
        wm.chunks[i] = exifChunk
        return nil
    }

    // The EXIF chunk belongs after the image data and before any XMP chunk.
    if i, xmp := wm.findChunk(chunkXmp); xmp != nil {
        chunks := make([]*Chunk, 0, len(wm.chunks)+1)
        chunks = append(chunks, wm.chunks[:i]...)
        chunks = append(chunks, exifChunk)
        chunks = append(chunks, wm.chunks[i:]...)
        wm.chunks = chunks

        return nil
    }

    wm.chunks = append(wm.chunks, exifChunk)

    return nil
}

// Clear drops the EXIF chunk and clears the VP8X EXIF feature flag.
func (wm *WebpMedia) Clear() {
    chunks := make([]*Chunk, 0, len(wm.chunks))

    for _, c := range wm.chunks {
        if c.FourCc == chunkExif {
            continue
        }

        chunks = append(chunks, c)
    }

    wm.chunks = chunks

    if len(wm.chunks) > 0 && wm.chunks[0].FourCc == chunkVp8x && len(wm.chunks[0].Data) > 0 {
        wm.chunks[0].Data[0] &^= vp8xExifFlag
    }
}

// upgradeToExtended synthesizes a VP8X chunk in front of a simple lossless
// stream, reading the canvas dimensions out of the VP8L bitstream header.
func (wm *WebpMedia) upgradeToExtended() (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    vp8l := wm.chunks[0]

    if len(vp8l.Data) < 5 || vp8l.Data[0] != 0x2f {
        log.Panic(ErrNotWebp)
    }

    // The 14-bit width and height fields follow the signature byte, packed
    // little-endian, each stored minus one.
    b1 := uint32(vp8l.Data[1])
    b2 := uint32(vp8l.Data[2])
    b3 := uint32(vp8l.Data[3])
    b4 := uint32(vp8l.Data[4])

    widthMinusOne := b1 | (b2&0x3f)<<8
    heightMinusOne := (b2 >> 6) | b3<<2 | (b4&0x0f)<<10

    vp8xData := make([]byte, 10)
    vp8xData[4] = byte(widthMinusOne)
    vp8xData[5] = byte(widthMinusOne >> 8)
    vp8xData[6] = byte(widthMinusOne >> 16)
    vp8xData[7] = byte(heightMinusOne)
    vp8xData[8] = byte(heightMinusOne >> 8)
    vp8xData[9] = byte(heightMinusOne >> 16)

    chunks := make([]*Chunk, 0, len(wm.chunks)+1)
    chunks = append(chunks, &Chunk{
        FourCc: chunkVp8x,
        Data:   vp8xData,
    })

    chunks = append(chunks, wm.chunks...)
    wm.chunks = chunks

    return nil
}

// Extract returns the EXIF payload carried by the WebP stream.
func Extract(data []byte) (rawExif []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    wm, err := ParseBytes(data)
    log.PanicIf(err)

    rawExif, err = wm.Extract()
    log.PanicIf(err)

    return rawExif, nil
}

// Replace returns a new WebP stream carrying the payload in its EXIF chunk.
func Replace(data []byte, rawExif []byte) (newData []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    wm, err := ParseBytes(data)
    log.PanicIf(err)

    err = wm.Replace(rawExif)
    log.PanicIf(err)

    return wm.Bytes(), nil
}

// Clear returns a new WebP stream with the EXIF chunk removed.
func Clear(data []byte) (newData []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    wm, err := ParseBytes(data)
    log.PanicIf(err)

    wm.Clear()

    return wm.Bytes(), nil
}
