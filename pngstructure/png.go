// Package pngstructure locates and rewrites the EXIF carrier inside a PNG
// stream, preserving every unrelated chunk.
package pngstructure

import (
    "bytes"
    "errors"
    "io/ioutil"
    "strconv"
    "strings"

    "compress/zlib"
    "encoding/binary"
    "encoding/hex"
    "hash/crc32"

    "github.com/dsoprea/go-logging"
)

var (
    pngLogger = log.NewLogger("pngstructure.png")
)

var (
    // ErrNotPng is returned when the stream does not start with the PNG
    // signature.
    ErrNotPng = errors.New("not png data")

    // ErrNoExif is returned when no EXIF-bearing chunk is present.
    ErrNoExif = errors.New("no exif data")

    // ErrCrcMismatch describes a chunk whose stored CRC does not verify.
    // It is surfaced as a warning only; parsing continues.
    ErrCrcMismatch = errors.New("crc mismatch")
)

var (
    pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
)

const (
    // exifChunkType carries the raw EXIF payload, starting at the TIFF
    // header.
    exifChunkType = "eXIf"

    // ztxtChunkType may carry a legacy deflate-compressed ASCII-hex EXIF
    // profile under the keyword below.
    ztxtChunkType = "zTXt"

    exifProfileKeyword = "Raw profile type exif"
)

// Chunk is one PNG chunk. The CRC is computed at write time, never stored.
type Chunk struct {
    Type string
    Data []byte
}

// EncodedLen returns the full encoded size: length, type, data, CRC.
func (c *Chunk) EncodedLen() int {
    return 4 + 4 + len(c.Data) + 4
}

// WriteTo appends the encoded chunk, with a freshly-computed CRC over
// type||data, to the buffer.
func (c *Chunk) WriteTo(b *bytes.Buffer) {
    length := make([]byte, 4)
    binary.BigEndian.PutUint32(length, uint32(len(c.Data)))

    b.Write(length)
    b.WriteString(c.Type)
    b.Write(c.Data)

    crc := crc32.NewIEEE()
    crc.Write([]byte(c.Type))
    crc.Write(c.Data)

    crcBytes := make([]byte, 4)
    binary.BigEndian.PutUint32(crcBytes, crc.Sum32())

    b.Write(crcBytes)
}

// ChunkSlice is the parsed sequence of chunks of one PNG stream.
type ChunkSlice struct {
    chunks []*Chunk
}

// Chunks returns the chunks in file order.
func (cs *ChunkSlice) Chunks() []*Chunk {
    return cs.chunks
}

// ParseBytes splits a PNG stream into chunks. Chunk CRCs are verified; a
// mismatch is logged and tolerated.
func ParseBytes(data []byte) (cs *ChunkSlice, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if len(data) < len(pngSignature) || bytes.Equal(data[:len(pngSignature)], pngSignature) == false {
        log.Panic(ErrNotPng)
    }

    cs = &ChunkSlice{
        chunks: make([]*Chunk, 0),
    }

    position := len(pngSignature)
    for position < len(data) {
        if position+8 > len(data) {
            log.Panicf("truncated chunk header at offset (%d)", position)
        }

        length := int(binary.BigEndian.Uint32(data[position : position+4]))
        chunkType := string(data[position+4 : position+8])

        if position+8+length+4 > len(data) {
            log.Panicf("truncated chunk [%s] at offset (%d)", chunkType, position)
        }

        chunkData := make([]byte, length)
        copy(chunkData, data[position+8:position+8+length])

        storedCrc := binary.BigEndian.Uint32(data[position+8+length : position+8+length+4])

        crc := crc32.NewIEEE()
        crc.Write([]byte(chunkType))
        crc.Write(chunkData)

        if crc.Sum32() != storedCrc {
            pngLogger.Warningf(nil, "Chunk [%s] at offset (%d): %s. Continuing.", chunkType, position, ErrCrcMismatch.Error())
        }

        cs.chunks = append(cs.chunks, &Chunk{
            Type: chunkType,
            Data: chunkData,
        })

        position += 8 + length + 4
    }

    return cs, nil
}

// Bytes re-emits the stream. Every chunk CRC is recomputed.
func (cs *ChunkSlice) Bytes() []byte {
    b := new(bytes.Buffer)
    b.Write(pngSignature)

    for _, c := range cs.chunks {
        c.WriteTo(b)
    }

    return b.Bytes()
}

// Extract returns the EXIF payload, starting at the TIFF header. A modern
// eXIf chunk is preferred; otherwise the legacy zTXt profile is decoded.
func (cs *ChunkSlice) Extract() (rawExif []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    var ztxtChunk *Chunk

    for _, c := range cs.chunks {
        if c.Type == exifChunkType {
            return c.Data, nil
        }

        if c.Type == ztxtChunkType && ztxtChunk == nil && isExifZtxt(c.Data) == true {
            ztxtChunk = c
        }
    }

    if ztxtChunk == nil {
        log.Panic(ErrNoExif)
    }

    rawExif, err = decodeZtxtExif(ztxtChunk.Data)
    log.PanicIf(err)

    return rawExif, nil
}

// Replace installs the payload as an eXIf chunk. An existing EXIF-bearing
// chunk (eXIf or legacy zTXt) is replaced in place; otherwise the chunk is
// inserted directly after IHDR.
func (cs *ChunkSlice) Replace(rawExif []byte) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    exifChunk := &Chunk{
        Type: exifChunkType,
        Data: rawExif,
    }

    for i, c := range cs.chunks {
        if c.Type == exifChunkType || (c.Type == ztxtChunkType && isExifZtxt(c.Data) == true) {
            cs.chunks[i] = exifChunk
            return nil
        }
    }

    for i, c := range cs.chunks {
        if c.Type == "IHDR" {
            chunks := make([]*Chunk, 0, len(cs.chunks)+1)
            chunks = append(chunks, cs.chunks[:i+1]...)
            chunks = append(chunks, exifChunk)
            chunks = append(chunks, cs.chunks[i+1:]...)
            cs.chunks = chunks

            return nil
        }
    }

    log.Panicf("no IHDR chunk; can not place the eXIf chunk")

    // Never called.
    return nil
}

// Clear drops every EXIF-bearing chunk.
func (cs *ChunkSlice) Clear() {
    chunks := make([]*Chunk, 0, len(cs.chunks))

    for _, c := range cs.chunks {
        if c.Type == exifChunkType {
            continue
        } else if c.Type == ztxtChunkType && isExifZtxt(c.Data) == true {
            continue
        }

        chunks = append(chunks, c)
    }

    cs.chunks = chunks
}

// Extract returns the EXIF payload carried by the PNG stream.
func Extract(data []byte) (rawExif []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    cs, err := ParseBytes(data)
    log.PanicIf(err)

    rawExif, err = cs.Extract()
    log.PanicIf(err)

    return rawExif, nil
}

// Replace returns a new PNG stream carrying the payload in an eXIf chunk.
func Replace(data []byte, rawExif []byte) (newData []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    cs, err := ParseBytes(data)
    log.PanicIf(err)

    err = cs.Replace(rawExif)
    log.PanicIf(err)

    return cs.Bytes(), nil
}

// Clear returns a new PNG stream with every EXIF carrier removed.
func Clear(data []byte) (newData []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    cs, err := ParseBytes(data)
    log.PanicIf(err)

    cs.Clear()

    return cs.Bytes(), nil
}

func isExifZtxt(data []byte) bool {
    i := bytes.IndexByte(data, 0)
    if i == -1 {
        return false
    }

    return string(data[:i]) == exifProfileKeyword
}

// decodeZtxtExif recovers the raw EXIF payload from a legacy zTXt profile:
// keyword, NUL, compression method, then a deflate stream holding the ASCII
// profile ("exif", a space-padded decimal length, and hex bytes wrapped with
// newlines).
func decodeZtxtExif(data []byte) (rawExif []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    i := bytes.IndexByte(data, 0)
    if i == -1 || i+2 > len(data) {
        log.Panic(ErrNoExif)
    }

    if compressionMethod := data[i+1]; compressionMethod != 0 {
        log.Panicf("ztxt compression method (%d) not supported", compressionMethod)
    }

    zr, err := zlib.NewReader(bytes.NewReader(data[i+2:]))
    log.PanicIf(err)

    defer zr.Close()

    profile, err := ioutil.ReadAll(zr)
    log.PanicIf(err)

    rawExif, err = decodeExifProfile(string(profile))
    log.PanicIf(err)

    return rawExif, nil
}

func decodeExifProfile(profile string) (rawExif []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    trimmed := strings.TrimSpace(profile)

    if strings.HasPrefix(trimmed, "exif") == false {
        log.Panic(ErrNoExif)
    }

    trimmed = strings.TrimSpace(trimmed[len("exif"):])

    // The length line is a spaces-padded decimal.
    newline := strings.IndexByte(trimmed, '\n')
    if newline == -1 {
        log.Panic(ErrNoExif)
    }

    declaredLength, err := strconv.Atoi(strings.TrimSpace(trimmed[:newline]))
    log.PanicIf(err)

    // The hex body wraps with newlines; some corpora include stray 0x0a
    // bytes. Drop all whitespace before decoding.
    hexBody := strings.Map(func(r rune) rune {
        if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
            return -1
        }

        return r
    }, trimmed[newline+1:])

    decoded, err := hex.DecodeString(hexBody)
    log.PanicIf(err)

    if len(decoded) != declaredLength {
        pngLogger.Warningf(nil, "Profile declares (%d) bytes but (%d) were decoded.", declaredLength, len(decoded))
    }

    // Historic profiles may include the APP1 signature before the TIFF
    // header.
    if start := findTiffHeader(decoded); start > 0 {
        decoded = decoded[start:]
    } else if start == -1 {
        log.Panic(ErrNoExif)
    }

    return decoded, nil
}

func findTiffHeader(data []byte) int {
    limit := len(data) - 4
    if limit > 64 {
        limit = 64
    }

    for i := 0; i <= limit; i++ {
        if data[i] == 'I' && data[i+1] == 'I' && data[i+2] == 0x2a && data[i+3] == 0x00 {
            return i
        }

        if data[i] == 'M' && data[i+1] == 'M' && data[i+2] == 0x00 && data[i+3] == 0x2a {
            return i
        }
    }

    return -1
}
