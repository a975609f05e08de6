package exif

import (
    "bytes"
    "errors"

    "encoding/binary"

    "github.com/dsoprea/go-logging"
)

var (
    exifLogger = log.NewLogger("exif.exif")
)

const (
    // ExifSignature prefixes the EXIF payload inside a JPEG APP1 segment and
    // a HEIF Exif item.
    ExifSignature = "Exif\x00\x00"

    // ExifDefaultFirstIfdOffset is the IFD0 offset we write: directly
    // following the eight header bytes.
    ExifDefaultFirstIfdOffset = uint32(8)

    // TiffHeaderSize is the byte-order mark, the magic, and the IFD0 offset.
    TiffHeaderSize = 8

    tiffMagic = uint16(0x002a)
)

var (
    // ErrNoExif is returned when no TIFF header could be found.
    ErrNoExif = errors.New("no exif data")

    // ErrBadByteOrder is returned when the byte-order mark is neither "II"
    // nor "MM".
    ErrBadByteOrder = errors.New("byte-order mark is neither II nor MM")

    // ErrBadMagic is returned when the two bytes following the byte-order
    // mark are not 0x002a under the declared order.
    ErrBadMagic = errors.New("tiff header magic mismatch")

    // ErrOffsetCycle is returned when an IFD chain revisits an offset.
    ErrOffsetCycle = errors.New("ifd chain revisits an offset")
)

var (
    bigEndianBom    = []byte{'M', 'M'}
    littleEndianBom = []byte{'I', 'I'}
)

// ExifHeader is the parsed 8-byte TIFF header.
type ExifHeader struct {
    ByteOrder      binary.ByteOrder
    FirstIfdOffset uint32
}

// ParseExifHeader parses the TIFF header at the front of `data`: the byte-
// order mark, the magic, and the IFD0 offset. All offsets inside the payload
// are relative to the first byte of this header.
func ParseExifHeader(data []byte) (eh ExifHeader, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if len(data) < TiffHeaderSize {
        log.Panic(ErrNoExif)
    }

    var byteOrder binary.ByteOrder
    if bytes.Equal(data[:2], littleEndianBom) == true {
        byteOrder = binary.LittleEndian
    } else if bytes.Equal(data[:2], bigEndianBom) == true {
        byteOrder = binary.BigEndian
    } else {
        log.Panic(ErrBadByteOrder)
    }

    if byteOrder.Uint16(data[2:4]) != tiffMagic {
        log.Panic(ErrBadMagic)
    }

    eh = ExifHeader{
        ByteOrder:      byteOrder,
        FirstIfdOffset: byteOrder.Uint32(data[4:8]),
    }

    return eh, nil
}

// SearchAndExtractExif scans the buffer for a TIFF header and returns the
// slice starting there. It is how we find the payload inside carriers that
// pad or prefix it.
func SearchAndExtractExif(data []byte) (rawExif []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    // Search for the beginning of the EXIF information. The EXIF is near the
    // beginning of most files, so this likely doesn't have a high cost.

    for position := 0; position+TiffHeaderSize <= len(data); position++ {
        if _, err := ParseExifHeader(data[position:]); err == nil {
            return data[position:], nil
        }

        if position >= 512 {
            break
        }
    }

    log.Panic(ErrNoExif)

    // Never called.
    return nil, nil
}

// ParseExifPayload decodes a complete EXIF payload (starting at the TIFF
// header) into an IfdTree.
func ParseExifPayload(data []byte) (tree *IfdTree, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    eh, err := ParseExifHeader(data)
    log.PanicIf(err)

    ie := NewIfdEnumerate(data, eh.ByteOrder)

    tree, err = ie.Collect(eh.FirstIfdOffset)
    log.PanicIf(err)

    return tree, nil
}

// BuildExifPayload serializes the tree back to a complete EXIF payload under
// the tree's byte order.
func BuildExifPayload(tree *IfdTree) (data []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    ibe := NewIfdByteEncoder()

    data, err = ibe.EncodeToExifPayload(tree)
    log.PanicIf(err)

    return data, nil
}
