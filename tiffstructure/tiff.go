// Package tiffstructure adapts the TIFF container, which is itself the EXIF
// payload: extraction and replacement are identity transformations.
package tiffstructure

import (
    "errors"

    "github.com/dsoprea/go-logging"
)

var (
    tiffLogger = log.NewLogger("tiffstructure.tiff")
)

var (
    // ErrNotTiff is returned when the stream does not start with a TIFF
    // header.
    ErrNotTiff = errors.New("not tiff data")
)

func isTiff(data []byte) bool {
    if len(data) < 4 {
        return false
    }

    if data[0] == 'I' && data[1] == 'I' && data[2] == 0x2a && data[3] == 0x00 {
        return true
    }

    return data[0] == 'M' && data[1] == 'M' && data[2] == 0x00 && data[3] == 0x2a
}

// Extract returns the whole buffer; a TIFF stream begins at its own TIFF
// header.
func Extract(data []byte) (rawExif []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if isTiff(data) == false {
        log.Panic(ErrNotTiff)
    }

    return data, nil
}

// Replace returns the new payload; there is no framing to repair.
func Replace(data []byte, rawExif []byte) (newData []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if isTiff(data) == false {
        log.Panic(ErrNotTiff)
    }

    if isTiff(rawExif) == false {
        log.Panic(ErrNotTiff)
    }

    newData = make([]byte, len(rawExif))
    copy(newData, rawExif)

    return newData, nil
}

// Clear replaces the stream with a payload holding a single empty primary
// IFD, under the original stream's byte order.
func Clear(data []byte) (newData []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if isTiff(data) == false {
        log.Panic(ErrNotTiff)
    }

    // Header, an entry count of zero, and a zero next-IFD link.
    if data[0] == 'I' {
        return []byte{
            'I', 'I', 0x2a, 0x00,
            0x08, 0x00, 0x00, 0x00,
            0x00, 0x00,
            0x00, 0x00, 0x00, 0x00,
        }, nil
    }

    return []byte{
        'M', 'M', 0x00, 0x2a,
        0x00, 0x00, 0x00, 0x08,
        0x00, 0x00,
        0x00, 0x00, 0x00, 0x00,
    }, nil
}
