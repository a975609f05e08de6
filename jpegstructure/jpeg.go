// Package jpegstructure locates and rewrites the EXIF APP1 segment inside a
// JPEG stream, preserving every unrelated segment.
package jpegstructure

import (
    "bytes"
    "errors"

    "encoding/binary"

    "github.com/dsoprea/go-logging"
)

var (
    jpegLogger = log.NewLogger("jpegstructure.jpeg")
)

const (
    MarkerSoi   = byte(0xd8)
    MarkerEoi   = byte(0xd9)
    MarkerSos   = byte(0xda)
    MarkerApp1  = byte(0xe1)
    MarkerApp12 = byte(0xec)
    MarkerApp13 = byte(0xed)

    // exifPrefix opens the APP1 payload of the EXIF carrier.
    exifPrefix = "Exif\x00\x00"

    // maxSegmentDataLength is the largest payload a segment can carry: the
    // 16-bit length field covers itself plus the data.
    maxSegmentDataLength = 65535 - 2
)

var (
    // ErrNotJpeg is returned when the stream does not start with SOI.
    ErrNotJpeg = errors.New("not jpeg data")

    // ErrNoExif is returned when no EXIF APP1 segment is present.
    ErrNoExif = errors.New("no exif data")

    // ErrPayloadTooLarge is returned when the EXIF payload does not fit a
    // single APP1 segment. Multi-segment EXIF is not supported.
    ErrPayloadTooLarge = errors.New("exif payload too large for app1 segment")
)

// Segment is one marker segment. Scan data (everything from SOS onward,
// including EOI) is held verbatim in a single pseudo-segment with a zero
// marker.
type Segment struct {
    MarkerId byte
    Data     []byte
}

// IsExif returns true if this is the EXIF APP1 segment.
func (s *Segment) IsExif() bool {
    return s.MarkerId == MarkerApp1 && len(s.Data) >= len(exifPrefix) && string(s.Data[:len(exifPrefix)]) == exifPrefix
}

// SegmentList is a parsed JPEG stream.
type SegmentList struct {
    segments []*Segment
}

// Segments returns the segments in stream order.
func (sl *SegmentList) Segments() []*Segment {
    return sl.segments
}

// ParseBytes splits a JPEG stream into segments, stopping interpretation at
// SOS; the entropy-coded remainder is carried verbatim.
func ParseBytes(data []byte) (sl *SegmentList, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if len(data) < 2 || data[0] != 0xff || data[1] != MarkerSoi {
        log.Panic(ErrNotJpeg)
    }

    sl = &SegmentList{
        segments: make([]*Segment, 0),
    }

    position := 2
    for position < len(data) {
        if data[position] != 0xff {
            log.Panicf("expected marker prefix at offset (%d)", position)
        }

        if position+1 >= len(data) {
            log.Panicf("truncated marker at offset (%d)", position)
        }

        // Fill bytes before a marker are legal padding.
        for position+1 < len(data) && data[position+1] == 0xff {
            position++
        }

        if position+1 >= len(data) {
            log.Panicf("truncated marker at offset (%d)", position)
        }

        markerId := data[position+1]

        if markerId == MarkerSos {
            // Everything from SOS onward is opaque to us.
            scanData := make([]byte, len(data)-position)
            copy(scanData, data[position:])

            sl.segments = append(sl.segments, &Segment{
                MarkerId: 0,
                Data:     scanData,
            })

            break
        }

        if markerId == MarkerEoi || markerId == 0x01 || (markerId >= 0xd0 && markerId <= 0xd7) {
            // Standalone markers carry no length.
            sl.segments = append(sl.segments, &Segment{
                MarkerId: markerId,
            })

            position += 2
            continue
        }

        if position+4 > len(data) {
            log.Panicf("truncated segment length at offset (%d)", position)
        }

        length := int(binary.BigEndian.Uint16(data[position+2 : position+4]))
        if length < 2 {
            log.Panicf("invalid segment length (%d) at offset (%d)", length, position)
        }

        if position+2+length > len(data) {
            log.Panicf("segment [0x%02x] extends beyond the stream", markerId)
        }

        segmentData := make([]byte, length-2)
        copy(segmentData, data[position+4:position+2+length])

        sl.segments = append(sl.segments, &Segment{
            MarkerId: markerId,
            Data:     segmentData,
        })

        position += 2 + length
    }

    return sl, nil
}

// Bytes re-emits the stream. Segment lengths are recomputed.
func (sl *SegmentList) Bytes() (data []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    b := new(bytes.Buffer)
    b.Write([]byte{0xff, MarkerSoi})

    for _, s := range sl.segments {
        if s.MarkerId == 0 {
            // Scan data, verbatim.
            b.Write(s.Data)
            continue
        }

        if s.Data == nil {
            // Standalone marker.
            b.Write([]byte{0xff, s.MarkerId})
            continue
        }

        if len(s.Data) > maxSegmentDataLength {
            log.Panic(ErrPayloadTooLarge)
        }

        b.Write([]byte{0xff, s.MarkerId})

        length := make([]byte, 2)
        binary.BigEndian.PutUint16(length, uint16(len(s.Data)+2))
        b.Write(length)

        b.Write(s.Data)
    }

    return b.Bytes(), nil
}

// Extract returns the EXIF payload, starting at the TIFF header.
func (sl *SegmentList) Extract() (rawExif []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    for _, s := range sl.segments {
        if s.IsExif() == true {
            return s.Data[len(exifPrefix):], nil
        }
    }

    log.Panic(ErrNoExif)

    // Never called.
    return nil, nil
}

// Replace installs the payload into the EXIF APP1 segment, overwriting the
// existing one in place or inserting a new segment directly after SOI.
func (sl *SegmentList) Replace(rawExif []byte) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    segmentData := make([]byte, 0, len(exifPrefix)+len(rawExif))
    segmentData = append(segmentData, []byte(exifPrefix)...)
    segmentData = append(segmentData, rawExif...)

    if len(segmentData) > maxSegmentDataLength {
        log.Panic(ErrPayloadTooLarge)
    }

    exifSegment := &Segment{
        MarkerId: MarkerApp1,
        Data:     segmentData,
    }

    for i, s := range sl.segments {
        if s.IsExif() == true {
            sl.segments[i] = exifSegment
            return nil
        }
    }

    segments := make([]*Segment, 0, len(sl.segments)+1)
    segments = append(segments, exifSegment)
    segments = append(segments, sl.segments...)
    sl.segments = segments

    return nil
}

// Clear drops the EXIF APP1 segment.
func (sl *SegmentList) Clear() {
    sl.dropSegments(func(s *Segment) bool {
        return s.IsExif()
    })
}

// ClearApp12Segments drops every APP12 segment. Picture-info APP12 blocks can
// shadow the EXIF ImageDescription in some viewers.
func (sl *SegmentList) ClearApp12Segments() {
    sl.dropSegments(func(s *Segment) bool {
        return s.MarkerId == MarkerApp12
    })
}

// ClearApp13Segments drops every APP13 segment. Photoshop/IPTC APP13 blocks
// can shadow the EXIF ImageDescription in some viewers.
func (sl *SegmentList) ClearApp13Segments() {
    sl.dropSegments(func(s *Segment) bool {
        return s.MarkerId == MarkerApp13
    })
}

func (sl *SegmentList) dropSegments(predicate func(*Segment) bool) {
    segments := make([]*Segment, 0, len(sl.segments))

    for _, s := range sl.segments {
        if predicate(s) == true {
            continue
        }

        segments = append(segments, s)
    }

    sl.segments = segments
}

// Extract returns the EXIF payload carried by the JPEG stream.
func Extract(data []byte) (rawExif []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    sl, err := ParseBytes(data)
    log.PanicIf(err)

    rawExif, err = sl.Extract()
    log.PanicIf(err)

    return rawExif, nil
}

// Replace returns a new JPEG stream carrying the payload in its EXIF APP1
// segment.
func Replace(data []byte, rawExif []byte) (newData []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    sl, err := ParseBytes(data)
    log.PanicIf(err)

    err = sl.Replace(rawExif)
    log.PanicIf(err)

    newData, err = sl.Bytes()
    log.PanicIf(err)

    return newData, nil
}

// Clear returns a new JPEG stream with the EXIF APP1 segment removed.
func Clear(data []byte) (newData []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    sl, err := ParseBytes(data)
    log.PanicIf(err)

    sl.Clear()

    newData, err = sl.Bytes()
    log.PanicIf(err)

    return newData, nil
}
