// Package jxlstructure locates and rewrites the Exif box inside a JPEG XL
// ISOBMFF container. Raw codestreams have no box structure to carry EXIF and
// are rejected.
package jxlstructure

import (
    "bytes"
    "errors"

    "encoding/binary"

    "github.com/dsoprea/go-logging"
)

var (
    jxlLogger = log.NewLogger("jxlstructure.jxl")
)

var (
    // ErrNotJxl is returned when the stream is neither a JXL container nor a
    // raw codestream.
    ErrNotJxl = errors.New("not jxl data")

    // ErrNoExif is returned when no Exif box is present.
    ErrNoExif = errors.New("no exif data")

    // ErrUnsupportedJxl is returned for raw codestreams, which would have to
    // be rewrapped into a container to carry EXIF.
    ErrUnsupportedJxl = errors.New("raw jxl codestream can not carry exif")
)

var (
    // jxlSignatureBox is the fixed 12-byte signature box opening every JXL
    // container.
    jxlSignatureBox = []byte{0x00, 0x00, 0x00, 0x0c, 'J', 'X', 'L', ' ', 0x0d, 0x0a, 0x87, 0x0a}
)

const (
    boxExif = "Exif"
    boxFtyp = "ftyp"

    codestreamBox        = "jxlc"
    partialCodestreamBox = "jxlp"
)

// Box is one top-level ISOBMFF box.
type Box struct {
    BoxType string
    Data    []byte

    // ext records whether the box was read with a 64-bit size header, so
    // that the original form is preserved on re-emission.
    ext bool
}

// JxlMedia is a parsed JXL container.
type JxlMedia struct {
    boxes []*Box
}

// Boxes returns the top-level boxes in file order.
func (jm *JxlMedia) Boxes() []*Box {
    return jm.boxes
}

// ParseBytes splits a JXL container into its top-level boxes.
func ParseBytes(data []byte) (jm *JxlMedia, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if len(data) >= 2 && data[0] == 0xff && data[1] == 0x0a {
        log.Panic(ErrUnsupportedJxl)
    }

    if len(data) < len(jxlSignatureBox) || bytes.Equal(data[:len(jxlSignatureBox)], jxlSignatureBox) == false {
        log.Panic(ErrNotJxl)
    }

    jm = &JxlMedia{
        boxes: make([]*Box, 0),
    }

    position := 0
    for position+8 <= len(data) {
        size := int64(binary.BigEndian.Uint32(data[position : position+4]))
        boxType := string(data[position+4 : position+8])

        headerSize := int64(8)
        if size == 1 {
            if position+16 > len(data) {
                log.Panicf("truncated extended box header at offset (%d)", position)
            }

            size = int64(binary.BigEndian.Uint64(data[position+8 : position+16]))
            headerSize = 16
        } else if size == 0 {
            // The box extends to the end of the stream.
            size = int64(len(data) - position)
        }

        if size < headerSize || int64(position)+size > int64(len(data)) {
            log.Panicf("box [%s] extends beyond the stream", boxType)
        }

        boxData := make([]byte, size-headerSize)
        copy(boxData, data[int64(position)+headerSize:int64(position)+size])

        jm.boxes = append(jm.boxes, &Box{
            BoxType: boxType,
            Data:    boxData,
            ext:     headerSize == 16,
        })

        position += int(size)
    }

    if len(jm.boxes) < 2 || jm.boxes[1].BoxType != boxFtyp {
        log.Panic(ErrNotJxl)
    }

    return jm, nil
}

// Bytes re-emits the container, recomputing every box size.
func (jm *JxlMedia) Bytes() []byte {
    b := new(bytes.Buffer)

    for _, box := range jm.boxes {
        if box.ext == true {
            size := make([]byte, 8)
            binary.BigEndian.PutUint64(size, uint64(len(box.Data))+16)

            b.Write([]byte{0x00, 0x00, 0x00, 0x01})
            b.WriteString(box.BoxType)
            b.Write(size)
        } else {
            size := make([]byte, 4)
            binary.BigEndian.PutUint32(size, uint32(len(box.Data))+8)

            b.Write(size)
            b.WriteString(box.BoxType)
        }

        b.Write(box.Data)
    }

    return b.Bytes()
}

// Extract returns the EXIF payload, starting at the TIFF header. The Exif box
// opens with a 32-bit offset to the TIFF header (zero in everything we
// write).
func (jm *JxlMedia) Extract() (rawExif []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    for _, box := range jm.boxes {
        if box.BoxType != boxExif {
            continue
        }

        if len(box.Data) < 4 {
            log.Panic(ErrNoExif)
        }

        tiffHeaderOffset := int(binary.BigEndian.Uint32(box.Data[:4]))

        payload := box.Data[4:]
        if tiffHeaderOffset > len(payload) {
            log.Panic(ErrNoExif)
        }

        payload = payload[tiffHeaderOffset:]

        // Tolerate a stray APP1 signature in front of the TIFF header.
        if len(payload) >= 6 && string(payload[:6]) == "Exif\x00\x00" {
            payload = payload[6:]
        }

        return payload, nil
    }

    log.Panic(ErrNoExif)

    // Never called.
    return nil, nil
}

// Replace installs the payload into the Exif box (offset field zero),
// overwriting the existing box in place or inserting a new one in front of
// the codestream.
func (jm *JxlMedia) Replace(rawExif []byte) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    boxData := make([]byte, 4+len(rawExif))
    copy(boxData[4:], rawExif)

    exifBox := &Box{
        BoxType: boxExif,
        Data:    boxData,
    }

    for i, box := range jm.boxes {
        if box.BoxType == boxExif {
            jm.boxes[i] = exifBox
            return nil
        }
    }

    for i, box := range jm.boxes {
        if box.BoxType == codestreamBox || box.BoxType == partialCodestreamBox {
            boxes := make([]*Box, 0, len(jm.boxes)+1)
            boxes = append(boxes, jm.boxes[:i]...)
            boxes = append(boxes, exifBox)
            boxes = append(boxes, jm.boxes[i:]...)
            jm.boxes = boxes

            return nil
        }
    }

    jm.boxes = append(jm.boxes, exifBox)

    return nil
}

// Clear drops the Exif box.
func (jm *JxlMedia) Clear() {
    boxes := make([]*Box, 0, len(jm.boxes))

    for _, box := range jm.boxes {
        if box.BoxType == boxExif {
            continue
        }

        boxes = append(boxes, box)
    }

    jm.boxes = boxes
}

// Extract returns the EXIF payload carried by the JXL container.
func Extract(data []byte) (rawExif []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    jm, err := ParseBytes(data)
    log.PanicIf(err)

    rawExif, err = jm.Extract()
    log.PanicIf(err)

    return rawExif, nil
}

// Replace returns a new JXL container carrying the payload in its Exif box.
func Replace(data []byte, rawExif []byte) (newData []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    jm, err := ParseBytes(data)
    log.PanicIf(err)

    err = jm.Replace(rawExif)
    log.PanicIf(err)

    return jm.Bytes(), nil
}

// Clear returns a new JXL container with the Exif box removed.
func Clear(data []byte) (newData []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    jm, err := ParseBytes(data)
    log.PanicIf(err)

    jm.Clear()

    return jm.Bytes(), nil
}
