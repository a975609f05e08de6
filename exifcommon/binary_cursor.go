package exifcommon

import (
    "bytes"
    "errors"
    "io"

    "encoding/binary"

    "github.com/dsoprea/go-logging"
    "github.com/dsoprea/go-utility/v2/filesystem"
)

var (
    cursorLogger = log.NewLogger("exifcommon.binary_cursor")
)

var (
    // ErrTruncated is used when a read would cross the end of the buffer.
    ErrTruncated = errors.New("read past end of buffer")
)

// BinaryCursor wraps a growable byte buffer and a position, and reads and
// writes fixed-width values under a single configured byte order. All byte-
// order knowledge in this project lives here.
type BinaryCursor struct {
    sb        *rifs.SeekableBuffer
    byteOrder binary.ByteOrder
    size      int64
}

// NewBinaryCursor returns a cursor over an empty, growable buffer.
func NewBinaryCursor(byteOrder binary.ByteOrder) *BinaryCursor {
    return &BinaryCursor{
        sb:        rifs.NewSeekableBuffer(),
        byteOrder: byteOrder,
    }
}

// NewBinaryCursorWithBytes returns a cursor positioned at the front of `data`.
func NewBinaryCursorWithBytes(data []byte, byteOrder binary.ByteOrder) *BinaryCursor {
    return &BinaryCursor{
        sb:        rifs.NewSeekableBufferWithBytes(data),
        byteOrder: byteOrder,
        size:      int64(len(data)),
    }
}

// ByteOrder returns the configured byte order.
func (bc *BinaryCursor) ByteOrder() binary.ByteOrder {
    return bc.byteOrder
}

// SetByteOrder reconfigures the byte order for all subsequent reads and
// writes.
func (bc *BinaryCursor) SetByteOrder(byteOrder binary.ByteOrder) {
    bc.byteOrder = byteOrder
}

// Position returns the current absolute offset.
func (bc *BinaryCursor) Position() (position int64) {
    position, err := bc.sb.Seek(0, io.SeekCurrent)
    log.PanicIf(err)

    return position
}

// Remaining returns the number of bytes between the current position and the
// end of the buffer.
func (bc *BinaryCursor) Remaining() int64 {
    return bc.size - bc.Position()
}

// SeekAbsolute moves the cursor to the given offset.
func (bc *BinaryCursor) SeekAbsolute(offset int64) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    _, err = bc.sb.Seek(offset, io.SeekStart)
    log.PanicIf(err)

    return nil
}

// SeekRelative moves the cursor by the given delta.
func (bc *BinaryCursor) SeekRelative(delta int64) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    _, err = bc.sb.Seek(delta, io.SeekCurrent)
    log.PanicIf(err)

    return nil
}

// ReadBytes reads exactly `count` bytes.
func (bc *BinaryCursor) ReadBytes(count int) (raw []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if bc.Remaining() < int64(count) {
        log.Panic(ErrTruncated)
    }

    raw = make([]byte, count)

    _, err = io.ReadFull(bc.sb, raw)
    log.PanicIf(err)

    return raw, nil
}

// ReadUint8 reads one byte.
func (bc *BinaryCursor) ReadUint8() (value uint8, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    raw, err := bc.ReadBytes(1)
    log.PanicIf(err)

    return raw[0], nil
}

// ReadUint16 reads one 16-bit value under the configured byte order.
func (bc *BinaryCursor) ReadUint16() (value uint16, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    raw, err := bc.ReadBytes(2)
    log.PanicIf(err)

    return bc.byteOrder.Uint16(raw), nil
}

// ReadUint32 reads one 32-bit value under the configured byte order.
func (bc *BinaryCursor) ReadUint32() (value uint32, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    raw, err := bc.ReadBytes(4)
    log.PanicIf(err)

    return bc.byteOrder.Uint32(raw), nil
}

// ReadInt8 reads one signed byte.
func (bc *BinaryCursor) ReadInt8() (value int8, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    u, err := bc.ReadUint8()
    log.PanicIf(err)

    return int8(u), nil
}

// ReadInt16 reads one signed 16-bit value.
func (bc *BinaryCursor) ReadInt16() (value int16, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    u, err := bc.ReadUint16()
    log.PanicIf(err)

    return int16(u), nil
}

// ReadInt32 reads one signed 32-bit value.
func (bc *BinaryCursor) ReadInt32() (value int32, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    u, err := bc.ReadUint32()
    log.PanicIf(err)

    return int32(u), nil
}

// ReadFloat32 reads one IEEE-754 single under the configured byte order.
func (bc *BinaryCursor) ReadFloat32() (value float32, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    raw, err := bc.ReadBytes(4)
    log.PanicIf(err)

    err = binary.Read(bytes.NewReader(raw), bc.byteOrder, &value)
    log.PanicIf(err)

    return value, nil
}

// ReadFloat64 reads one IEEE-754 double under the configured byte order.
func (bc *BinaryCursor) ReadFloat64() (value float64, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    raw, err := bc.ReadBytes(8)
    log.PanicIf(err)

    err = binary.Read(bytes.NewReader(raw), bc.byteOrder, &value)
    log.PanicIf(err)

    return value, nil
}

// ReadRational reads an unsigned rational (two 32-bit values).
func (bc *BinaryCursor) ReadRational() (value Rational, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    numerator, err := bc.ReadUint32()
    log.PanicIf(err)

    denominator, err := bc.ReadUint32()
    log.PanicIf(err)

    value = Rational{
        Numerator:   numerator,
        Denominator: denominator,
    }

    return value, nil
}

// ReadSignedRational reads a signed rational (two 32-bit values).
func (bc *BinaryCursor) ReadSignedRational() (value SignedRational, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    numerator, err := bc.ReadInt32()
    log.PanicIf(err)

    denominator, err := bc.ReadInt32()
    log.PanicIf(err)

    value = SignedRational{
        Numerator:   numerator,
        Denominator: denominator,
    }

    return value, nil
}

// WriteBytes appends or overwrites raw bytes at the current position.
func (bc *BinaryCursor) WriteBytes(raw []byte) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    _, err = bc.sb.Write(raw)
    log.PanicIf(err)

    if position := bc.Position(); position > bc.size {
        bc.size = position
    }

    return nil
}

// WriteUint8 writes one byte.
func (bc *BinaryCursor) WriteUint8(value uint8) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    err = bc.WriteBytes([]byte{value})
    log.PanicIf(err)

    return nil
}

// WriteUint16 writes one 16-bit value under the configured byte order.
func (bc *BinaryCursor) WriteUint16(value uint16) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    raw := make([]byte, 2)
    bc.byteOrder.PutUint16(raw, value)

    err = bc.WriteBytes(raw)
    log.PanicIf(err)

    return nil
}

// WriteUint32 writes one 32-bit value under the configured byte order.
func (bc *BinaryCursor) WriteUint32(value uint32) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    raw := make([]byte, 4)
    bc.byteOrder.PutUint32(raw, value)

    err = bc.WriteBytes(raw)
    log.PanicIf(err)

    return nil
}

// Bytes returns the full contents of the underlying buffer.
func (bc *BinaryCursor) Bytes() []byte {
    return bc.sb.Bytes()
}

// Size returns the total length of the underlying buffer.
func (bc *BinaryCursor) Size() int64 {
    return bc.size
}
