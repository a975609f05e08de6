package exifcommon

import (
    "bytes"
    "testing"

    "encoding/binary"

    "github.com/dsoprea/go-logging"
)

func TestBinaryCursor_ReadLittleEndian(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    bc := NewBinaryCursorWithBytes([]byte{0x2a, 0x00, 0x78, 0x56, 0x34, 0x12}, binary.LittleEndian)

    u16, err := bc.ReadUint16()
    log.PanicIf(err)

    if u16 != 0x002a {
        t.Fatalf("uint16 not decoded correctly: (0x%04x)", u16)
    }

    u32, err := bc.ReadUint32()
    log.PanicIf(err)

    if u32 != 0x12345678 {
        t.Fatalf("uint32 not decoded correctly: (0x%08x)", u32)
    }

    if bc.Remaining() != 0 {
        t.Fatalf("remaining not correct: (%d)", bc.Remaining())
    }
}

func TestBinaryCursor_ReadBigEndian(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    bc := NewBinaryCursorWithBytes([]byte{0x00, 0x2a, 0x12, 0x34, 0x56, 0x78}, binary.BigEndian)

    u16, err := bc.ReadUint16()
    log.PanicIf(err)

    if u16 != 0x002a {
        t.Fatalf("uint16 not decoded correctly: (0x%04x)", u16)
    }

    u32, err := bc.ReadUint32()
    log.PanicIf(err)

    if u32 != 0x12345678 {
        t.Fatalf("uint32 not decoded correctly: (0x%08x)", u32)
    }
}

func TestBinaryCursor_ReadRational(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    bc := NewBinaryCursorWithBytes([]byte{0x01, 0x00, 0x00, 0x00, 0x0a, 0x00, 0x00, 0x00}, binary.LittleEndian)

    r, err := bc.ReadRational()
    log.PanicIf(err)

    if r.Numerator != 1 || r.Denominator != 10 {
        t.Fatalf("rational not decoded correctly: (%d)/(%d)", r.Numerator, r.Denominator)
    }
}

func TestBinaryCursor_Truncated(t *testing.T) {
    bc := NewBinaryCursorWithBytes([]byte{0x01, 0x02}, binary.LittleEndian)

    _, err := bc.ReadUint32()
    if err == nil {
        t.Fatalf("expected truncation error")
    } else if log.Is(err, ErrTruncated) == false {
        t.Fatalf("wrong error for truncated read: %v", err)
    }
}

func TestBinaryCursor_SeekAndWrite(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    bc := NewBinaryCursor(binary.BigEndian)

    err := bc.WriteUint32(0x11223344)
    log.PanicIf(err)

    err = bc.WriteUint16(0x5566)
    log.PanicIf(err)

    if bc.Size() != 6 {
        t.Fatalf("size not correct: (%d)", bc.Size())
    }

    err = bc.SeekAbsolute(4)
    log.PanicIf(err)

    if bc.Position() != 4 {
        t.Fatalf("position not correct: (%d)", bc.Position())
    }

    u16, err := bc.ReadUint16()
    log.PanicIf(err)

    if u16 != 0x5566 {
        t.Fatalf("read-back not correct: (0x%04x)", u16)
    }

    expected := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
    if bytes.Equal(bc.Bytes(), expected) == false {
        t.Fatalf("buffer not correct: %v", bc.Bytes())
    }
}
