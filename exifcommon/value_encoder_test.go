package exifcommon

import (
    "bytes"
    "reflect"
    "testing"

    "encoding/binary"

    "github.com/dsoprea/go-logging"
)

func TestValueEncoder_encodeAscii(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    ve := NewValueEncoder(binary.LittleEndian)

    ed, err := ve.Encode("hi")
    log.PanicIf(err)

    if ed.Type != TypeAscii {
        t.Fatalf("type not correct: (%d)", ed.Type)
    } else if ed.UnitCount != 3 {
        t.Fatalf("the terminator must be counted: (%d)", ed.UnitCount)
    } else if bytes.Equal(ed.Encoded, []byte{'h', 'i', 0}) == false {
        t.Fatalf("encoding not correct: %v", ed.Encoded)
    }
}

func TestValueEncoder_encodeShorts(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    ve := NewValueEncoder(binary.BigEndian)

    ed, err := ve.Encode([]uint16{1, 2})
    log.PanicIf(err)

    if ed.Type != TypeShort {
        t.Fatalf("type not correct: (%d)", ed.Type)
    } else if bytes.Equal(ed.Encoded, []byte{0x00, 0x01, 0x00, 0x02}) == false {
        t.Fatalf("encoding not correct: %v", ed.Encoded)
    }
}

func TestValueEncoder_encodeRationals(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    ve := NewValueEncoder(binary.LittleEndian)

    ed, err := ve.Encode([]Rational{{Numerator: 1, Denominator: 10}})
    log.PanicIf(err)

    if ed.Type != TypeRational {
        t.Fatalf("type not correct: (%d)", ed.Type)
    } else if ed.UnitCount != 1 {
        t.Fatalf("unit-count not correct: (%d)", ed.UnitCount)
    } else if bytes.Equal(ed.Encoded, []byte{0x01, 0x00, 0x00, 0x00, 0x0a, 0x00, 0x00, 0x00}) == false {
        t.Fatalf("encoding not correct: %v", ed.Encoded)
    }
}

func TestValueEncoder_EncodeWithType_undefined(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    ve := NewValueEncoder(binary.LittleEndian)

    raw := []byte{0x12, 0x34, 0x56}

    ed, err := ve.EncodeWithType(TypeUndefined, raw)
    log.PanicIf(err)

    if ed.Type != TypeUndefined {
        t.Fatalf("type not correct: (%d)", ed.Type)
    } else if bytes.Equal(ed.Encoded, raw) == false {
        t.Fatalf("undefined data must pass through verbatim")
    }
}

func TestParser_RoundTrip(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    parser := new(Parser)

    for _, byteOrder := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
        ve := NewValueEncoder(byteOrder)

        values := []interface{}{
            []uint8{1, 2, 3},
            "abc",
            []uint16{4, 5},
            []uint32{6},
            []Rational{{Numerator: 7, Denominator: 8}},
            []int8{-1, 2},
            []int16{-3},
            []int32{-4},
            []SignedRational{{Numerator: -5, Denominator: 6}},
            []float32{1.5},
            []float64{-2.25},
        }

        for _, value := range values {
            ed, err := ve.Encode(value)
            log.PanicIf(err)

            recovered, err := parser.ParseValue(ed.Type, ed.Encoded, ed.UnitCount, byteOrder)
            log.PanicIf(err)

            if reflect.DeepEqual(recovered, value) == false {
                t.Fatalf("round-trip failed for [%v]: [%v]", value, recovered)
            }
        }
    }
}

func TestTypeSizes(t *testing.T) {
    expected := map[TagTypePrimitive]int{
        TypeByte:           1,
        TypeAscii:          1,
        TypeShort:          2,
        TypeLong:           4,
        TypeRational:       8,
        TypeSignedByte:     1,
        TypeUndefined:      1,
        TypeSignedShort:    2,
        TypeSignedLong:     4,
        TypeSignedRational: 8,
        TypeFloat:          4,
        TypeDouble:         8,
    }

    for tagType, size := range expected {
        if tagType.Size() != size {
            t.Fatalf("size of type [%s] not correct: (%d)", tagType, tagType.Size())
        }
    }

    if TagTypePrimitive(13).IsValid() == true {
        t.Fatalf("format (13) must be invalid")
    }
}
