package exifcommon

import (
    "bytes"
    "reflect"

    "encoding/binary"

    "github.com/dsoprea/go-logging"
)

var (
    encoderLogger = log.NewLogger("exifcommon.value_encoder")
)

// EncodedData encapsulates the compound output of an encoding operation.
type EncodedData struct {
    // Type is the data format of the encoded value.
    Type TagTypePrimitive

    // Encoded is the raw encoded bytes.
    Encoded []byte

    // UnitCount is the number of atomic units of Type in Encoded.
    UnitCount uint32
}

// ValueEncoder knows how to encode values of every TIFF data format to raw
// bytes under a given byte order.
type ValueEncoder struct {
    byteOrder binary.ByteOrder
}

// NewValueEncoder returns a new ValueEncoder.
func NewValueEncoder(byteOrder binary.ByteOrder) *ValueEncoder {
    return &ValueEncoder{
        byteOrder: byteOrder,
    }
}

func (ve *ValueEncoder) encodeBytes(value []uint8) (ed EncodedData, err error) {
    ed.Type = TypeByte
    ed.Encoded = []byte(value)
    ed.UnitCount = uint32(len(value))

    return ed, nil
}

// encodeAscii encodes the string with a NUL terminator. The terminator is
// counted in the unit count.
func (ve *ValueEncoder) encodeAscii(value string) (ed EncodedData, err error) {
    ed.Type = TypeAscii

    ed.Encoded = []byte(value)
    ed.Encoded = append(ed.Encoded, 0)

    ed.UnitCount = uint32(len(ed.Encoded))

    return ed, nil
}

func (ve *ValueEncoder) encodeShorts(value []uint16) (ed EncodedData, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    ed.UnitCount = uint32(len(value))
    ed.Encoded = make([]byte, ed.UnitCount*2)

    for i := uint32(0); i < ed.UnitCount; i++ {
        ve.byteOrder.PutUint16(ed.Encoded[i*2:(i+1)*2], value[i])
    }

    ed.Type = TypeShort

    return ed, nil
}

func (ve *ValueEncoder) encodeLongs(value []uint32) (ed EncodedData, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    ed.UnitCount = uint32(len(value))
    ed.Encoded = make([]byte, ed.UnitCount*4)

    for i := uint32(0); i < ed.UnitCount; i++ {
        ve.byteOrder.PutUint32(ed.Encoded[i*4:(i+1)*4], value[i])
    }

    ed.Type = TypeLong

    return ed, nil
}

func (ve *ValueEncoder) encodeRationals(value []Rational) (ed EncodedData, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    ed.UnitCount = uint32(len(value))
    ed.Encoded = make([]byte, ed.UnitCount*8)

    for i := uint32(0); i < ed.UnitCount; i++ {
        ve.byteOrder.PutUint32(ed.Encoded[i*8+0:i*8+4], value[i].Numerator)
        ve.byteOrder.PutUint32(ed.Encoded[i*8+4:i*8+8], value[i].Denominator)
    }

    ed.Type = TypeRational

    return ed, nil
}

func (ve *ValueEncoder) encodeSignedBytes(value []int8) (ed EncodedData, err error) {
    ed.UnitCount = uint32(len(value))
    ed.Encoded = make([]byte, ed.UnitCount)

    for i := uint32(0); i < ed.UnitCount; i++ {
        ed.Encoded[i] = byte(value[i])
    }

    ed.Type = TypeSignedByte

    return ed, nil
}

func (ve *ValueEncoder) encodeUndefined(value []byte) (ed EncodedData, err error) {
    // Undefined values are raw bytes with no interpretation.
    ed.Type = TypeUndefined
    ed.Encoded = value
    ed.UnitCount = uint32(len(value))

    return ed, nil
}

func (ve *ValueEncoder) encodeSignedShorts(value []int16) (ed EncodedData, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    ed.UnitCount = uint32(len(value))
    ed.Encoded = make([]byte, ed.UnitCount*2)

    for i := uint32(0); i < ed.UnitCount; i++ {
        ve.byteOrder.PutUint16(ed.Encoded[i*2:(i+1)*2], uint16(value[i]))
    }

    ed.Type = TypeSignedShort

    return ed, nil
}

func (ve *ValueEncoder) encodeSignedLongs(value []int32) (ed EncodedData, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    b := bytes.NewBuffer(make([]byte, 0, 4*len(value)))

    err = binary.Write(b, ve.byteOrder, value)
    log.PanicIf(err)

    ed.Type = TypeSignedLong
    ed.UnitCount = uint32(len(value))
    ed.Encoded = b.Bytes()

    return ed, nil
}

func (ve *ValueEncoder) encodeSignedRationals(value []SignedRational) (ed EncodedData, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    b := bytes.NewBuffer(make([]byte, 0, 8*len(value)))

    err = binary.Write(b, ve.byteOrder, value)
    log.PanicIf(err)

    ed.Type = TypeSignedRational
    ed.UnitCount = uint32(len(value))
    ed.Encoded = b.Bytes()

    return ed, nil
}

func (ve *ValueEncoder) encodeFloats(value []float32) (ed EncodedData, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    b := bytes.NewBuffer(make([]byte, 0, 4*len(value)))

    err = binary.Write(b, ve.byteOrder, value)
    log.PanicIf(err)

    ed.Type = TypeFloat
    ed.UnitCount = uint32(len(value))
    ed.Encoded = b.Bytes()

    return ed, nil
}

func (ve *ValueEncoder) encodeDoubles(value []float64) (ed EncodedData, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    b := bytes.NewBuffer(make([]byte, 0, 8*len(value)))

    err = binary.Write(b, ve.byteOrder, value)
    log.PanicIf(err)

    ed.Type = TypeDouble
    ed.UnitCount = uint32(len(value))
    ed.Encoded = b.Bytes()

    return ed, nil
}

// Encode returns bytes for the given value, infering type from the actual
// value. This does not support `TypeUndefined`; undefined values must be
// encoded with EncodeWithType.
func (ve *ValueEncoder) Encode(value interface{}) (ed EncodedData, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    switch t := value.(type) {
    case []byte:
        ed, err = ve.encodeBytes(t)
        log.PanicIf(err)
    case string:
        ed, err = ve.encodeAscii(t)
        log.PanicIf(err)
    case []uint16:
        ed, err = ve.encodeShorts(t)
        log.PanicIf(err)
    case []uint32:
        ed, err = ve.encodeLongs(t)
        log.PanicIf(err)
    case []Rational:
        ed, err = ve.encodeRationals(t)
        log.PanicIf(err)
    case []int8:
        ed, err = ve.encodeSignedBytes(t)
        log.PanicIf(err)
    case []int16:
        ed, err = ve.encodeSignedShorts(t)
        log.PanicIf(err)
    case []int32:
        ed, err = ve.encodeSignedLongs(t)
        log.PanicIf(err)
    case []SignedRational:
        ed, err = ve.encodeSignedRationals(t)
        log.PanicIf(err)
    case []float32:
        ed, err = ve.encodeFloats(t)
        log.PanicIf(err)
    case []float64:
        ed, err = ve.encodeDoubles(t)
        log.PanicIf(err)
    default:
        log.Panicf("value not encodable: [%s] [%v]", reflect.TypeOf(value), value)
    }

    return ed, nil
}

// EncodeWithType encodes under an explicit type. This is how UNDEFINED data
// ([]byte carried verbatim) is distinguished from BYTE data.
func (ve *ValueEncoder) EncodeWithType(tagType TagTypePrimitive, value interface{}) (ed EncodedData, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if tagType == TypeUndefined {
        raw, ok := value.([]byte)
        if ok == false {
            log.Panic(ErrWrongType)
        }

        ed, err = ve.encodeUndefined(raw)
        log.PanicIf(err)

        return ed, nil
    }

    ed, err = ve.Encode(value)
    log.PanicIf(err)

    if ed.Type != tagType {
        log.Panic(ErrWrongType)
    }

    return ed, nil
}
