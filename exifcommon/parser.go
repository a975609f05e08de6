package exifcommon

import (
    "bytes"

    "encoding/binary"

    "github.com/dsoprea/go-logging"
)

var (
    parserLogger = log.NewLogger("exifcommon.parser")
)

// Parser knows how to decode all of the TIFF data formats from raw bytes that
// have already been extracted from an entry's inline field or its offset
// target.
type Parser struct {
}

// ParseBytes knows how to decode a BYTE vector.
func (p *Parser) ParseBytes(data []byte, unitCount uint32) (value []uint8, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    count := int(unitCount)

    if len(data) < count {
        log.Panic(ErrNotEnoughData)
    }

    value = []uint8(data[:count])

    return value, nil
}

// ParseAscii knows how to decode an ASCII vector to a string, dropping the
// terminating NUL. Not all producers write the terminator; a missing one is
// logged and tolerated.
func (p *Parser) ParseAscii(data []byte, unitCount uint32) (value string, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    count := int(unitCount)

    if len(data) < count {
        log.Panic(ErrNotEnoughData)
    }

    if count == 0 {
        return "", nil
    } else if data[count-1] != 0 {
        parserLogger.Warningf(nil, "ascii value not terminated with nul")
        return string(data[:count]), nil
    }

    return string(data[:count-1]), nil
}

// ParseAsciiNoNul returns a string without any consideration for a trailing
// NUL (used when the raw encoded form needs to be preserved exactly).
func (p *Parser) ParseAsciiNoNul(data []byte, unitCount uint32) (value string, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    count := int(unitCount)

    if len(data) < count {
        log.Panic(ErrNotEnoughData)
    }

    return string(data[:count]), nil
}

// ParseShorts knows how to decode a SHORT vector.
func (p *Parser) ParseShorts(data []byte, unitCount uint32, byteOrder binary.ByteOrder) (value []uint16, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    count := int(unitCount)

    if len(data) < count*2 {
        log.Panic(ErrNotEnoughData)
    }

    value = make([]uint16, count)
    for i := 0; i < count; i++ {
        value[i] = byteOrder.Uint16(data[i*2:])
    }

    return value, nil
}

// ParseLongs knows how to decode a LONG vector.
func (p *Parser) ParseLongs(data []byte, unitCount uint32, byteOrder binary.ByteOrder) (value []uint32, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    count := int(unitCount)

    if len(data) < count*4 {
        log.Panic(ErrNotEnoughData)
    }

    value = make([]uint32, count)
    for i := 0; i < count; i++ {
        value[i] = byteOrder.Uint32(data[i*4:])
    }

    return value, nil
}

// ParseRationals knows how to decode a RATIONAL vector.
func (p *Parser) ParseRationals(data []byte, unitCount uint32, byteOrder binary.ByteOrder) (value []Rational, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    count := int(unitCount)

    if len(data) < count*8 {
        log.Panic(ErrNotEnoughData)
    }

    value = make([]Rational, count)
    for i := 0; i < count; i++ {
        value[i].Numerator = byteOrder.Uint32(data[i*8:])
        value[i].Denominator = byteOrder.Uint32(data[i*8+4:])
    }

    return value, nil
}

// ParseSignedBytes knows how to decode an SBYTE vector.
func (p *Parser) ParseSignedBytes(data []byte, unitCount uint32) (value []int8, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    count := int(unitCount)

    if len(data) < count {
        log.Panic(ErrNotEnoughData)
    }

    value = make([]int8, count)
    for i := 0; i < count; i++ {
        value[i] = int8(data[i])
    }

    return value, nil
}

// ParseSignedShorts knows how to decode an SSHORT vector.
func (p *Parser) ParseSignedShorts(data []byte, unitCount uint32, byteOrder binary.ByteOrder) (value []int16, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    count := int(unitCount)

    if len(data) < count*2 {
        log.Panic(ErrNotEnoughData)
    }

    value = make([]int16, count)
    for i := 0; i < count; i++ {
        value[i] = int16(byteOrder.Uint16(data[i*2:]))
    }

    return value, nil
}

// ParseSignedLongs knows how to decode an SLONG vector.
func (p *Parser) ParseSignedLongs(data []byte, unitCount uint32, byteOrder binary.ByteOrder) (value []int32, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    count := int(unitCount)

    if len(data) < count*4 {
        log.Panic(ErrNotEnoughData)
    }

    b := bytes.NewBuffer(data)

    value = make([]int32, count)

    err = binary.Read(b, byteOrder, &value)
    log.PanicIf(err)

    return value, nil
}

// ParseSignedRationals knows how to decode an SRATIONAL vector.
func (p *Parser) ParseSignedRationals(data []byte, unitCount uint32, byteOrder binary.ByteOrder) (value []SignedRational, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    count := int(unitCount)

    if len(data) < count*8 {
        log.Panic(ErrNotEnoughData)
    }

    b := bytes.NewBuffer(data)

    value = make([]SignedRational, count)

    err = binary.Read(b, byteOrder, &value)
    log.PanicIf(err)

    return value, nil
}

// ParseFloats knows how to decode a FLOAT vector.
func (p *Parser) ParseFloats(data []byte, unitCount uint32, byteOrder binary.ByteOrder) (value []float32, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    count := int(unitCount)

    if len(data) < count*4 {
        log.Panic(ErrNotEnoughData)
    }

    b := bytes.NewBuffer(data)

    value = make([]float32, count)

    err = binary.Read(b, byteOrder, &value)
    log.PanicIf(err)

    return value, nil
}

// ParseDoubles knows how to decode a DOUBLE vector.
func (p *Parser) ParseDoubles(data []byte, unitCount uint32, byteOrder binary.ByteOrder) (value []float64, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    count := int(unitCount)

    if len(data) < count*8 {
        log.Panic(ErrNotEnoughData)
    }

    b := bytes.NewBuffer(data)

    value = make([]float64, count)

    err = binary.Read(b, byteOrder, &value)
    log.PanicIf(err)

    return value, nil
}

// ParseValue decodes raw bytes of any TIFF data format to the corresponding
// Go value (slices for vectors, string for ASCII).
func (p *Parser) ParseValue(tagType TagTypePrimitive, data []byte, unitCount uint32, byteOrder binary.ByteOrder) (value interface{}, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    switch tagType {
    case TypeByte:
        value, err = p.ParseBytes(data, unitCount)
    case TypeAscii:
        value, err = p.ParseAscii(data, unitCount)
    case TypeShort:
        value, err = p.ParseShorts(data, unitCount, byteOrder)
    case TypeLong:
        value, err = p.ParseLongs(data, unitCount, byteOrder)
    case TypeRational:
        value, err = p.ParseRationals(data, unitCount, byteOrder)
    case TypeSignedByte:
        value, err = p.ParseSignedBytes(data, unitCount)
    case TypeUndefined:
        value, err = p.ParseBytes(data, unitCount)
    case TypeSignedShort:
        value, err = p.ParseSignedShorts(data, unitCount, byteOrder)
    case TypeSignedLong:
        value, err = p.ParseSignedLongs(data, unitCount, byteOrder)
    case TypeSignedRational:
        value, err = p.ParseSignedRationals(data, unitCount, byteOrder)
    case TypeFloat:
        value, err = p.ParseFloats(data, unitCount, byteOrder)
    case TypeDouble:
        value, err = p.ParseDoubles(data, unitCount, byteOrder)
    default:
        log.Panicf("value of type (%d) can not be parsed", tagType)
    }

    log.PanicIf(err)

    return value, nil
}
