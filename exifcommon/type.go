package exifcommon

import (
    "errors"

    "github.com/dsoprea/go-logging"
)

var (
    typeLogger = log.NewLogger("exifcommon.type")
)

var (
    // ErrNotEnoughData is used when there isn't enough data to accommodate what
    // we're trying to parse (sizeof(type) * unit_count).
    ErrNotEnoughData = errors.New("not enough data for type")

    // ErrWrongType is used when we try to parse anything as a type that it's
    // not.
    ErrWrongType = errors.New("wrong type, can not parse")

    // ErrUnhandledUndefinedTypedTag is used when we try to parse a tag that's
    // recorded as an "unknown" type but not a documented tag (therefore
    // leaving us not knowning how to read it).
    ErrUnhandledUndefinedTypedTag = errors.New("not a standard unknown-typed tag")
)

// TagTypePrimitive is a type-alias that let's us easily lookup type properties.
type TagTypePrimitive uint16

const (
    // TypeByte describes an encoded list of bytes.
    TypeByte TagTypePrimitive = 1

    // TypeAscii describes an encoded list of characters that is terminated
    // with a NUL in its encoded form.
    TypeAscii TagTypePrimitive = 2

    // TypeShort describes an encoded list of shorts.
    TypeShort TagTypePrimitive = 3

    // TypeLong describes an encoded list of longs.
    TypeLong TagTypePrimitive = 4

    // TypeRational describes an encoded list of rationals.
    TypeRational TagTypePrimitive = 5

    // TypeSignedByte describes an encoded list of signed bytes.
    TypeSignedByte TagTypePrimitive = 6

    // TypeUndefined describes an encoded value that has a complex/non-clearcut
    // interpretation.
    TypeUndefined TagTypePrimitive = 7

    // TypeSignedShort describes an encoded list of signed shorts.
    TypeSignedShort TagTypePrimitive = 8

    // TypeSignedLong describes an encoded list of signed longs.
    TypeSignedLong TagTypePrimitive = 9

    // TypeSignedRational describes an encoded list of signed rationals.
    TypeSignedRational TagTypePrimitive = 10

    // TypeFloat describes an encoded list of floats.
    TypeFloat TagTypePrimitive = 11

    // TypeDouble describes an encoded list of doubles.
    TypeDouble TagTypePrimitive = 12
)

var (
    typeNames = map[TagTypePrimitive]string{
        TypeByte:           "BYTE",
        TypeAscii:          "ASCII",
        TypeShort:          "SHORT",
        TypeLong:           "LONG",
        TypeRational:       "RATIONAL",
        TypeSignedByte:     "SBYTE",
        TypeUndefined:      "UNDEFINED",
        TypeSignedShort:    "SSHORT",
        TypeSignedLong:     "SLONG",
        TypeSignedRational: "SRATIONAL",
        TypeFloat:          "FLOAT",
        TypeDouble:         "DOUBLE",
    }

    typeNamesR = map[string]TagTypePrimitive{}
)

// String returns the name of the type.
func (tagType TagTypePrimitive) String() string {
    return typeNames[tagType]
}

// IsValid returns true if the type is one of the twelve TIFF data formats.
func (tagType TagTypePrimitive) IsValid() bool {
    _, found := typeNames[tagType]
    return found
}

// Size returns the size of one atomic unit of the type.
func (tagType TagTypePrimitive) Size() int {
    switch tagType {
    case TypeByte, TypeAscii, TypeSignedByte, TypeUndefined:
        return 1
    case TypeShort, TypeSignedShort:
        return 2
    case TypeLong, TypeSignedLong, TypeFloat:
        return 4
    case TypeRational, TypeSignedRational, TypeDouble:
        return 8
    default:
        log.Panicf("can not determine tag-value size for type (%d): [%s]", tagType, tagType.String())

        // Never called.
        return 0
    }
}

// GetTypeByName returns the type constant for the given name (e.g. "SHORT").
func GetTypeByName(typeName string) (tagType TagTypePrimitive, found bool) {
    tagType, found = typeNamesR[typeName]
    return tagType, found
}

func init() {
    for typeId, typeName := range typeNames {
        typeNamesR[typeName] = typeId
    }
}
