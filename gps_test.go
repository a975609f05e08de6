package exif

import (
    "math"
    "testing"

    "encoding/binary"

    "github.com/dsoprea/go-logging"

    "github.com/TechnikTobi/little-exif/exifcommon"
)

func TestGpsDegrees_Decimal(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    d, err := NewGpsDegreesFromRationals("S", []exifcommon.Rational{
        {Numerator: 11, Denominator: 1},
        {Numerator: 22, Denominator: 1},
        {Numerator: 33, Denominator: 1},
    })
    log.PanicIf(err)

    expected := -(11.0 + 22.0/60.0 + 33.0/3600.0)
    if math.Abs(d.Decimal()-expected) > 1e-9 {
        t.Fatalf("decimal conversion not correct: (%f)", d.Decimal())
    }
}

func TestIfdTree_GpsInfo(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    tree := NewIfdTree(binary.LittleEndian)

    err := tree.SetStandardTag("GPSLatitudeRef", "N")
    log.PanicIf(err)

    err = tree.SetStandardTag("GPSLatitude", []exifcommon.Rational{
        {Numerator: 26, Denominator: 1},
        {Numerator: 35, Denominator: 1},
        {Numerator: 12, Denominator: 1},
    })
    log.PanicIf(err)

    err = tree.SetStandardTag("GPSLongitudeRef", "W")
    log.PanicIf(err)

    err = tree.SetStandardTag("GPSLongitude", []exifcommon.Rational{
        {Numerator: 80, Denominator: 1},
        {Numerator: 3, Denominator: 1},
        {Numerator: 13, Denominator: 1},
    })
    log.PanicIf(err)

    gi, err := tree.GpsInfo()
    log.PanicIf(err)

    if math.Abs(gi.Latitude.Decimal()-26.586667) > 1e-4 {
        t.Fatalf("latitude not correct: (%f)", gi.Latitude.Decimal())
    } else if math.Abs(gi.Longitude.Decimal()-(-80.053611)) > 1e-4 {
        t.Fatalf("longitude not correct: (%f)", gi.Longitude.Decimal())
    }

    cellId := gi.S2CellId()
    if cellId.IsValid() == false {
        t.Fatalf("s2 cell-ID not valid")
    }
}

func TestIfdTree_GpsInfo_Missing(t *testing.T) {
    tree := NewIfdTree(binary.LittleEndian)

    _, err := tree.GpsInfo()
    if err == nil {
        t.Fatalf("expected failure without coordinates")
    } else if log.Is(err, ErrGpsCoordinatesNotValid) == false {
        t.Fatalf("wrong error: %v", err)
    }
}
