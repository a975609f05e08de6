package exif

import (
    "errors"
    "fmt"

    "github.com/dsoprea/go-logging"
    "github.com/golang/geo/s2"

    "github.com/TechnikTobi/little-exif/exifcommon"
)

var (
    gpsLogger = log.NewLogger("exif.gps")
)

var (
    // ErrGpsCoordinatesNotValid is returned when the GPS IFD carries no
    // usable coordinate entries.
    ErrGpsCoordinatesNotValid = errors.New("gps coordinates not valid")
)

// GpsDegrees is a low-level GPS coordinate: an orientation letter plus the
// degrees/minutes/seconds rationals flattened to floats.
type GpsDegrees struct {
    Orientation byte
    Degrees     float64
    Minutes     float64
    Seconds     float64
}

// NewGpsDegreesFromRationals builds a GpsDegrees from the three rationals the
// GPS IFD stores.
func NewGpsDegreesFromRationals(orientation string, raw []exifcommon.Rational) (d GpsDegrees, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if len(raw) != 3 {
        log.Panicf("new GpsDegrees data is not a tuple of three rationals: (%d)", len(raw))
    }

    if len(orientation) == 0 {
        log.Panic(ErrGpsCoordinatesNotValid)
    }

    d = GpsDegrees{
        Orientation: orientation[0],
        Degrees:     float64(raw[0].Numerator) / float64(raw[0].Denominator),
        Minutes:     float64(raw[1].Numerator) / float64(raw[1].Denominator),
        Seconds:     float64(raw[2].Numerator) / float64(raw[2].Denominator),
    }

    return d, nil
}

// Decimal converts to decimal degrees, negated for south/west orientations.
func (d GpsDegrees) Decimal() float64 {
    decimal := d.Degrees + d.Minutes/60.0 + d.Seconds/3600.0

    if d.Orientation == 'S' || d.Orientation == 'W' {
        return -decimal
    }

    return decimal
}

// String returns a descriptive string.
func (d GpsDegrees) String() string {
    return fmt.Sprintf("Degrees<O=[%s] D=(%g) M=(%g) S=(%g)>", string([]byte{d.Orientation}), d.Degrees, d.Minutes, d.Seconds)
}

// GpsInfo is the coordinate pair decoded from the GPS IFD.
type GpsInfo struct {
    Latitude  GpsDegrees
    Longitude GpsDegrees
}

// String returns a descriptive string.
func (gi *GpsInfo) String() string {
    return fmt.Sprintf("GpsInfo<LAT=(%.05f) LON=(%.05f)>", gi.Latitude.Decimal(), gi.Longitude.Decimal())
}

// S2CellId returns the cell-ID of the coordinate on the S2 sphere.
func (gi *GpsInfo) S2CellId() s2.CellID {
    latLng := s2.LatLngFromDegrees(gi.Latitude.Decimal(), gi.Longitude.Decimal())

    cellId := s2.CellIDFromLatLng(latLng)

    if cellId.IsValid() == false {
        log.Panic(ErrGpsCoordinatesNotValid)
    }

    return cellId
}

// GpsInfo decodes the latitude and longitude entries of the GPS IFD.
func (it *IfdTree) GpsInfo() (gi *GpsInfo, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    gi = new(GpsInfo)

    byteOrder := it.ByteOrder()

    readAscii := func(tagId uint16) string {
        ite, err := it.GetEntry(IfdGps, tagId)
        if err != nil {
            log.Panic(ErrGpsCoordinatesNotValid)
        }

        value, err := ite.Value(byteOrder)
        log.PanicIf(err)

        s, ok := value.(string)
        if ok == false {
            log.Panic(ErrGpsCoordinatesNotValid)
        }

        return s
    }

    readRationals := func(tagId uint16) []exifcommon.Rational {
        ite, err := it.GetEntry(IfdGps, tagId)
        if err != nil {
            log.Panic(ErrGpsCoordinatesNotValid)
        }

        value, err := ite.Value(byteOrder)
        log.PanicIf(err)

        raw, ok := value.([]exifcommon.Rational)
        if ok == false {
            log.Panic(ErrGpsCoordinatesNotValid)
        }

        return raw
    }

    // 0x0001/0x0002 and 0x0003/0x0004 are the latitude and longitude pairs.

    gi.Latitude, err = NewGpsDegreesFromRationals(readAscii(0x0001), readRationals(0x0002))
    log.PanicIf(err)

    gi.Longitude, err = NewGpsDegreesFromRationals(readAscii(0x0003), readRationals(0x0004))
    log.PanicIf(err)

    return gi, nil
}
