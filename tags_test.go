package exif

import (
    "testing"

    "github.com/dsoprea/go-logging"

    "github.com/TechnikTobi/little-exif/exifcommon"
)

func TestTagIndex_Get(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    ti := GetTagIndex()

    it, err := ti.Get(IfdStandard, 0x010e)
    log.PanicIf(err)

    if it.Name != "ImageDescription" {
        t.Fatalf("name not correct: [%s]", it.Name)
    } else if it.Type != exifcommon.TypeAscii {
        t.Fatalf("type not correct: [%s]", it.Type)
    } else if it.Count != 0 {
        t.Fatalf("count must be variable: (%d)", it.Count)
    }

    it, err = ti.Get(IfdStandard, 0x0112)
    log.PanicIf(err)

    if it.Name != "Orientation" || it.Type != exifcommon.TypeShort || it.Count != 1 {
        t.Fatalf("orientation taxonomy not correct: %s", it)
    }
}

func TestTagIndex_GetWithName(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    ti := GetTagIndex()

    expectations := map[string]string{
        "ImageDescription":      IfdStandard,
        "ExposureTime":          IfdExif,
        "GPSLatitude":           IfdGps,
        "InteroperabilityIndex": IfdIop,
        "JPEGInterchangeFormat": IfdThumbnail,
    }

    for name, home := range expectations {
        it, err := ti.GetWithName(name)
        log.PanicIf(err)

        if it.IfdName != home {
            t.Fatalf("home IFD for [%s] not correct: [%s]", name, it.IfdName)
        }
    }
}

func TestTagIndex_DistinctPerIfd(t *testing.T) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            t.Fatalf("Test failed.")
        }
    }()

    ti := GetTagIndex()

    // Low tag-IDs collide between the GPS and interoperability IFDs; the
    // index resolves per home IFD.

    gps, err := ti.Get(IfdGps, 0x0001)
    log.PanicIf(err)

    iop, err := ti.Get(IfdIop, 0x0001)
    log.PanicIf(err)

    if gps.Name != "GPSLatitudeRef" || iop.Name != "InteroperabilityIndex" {
        t.Fatalf("per-IFD resolution not correct: [%s] [%s]", gps.Name, iop.Name)
    }
}

func TestTagIndex_NotFound(t *testing.T) {
    ti := GetTagIndex()

    _, err := ti.Get(IfdStandard, 0xeeee)
    if err == nil {
        t.Fatalf("expected miss")
    } else if log.Is(err, ErrTagNotFound) == false {
        t.Fatalf("wrong error: %v", err)
    }

    _, err = ti.GetWithName("NotARealTag")
    if err == nil {
        t.Fatalf("expected miss")
    } else if log.Is(err, ErrTagNotFound) == false {
        t.Fatalf("wrong error: %v", err)
    }
}
