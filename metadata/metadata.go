// Package metadata is the user-facing façade: it binds an IFD tree to a
// container kind and dispatches reads and writes through the container
// adapters.
package metadata

import (
    "errors"
    "io/ioutil"
    "os"
    "path"
    "strings"

    "encoding/binary"

    "github.com/dsoprea/go-logging"

    exif "github.com/TechnikTobi/little-exif"
    "github.com/TechnikTobi/little-exif/heicstructure"
    "github.com/TechnikTobi/little-exif/jpegstructure"
    "github.com/TechnikTobi/little-exif/jxlstructure"
    "github.com/TechnikTobi/little-exif/pngstructure"
    "github.com/TechnikTobi/little-exif/tiffstructure"
    "github.com/TechnikTobi/little-exif/webpstructure"
)

var (
    metadataLogger = log.NewLogger("metadata.metadata")
)

var (
    // ErrContainerInference is returned when a path extension maps to no
    // recognized container kind.
    ErrContainerInference = errors.New("container kind can not be inferred from the path extension")
)

// ContainerKind names a supported image container format.
type ContainerKind int

const (
    KindPng ContainerKind = iota + 1
    KindJpeg
    KindTiff
    KindWebp
    KindJxl
    KindHeif
)

// String returns the kind's name.
func (kind ContainerKind) String() string {
    switch kind {
    case KindPng:
        return "PNG"
    case KindJpeg:
        return "JPEG"
    case KindTiff:
        return "TIFF"
    case KindWebp:
        return "WebP"
    case KindJxl:
        return "JXL"
    case KindHeif:
        return "HEIF"
    }

    return "UNKNOWN"
}

// KindFromPath infers the container kind from the path's extension,
// case-insensitively.
func KindFromPath(filepath string) (kind ContainerKind, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    extension := strings.ToLower(path.Ext(filepath))

    switch extension {
    case ".png":
        return KindPng, nil
    case ".jpg", ".jpeg":
        return KindJpeg, nil
    case ".tif", ".tiff":
        return KindTiff, nil
    case ".webp":
        return KindWebp, nil
    case ".jxl":
        return KindJxl, nil
    case ".heic", ".heif", ".hif":
        return KindHeif, nil
    }

    log.Panic(ErrContainerInference)

    // Never called.
    return 0, nil
}

// Metadata binds one image's IFD tree to its container.
type Metadata struct {
    kind ContainerKind
    tree *exif.IfdTree

    filepath string
    buffer   []byte
}

// NewMetadataFromPath reads the image at the given path, infers its container
// kind from the extension, and parses any embedded EXIF payload. An image
// without EXIF yields an empty tree.
func NewMetadataFromPath(filepath string) (md *Metadata, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    kind, err := KindFromPath(filepath)
    log.PanicIf(err)

    f, err := os.Open(filepath)
    log.PanicIf(err)

    defer f.Close()

    data, err := ioutil.ReadAll(f)
    log.PanicIf(err)

    md, err = NewMetadataFromBuffer(data, kind)
    log.PanicIf(err)

    md.filepath = filepath

    return md, nil
}

// NewMetadataFromBuffer parses any embedded EXIF payload out of the in-memory
// image. An image without EXIF yields an empty tree.
func NewMetadataFromBuffer(data []byte, kind ContainerKind) (md *Metadata, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    md = &Metadata{
        kind:   kind,
        buffer: data,
    }

    rawExif, err := extract(data, kind)
    if err != nil {
        if isNoExif(err) == true {
            md.tree = exif.NewIfdTree(binary.LittleEndian)
            return md, nil
        }

        log.Panic(err)
    }

    md.tree, err = exif.ParseExifPayload(rawExif)
    log.PanicIf(err)

    return md, nil
}

// Kind returns the container kind.
func (md *Metadata) Kind() ContainerKind {
    return md.kind
}

// Tree returns the underlying IFD tree.
func (md *Metadata) Tree() *exif.IfdTree {
    return md.tree
}

// SetTag encodes the value per the taxonomy and places it in the named tag's
// home IFD, overwriting any prior value.
func (md *Metadata) SetTag(tagName string, value interface{}) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    err = md.tree.SetStandardTag(tagName, value)
    log.PanicIf(err)

    return nil
}

// GetTag returns the decoded value of the named tag from its home IFD.
func (md *Metadata) GetTag(tagName string) (value interface{}, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    value, err = md.tree.GetStandardTag(tagName)
    log.PanicIf(err)

    return value, nil
}

// DeleteTag removes the named tag from its home IFD.
func (md *Metadata) DeleteTag(tagName string) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    err = md.tree.RemoveStandardTag(tagName)
    log.PanicIf(err)

    return nil
}

// WriteToBuffer serializes the tree and installs it into the given image,
// returning the new image. The input buffer is never modified.
func (md *Metadata) WriteToBuffer(data []byte, kind ContainerKind) (newData []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    rawExif, err := exif.BuildExifPayload(md.tree)
    log.PanicIf(err)

    newData, err = replace(data, rawExif, kind)
    log.PanicIf(err)

    return newData, nil
}

// Write serializes the tree back into the image the metadata was created
// from, in memory.
func (md *Metadata) Write() (newData []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    newData, err = md.WriteToBuffer(md.buffer, md.kind)
    log.PanicIf(err)

    return newData, nil
}

// WriteToFile serializes the tree into the source image and writes the
// complete result to the given path. The whole output image is assembled
// before the destination is touched.
func (md *Metadata) WriteToFile(filepath string) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    newData, err := md.Write()
    log.PanicIf(err)

    err = ioutil.WriteFile(filepath, newData, 0644)
    log.PanicIf(err)

    return nil
}

func extract(data []byte, kind ContainerKind) (rawExif []byte, err error) {
    switch kind {
    case KindPng:
        return pngstructure.Extract(data)
    case KindJpeg:
        return jpegstructure.Extract(data)
    case KindTiff:
        return tiffstructure.Extract(data)
    case KindWebp:
        return webpstructure.Extract(data)
    case KindJxl:
        return jxlstructure.Extract(data)
    case KindHeif:
        return heicstructure.Extract(data)
    }

    log.Panicf("container kind (%d) not handled", kind)

    // Never called.
    return nil, nil
}

func replace(data []byte, rawExif []byte, kind ContainerKind) (newData []byte, err error) {
    switch kind {
    case KindPng:
        return pngstructure.Replace(data, rawExif)
    case KindJpeg:
        return jpegstructure.Replace(data, rawExif)
    case KindTiff:
        return tiffstructure.Replace(data, rawExif)
    case KindWebp:
        return webpstructure.Replace(data, rawExif)
    case KindJxl:
        return jxlstructure.Replace(data, rawExif)
    case KindHeif:
        return heicstructure.Replace(data, rawExif)
    }

    log.Panicf("container kind (%d) not handled", kind)

    // Never called.
    return nil, nil
}

// Clear removes the EXIF carrier from the given image.
func Clear(data []byte, kind ContainerKind) (newData []byte, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    switch kind {
    case KindPng:
        return pngstructure.Clear(data)
    case KindJpeg:
        return jpegstructure.Clear(data)
    case KindTiff:
        return tiffstructure.Clear(data)
    case KindWebp:
        return webpstructure.Clear(data)
    case KindJxl:
        return jxlstructure.Clear(data)
    case KindHeif:
        return heicstructure.Clear(data)
    }

    log.Panicf("container kind (%d) not handled", kind)

    // Never called.
    return nil, nil
}

func isNoExif(err error) bool {
    for _, sentinel := range []error{
        pngstructure.ErrNoExif,
        jpegstructure.ErrNoExif,
        webpstructure.ErrNoExif,
        jxlstructure.ErrNoExif,
        heicstructure.ErrNoExif,
        exif.ErrNoExif,
    } {
        if log.Is(err, sentinel) == true {
            return true
        }
    }

    return false
}
