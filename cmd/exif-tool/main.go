// Command exif-tool prints, sets, and clears the EXIF tags of an image file.
package main

import (
    "fmt"
    "os"
    "strings"

    "github.com/dsoprea/go-logging"
    "github.com/jessevdk/go-flags"

    exif "github.com/TechnikTobi/little-exif"
    "github.com/TechnikTobi/little-exif/metadata"
)

var (
    mainLogger = log.NewLogger("main.main")
)

type parameters struct {
    Filepath string `short:"f" long:"filepath" required:"true" description:"image file-path"`

    SetTags []string `short:"s" long:"set" description:"set a tag, as Name=Value (ASCII tags only)"`

    OutputFilepath string `short:"o" long:"output" description:"write the updated image here (defaults to the input path)"`

    ClearExif bool `long:"clear" description:"remove the EXIF carrier entirely"`

    Verbose bool `short:"v" long:"verbose" description:"enable logging"`
}

var (
    arguments = new(parameters)
)

func main() {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintErrorf(err, "Program error.")
            os.Exit(1)
        }
    }()

    _, err := flags.Parse(arguments)
    if err != nil {
        os.Exit(2)
    }

    if arguments.Verbose == true {
        scp := log.NewStaticConfigurationProvider()
        scp.SetLevelName(log.LevelNameDebug)

        log.LoadConfiguration(scp)
        log.AddAdapter("console", log.NewConsoleLogAdapter())
    }

    if arguments.ClearExif == true {
        clearExif()
        return
    }

    md, err := metadata.NewMetadataFromPath(arguments.Filepath)
    log.PanicIf(err)

    if len(arguments.SetTags) == 0 {
        printTags(md)
        return
    }

    for _, assignment := range arguments.SetTags {
        parts := strings.SplitN(assignment, "=", 2)
        if len(parts) != 2 {
            fmt.Printf("Assignment not formatted as Name=Value: [%s]\n", assignment)
            os.Exit(2)
        }

        err := md.SetTag(parts[0], parts[1])
        log.PanicIf(err)
    }

    outputFilepath := arguments.OutputFilepath
    if outputFilepath == "" {
        outputFilepath = arguments.Filepath
    }

    err = md.WriteToFile(outputFilepath)
    log.PanicIf(err)

    fmt.Printf("Wrote [%s].\n", outputFilepath)
}

func clearExif() {
    kind, err := metadata.KindFromPath(arguments.Filepath)
    log.PanicIf(err)

    data, err := os.ReadFile(arguments.Filepath)
    log.PanicIf(err)

    newData, err := metadata.Clear(data, kind)
    log.PanicIf(err)

    outputFilepath := arguments.OutputFilepath
    if outputFilepath == "" {
        outputFilepath = arguments.Filepath
    }

    err = os.WriteFile(outputFilepath, newData, 0644)
    log.PanicIf(err)

    fmt.Printf("Cleared [%s].\n", outputFilepath)
}

func printTags(md *metadata.Metadata) {
    ti := exif.GetTagIndex()

    tree := md.Tree()

    for _, ifdName := range []string{exif.IfdStandard, exif.IfdExif, exif.IfdIop, exif.IfdGps, exif.IfdThumbnail} {
        ifd := tree.Ifd(ifdName)
        if ifd.Count() == 0 {
            continue
        }

        fmt.Printf("[%s]\n", ifdName)

        for _, ite := range ifd.Entries() {
            name := fmt.Sprintf("0x%04x", ite.TagId())

            if it, err := ti.Get(ifdName, ite.TagId()); err == nil {
                name = it.Name
            }

            value, err := ite.Value(tree.ByteOrder())
            if err != nil {
                value = "<undecodable>"
            }

            fmt.Printf("  %-28s %v\n", name, value)
        }

        fmt.Printf("\n")
    }

    if mn := tree.MakerNote(); len(mn) > 0 {
        fmt.Printf("MakerNote: (%d) bytes\n", len(mn))
    }

    if thumbnail := tree.Thumbnail(); len(thumbnail) > 0 {
        fmt.Printf("Thumbnail: (%d) bytes\n", len(thumbnail))
    }
}
