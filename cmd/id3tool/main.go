// Command id3tool is a thin collaborator around the id3/id3v2 codec: build
// a tag from flags, list its frames, dump it as JSON, or pull a picture out
// to a file. It exercises the core library the way the reference examples
// (buildTag, displayAllText, extractTag, listAllFrames, printInfo,
// savePicture) do, one subcommand each.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/halfwit/id3tag/id3/id3file"
	"github.com/halfwit/id3tag/id3/id3v2"
)

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = cmdBuild(os.Args[2:])
	case "text":
		err = cmdText(os.Args[2:])
	case "extract":
		err = cmdExtract(os.Args[2:])
	case "list":
		err = cmdList(os.Args[2:])
	case "info":
		err = cmdInfo(os.Args[2:])
	case "picture":
		err = cmdPicture(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Print(err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: id3tool <build|text|extract|list|info|picture> [flags]")
}

// cmdBuild constructs a fresh v2.3 tag from the supplied metadata flags and
// writes it to out (buildTag).
func cmdBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	out := fs.String("out", "", "output file path (required)")
	title := fs.String("title", "", "track title")
	artist := fs.String("artist", "", "track artist")
	album := fs.String("album", "", "album name")
	year := fs.String("year", "", "release year")
	track := fs.String("track", "", "track number")
	genre := fs.String("genre", "", "genre name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("id3tool build: -out is required")
	}

	header, err := id3v2.NewHeader(3, 0)
	if err != nil {
		return err
	}
	tag := id3v2.CreateTag(header, nil)

	fields := []struct{ id, value string }{
		{"TIT2", *title}, {"TPE1", *artist}, {"TALB", *album},
		{"TYER", *year}, {"TRCK", *track}, {"TCON", *genre},
	}
	for _, field := range fields {
		id, value := field.id, field.value
		if value == "" {
			continue
		}
		f := id3v2.NewFrame(id, 3, nil)
		f.Rewind()
		if err := f.WriteEntry([]byte{byte(0x00)}); err != nil { // encISO88591
			return err
		}
		if err := f.WriteChar(value); err != nil {
			return err
		}
		tag.AttachFrame(f)
	}

	return id3file.WriteTag(*out, tag)
}

// cmdText prints every text-frame (identifier starting with 'T') value in
// the tag (displayAllText).
func cmdText(args []string) error {
	fs := flag.NewFlagSet("text", flag.ExitOnError)
	path := fs.String("file", "", "audio file path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("id3tool text: -file is required")
	}

	tag, err := id3file.ReadTag(*path, nil)
	if err != nil {
		return err
	}

	for _, f := range tag.Frames() {
		if f.Header.ID == "" || f.Header.ID[0] != 'T' {
			continue
		}
		f.Rewind()
		f.ReadByte() // encoding
		log.Printf("%s: %q", f.Header.ID, f.ReadChar())
	}
	return nil
}

// cmdExtract reads a tag, prints it as JSON, and writes it straight back
// (extractTag) -- a round-trip exercise of the parser and serializer.
func cmdExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	path := fs.String("file", "", "audio file path (required)")
	out := fs.String("out", "", "output file path (defaults to -file)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("id3tool extract: -file is required")
	}
	if *out == "" {
		*out = *path
	}

	tag, err := id3file.ReadTag(*path, nil)
	if err != nil {
		return err
	}

	fmt.Println(tag.JSON())
	return id3file.WriteTag(*out, tag)
}

// cmdList prints every frame identifier in tag order (listAllFrames).
func cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	path := fs.String("file", "", "audio file path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("id3tool list: -file is required")
	}

	tag, err := id3file.ReadTag(*path, nil)
	if err != nil {
		return err
	}
	for i, f := range tag.Frames() {
		log.Printf("%3d  %s  (%d entries)", i, f.Header.ID, f.Entries())
	}
	return nil
}

// cmdInfo prints the tag header summary (printInfo).
func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	path := fs.String("file", "", "audio file path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("id3tool info: -file is required")
	}

	tag, err := id3file.ReadTag(*path, nil)
	if err != nil {
		return err
	}

	h := tag.Header
	unsync, _ := h.Unsynchronisation()
	log.Printf("version:          2.%d.%d", h.Major, h.Minor)
	log.Printf("size:             %d", h.Size)
	log.Printf("unsynchronised:   %v", unsync)
	log.Printf("extended header:  %v", h.Extended != nil)
	log.Printf("frames:           %d", len(tag.Frames()))
	return nil
}

// cmdPicture writes the binary data of the first APIC/PIC frame matching
// picture type to out (savePicture).
func cmdPicture(args []string) error {
	fs := flag.NewFlagSet("picture", flag.ExitOnError)
	path := fs.String("file", "", "audio file path (required)")
	out := fs.String("out", "", "output image path (required)")
	ptype := fs.Int("type", 3, "picture type byte (default 3, front cover)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" || *out == "" {
		return fmt.Errorf("id3tool picture: -file and -out are required")
	}

	tag, err := id3file.ReadTag(*path, nil)
	if err != nil {
		return err
	}

	for _, f := range tag.Frames() {
		if f.Header.ID != "APIC" && f.Header.ID != "PIC" {
			continue
		}
		f.Rewind()
		f.ReadByte() // encoding
		f.ReadRaw()  // format/MIME
		typeByte := f.ReadByte()
		f.ReadChar() // description
		data := f.ReadRaw()
		if int(typeByte) != *ptype {
			continue
		}
		return os.WriteFile(*out, data, 0o644)
	}
	return fmt.Errorf("id3tool picture: no picture frame with type %d found", *ptype)
}
