// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command sgsanm decodes and re-encodes the engine's ANM animation
// format to and from a directory of BMP frames plus text sidecars.
//
// Usage:
//
//	sgsanm decode -in FILE -out DIR
//	sgsanm encode -in DIR -out FILE [-compress]
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sgstools/sgscodec/anm"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "decode":
		err = runDecode(os.Args[2:])
	case "encode":
		err = runEncode(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "sgsanm:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: sgsanm decode -in FILE -out DIR")
	fmt.Fprintln(os.Stderr, "       sgsanm encode -in DIR -out FILE [-compress]")
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	in := fs.String("in", "", "animation file to decode")
	out := fs.String("out", "", "destination directory")
	fs.Parse(args)
	if *in == "" || *out == "" {
		return fmt.Errorf("decode requires -in and -out")
	}

	buf, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	a, err := anm.Decode(buf)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	palFile, err := os.Create(filepath.Join(*out, "palette.txt"))
	if err != nil {
		return err
	}
	defer palFile.Close()
	if err := anm.WritePaletteText(bufio.NewWriter(palFile), a.Palette); err != nil {
		return err
	}

	for i, f := range a.Frames {
		bmp := anm.ToBMP(f, a.Palette)
		name := anm.FrameFileName(i)
		if err := os.WriteFile(filepath.Join(*out, name), bmp, 0o644); err != nil {
			return err
		}
	}

	metaFile, err := os.Create(filepath.Join(*out, "metadata.txt"))
	if err != nil {
		return err
	}
	defer metaFile.Close()
	if err := anm.WriteMetadataText(bufio.NewWriter(metaFile), a.Frames, a.Uncompressed); err != nil {
		return err
	}

	fmt.Printf("decoded %d frames to %s\n", len(a.Frames), *out)
	return nil
}

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	in := fs.String("in", "", "directory of BMP frames plus sidecars")
	out := fs.String("out", "", "destination animation file")
	compress := fs.Bool("compress", true, "RLE-compress frame payloads")
	fs.Parse(args)
	if *in == "" || *out == "" {
		return fmt.Errorf("encode requires -in and -out")
	}

	pal, err := anm.ReadPaletteText(filepath.Join(*in, "palette.txt"))
	if err != nil {
		return err
	}
	metas, uncompressed, err := anm.ReadMetadataText(filepath.Join(*in, "metadata.txt"))
	if err != nil {
		return err
	}
	// An explicit -compress overrides whatever mode the sidecar
	// recorded at decode time.
	useRLE := !uncompressed
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "compress" {
			useRLE = *compress
		}
	})

	var frames []anm.Frame
	for i := 0; ; i++ {
		bmp, err := os.ReadFile(filepath.Join(*in, anm.FrameFileName(i)))
		if err != nil {
			if os.IsNotExist(err) {
				break
			}
			return err
		}
		f, _, err := anm.FromBMP(bmp)
		if err != nil {
			return err
		}
		// The BMP header is authoritative for dimensions; the sidecar
		// only supplies placement, defaulting to (0,0) when absent.
		m := metas[i]
		f.Left, f.Top = m.Left, m.Top
		frames = append(frames, f)
	}

	a := &anm.Animation{Palette: pal, Uncompressed: !useRLE, Frames: frames}
	return os.WriteFile(*out, anm.Encode(a), 0o644)
}
