// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command sgsarc extracts and packs the engine's ARC archive
// containers.
//
// Usage:
//
//	sgsarc extract -in FILE -out DIR
//	sgsarc pack -in DIR -out FILE [-compress]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sgstools/sgscodec/arc"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "extract":
		err = runExtract(os.Args[2:])
	case "pack":
		err = runPack(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "sgsarc:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: sgsarc extract -in FILE -out DIR")
	fmt.Fprintln(os.Stderr, "       sgsarc pack -in DIR -out FILE [-compress]")
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	in := fs.String("in", "", "archive to extract")
	out := fs.String("out", "", "destination directory")
	fs.Parse(args)
	if *in == "" || *out == "" {
		return fmt.Errorf("extract requires -in and -out")
	}

	buf, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	r, err := arc.Open(buf)
	if err != nil {
		return err
	}
	if err := r.Extract(*out); err != nil {
		return err
	}
	fmt.Printf("extracted %d entries to %s\n", len(r.Entries), *out)
	return nil
}

func runPack(args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	in := fs.String("in", "", "directory to pack")
	out := fs.String("out", "", "destination archive")
	compress := fs.Bool("compress", false, "apply dictionary compression to each entry")
	fs.Parse(args)
	if *in == "" || *out == "" {
		return fmt.Errorf("pack requires -in and -out")
	}

	img, err := arc.Pack(*in, *compress)
	if err != nil {
		return err
	}
	return os.WriteFile(*out, img, 0644)
}
