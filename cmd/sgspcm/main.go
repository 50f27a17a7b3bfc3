// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command sgspcm inspects and converts the engine's raw-PCM and WAV
// sound formats.
//
// Usage:
//
//	sgspcm info -in FILE [-version unrestricted|pregtb|gtb|postgtb]
//	sgspcm towav -in FILE -out FILE [-version ...]
//	sgspcm topcm -in FILE -out FILE [-version ...]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sgstools/sgscodec/pcm"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "info":
		err = runInfo(os.Args[2:])
	case "towav":
		err = runToWAV(os.Args[2:])
	case "topcm":
		err = runToPCM(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "sgspcm:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: sgspcm info -in FILE [-version V]")
	fmt.Fprintln(os.Stderr, "       sgspcm towav -in FILE -out FILE [-version V]")
	fmt.Fprintln(os.Stderr, "       sgspcm topcm -in FILE -out FILE [-version V]")
}

func parseVersionFlag(fs *flag.FlagSet) *string {
	return fs.String("version", "unrestricted", "unrestricted|pregtb|gtb|postgtb")
}

func resolveVersion(s string) (pcm.Version, error) {
	v, ok := pcm.ParseVersion(s)
	if !ok {
		return 0, fmt.Errorf("unknown version %q", s)
	}
	return v, nil
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	in := fs.String("in", "", "sound file to inspect")
	versionFlag := parseVersionFlag(fs)
	fs.Parse(args)
	if *in == "" {
		return fmt.Errorf("info requires -in")
	}
	version, err := resolveVersion(*versionFlag)
	if err != nil {
		return err
	}

	buf, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	s, err := pcm.Parse(buf, version)
	if err != nil {
		return err
	}
	fmt.Printf("format=%v channels=%d rate=%d bits=%d signed=%v samples=%d duration=%s\n",
		s.Format, s.Channels, s.SampleRate, s.BitsPerSample, s.Signed, s.SampleCount, s.Duration())
	return nil
}

func runToWAV(args []string) error {
	fs := flag.NewFlagSet("towav", flag.ExitOnError)
	in := fs.String("in", "", "sound file to convert")
	out := fs.String("out", "", "destination WAV file")
	versionFlag := parseVersionFlag(fs)
	fs.Parse(args)
	if *in == "" || *out == "" {
		return fmt.Errorf("towav requires -in and -out")
	}
	version, err := resolveVersion(*versionFlag)
	if err != nil {
		return err
	}

	buf, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	s, err := pcm.Parse(buf, version)
	if err != nil {
		return err
	}
	return os.WriteFile(*out, pcm.WriteWAV(pcm.ToWAV(s)), 0o644)
}

func runToPCM(args []string) error {
	fs := flag.NewFlagSet("topcm", flag.ExitOnError)
	in := fs.String("in", "", "sound file to convert")
	out := fs.String("out", "", "destination raw PCM file")
	versionFlag := parseVersionFlag(fs)
	fs.Parse(args)
	if *in == "" || *out == "" {
		return fmt.Errorf("topcm requires -in and -out")
	}
	version, err := resolveVersion(*versionFlag)
	if err != nil {
		return err
	}

	buf, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	s, err := pcm.Parse(buf, version)
	if err != nil {
		return err
	}
	return os.WriteFile(*out, pcm.ToPCM(s, version).Raw, 0o644)
}
