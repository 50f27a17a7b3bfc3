// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package textcodec resolves a named text encoding to a
// golang.org/x/text/encoding.Encoding, the way the script package
// consumes "a named text codec" per the engine's external interface
// (the CLI's --encoding flag, default Shift-JIS / code page 932).
package textcodec

import (
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

// Default is the codec used when the CLI's --encoding flag is absent.
const Default = "shift-jis"

// Lookup resolves name to an Encoding. Recognized spellings are
// case-insensitive: "shift-jis", "sjis", "932", "cp932" all select
// Shift-JIS; any other value is tried as a Windows code page number
// against golang.org/x/text/encoding/charmap.
func Lookup(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Default, "sjis", "932", "cp932", "shiftjis":
		return japanese.ShiftJIS, nil
	}
	if cp, err := strconv.Atoi(name); err == nil {
		if enc, ok := codepages[cp]; ok {
			return enc, nil
		}
	}
	return nil, &UnknownCodecError{Name: name}
}

// UnknownCodecError reports a name Lookup could not resolve.
type UnknownCodecError struct{ Name string }

func (e *UnknownCodecError) Error() string {
	return "textcodec: unknown encoding " + strconv.Quote(e.Name)
}

var codepages = map[int]encoding.Encoding{
	437:   charmap.CodePage437,
	850:   charmap.CodePage850,
	866:   charmap.CodePage866,
	1250:  charmap.Windows1250,
	1251:  charmap.Windows1251,
	1252:  charmap.Windows1252,
	1253:  charmap.Windows1253,
	1254:  charmap.Windows1254,
	1257:  charmap.Windows1257,
	20866: charmap.KOI8R,
}

// Decode converts b from the named encoding to a UTF-8 string.
func Decode(enc encoding.Encoding, b []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Encode converts s (UTF-8) to the named encoding's byte form.
func Encode(enc encoding.Encoding, s string) ([]byte, error) {
	return enc.NewEncoder().Bytes([]byte(s))
}
