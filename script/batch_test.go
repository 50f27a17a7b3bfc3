// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package script

import (
	"bytes"
	"testing"

	"golang.org/x/text/encoding/japanese"
)

func TestBatchExportCoversEveryInput(t *testing.T) {
	inputs := make([]BatchInput, 10)
	for i := range inputs {
		inputs[i] = BatchInput{
			Name: "script", Data: []byte{0x21, 'H', 'i', 0x00, 0x01},
		}
	}
	results := BatchExport(inputs, japanese.ShiftJIS)
	if len(results) != len(inputs) {
		t.Fatalf("results = %d, want %d", len(results), len(inputs))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("result %d: %v", i, r.Err)
		}
	}
}

func TestBatchImportAppliesEditsIndependently(t *testing.T) {
	good := BatchImportInput{
		Name:     "a.scr",
		Data:     []byte{0x21, 'H', 'i', 0x00, 0x01},
		EditText: "◆00000001◆Yo",
	}
	// The grown string pushes this jump target past 16 bits, so this
	// input must fail without affecting its sibling.
	bad := BatchImportInput{
		Name:     "b.scr",
		Data:     []byte{0x14, 0xFE, 0xFF, 0x21, 'A', 0x00, 0x01},
		EditText: "◆00000004◆ABCDE",
	}

	results := BatchImport([]BatchImportInput{good, bad}, japanese.ShiftJIS, DefaultMaxLineLength)
	if results[0].Err != nil {
		t.Errorf("a.scr: %v", results[0].Err)
	}
	if want := []byte{0x21, 'Y', 'o', 0x00, 0x01}; !bytes.Equal(results[0].Patched, want) {
		t.Errorf("a.scr patched = %x, want %x", results[0].Patched, want)
	}
	if results[1].Err == nil {
		t.Errorf("b.scr: expected jump overflow error")
	}
}
