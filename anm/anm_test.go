// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package anm

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeEncodeCompressedIdenticalBlocks(t *testing.T) {
	// Two frames, both 4x1, compressed, both a single identical block
	// [1,2,3,4]. Each frame's payload must be exactly 4 bytes.
	a := &Animation{
		Frames: []Frame{
			{Width: 4, Height: 1, Data: []byte{1, 2, 3, 4}},
			{Width: 4, Height: 1, Data: []byte{1, 2, 3, 4}},
		},
	}
	buf := Encode(a)
	// 0x304-byte header, two 4-byte frame offsets, then two frames of an
	// 8-byte frame header plus a 4-byte payload.
	if want := 0x304 + 2*4 + 2*(8+4); len(buf) != want {
		t.Errorf("encoded size = %d, want %d", len(buf), want)
	}

	got, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	for i, f := range got.Frames {
		if !cmp.Equal(f.Data, a.Frames[i].Data) {
			t.Errorf("frame %d data = %v, want %v", i, f.Data, a.Frames[i].Data)
		}
	}
}

func TestRoundTripUncompressed(t *testing.T) {
	a := &Animation{
		Uncompressed: true,
		Frames: []Frame{
			{Left: 1, Top: 2, Width: 4, Height: 2, Data: []byte{1, 2, 3, 4, 5, 6, 7, 8}},
			{Left: 0, Top: 0, Width: 8, Height: 1, Data: []byte{9, 9, 9, 9, 9, 9, 9, 9}},
		},
	}
	buf := Encode(a)
	got, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripCompressedVaried(t *testing.T) {
	a := &Animation{
		Frames: []Frame{
			{Width: 8, Height: 3, Data: []byte{
				1, 2, 3, 4, 5, 6, 7, 8,
				1, 2, 3, 4, 9, 9, 9, 9,
				1, 2, 3, 4, 9, 9, 9, 9,
			}},
		},
	}
	buf := Encode(a)
	got, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a.Frames[0].Data, got.Frames[0].Data); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestBMPRoundTrip(t *testing.T) {
	var pal Palette
	for i := range pal {
		pal[i] = [3]byte{byte(i), byte(255 - i), byte(i / 2)}
	}
	f := Frame{Width: 5, Height: 3, Data: []byte{
		1, 2, 3, 4, 5,
		6, 7, 8, 9, 10,
		11, 12, 13, 14, 15,
	}}
	bmp := ToBMP(f, pal)
	gotFrame, gotPal, err := FromBMP(bmp)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(f.Data, gotFrame.Data); diff != "" {
		t.Errorf("pixel round trip mismatch (-want +got):\n%s", diff)
	}
	if gotPal != pal {
		t.Errorf("palette round trip mismatch")
	}
}

func TestMetadataTextRoundTrip(t *testing.T) {
	frames := []Frame{
		{Left: 1, Top: 2, Width: 8, Height: 4},
		{Left: 5, Top: 6, Width: 16, Height: 9},
	}
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := WriteMetadataText(w, frames, true); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.txt")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	metas, uncompressed, err := ReadMetadataText(path)
	if err != nil {
		t.Fatal(err)
	}
	if !uncompressed {
		t.Errorf("uncompressed flag lost in round trip")
	}
	if len(metas) != len(frames) {
		t.Fatalf("metas = %d, want %d", len(metas), len(frames))
	}
	for i, f := range frames {
		m := metas[i]
		if m.Left != f.Left || m.Top != f.Top || m.Width != f.Width || m.Height != f.Height {
			t.Errorf("meta[%d] = %+v, want placement of %+v", i, m, f)
		}
	}
}
