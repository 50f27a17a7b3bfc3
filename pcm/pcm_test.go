// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package pcm

import (
	"bytes"
	"testing"
)

func TestParseRawDefaults(t *testing.T) {
	s, err := Parse(make([]byte, 100), Unrestricted)
	if err != nil {
		t.Fatal(err)
	}
	if s.Channels != 1 || s.SampleRate != 22050 || s.BitsPerSample != 8 || s.Signed {
		t.Errorf("raw defaults = %+v", s)
	}

	s2, _ := Parse(make([]byte, 100), GTB)
	if s2.BitsPerSample != 16 || !s2.Signed {
		t.Errorf("raw GTB defaults = %+v", s2)
	}
}

func TestConvertIdentity(t *testing.T) {
	s := Sound{Channels: 2, SampleRate: 22050, BitsPerSample: 16, Signed: true,
		Raw: []byte{1, 0, 2, 0, 3, 0, 4, 0}}
	got := Convert(s, Params{SampleRate: s.SampleRate, Channels: s.Channels, BitsPerSample: s.BitsPerSample, Signed: s.Signed})
	if !bytes.Equal(got.Raw, s.Raw) {
		t.Errorf("identity convert raw = %v, want %v", got.Raw, s.Raw)
	}
}

func TestRawToWAVScenario(t *testing.T) {
	// Raw PCM input of 4410 bytes at 8-bit mono 22050 Hz.
	raw := make([]byte, 4410)
	s := Sound{Format: Raw, Channels: 1, SampleRate: 22050, BitsPerSample: 8, Signed: false, Raw: raw}
	wav := WriteWAV(ToWAV(s))

	if len(wav) != 4454 {
		t.Fatalf("total size = %d, want 4454", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Fatalf("header tags malformed: %x", wav[0:44])
	}
	riffSize := uint32(wav[4]) | uint32(wav[5])<<8 | uint32(wav[6])<<16 | uint32(wav[7])<<24
	dataSize := uint32(wav[40]) | uint32(wav[41])<<8 | uint32(wav[42])<<16 | uint32(wav[43])<<24
	if riffSize != 4446 {
		t.Errorf("riff size = %d, want 4446", riffSize)
	}
	if dataSize != 4410 {
		t.Errorf("data size = %d, want 4410", dataSize)
	}
}

func TestResamplerFrameCount(t *testing.T) {
	frames := make([][]uint32, 100)
	for i := range frames {
		frames[i] = []uint32{uint32(i)}
	}
	out := resample(frames, 22050, 11025)
	want := 100 * 11025 / 22050
	if len(out) != want {
		t.Errorf("resampled frame count = %d, want %d", len(out), want)
	}
}

func TestBitDepthWideningSignExtensionHeuristic(t *testing.T) {
	// Narrow a 16-bit sample with top bit of its low byte set, then
	// widen back; the OR-0xFF heuristic must reproduce bit-exactly.
	frames := [][]uint32{{0xFF81}}
	narrowed := convertBitDepth(frames, 16, 8)
	if narrowed[0][0] != 0xFF {
		t.Fatalf("narrowed = %#x, want 0xFF", narrowed[0][0])
	}
	widened := convertBitDepth(narrowed, 8, 16)
	if widened[0][0] != 0xFFFF {
		t.Errorf("widened = %#x, want 0xFFFF", widened[0][0])
	}
}
