// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package anm implements the engine's animation format: a 256-entry
// indexed palette followed by a table of frames, each a column-major
// run-length-encoded (or raw) 8-bit bitmap.
package anm

import (
	"github.com/sgstools/sgscodec/internal/bitio"
	"github.com/sgstools/sgscodec/internal/sgserr"
)

const (
	paletteOff  = 0x000
	paletteSize = 0x300 // 256 * 3
	frameCntOff = 0x300
	flagsOff    = 0x302
	offsetTblOff = 0x304

	uncompressedFlag = 0x8000
)

// Palette holds 256 RGB triples, stored on disk as BGR and emitted in
// bitmaps as BGRA.
type Palette [256][3]byte // [i] = {R, G, B}

// Frame is one decoded animation frame: its placement and an 8-bit
// palette-index bitmap of exactly Width*Height bytes.
type Frame struct {
	Left, Top, Width, Height uint16
	Data                     []byte
}

// Animation is the fully decoded in-memory form of an .anm file.
type Animation struct {
	Palette      Palette
	Uncompressed bool
	Frames       []Frame
}

// Decode parses a complete .anm image.
func Decode(buf []byte) (*Animation, error) {
	if len(buf) < offsetTblOff {
		return nil, sgserr.New(sgserr.Truncated, "anm: header")
	}
	var pal Palette
	for i := 0; i < 256; i++ {
		off := paletteOff + 3*i
		b, g, r := buf[off], buf[off+1], buf[off+2]
		pal[i] = [3]byte{r, g, b}
	}

	frameCount := int(bitio.GetU16LE(buf, frameCntOff))
	flags := bitio.GetU16LE(buf, flagsOff)
	uncompressed := flags&uncompressedFlag != 0

	base := offsetTblOff + 4*frameCount
	if base > len(buf) {
		return nil, sgserr.New(sgserr.Truncated, "anm: offset table")
	}

	frames := make([]Frame, frameCount)
	for i := 0; i < frameCount; i++ {
		rel := bitio.GetU32LE(buf, offsetTblOff+4*i)
		abs := base + int(rel)
		if abs+8 > len(buf) {
			return nil, sgserr.New(sgserr.BadPlacement, "anm: frame header")
		}
		left := bitio.GetU16LE(buf, abs)
		top := bitio.GetU16LE(buf, abs+2)
		width := bitio.GetU16LE(buf, abs+4)
		height := bitio.GetU16LE(buf, abs+6)

		var end int
		if i+1 < frameCount {
			nextRel := bitio.GetU32LE(buf, offsetTblOff+4*(i+1))
			end = base + int(nextRel)
		} else {
			end = len(buf)
		}
		if end > len(buf) || abs+8 > end {
			return nil, sgserr.New(sgserr.BadPlacement, "anm: frame payload")
		}
		payload := buf[abs+8 : end]

		var data []byte
		var err error
		if uncompressed {
			want := int(width) * int(height)
			if len(payload) < want {
				return nil, sgserr.New(sgserr.Truncated, "anm: uncompressed frame payload")
			}
			data = append([]byte(nil), payload[:want]...)
		} else {
			data, err = decodeRLE(payload, int(width), int(height))
			if err != nil {
				return nil, err
			}
		}

		frames[i] = Frame{Left: left, Top: top, Width: width, Height: height, Data: data}
	}

	return &Animation{Palette: pal, Uncompressed: uncompressed, Frames: frames}, nil
}

// Encode serializes an Animation back to its on-disk layout. When
// a.Uncompressed is false, each frame's width is rounded up to a
// multiple of 4 (padding columns with zero) before the column-RLE
// pass runs, per the engine's compressed-mode requirement; the padded
// width is what gets written to that frame's header field.
func Encode(a *Animation) []byte {
	frameCount := len(a.Frames)
	payloads := make([][]byte, frameCount)
	widths := make([]uint16, frameCount)

	for i, f := range a.Frames {
		if a.Uncompressed {
			payloads[i] = f.Data
			widths[i] = f.Width
			continue
		}
		paddedWidth := (int(f.Width) + 3) &^ 3
		data := f.Data
		if paddedWidth != int(f.Width) {
			data = padColumns(f.Data, int(f.Width), int(f.Height), paddedWidth)
		}
		payloads[i] = encodeRLE(data, paddedWidth, int(f.Height))
		widths[i] = uint16(paddedWidth)
	}

	base := offsetTblOff + 4*frameCount
	size := base
	frameOffsets := make([]int, frameCount)
	for i := range a.Frames {
		frameOffsets[i] = size - base
		size += 8 + len(payloads[i])
	}

	out := make([]byte, size)
	for i := 0; i < 256; i++ {
		off := paletteOff + 3*i
		out[off] = a.Palette[i][2]
		out[off+1] = a.Palette[i][1]
		out[off+2] = a.Palette[i][0]
	}
	bitio.PutU16LE(out, frameCntOff, uint16(frameCount))
	flags := uint16(0)
	if a.Uncompressed {
		flags |= uncompressedFlag
	}
	bitio.PutU16LE(out, flagsOff, flags)

	for i, f := range a.Frames {
		bitio.PutU32LE(out, offsetTblOff+4*i, uint32(frameOffsets[i]))
		abs := base + frameOffsets[i]
		bitio.PutU16LE(out, abs, f.Left)
		bitio.PutU16LE(out, abs+2, f.Top)
		bitio.PutU16LE(out, abs+4, widths[i])
		bitio.PutU16LE(out, abs+6, f.Height)
		copy(out[abs+8:abs+8+len(payloads[i])], payloads[i])
	}

	return out
}

// padColumns widens a width*height row-major buffer to
// newWidth*height, zero-filling the new trailing columns of each row.
func padColumns(data []byte, width, height, newWidth int) []byte {
	out := make([]byte, newWidth*height)
	for row := 0; row < height; row++ {
		copy(out[row*newWidth:row*newWidth+width], data[row*width:row*width+width])
	}
	return out
}
