// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package anm

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sgstools/sgscodec/internal/bitio"
	"github.com/sgstools/sgscodec/internal/sgserr"
)

const (
	bmpFileHeaderSize = 14
	bmpInfoHeaderSize = 40
	bmpPaletteSize    = 1024 // 256 * 4 (BGRA)
)

// ToBMP renders frame as an 8-bit indexed Windows bitmap using pal as
// the BGRA color table, bottom-up with rows padded to a 4-byte
// boundary.
func ToBMP(f Frame, pal Palette) []byte {
	width, height := int(f.Width), int(f.Height)
	rowSize := (width + 3) &^ 3
	pixelBytes := rowSize * height
	dataOff := bmpFileHeaderSize + bmpInfoHeaderSize + bmpPaletteSize
	fileSize := dataOff + pixelBytes

	out := make([]byte, fileSize)
	out[0], out[1] = 'B', 'M'
	bitio.PutU32LE(out, 2, uint32(fileSize))
	bitio.PutU32LE(out, 10, uint32(dataOff))

	bitio.PutU32LE(out, 14, bmpInfoHeaderSize)
	bitio.PutU32LE(out, 18, uint32(width))
	bitio.PutU32LE(out, 22, uint32(height))
	bitio.PutU16LE(out, 26, 1)  // planes
	bitio.PutU16LE(out, 28, 8)  // bits per pixel
	bitio.PutU32LE(out, 34, uint32(pixelBytes))

	for i := 0; i < 256; i++ {
		off := 54 + 4*i
		out[off+0] = pal[i][2] // B
		out[off+1] = pal[i][1] // G
		out[off+2] = pal[i][0] // R
		out[off+3] = 0
	}

	for row := 0; row < height; row++ {
		srcRow := height - 1 - row // bottom-up
		dst := dataOff + row*rowSize
		copy(out[dst:dst+width], f.Data[srcRow*width:srcRow*width+width])
	}

	return out
}

// FromBMP parses bits_per_pixel==8 Windows bitmaps produced by ToBMP
// (or compatible tools) back into a Frame and its embedded palette.
func FromBMP(buf []byte) (Frame, Palette, error) {
	var pal Palette
	if len(buf) < bmpFileHeaderSize+bmpInfoHeaderSize || buf[0] != 'B' || buf[1] != 'M' {
		return Frame{}, pal, sgserr.New(sgserr.BadMagic, "anm: not a BMP file")
	}
	dataOff := int(bitio.GetU32LE(buf, 10))
	width := int(bitio.GetU32LE(buf, 18))
	height := int(int32(bitio.GetU32LE(buf, 22)))
	bpp := bitio.GetU16LE(buf, 28)
	if bpp != 8 {
		return Frame{}, pal, sgserr.New(sgserr.UnsupportedFormat, fmt.Sprintf("anm: bits_per_pixel=%d", bpp))
	}
	flip := height > 0
	if height < 0 {
		height = -height
	}

	for i := 0; i < 256; i++ {
		off := 54 + 4*i
		pal[i] = [3]byte{buf[off+2], buf[off+1], buf[off+0]}
	}

	rowSize := (width + 3) &^ 3
	data := make([]byte, width*height)
	for row := 0; row < height; row++ {
		srcRow := row
		dstRow := row
		if flip {
			dstRow = height - 1 - row
		}
		src := dataOff + srcRow*rowSize
		copy(data[dstRow*width:dstRow*width+width], buf[src:src+width])
	}

	return Frame{Width: uint16(width), Height: uint16(height), Data: data}, pal, nil
}

// WritePaletteText writes the "palette.txt" sidecar: one
// "iii: RRR GGG BBB" line per index.
func WritePaletteText(w *bufio.Writer, pal Palette) error {
	for i, c := range pal {
		if _, err := fmt.Fprintf(w, "%d: %d %d %d\n", i, c[0], c[1], c[2]); err != nil {
			return err
		}
	}
	return w.Flush()
}

// ReadPaletteText parses a "palette.txt" sidecar back into a Palette.
func ReadPaletteText(path string) (Palette, error) {
	var pal Palette
	f, err := os.Open(path)
	if err != nil {
		return pal, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		idxPart, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSpace(idxPart))
		if err != nil || idx < 0 || idx >= 256 {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) != 3 {
			continue
		}
		var rgb [3]byte
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				continue
			}
			rgb[i] = byte(v)
		}
		pal[idx] = rgb
	}
	return pal, sc.Err()
}

// FrameMeta is one line of the "metadata.txt" sidecar: frame index,
// placement, and dimensions.
type FrameMeta struct {
	Index                    int
	Left, Top, Width, Height uint16
}

// WriteMetadataText writes the "metadata.txt" sidecar: a leading
// "# uncompressed: BOOL" comment line, then one
// "i left top width height" line per frame.
func WriteMetadataText(w *bufio.Writer, frames []Frame, uncompressed bool) error {
	if _, err := fmt.Fprintf(w, "# uncompressed: %v\n", uncompressed); err != nil {
		return err
	}
	for i, f := range frames {
		if _, err := fmt.Fprintf(w, "%d %d %d %d %d\n", i, f.Left, f.Top, f.Width, f.Height); err != nil {
			return err
		}
	}
	return w.Flush()
}

// ReadMetadataText parses a "metadata.txt" sidecar into a map keyed by
// frame index, plus the leading uncompressed flag.
func ReadMetadataText(path string) (metas map[int]FrameMeta, uncompressed bool, err error) {
	metas = make(map[int]FrameMeta)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return metas, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "# uncompressed:"); ok {
			uncompressed = strings.TrimSpace(rest) == "true"
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			continue
		}
		nums := make([]int, 5)
		ok := true
		for i, s := range fields {
			v, err := strconv.Atoi(s)
			if err != nil {
				ok = false
				break
			}
			nums[i] = v
		}
		if !ok {
			continue
		}
		metas[nums[0]] = FrameMeta{
			Index: nums[0], Left: uint16(nums[1]), Top: uint16(nums[2]),
			Width: uint16(nums[3]), Height: uint16(nums[4]),
		}
	}
	return metas, uncompressed, sc.Err()
}

// FrameFileName returns the "frame_NNNN.bmp" sidecar name for index i.
func FrameFileName(i int) string {
	return fmt.Sprintf("frame_%04d.bmp", i)
}
