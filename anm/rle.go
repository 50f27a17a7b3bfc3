// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package anm

import "github.com/sgstools/sgscodec/internal/sgserr"

// decodeRLE expands a column-major RLE payload into a width*height
// buffer. Pixels are processed in strips of four adjacent columns; a
// strip's blocks are four bytes each (one row's worth across the
// strip), and a block equal to the one just written triggers a run:
// a byte n (1..255) or, if n is zero, a following byte m extending the
// range to 256+m (256..511), gives the count of additional copies of
// that block to emit before the next literal block is read.
func decodeRLE(payload []byte, width, height int) ([]byte, error) {
	total := width * height
	out := make([]byte, total)
	r := payload
	pos := 0

	readBlock := func() ([4]byte, error) {
		var b [4]byte
		if pos+4 > len(r) {
			return b, sgserr.New(sgserr.Truncated, "anm: rle block")
		}
		copy(b[:], r[pos:pos+4])
		pos += 4
		return b, nil
	}
	readU8 := func() (byte, error) {
		if pos >= len(r) {
			return 0, sgserr.New(sgserr.Truncated, "anm: rle run length")
		}
		v := r[pos]
		pos++
		return v, nil
	}

	for col := 0; col < width; col += 4 {
		writePos := col
		hasPrevious := false
		var prev [4]byte
		for writePos < total {
			block, err := readBlock()
			if err != nil {
				return nil, err
			}
			if hasPrevious && block == prev {
				n, err := readU8()
				if err != nil {
					return nil, err
				}
				var repeats int
				if n == 0 {
					m, err := readU8()
					if err != nil {
						return nil, err
					}
					repeats = 256 + int(m)
				} else {
					repeats = int(n)
				}
				for k := 0; k < repeats && writePos < total; k++ {
					copy(out[writePos:writePos+4], prev[:])
					writePos += width
				}
				hasPrevious = false
			} else {
				copy(out[writePos:writePos+4], block[:])
				prev = block
				hasPrevious = true
				writePos += width
			}
		}
	}
	return out, nil
}

// encodeRLE is the conforming encoder for decodeRLE: it mirrors the
// decoder's state machine exactly; a literal block is always followed
// by writing its bytes again (the signal the decoder keys off of) plus
// a run-length byte whenever one or more further rows share the same
// value, and hasPrevious resets after every run event just as it does
// on the decode side.
func encodeRLE(data []byte, width, height int) []byte {
	total := width * height
	var out []byte

	for col := 0; col < width; col += 4 {
		writePos := col
		hasPrevious := false
		var prev [4]byte
		for writePos < total {
			var cur [4]byte
			copy(cur[:], data[writePos:writePos+4])

			if hasPrevious && cur == prev {
				count := 0
				probe := writePos
				for probe < total && count < 511 {
					var b [4]byte
					copy(b[:], data[probe:probe+4])
					if b != prev {
						break
					}
					count++
					probe += width
				}
				out = append(out, prev[:]...)
				if count <= 255 {
					out = append(out, byte(count))
				} else {
					out = append(out, 0, byte(count-256))
				}
				writePos += width * count
				hasPrevious = false
				continue
			}

			out = append(out, cur[:]...)
			prev = cur
			hasPrevious = true
			writePos += width
		}
	}
	return out
}
