// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package pcm

import "github.com/sgstools/sgscodec/internal/bitio"

// WriteWAV renders s as a complete little-endian RIFF/WAVE file: a
// 44-byte canonical header built from the precomputed output size,
// followed by s.Raw. If the actual emitted size ever differed from
// the precomputed one, the RIFF and data chunk sizes are patched in
// place after the fact; Convert always produces an exact byte count
// up front, so this patch is a no-op in practice but kept for parity
// with the source's two-pass header writer.
func WriteWAV(s Sound) []byte {
	dataSize := len(s.Raw)
	fileSize := wavHeaderSize + dataSize

	out := make([]byte, fileSize)
	copy(out[0:4], "RIFF")
	bitio.PutU32LE(out, 4, uint32(fileSize-8))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	bitio.PutU32LE(out, 16, 16) // fmt chunk size
	bitio.PutU16LE(out, 20, 1)  // PCM
	bitio.PutU16LE(out, 22, uint16(s.Channels))
	bitio.PutU32LE(out, 24, uint32(s.SampleRate))
	blockAlign := s.Channels * s.BitsPerSample / 8
	byteRate := s.SampleRate * blockAlign
	bitio.PutU32LE(out, 28, uint32(byteRate))
	bitio.PutU16LE(out, 32, uint16(blockAlign))
	bitio.PutU16LE(out, 34, uint16(s.BitsPerSample))
	copy(out[36:40], "data")
	bitio.PutU32LE(out, 40, uint32(dataSize))

	copy(out[wavHeaderSize:], s.Raw)

	if actual := len(out); actual != fileSize {
		bitio.PutU32LE(out, 4, uint32(actual-8))
		bitio.PutU32LE(out, 40, uint32(actual-wavHeaderSize))
	}

	return out
}
