// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lzwindow

// Compress produces a stream that Decompress can expand back to src
// exactly. This resolves the asymmetry flagged in the original design
// notes: the source's packer emitted a 3-byte run-length header that
// the decoder above cannot consume. Compress instead emits the
// decoder's own 1-bit-flag / back-reference stream using a greedy
// longest-match search over the preceding 4095 bytes.
func Compress(src []byte) []byte {
	bw := new(bitWriter)
	n := len(src)
	for i := 0; i < n; {
		length, dist := findMatch(src, i)
		if length >= 2 {
			bw.writeBit(1)
			w := uint16((length-1)<<12) | uint16(dist)
			bw.writeU16LE(w)
			i += length
			continue
		}
		bw.writeBit(0)
		bw.writeByte(src[i])
		i++
	}
	bw.flush()
	return bw.out
}

// findMatch searches src[max(0,i-4095):i] for the longest run that
// matches src starting at i, capped at maxLen bytes. Ties are broken
// in favor of the nearest (smallest-distance) match.
func findMatch(src []byte, i int) (length, dist int) {
	n := len(src)
	winStart := i - maxDist
	if winStart < 0 {
		winStart = 0
	}
	limit := n - i
	if limit > maxLen {
		limit = maxLen
	}
	if limit < 2 {
		return 0, 0
	}
	bestLen := 0
	bestDist := 0
	for j := i - 1; j >= winStart; j-- {
		l := 0
		for l < limit && src[j+l] == src[i+l] {
			l++
		}
		if l > bestLen {
			bestLen = l
			bestDist = i - j
			if bestLen == limit {
				break
			}
		}
	}
	return bestLen, bestDist
}

// legacyPack reproduces the source's degenerate RLE-style packer: a
// 3-byte header (count_hi, count_lo, payload byte) per run. It is kept
// as bug-compatible scaffolding only — its output cannot be consumed
// by Decompress, matching the asymmetry the original tool shipped
// with. The CLI never calls this; Compress is the conforming packer.
func legacyPack(src []byte) []byte {
	var out []byte
	i := 0
	for i < len(src) {
		b := src[i]
		run := 1
		for i+run < len(src) && src[i+run] == b && run < 0xFFFF {
			run++
		}
		out = append(out, byte(run>>8), byte(run), b)
		i += run
	}
	return out
}
