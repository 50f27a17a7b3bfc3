// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package pcm

// Params names a target sample format for Convert.
type Params struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	Signed        bool
}

// Convert resamples, channel-mixes, and bit/sign-converts s into the
// format described by p. Samples are carried as raw unsigned bit
// patterns throughout (never promoted to Go's signed integer types),
// since the bit-depth and signedness steps operate on the literal byte
// pattern, not on its arithmetic value — this preserves the original
// engine's sign-extension heuristic bit-exactly.
func Convert(s Sound, p Params) Sound {
	frames := decodeFrames(s.Raw, s.Channels, s.BitsPerSample)
	frames = resample(frames, s.SampleRate, p.SampleRate)
	frames = mixChannels(frames, s.Channels, p.Channels)
	frames = convertBitDepth(frames, s.BitsPerSample, p.BitsPerSample)
	frames = convertSignedness(frames, p.BitsPerSample, s.Signed, p.Signed)
	raw := encodeFrames(frames, p.Channels, p.BitsPerSample)

	return Sound{
		Format:        s.Format,
		Channels:      p.Channels,
		SampleRate:    p.SampleRate,
		BitsPerSample: p.BitsPerSample,
		Signed:        p.Signed,
		SampleCount:   len(frames),
		Raw:           raw,
	}
}

// resample is the integer Bresenham-style nearest-neighbor resampler:
// acc accumulates srOut per source frame and emits one output frame
// (a repeat of the current source frame) each time acc reaches srIn.
func resample(frames [][]uint32, srIn, srOut int) [][]uint32 {
	if srIn == srOut || srIn == 0 {
		return frames
	}
	out := make([][]uint32, 0, len(frames))
	acc := 0
	for _, f := range frames {
		acc += srOut
		for acc >= srIn {
			acc -= srIn
			out = append(out, f)
		}
	}
	return out
}

// mixChannels either passes channels through unchanged (chIn==chOut)
// or sums every source channel and divides by chOut, duplicating the
// average to every target channel — the divisor is chOut, not chIn,
// exactly as the source computed it.
func mixChannels(frames [][]uint32, chIn, chOut int) [][]uint32 {
	if chIn == chOut {
		return frames
	}
	out := make([][]uint32, len(frames))
	for i, f := range frames {
		var sum uint64
		for _, v := range f {
			sum += uint64(v)
		}
		avg := uint32(sum / uint64(chOut))
		row := make([]uint32, chOut)
		for c := range row {
			row[c] = avg
		}
		out[i] = row
	}
	return out
}

// convertBitDepth narrows by right-shifting 8*k bits, or widens by
// left-shifting 8*k bits and then, if bit 8 of the shifted value is
// set, OR-ing 0xFF into the low byte — a heuristic that reproduces a
// specific round-trip quirk for narrowed-then-widened negative 16-bit
// samples and must be preserved bit-exactly.
func convertBitDepth(frames [][]uint32, bpsIn, bpsOut int) [][]uint32 {
	if bpsIn == bpsOut {
		return frames
	}
	out := make([][]uint32, len(frames))
	if bpsOut < bpsIn {
		k := uint((bpsIn - bpsOut) / 8)
		for i, f := range frames {
			row := make([]uint32, len(f))
			for c, v := range f {
				row[c] = v >> (8 * k)
			}
			out[i] = row
		}
		return out
	}
	k := uint((bpsOut - bpsIn) / 8)
	for i, f := range frames {
		row := make([]uint32, len(f))
		for c, v := range f {
			shifted := v << (8 * k)
			if (shifted>>8)&1 != 0 {
				shifted |= 0xFF
			}
			row[c] = shifted
		}
		out[i] = row
	}
	return out
}

// convertSignedness XORs 0x80 onto the most-significant byte of each
// sample when signedIn != signedOut.
func convertSignedness(frames [][]uint32, bps int, signedIn, signedOut bool) [][]uint32 {
	if signedIn == signedOut {
		return frames
	}
	var mask uint32 = 0x80
	if bps == 16 {
		mask = 0x8000
	}
	out := make([][]uint32, len(frames))
	for i, f := range frames {
		row := make([]uint32, len(f))
		for c, v := range f {
			row[c] = v ^ mask
		}
		out[i] = row
	}
	return out
}

func decodeFrames(raw []byte, channels, bps int) [][]uint32 {
	bytesPerSample := bps / 8
	frameSize := bytesPerSample * channels
	if frameSize == 0 {
		return nil
	}
	n := len(raw) / frameSize
	frames := make([][]uint32, n)
	for i := 0; i < n; i++ {
		row := make([]uint32, channels)
		for c := 0; c < channels; c++ {
			off := i*frameSize + c*bytesPerSample
			if bytesPerSample == 1 {
				row[c] = uint32(raw[off])
			} else {
				row[c] = uint32(raw[off]) | uint32(raw[off+1])<<8
			}
		}
		frames[i] = row
	}
	return frames
}

func encodeFrames(frames [][]uint32, channels, bps int) []byte {
	bytesPerSample := bps / 8
	out := make([]byte, len(frames)*channels*bytesPerSample)
	pos := 0
	for _, f := range frames {
		for _, v := range f {
			if bytesPerSample == 1 {
				out[pos] = byte(v)
				pos++
			} else {
				out[pos] = byte(v)
				out[pos+1] = byte(v >> 8)
				pos += 2
			}
		}
	}
	return out
}

// ToPCM converts s to the target-format constraints for raw PCM: 1
// channel at 22050 Hz, 8-bit unsigned below GTB, else 16-bit signed.
func ToPCM(s Sound, version Version) Sound {
	bps, signed := 8, false
	if version >= GTB {
		bps, signed = 16, true
	}
	out := Convert(s, Params{SampleRate: 22050, Channels: 1, BitsPerSample: bps, Signed: signed})
	out.Format = Raw
	return out
}

// ToWAV converts s to WAV's target-format constraints: channel count,
// sample rate, and bit depth preserved, with the canonical signed
// convention (8-bit unsigned, 16-bit signed).
func ToWAV(s Sound) Sound {
	out := Convert(s, Params{
		SampleRate: s.SampleRate, Channels: s.Channels,
		BitsPerSample: s.BitsPerSample, Signed: s.BitsPerSample == 16,
	})
	out.Format = WAVE
	return out
}
