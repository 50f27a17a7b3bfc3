// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package bitio provides the byte-cursor and peek helpers shared by the
// archive, animation, and script readers. The source these formats were
// derived from exposes a family of "read-and-rewind" operations; here
// that is modeled as a cursor-by-value save/restore, matching the
// peek-then-discard idiom used by brotli's bitReader in the teacher
// repository.
package bitio

import "github.com/sgstools/sgscodec/internal/sgserr"

// Cursor is a read-only view over a byte buffer with an explicit
// position. It never allocates and is cheap to copy, so callers can
// snapshot a Cursor by value before a speculative read and restore it
// to "rewind".
type Cursor struct {
	Buf []byte
	Pos int
}

// NewCursor returns a Cursor positioned at the start of buf.
func NewCursor(buf []byte) Cursor { return Cursor{Buf: buf} }

// Len reports the number of unread bytes.
func (c Cursor) Len() int { return len(c.Buf) - c.Pos }

// Remaining returns the unread tail of the buffer.
func (c Cursor) Remaining() []byte { return c.Buf[c.Pos:] }

// Need fails with Truncated if fewer than n bytes remain.
func (c Cursor) Need(n int) error {
	if c.Len() < n {
		return sgserr.New(sgserr.Truncated, "unexpected end of buffer")
	}
	return nil
}

// ReadU8 consumes and returns one byte.
func (c *Cursor) ReadU8() (byte, error) {
	if err := c.Need(1); err != nil {
		return 0, err
	}
	b := c.Buf[c.Pos]
	c.Pos++
	return b, nil
}

// PeekU8 returns the next byte without advancing the cursor.
func (c Cursor) PeekU8() (byte, error) {
	if err := c.Need(1); err != nil {
		return 0, err
	}
	return c.Buf[c.Pos], nil
}

// ReadU16LE consumes a little-endian u16.
func (c *Cursor) ReadU16LE() (uint16, error) {
	if err := c.Need(2); err != nil {
		return 0, err
	}
	v := uint16(c.Buf[c.Pos]) | uint16(c.Buf[c.Pos+1])<<8
	c.Pos += 2
	return v, nil
}

// PeekU16LE returns the next little-endian u16 without advancing.
func (c Cursor) PeekU16LE() (uint16, error) {
	if err := c.Need(2); err != nil {
		return 0, err
	}
	return uint16(c.Buf[c.Pos]) | uint16(c.Buf[c.Pos+1])<<8, nil
}

// ReadS16LE consumes a little-endian signed 16-bit integer.
func (c *Cursor) ReadS16LE() (int16, error) {
	v, err := c.ReadU16LE()
	return int16(v), err
}

// ReadU32LE consumes a little-endian u32.
func (c *Cursor) ReadU32LE() (uint32, error) {
	if err := c.Need(4); err != nil {
		return 0, err
	}
	v := uint32(c.Buf[c.Pos]) | uint32(c.Buf[c.Pos+1])<<8 |
		uint32(c.Buf[c.Pos+2])<<16 | uint32(c.Buf[c.Pos+3])<<24
	c.Pos += 4
	return v, nil
}

// ReadBytes consumes and returns the next n bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if err := c.Need(n); err != nil {
		return nil, err
	}
	b := c.Buf[c.Pos : c.Pos+n]
	c.Pos += n
	return b, nil
}

// ReadCString consumes bytes up to and including the next NUL byte and
// returns the bytes before it (without the NUL).
func (c *Cursor) ReadCString() ([]byte, error) {
	start := c.Pos
	for {
		b, err := c.ReadU8()
		if err != nil {
			return nil, err
		}
		if b == 0 {
			return c.Buf[start : c.Pos-1], nil
		}
	}
}

// PutU16LE writes a little-endian u16 into buf at offset off.
func PutU16LE(buf []byte, off int, v uint16) {
	buf[off] = byte(v)
	buf[off+1] = byte(v >> 8)
}

// PutU32LE writes a little-endian u32 into buf at offset off.
func PutU32LE(buf []byte, off int, v uint32) {
	buf[off] = byte(v)
	buf[off+1] = byte(v >> 8)
	buf[off+2] = byte(v >> 16)
	buf[off+3] = byte(v >> 24)
}

// GetU32LE reads a little-endian u32 from buf at offset off.
func GetU32LE(buf []byte, off int) uint32 {
	return uint32(buf[off]) | uint32(buf[off+1])<<8 |
		uint32(buf[off+2])<<16 | uint32(buf[off+3])<<24
}

// GetU16LE reads a little-endian u16 from buf at offset off.
func GetU16LE(buf []byte, off int) uint16 {
	return uint16(buf[off]) | uint16(buf[off+1])<<8
}
