// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package arc implements the engine's container archive format: a
// fixed header, a flat index of fixed-size entries, and a payload
// region holding raw or dictionary-compressed file data.
package arc

import (
	"os"
	"path/filepath"

	"github.com/sgstools/sgscodec/internal/bitio"
	"github.com/sgstools/sgscodec/internal/sgserr"
	"github.com/sgstools/sgscodec/lzwindow"
)

const (
	magicTag   = "SGS."
	magicKind  = "DAT 1.00"
	headerSize = 16
	entrySize  = 0x20
)

// Entry describes one archive member as parsed from the index table.
type Entry struct {
	Name         string
	IsPacked     bool
	StoredSize   uint32
	UnpackedSize uint32
	Offset       uint32
}

// Reader holds a parsed archive index bound to its backing bytes.
type Reader struct {
	buf     []byte
	Entries []Entry
}

// Open parses the archive header and index out of buf. The magic tag
// is verified exactly; any entry whose offset+size exceeds len(buf)
// fails the whole parse with BadPlacement.
func Open(buf []byte) (*Reader, error) {
	if len(buf) < headerSize {
		return nil, sgserr.New(sgserr.Truncated, "arc: header")
	}
	if string(buf[0:4]) != magicTag || string(buf[4:12]) != magicKind {
		return nil, sgserr.New(sgserr.BadMagic, "arc: expected SGS./DAT 1.00 header")
	}
	count := int(bitio.GetU32LE(buf, 12))

	indexEnd := headerSize + entrySize*count
	if indexEnd > len(buf) {
		return nil, sgserr.New(sgserr.Truncated, "arc: index table")
	}

	entries := make([]Entry, count)
	for i := 0; i < count; i++ {
		off := headerSize + entrySize*i
		rec := buf[off : off+entrySize]

		name := parseName(rec[0x00:0x10])
		isPacked := rec[0x13] != 0
		storedSize := bitio.GetU32LE(rec, 0x14)
		unpackedSize := bitio.GetU32LE(rec, 0x18)
		dataOffset := bitio.GetU32LE(rec, 0x1C)

		if uint64(dataOffset)+uint64(storedSize) > uint64(len(buf)) {
			return nil, sgserr.New(sgserr.BadPlacement, "arc: entry "+name+" exceeds archive length")
		}

		entries[i] = Entry{
			Name:         name,
			IsPacked:     isPacked,
			StoredSize:   storedSize,
			UnpackedSize: unpackedSize,
			Offset:       dataOffset,
		}
	}

	return &Reader{buf: buf, Entries: entries}, nil
}

func parseName(raw []byte) string {
	if i := indexOfNUL(raw); i >= 0 {
		raw = raw[:i]
	}
	return string(raw)
}

func indexOfNUL(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}

// Data returns the decompressed payload bytes of entry e.
func (r *Reader) Data(e Entry) ([]byte, error) {
	stored := r.buf[e.Offset : e.Offset+e.StoredSize]
	if !e.IsPacked {
		return stored, nil
	}
	return lzwindow.Decompress(stored, int(e.UnpackedSize))
}

// Extract writes every entry to outDir, creating any subdirectories
// implied by forward-slash-separated entry names.
func (r *Reader) Extract(outDir string) error {
	for _, e := range r.Entries {
		data, err := r.Data(e)
		if err != nil {
			return err
		}
		dst := filepath.Join(outDir, filepath.FromSlash(e.Name))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// sourceFile is one file discovered while walking the pack input tree.
type sourceFile struct {
	relPath string
	data    []byte
}

// Pack walks inDir recursively and builds an archive image in memory.
// Names are recorded with forward-slash separators and truncated to 16
// bytes (no extension-preservation guarantee). When compress is true,
// every member is packed with lzwindow.Compress; otherwise members are
// stored raw, matching the CLI's default.
func Pack(inDir string, compress bool) ([]byte, error) {
	var files []sourceFile
	err := filepath.WalkDir(inDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(inDir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, sourceFile{relPath: filepath.ToSlash(rel), data: data})
		return nil
	})
	if err != nil {
		return nil, err
	}

	n := len(files)
	indexSize := entrySize * n
	payload := make([][]byte, n)
	entries := make([]Entry, n)

	offset := uint32(headerSize + indexSize)
	for i, f := range files {
		stored := f.data
		packed := false
		if compress {
			stored = lzwindow.Compress(f.data)
			packed = true
		}
		payload[i] = stored
		entries[i] = Entry{
			Name:         truncateName(f.relPath),
			IsPacked:     packed,
			StoredSize:   uint32(len(stored)),
			UnpackedSize: uint32(len(f.data)),
			Offset:       offset,
		}
		offset += uint32(len(stored))
	}

	out := make([]byte, offset)
	copy(out[0:4], magicTag)
	copy(out[4:12], magicKind)
	bitio.PutU32LE(out, 12, uint32(n))

	for i, e := range entries {
		off := headerSize + entrySize*i
		rec := out[off : off+entrySize]
		copy(rec[0x00:0x10], []byte(e.Name))
		if e.IsPacked {
			rec[0x13] = 1
		}
		bitio.PutU32LE(rec, 0x14, e.StoredSize)
		bitio.PutU32LE(rec, 0x18, e.UnpackedSize)
		bitio.PutU32LE(rec, 0x1C, e.Offset)
		copy(out[e.Offset:e.Offset+e.StoredSize], payload[i])
	}

	return out, nil
}

func truncateName(name string) string {
	b := []byte(name)
	if len(b) > 16 {
		b = b[:16]
	}
	return string(b)
}
