// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package script

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/sgstools/sgscodec/internal/bitio"
	"github.com/sgstools/sgscodec/internal/sgserr"
	"github.com/sgstools/sgscodec/textcodec"
)

// DefaultMaxLineLength is the importer's auto-line-break column width,
// matching the CLI's -max-line-length default.
const DefaultMaxLineLength = 50

// ExportText renders res's strings in the translation exchange format:
// three lines per string, the first holding the original text and the
// second the (initially identical) translation target,
//
//	◇0000001A◇|name|text
//	◆0000001A◆|name|text
//	<blank>
//
// where the |name| field appears only when a name prefix was recorded,
// resolved against the script's token table. The line-break marker is
// rendered as a literal "\n" and backslashes are doubled, so the text
// block never spans more than one physical line.
func ExportText(res *WalkResult) string {
	tokens := res.Tokens()
	var sb strings.Builder
	for _, s := range res.Strings {
		name := ""
		if s.HasNamePrefix {
			name = "|" + escapeText(tokens[s.NamePrefixID]) + "|"
		}
		text := escapeText(s.Text)
		fmt.Fprintf(&sb, "◇%08X◇%s%s\n", s.Address, name, text)
		fmt.Fprintf(&sb, "◆%08X◆%s%s\n", s.Address, name, text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// escapeText doubles backslashes first so the "\n" produced for the
// line-break marker is unambiguous on the way back in.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, lineBreakMarker, `\n`)
}

// unescapeText reverses escapeText one escape at a time; a backslash
// before anything other than 'n' or another backslash is kept as-is.
func unescapeText(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteString(lineBreakMarker)
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Translation is one edit parsed back out of the exchange format: the
// address of the string it replaces and its unescaped text.
type Translation struct {
	Address int
	Text    string
}

// ParseTranslations extracts the translation lines (those containing
// the ◆ marker) from an edited export file. The |name| field, if
// present, is stripped; it exists for the translator's benefit and the
// name itself lives in its own token string.
func ParseTranslations(data string) ([]Translation, error) {
	var out []Translation
	sc := bufio.NewScanner(strings.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, "◆") {
			continue
		}
		parts := strings.SplitN(line, "◆", 3)
		if len(parts) < 3 {
			return nil, sgserr.New(sgserr.EncodingFailure, "malformed translation line: "+line)
		}
		addr, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 16, 32)
		if err != nil {
			return nil, sgserr.New(sgserr.EncodingFailure, "bad address in line: "+line)
		}
		text := parts[2]
		if strings.HasPrefix(text, "|") {
			if end := strings.Index(text[1:], "|"); end >= 0 {
				text = text[end+2:]
			}
		}
		out = append(out, Translation{Address: int(addr), Text: unescapeText(text)})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// autoLineBreak re-wraps s so no segment between line-break markers
// exceeds maxLen characters, breaking at the last space before the
// limit or, when a segment has no space, at the limit itself.
func autoLineBreak(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLineLength
	}
	segs := strings.Split(s, lineBreakMarker)
	for i, seg := range segs {
		segs[i] = breakSegment(seg, maxLen)
	}
	return strings.Join(segs, lineBreakMarker)
}

func breakSegment(seg string, maxLen int) string {
	runes := []rune(seg)
	var parts []string
	for len(runes) > maxLen {
		cut := maxLen
		dropSpace := false
		for j := maxLen - 1; j > 0; j-- {
			if runes[j] == ' ' {
				cut = j
				dropSpace = true
				break
			}
		}
		parts = append(parts, string(runes[:cut]))
		if dropSpace {
			cut++
		}
		runes = runes[cut:]
	}
	parts = append(parts, string(runes))
	return strings.Join(parts, lineBreakMarker)
}

// change is one string replacement scheduled by Patch: the slot it
// overwrites in the source image and the encoded bytes (sans NUL) that
// go in its place.
type change struct {
	addr    int
	origLen int // source bytes consumed, including the NUL
	repl    []byte
	delta   int
}

// Patch applies edits to buf: strings are substituted at their
// recorded addresses, the file grows or shrinks by the net byte delta,
// and every 16-bit branch-target word is adjusted by the cumulative
// delta of changed addresses strictly below the address it points to.
// Translations for unknown addresses, and empty translations, warn and
// leave the original string in place. buf itself is never modified.
func Patch(buf []byte, res *WalkResult, edits []Translation, enc encoding.Encoding, maxLineLength int) ([]byte, []Diagnostic, error) {
	byAddr := make(map[int]StringMeta, len(res.Strings))
	for _, s := range res.Strings {
		byAddr[int(s.Address)] = s
	}

	var warnings []Diagnostic
	byChangeAddr := make(map[int]change)
	for _, e := range edits {
		orig, ok := byAddr[e.Address]
		if !ok {
			warnings = append(warnings, Diagnostic{
				Address: uint32(e.Address), Kind: sgserr.MissingTranslation,
				Msg: fmt.Sprintf("no string at address %#x", e.Address),
			})
			continue
		}
		if e.Text == "" {
			warnings = append(warnings, Diagnostic{
				Address: uint32(e.Address), Kind: sgserr.MissingTranslation,
				Msg: fmt.Sprintf("empty translation at %#x, keeping original", e.Address),
			})
			continue
		}
		if e.Text == orig.Text {
			continue
		}
		repl, err := encodeEscaped(autoLineBreak(e.Text, maxLineLength), enc)
		if err != nil {
			return nil, warnings, err
		}
		nul := bytes.IndexByte(buf[e.Address:], 0)
		if nul < 0 {
			return nil, warnings, sgserr.New(sgserr.Truncated, fmt.Sprintf("unterminated string at %#x", e.Address))
		}
		origLen := nul + 1
		// Last edit wins if a file carries duplicate lines for one address.
		byChangeAddr[e.Address] = change{addr: e.Address, origLen: origLen, repl: repl, delta: len(repl) + 1 - origLen}
	}
	if len(byChangeAddr) == 0 {
		return append([]byte(nil), buf...), warnings, nil
	}
	changes := make([]change, 0, len(byChangeAddr))
	totalDelta := 0
	for _, ch := range byChangeAddr {
		changes = append(changes, ch)
		totalDelta += ch.delta
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].addr < changes[j].addr })

	// Branch targets are patched in a scratch copy before the segmented
	// rebuild, so a failed patch leaves the caller's buffer untouched.
	patched := append([]byte(nil), buf...)
	for _, j := range res.Jumps {
		shift := 0
		for _, ch := range changes {
			if ch.addr < int(j.TargetAddress) {
				shift += ch.delta
			}
		}
		if shift == 0 {
			continue
		}
		target := int(j.TargetAddress) + shift
		if target < 0 || target > 0xFFFF {
			return nil, warnings, sgserr.New(sgserr.OverflowTarget,
				fmt.Sprintf("jump at %#x: adjusted target %#x exceeds 16 bits", j.OperandAddress, target))
		}
		bitio.PutU16LE(patched, int(j.OperandAddress), uint16(target))
	}

	out := make([]byte, 0, len(buf)+totalDelta)
	src := 0
	for _, ch := range changes {
		out = append(out, patched[src:ch.addr]...)
		out = append(out, ch.repl...)
		out = append(out, 0)
		src = ch.addr + ch.origLen
	}
	out = append(out, patched[src:]...)
	return out, warnings, nil
}

// encodeEscaped is the inverse of readEscapedCString: it restores the
// line-break marker to its 0x818F byte pair, restores deferred-token
// markers to their raw three-byte form, and encodes everything else
// through enc.
func encodeEscaped(s string, enc encoding.Encoding) ([]byte, error) {
	var out []byte
	for len(s) > 0 {
		if strings.HasPrefix(s, lineBreakMarker) {
			out = append(out, 0x81, 0x8F)
			s = s[len(lineBreakMarker):]
			continue
		}
		if strings.HasPrefix(s, "\x00TOKEN") {
			end := strings.IndexByte(s[6:], 0)
			if end < 0 {
				return nil, sgserr.New(sgserr.EncodingFailure, "unterminated token marker")
			}
			idStr := s[6 : 6+end]
			id, err := strconv.Atoi(idStr)
			if err != nil {
				return nil, sgserr.New(sgserr.EncodingFailure, "bad token id in marker: "+idStr)
			}
			out = append(out, 0x81, 0x90, byte(id))
			s = s[6+end+1:]
			continue
		}
		r, size := nextRune(s)
		chunk, err := textcodec.Encode(enc, string(r))
		if err != nil {
			return nil, sgserr.New(sgserr.EncodingFailure, err.Error())
		}
		out = append(out, chunk...)
		s = s[size:]
	}
	return out, nil
}

func nextRune(s string) (rune, int) {
	for _, r := range s {
		return r, len(string(r))
	}
	return 0, 0
}
