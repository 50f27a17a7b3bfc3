// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package script implements the bytecode disassembler, jump-reference
// tracker, and string patcher for the engine's script format.
package script

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/sgstools/sgscodec/internal/bitio"
	"github.com/sgstools/sgscodec/internal/sgserr"
	"github.com/sgstools/sgscodec/textcodec"
)

// StringKind classifies a StringMeta by which opcode produced it; the
// three kinds take different escape grammars and export treatment.
type StringKind int

const (
	StringDisplay StringKind = iota
	StringToken
	StringChoice
)

// Instruction is one decoded bytecode instruction.
type Instruction struct {
	Address  uint32
	Opcode   byte
	Mnemonic string
	Line     string // full "AAAAAAAA | MNEMONIC operands" disassembly line
}

// JumpReference records one branch-target operand: where the target
// word lives in the buffer, and the address it points to.
type JumpReference struct {
	OperandAddress uint32
	TargetAddress  uint32
	Kind           JumpKind
}

// StringMeta records one patchable string literal: where its first
// text byte lives, its decoded form, and any name-prefix token id that
// preceded it.
type StringMeta struct {
	Address       uint32
	Text          string
	Kind          StringKind
	NamePrefixID  int
	HasNamePrefix bool
	TokenID       int // only meaningful when Kind == StringToken
}

// Diagnostic is a non-fatal condition recorded while walking.
type Diagnostic struct {
	Address uint32
	Kind    sgserr.Kind
	Msg     string
}

// WalkResult is the complete output of walking one script buffer.
type WalkResult struct {
	Instructions []Instruction
	Jumps        []JumpReference
	Strings      []StringMeta
	Diagnostics  []Diagnostic
}

// Walk decodes buf from offset 0 to the end (or to the first
// unrecoverable error), producing a full instruction trace. enc
// selects the text codec used to decode string operands.
func Walk(buf []byte, enc encoding.Encoding) (*WalkResult, error) {
	c := bitio.NewCursor(buf)
	res := &WalkResult{}

	for c.Pos < len(buf) {
		addr := uint32(c.Pos)
		op, err := c.ReadU8()
		if err != nil {
			break
		}
		entry, ok := opcodeTable[op]
		if !ok {
			line := fmt.Sprintf("%08X | UNKNOWN_OPCODE 0x%02X", addr, op)
			res.Instructions = append(res.Instructions, Instruction{
				Address: addr, Opcode: op, Mnemonic: "UNKNOWN_OPCODE", Line: line,
			})
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Address: addr, Kind: sgserr.OpcodeError,
				Msg: fmt.Sprintf("unknown opcode 0x%02X at %#x", op, addr),
			})
			break
		}

		args, derr := decodeOperands(&c, addr, entry, res, enc)
		line := fmt.Sprintf("%08X | %s", addr, entry.mnemonic)
		if args != "" {
			line += " " + args
		}
		if derr != nil {
			line += fmt.Sprintf(" <error: %v>", derr)
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Address: addr, Kind: sgserr.OpcodeError, Msg: derr.Error(),
			})
		}
		res.Instructions = append(res.Instructions, Instruction{
			Address: addr, Opcode: op, Mnemonic: entry.mnemonic, Line: line,
		})
		if derr != nil {
			break
		}
	}
	return res, nil
}

// decodeOperands reads entry's operand tuple starting right after the
// opcode byte, appending any JumpReference/StringMeta produced as a
// side effect, and returns the operand portion of the disassembly line.
func decodeOperands(c *bitio.Cursor, addr uint32, entry opcodeEntry, res *WalkResult, enc encoding.Encoding) (string, error) {
	switch entry.kind {
	case kindNone:
		return "", nil

	case kindU8U8:
		a, err := c.ReadU8()
		if err != nil {
			return "", err
		}
		b, err := c.ReadU8()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d, %d", a, b), nil

	case kindU8S16:
		a, err := c.ReadU8()
		if err != nil {
			return "", err
		}
		b, err := c.ReadS16LE()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d, %d", a, b), nil

	case kindU16:
		v, err := c.ReadU16LE()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", v), nil

	case kindU32:
		v, err := c.ReadU32LE()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%#08x", v), nil

	case kindU16Target:
		opAddr := uint32(c.Pos)
		target, err := c.ReadU16LE()
		if err != nil {
			return "", err
		}
		res.Jumps = append(res.Jumps, JumpReference{
			OperandAddress: opAddr, TargetAddress: uint32(target), Kind: entry.jumpKind,
		})
		return fmt.Sprintf("-> %#06x", target), nil

	case kindU8U16Target:
		reg, err := c.ReadU8()
		if err != nil {
			return "", err
		}
		opAddr := uint32(c.Pos)
		target, err := c.ReadU16LE()
		if err != nil {
			return "", err
		}
		res.Jumps = append(res.Jumps, JumpReference{
			OperandAddress: opAddr, TargetAddress: uint32(target), Kind: entry.jumpKind,
		})
		return fmt.Sprintf("%d, -> %#06x", reg, target), nil

	case kindU8S16U16Target:
		reg, err := c.ReadU8()
		if err != nil {
			return "", err
		}
		imm, err := c.ReadS16LE()
		if err != nil {
			return "", err
		}
		opAddr := uint32(c.Pos)
		target, err := c.ReadU16LE()
		if err != nil {
			return "", err
		}
		res.Jumps = append(res.Jumps, JumpReference{
			OperandAddress: opAddr, TargetAddress: uint32(target), Kind: entry.jumpKind,
		})
		return fmt.Sprintf("%d, %d, -> %#06x", reg, imm, target), nil

	case kindU8U8U16Target:
		a, err := c.ReadU8()
		if err != nil {
			return "", err
		}
		b, err := c.ReadU8()
		if err != nil {
			return "", err
		}
		opAddr := uint32(c.Pos)
		target, err := c.ReadU16LE()
		if err != nil {
			return "", err
		}
		res.Jumps = append(res.Jumps, JumpReference{
			OperandAddress: opAddr, TargetAddress: uint32(target), Kind: entry.jumpKind,
		})
		return fmt.Sprintf("%d, %d, -> %#06x", a, b, target), nil

	case kindU16U8U8:
		id, err := c.ReadU16LE()
		if err != nil {
			return "", err
		}
		a, err := c.ReadU8()
		if err != nil {
			return "", err
		}
		b, err := c.ReadU8()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d, %d, %d", id, a, b), nil

	case kindPairList:
		var parts []string
		for {
			a, err := c.ReadU8()
			if err != nil {
				return "", err
			}
			if a == 0 {
				break
			}
			b, err := c.ReadU8()
			if err != nil {
				return "", err
			}
			parts = append(parts, fmt.Sprintf("(%d,%d)", a, b))
		}
		return strings.Join(parts, " "), nil

	case kindDwordArray:
		count, err := c.ReadU8()
		if err != nil {
			return "", err
		}
		parts := make([]string, 0, count)
		for i := byte(0); i < count; i++ {
			v, err := c.ReadU32LE()
			if err != nil {
				return "", err
			}
			parts = append(parts, fmt.Sprintf("%#08x", v))
		}
		return strings.Join(parts, " "), nil

	case kindU8:
		v, err := c.ReadU8()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", v), nil

	case kindStringDisplay:
		return decodeStringOperand(c, addr, res, enc, StringDisplay, prefixRecord)

	case kindStringToken:
		id, err := c.ReadU8()
		if err != nil {
			return "", err
		}
		args, err := decodeStringOperand(c, addr, res, enc, StringToken, prefixNone)
		if err != nil {
			return "", err
		}
		// The table entry is stored under id+1, which is the value
		// display-text name prefixes carry when referring back to it.
		res.Strings[len(res.Strings)-1].TokenID = int(id) + 1
		return fmt.Sprintf("id=%d, %s", id, args), nil

	case kindStringChoiceNoAddr:
		return decodeStringOperand(c, addr, res, enc, StringChoice, prefixConsume)

	case kindStringChoiceAddr:
		// A leading u16 the engine uses as a menu-entry id; recorded in
		// the line but not tracked as a jump (it indexes a menu table,
		// not code).
		id, err := c.ReadU16LE()
		if err != nil {
			return "", err
		}
		args, err := decodeStringOperand(c, addr, res, enc, StringChoice, prefixNone)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d, %s", id, args), nil
	}
	return "", sgserr.New(sgserr.OpcodeError, "unhandled operand kind")
}

// prefixMode controls how decodeStringOperand treats an optional
// leading (0x01, tokenID) name prefix: display text records it, the
// 0x3E choice form consumes the bytes but drops the reference, and
// every other string operand takes no prefix at all.
type prefixMode int

const (
	prefixNone prefixMode = iota
	prefixRecord
	prefixConsume
)

// decodeStringOperand reads an optional name-prefix (0x01, tokenID)
// followed by an escaped, NUL-terminated text run, appending a
// StringMeta to res. The recorded address is the first byte of the
// text itself, after any name prefix.
func decodeStringOperand(c *bitio.Cursor, _ uint32, res *WalkResult, enc encoding.Encoding, kind StringKind, prefix prefixMode) (string, error) {
	namePrefixID := -1
	hasPrefix := false
	if prefix != prefixNone {
		if b, err := c.PeekU8(); err == nil && b == 0x01 {
			c.ReadU8()
			id, err := c.ReadU8()
			if err != nil {
				return "", err
			}
			if prefix == prefixRecord {
				namePrefixID = int(id)
				hasPrefix = true
			}
		}
	}

	textAddr := uint32(c.Pos)
	text, err := readEscapedCString(c, enc)
	if err != nil {
		return "", err
	}

	res.Strings = append(res.Strings, StringMeta{
		Address: textAddr, Text: text, Kind: kind,
		NamePrefixID: namePrefixID, HasNamePrefix: hasPrefix,
	})

	quoted := fmt.Sprintf("%q", exportable(text))
	if hasPrefix {
		return fmt.Sprintf("name=%d, %s", namePrefixID, quoted), nil
	}
	return quoted, nil
}

// deferredTokenMarker brackets an unexpanded SET_TEXT_TOKEN reference
// (opcode bytes 0x81 0x90 followed by a raw token id) inside decoded
// text. NUL never occurs in text decoded from the engine's codecs, so
// it is safe as a sentinel that both export and import round-trip
// without colliding with real content.
const deferredTokenMarker = "\x00TOKEN%d\x00"

// lineBreakMarker is the decoded form of the 0x818F escape: the
// full-width yen sign the engine renders as a line break. Exports show
// it as a literal "\n".
const lineBreakMarker = "￥"

// readEscapedCString reads a NUL-terminated byte run, decoding maximal
// non-escape byte spans through enc and leaving the three-byte
// deferred-token reference (0x81 0x90 <id>) unexpanded in the result,
// per the "lazy token expansion preserves byte offsets" design note.
func readEscapedCString(c *bitio.Cursor, enc encoding.Encoding) (string, error) {
	var sb strings.Builder
	var seg []byte

	flush := func() error {
		if len(seg) == 0 {
			return nil
		}
		s, err := textcodec.Decode(enc, seg)
		if err != nil {
			return err
		}
		sb.WriteString(s)
		seg = seg[:0]
		return nil
	}

	for {
		b, err := c.ReadU8()
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		if b < 0x80 {
			seg = append(seg, b)
			continue
		}
		b2, err := c.ReadU8()
		if err != nil {
			return "", err
		}
		if b == 0x81 && b2 == 0x8F {
			if err := flush(); err != nil {
				return "", err
			}
			sb.WriteString(lineBreakMarker)
			continue
		}
		if b == 0x81 && b2 == 0x90 {
			tok, err := c.ReadU8()
			if err != nil {
				return "", err
			}
			if err := flush(); err != nil {
				return "", err
			}
			fmt.Fprintf(&sb, deferredTokenMarker, tok)
			continue
		}
		seg = append(seg, b, b2)
	}
	if err := flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// exportable replaces the decoded line-break marker (the full-width
// yen sign produced by the 0x818F escape) with a literal "\n" for
// display in a disassembly listing.
func exportable(s string) string {
	return strings.ReplaceAll(s, lineBreakMarker, "\\n")
}
