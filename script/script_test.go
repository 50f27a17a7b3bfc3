// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package script

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/text/encoding/japanese"

	"github.com/sgstools/sgscodec/internal/sgserr"
)

func TestWalkDisplayText(t *testing.T) {
	buf := []byte{0x21, 'H', 'i', 0x00, 0x01} // DISPLAY_TEXT "Hi"; END
	res, err := Walk(buf, japanese.ShiftJIS)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Instructions) != 2 {
		t.Fatalf("instructions = %d, want 2", len(res.Instructions))
	}
	if len(res.Strings) != 1 {
		t.Fatalf("strings = %d, want 1", len(res.Strings))
	}
	s := res.Strings[0]
	if s.Address != 1 || s.Text != "Hi" || s.Kind != StringDisplay {
		t.Errorf("string = %+v", s)
	}
}

func TestWalkJumpReference(t *testing.T) {
	buf := []byte{0x10, 0x34, 0x12, 0x01} // JUMP_TO 0x1234; END
	res, err := Walk(buf, japanese.ShiftJIS)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Jumps) != 1 {
		t.Fatalf("jumps = %d, want 1", len(res.Jumps))
	}
	j := res.Jumps[0]
	if j.OperandAddress != 1 || j.TargetAddress != 0x1234 || j.Kind != JumpUnconditional {
		t.Errorf("jump = %+v", j)
	}
}

func TestWalkUnknownOpcodeHalts(t *testing.T) {
	buf := []byte{0x01, 0xEE, 0x01} // END; <unknown 0xEE>; END
	res, err := Walk(buf, japanese.ShiftJIS)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Instructions) != 2 {
		t.Fatalf("instructions = %d, want 2 (walker must halt at unknown opcode)", len(res.Instructions))
	}
	last := res.Instructions[len(res.Instructions)-1]
	if last.Mnemonic != "UNKNOWN_OPCODE" {
		t.Errorf("last mnemonic = %s, want UNKNOWN_OPCODE", last.Mnemonic)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != sgserr.OpcodeError {
		t.Errorf("diagnostics = %+v", res.Diagnostics)
	}
}

func TestTokenTableStoresIDPlusOne(t *testing.T) {
	buf := []byte{0x24, 4, 'B', 'o', 'b', 0x00, 0x01} // SET_TEXT_TOKEN raw id 4
	res, err := Walk(buf, japanese.ShiftJIS)
	if err != nil {
		t.Fatal(err)
	}
	tokens := res.Tokens()
	if tokens[5] != "Bob" {
		t.Fatalf("tokens[5] = %q, want Bob (raw id is stored incremented)", tokens[5])
	}
	if _, ok := tokens[4]; ok {
		t.Errorf("tokens[4] should not exist")
	}
}

func TestNamePrefixResolvesThroughTokenTable(t *testing.T) {
	buf := []byte{
		0x24, 4, 'B', 'o', 'b', 0x00, // SET_TEXT_TOKEN raw id 4 -> stored as 5
		0x21, 0x01, 5, 'H', 'i', 0x00, // DISPLAY_TEXT name=5 "Hi"
		0x01,
	}
	res, err := Walk(buf, japanese.ShiftJIS)
	if err != nil {
		t.Fatal(err)
	}
	var display StringMeta
	for _, s := range res.Strings {
		if s.Kind == StringDisplay {
			display = s
		}
	}
	if !display.HasNamePrefix || display.NamePrefixID != 5 || display.Text != "Hi" || display.Address != 9 {
		t.Errorf("display = %+v", display)
	}
	exported := ExportText(res)
	if !strings.Contains(exported, "◇00000009◇|Bob|Hi") {
		t.Errorf("export missing resolved name prefix:\n%s", exported)
	}
}

func TestChoicePrefixConsumedButDropped(t *testing.T) {
	buf := []byte{0x3E, 0x01, 7, 'G', 'o', 0x00, 0x01} // CHOICE_TEXT with token prefix
	res, err := Walk(buf, japanese.ShiftJIS)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Strings) != 1 {
		t.Fatalf("strings = %d, want 1", len(res.Strings))
	}
	s := res.Strings[0]
	if s.HasNamePrefix || s.Text != "Go" || s.Address != 3 || s.Kind != StringChoice {
		t.Errorf("choice = %+v", s)
	}
}

func TestLineBreakMarkerRoundTrip(t *testing.T) {
	buf := []byte{0x21, 'A', 0x81, 0x8F, 'B', 0x00, 0x01}
	res, err := Walk(buf, japanese.ShiftJIS)
	if err != nil {
		t.Fatal(err)
	}
	if res.Strings[0].Text != "A￥B" {
		t.Fatalf("text = %q", res.Strings[0].Text)
	}
	exported := ExportText(res)
	if !strings.Contains(exported, `◆00000001◆A\nB`) {
		t.Fatalf("export = %q", exported)
	}
	out, warnings, err := Import(buf, exported, japanese.ShiftJIS, DefaultMaxLineLength)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %+v", warnings)
	}
	if !bytes.Equal(out, buf) {
		t.Errorf("unchanged import produced different bytes: %x vs %x", out, buf)
	}
}

func TestExportImportRoundTripNoChange(t *testing.T) {
	buf := []byte{0x21, 'H', 'i', 0x00, 0x01}
	exported, err := Export(buf, japanese.ShiftJIS)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(exported, "◇00000001◇Hi") || !strings.Contains(exported, "◆00000001◆Hi") {
		t.Fatalf("export = %q", exported)
	}
	out, _, err := Import(buf, exported, japanese.ShiftJIS, DefaultMaxLineLength)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, buf) {
		t.Errorf("unchanged import produced different bytes: %x vs %x", out, buf)
	}
}

func TestImportSameLengthLeavesJumpsAlone(t *testing.T) {
	buf := []byte{0x14, 0x07, 0x00, 0x21, 'H', 'i', 0x00, 0x01} // JUMP_TO 7; DISPLAY_TEXT "Hi"; END
	out, _, err := Import(buf, "◆00000004◆Yo", japanese.ShiftJIS, DefaultMaxLineLength)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x14, 0x07, 0x00, 0x21, 'Y', 'o', 0x00, 0x01}
	if !bytes.Equal(out, want) {
		t.Errorf("patched = %x, want %x", out, want)
	}
}

func TestImportGrowthBeforeTargetShiftsJump(t *testing.T) {
	// The jump lands on the END past the string, so growing the string
	// must push the target along with it.
	buf := []byte{0x14, 0x07, 0x00, 0x21, 'A', 'B', 0x00, 0x01}
	out, _, err := Import(buf, "◆00000004◆ABCD", japanese.ShiftJIS, DefaultMaxLineLength)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x14, 0x09, 0x00, 0x21, 'A', 'B', 'C', 'D', 0x00, 0x01}
	if !bytes.Equal(out, want) {
		t.Errorf("patched = %x, want %x", out, want)
	}
}

func TestImportGrowthAfterTargetLeavesJumpAlone(t *testing.T) {
	// JUMP_TO 0x0010 lands on the DISPLAY_TEXT opcode itself; the
	// changed string begins past the target, so the operand word must
	// not move even though the file grows.
	buf := append([]byte{0x14, 0x10, 0x00}, make([]byte, 13)...) // jump + NOP padding to 0x10
	buf = append(buf, 0x21, 0x01, 0x05, 'H', 'i', 0x00, 0x01)
	out, _, err := Import(buf, "◆00000013◆Hello", japanese.ShiftJIS, DefaultMaxLineLength)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(buf)+3 {
		t.Fatalf("patched size = %d, want %d", len(out), len(buf)+3)
	}
	if out[1] != 0x10 || out[2] != 0x00 {
		t.Errorf("jump operand = %02x%02x, want unchanged 1000", out[1], out[2])
	}
	if !bytes.Equal(out[0x13:0x19], []byte{'H', 'e', 'l', 'l', 'o', 0x00}) {
		t.Errorf("patched string bytes = %x", out[0x13:0x19])
	}
}

func TestImportJumpOverflowRejected(t *testing.T) {
	buf := []byte{0x14, 0xFE, 0xFF, 0x21, 'A', 0x00, 0x01}
	_, _, err := Import(buf, "◆00000004◆ABCDE", japanese.ShiftJIS, DefaultMaxLineLength)
	serr, ok := err.(*sgserr.Error)
	if !ok || serr.Kind != sgserr.OverflowTarget {
		t.Errorf("err = %v, want OverflowTarget", err)
	}
}

func TestImportUnknownAddressWarns(t *testing.T) {
	buf := []byte{0x21, 'H', 'i', 0x00, 0x01}
	out, warnings, err := Import(buf, "◆000000FF◆Nope", japanese.ShiftJIS, DefaultMaxLineLength)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 1 || warnings[0].Kind != sgserr.MissingTranslation {
		t.Fatalf("warnings = %+v", warnings)
	}
	if !bytes.Equal(out, buf) {
		t.Errorf("output modified despite skipped translation")
	}
}

func TestImportEmptyTranslationKeepsOriginal(t *testing.T) {
	buf := []byte{0x21, 'H', 'i', 0x00, 0x01}
	out, warnings, err := Import(buf, "◆00000001◆", japanese.ShiftJIS, DefaultMaxLineLength)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 1 || warnings[0].Kind != sgserr.MissingTranslation {
		t.Fatalf("warnings = %+v", warnings)
	}
	if !bytes.Equal(out, buf) {
		t.Errorf("output modified despite empty translation")
	}
}

func TestParseTranslationsStripsNameField(t *testing.T) {
	edits, err := ParseTranslations("◇00000009◇|Bob|Hi\n◆00000009◆|Bob|Hello\n\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(edits) != 1 {
		t.Fatalf("edits = %d, want 1", len(edits))
	}
	if edits[0].Address != 9 || edits[0].Text != "Hello" {
		t.Errorf("edit = %+v", edits[0])
	}
}

func TestUnescapeText(t *testing.T) {
	var vectors = []struct {
		in, want string
	}{
		{`plain`, "plain"},
		{`a\nb`, "a￥b"},
		{`a\\nb`, `a\nb`},
		{`a\\\\b`, `a\\b`},
		{`trailing\`, `trailing\`},
	}
	for _, v := range vectors {
		if got := unescapeText(v.in); got != v.want {
			t.Errorf("unescapeText(%q) = %q, want %q", v.in, got, v.want)
		}
	}
	for _, s := range []string{"plain", "a￥b", `a\b`, `tail\`} {
		if got := unescapeText(escapeText(s)); got != s {
			t.Errorf("escape round trip of %q = %q", s, got)
		}
	}
}

func TestAutoLineBreak(t *testing.T) {
	got := autoLineBreak("aaa bbb ccc", 7)
	if got != "aaa￥bbb ccc" {
		t.Errorf("autoLineBreak = %q", got)
	}
	got = autoLineBreak("abcdefghij", 4)
	if got != "abcd￥efgh￥ij" {
		t.Errorf("autoLineBreak no-space = %q", got)
	}
	if got := autoLineBreak("short", 50); got != "short" {
		t.Errorf("autoLineBreak short = %q", got)
	}
}

func TestStringOffsetsStrictlyIncreasing(t *testing.T) {
	buf := []byte{
		0x24, 1, 'A', 0x00,
		0x21, 'B', 0x00,
		0x3E, 'C', 0x00,
		0x01,
	}
	res, err := Walk(buf, japanese.ShiftJIS)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(res.Strings); i++ {
		if res.Strings[i].Address <= res.Strings[i-1].Address {
			t.Fatalf("string %d at %#x not past %#x", i, res.Strings[i].Address, res.Strings[i-1].Address)
		}
	}
}
