// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package script

import (
	"golang.org/x/text/encoding"
)

// TokenTable maps a SET_TEXT_TOKEN id to its decoded text, used to
// resolve DISPLAY_TEXT name prefixes for a human-readable disassembly.
type TokenTable map[int]string

// Tokens builds the token table implied by res's StringToken entries.
func (res *WalkResult) Tokens() TokenTable {
	t := make(TokenTable)
	for _, s := range res.Strings {
		if s.Kind == StringToken {
			t[s.TokenID] = s.Text
		}
	}
	return t
}

// Disassemble walks buf and returns its full instruction listing, one
// line per instruction, in address order.
func Disassemble(buf []byte, enc encoding.Encoding) ([]string, *WalkResult, error) {
	res, err := Walk(buf, enc)
	if err != nil {
		return nil, nil, err
	}
	lines := make([]string, 0, len(res.Instructions))
	for _, ins := range res.Instructions {
		lines = append(lines, ins.Line)
	}
	return lines, res, nil
}

// Export walks buf and renders its patchable strings in the
// translation exchange format.
func Export(buf []byte, enc encoding.Encoding) (string, error) {
	res, err := Walk(buf, enc)
	if err != nil {
		return "", err
	}
	return ExportText(res), nil
}

// Import walks buf, parses an edited export file, and rebuilds the
// script with the translations applied and every branch target shifted
// by the byte delta of the changed strings below it. Warnings carry
// the translations that were skipped rather than applied.
func Import(buf []byte, editText string, enc encoding.Encoding, maxLineLength int) ([]byte, []Diagnostic, error) {
	res, err := Walk(buf, enc)
	if err != nil {
		return nil, nil, err
	}
	edits, err := ParseTranslations(editText)
	if err != nil {
		return nil, nil, err
	}
	return Patch(buf, res, edits, enc, maxLineLength)
}
