// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package sgserr defines the error kinds shared by every codec package
// in this module.
package sgserr

// Kind distinguishes the handful of error conditions the core codecs
// must report distinctly; see the policy notes on each constant.
type Kind int

const (
	// BadMagic means an archive header or chunk tag did not match the
	// expected constant. Aborts the operation; no output is written.
	BadMagic Kind = iota
	// BadPlacement means a declared entry offset+size exceeds the
	// length of the file it is read from.
	BadPlacement
	// Truncated means a reader requested N bytes but fewer remain.
	Truncated
	// UnsupportedFormat means a bit depth, pixel format, or similar
	// parameter fell outside what this codec understands.
	UnsupportedFormat
	// EncodingFailure means a string could not be encoded in the
	// target text codec. Aborts the operation.
	EncodingFailure
	// OverflowTarget means a patched jump target no longer fits in 16
	// bits after string-length changes were applied.
	OverflowTarget
	// MissingTranslation means an address in the change set has no
	// text; the importer warns and reuses the original string.
	MissingTranslation
	// OpcodeError means the script walker could not decode an
	// instruction: an unknown opcode byte, or an operand-reader that
	// failed mid-decode. The walker records it on that instruction's
	// line and ends the walk there.
	OpcodeError
)

func (k Kind) String() string {
	switch k {
	case BadMagic:
		return "bad magic"
	case BadPlacement:
		return "bad placement"
	case Truncated:
		return "truncated"
	case UnsupportedFormat:
		return "unsupported format"
	case EncodingFailure:
		return "encoding failure"
	case OverflowTarget:
		return "overflow target"
	case MissingTranslation:
		return "missing translation"
	case OpcodeError:
		return "opcode error"
	default:
		return "unknown error"
	}
}

// Error is the wrapper type for every error this module raises.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

// Is reports whether target is an *Error with the same Kind, enabling
// errors.Is(err, sgserr.New(sgserr.BadMagic, "")) style comparisons.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New constructs an *Error of the given kind.
func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Msg: msg}
}

// Sentinel returns a zero-message *Error of kind k, suitable as a
// comparison target for errors.Is.
func Sentinel(k Kind) *Error {
	return &Error{Kind: k}
}
