package fullform

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode matches every failure returned by Decode.
	ErrDecode = errors.New("fullform: decode failed")

	// ErrSyntax reports malformed input: unbalanced brackets, stray tokens,
	// characters outside the grammar.
	ErrSyntax = errors.New("fullform: syntax error")

	// ErrUnknownHead reports a Head[...] application whose head is not in
	// the codec's vocabulary.
	ErrUnknownHead = errors.New("fullform: unknown head")

	// ErrArity reports a known head applied to the wrong number of arguments.
	ErrArity = errors.New("fullform: wrong number of arguments")
)

// DecodeError describes where and why decoding stopped. It matches ErrDecode
// and exactly one of ErrSyntax, ErrUnknownHead or ErrArity.
type DecodeError struct {
	Input string
	Pos   int
	Kind  error
	Msg   string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("fullform: decode %q at offset %d: %s", e.Input, e.Pos, e.Msg)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Kind} }

func syntaxErr(src string, pos int, format string, args ...any) error {
	return &DecodeError{Input: src, Pos: pos, Kind: ErrSyntax, Msg: fmt.Sprintf(format, args...)}
}
