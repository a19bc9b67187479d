package sfv

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned when text cannot be parsed as a structured
	// value of the requested type.
	ErrMalformed = errors.New("sfv: malformed structured value")

	// ErrUnsupportedType is returned when a value cannot be serialized,
	// either because it is Unknown or because a bare item holds a Go type
	// with no structured representation.
	ErrUnsupportedType = errors.New("sfv: unsupported type")

	// ErrOutOfRange is returned when a number, string, token or key falls
	// outside what RFC 8941 allows to be serialized.
	ErrOutOfRange = errors.New("sfv: value out of range")
)

// ParseError describes where parsing stopped in the input.
type ParseError struct {
	Offset  int
	Message string
	Context string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sfv: parse error at offset %d: %s (near %q)", e.Offset, e.Message, e.Context)
}

// Unwrap makes every ParseError match ErrMalformed.
func (e *ParseError) Unwrap() error {
	return ErrMalformed
}
