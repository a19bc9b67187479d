// Package percent encodes and decodes percent-escaped text used in query
// strings.
//
// Encode produces one fixed form for any input: every byte outside the
// unreserved set (ALPHA, DIGIT, "-", ".", "_", "~") is written as an
// uppercase %XX escape. Decode accepts application/x-www-form-urlencoded
// text, so "+" decodes to a space. Re-encoding a decoded value therefore
// yields the same text no matter how the original was escaped.
package percent

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedEscape is returned when a "%" is not followed by two
// hexadecimal digits.
var ErrMalformedEscape = errors.New("percent: malformed escape sequence")

const upperHex = "0123456789ABCDEF"

// Encode escapes every byte of s that is not unreserved.
func Encode(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}

	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)

	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}

		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}

	return b.String()
}

// Decode reverses percent escapes in s and turns "+" into a space.
func Decode(s string) (string, error) {
	if !strings.ContainsAny(s, "%+") {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '+':
			b.WriteByte(' ')

		case '%':
			if i+2 >= len(s) {
				return "", fmt.Errorf("%w: truncated at offset %d", ErrMalformedEscape, i)
			}

			hi, ok1 := unhex(s[i+1])
			lo, ok2 := unhex(s[i+2])
			if !ok1 || !ok2 {
				return "", fmt.Errorf("%w: %q at offset %d", ErrMalformedEscape, s[i:i+3], i)
			}

			b.WriteByte(hi<<4 | lo)
			i += 2

		default:
			b.WriteByte(c)
		}
	}

	return b.String(), nil
}

// Normalize decodes s and encodes the result again.
func Normalize(s string) (string, error) {
	d, err := Decode(s)
	if err != nil {
		return "", err
	}

	return Encode(d), nil
}

func unreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}

	return false
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}

	return 0, false
}
