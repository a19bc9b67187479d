package httpsig

import (
	"fmt"
	"strings"

	"github.com/vitalvas/msgsig/sfv"
)

// Header field names, lowercase as used by Message.
const (
	headerSignature      = "signature"
	headerSignatureInput = "signature-input"
	headerContentDigest  = "content-digest"
)

// SignatureContext is one named signature found on a message.
type SignatureContext struct {
	// Name is the dictionary key shared by the Signature and
	// Signature-Input members.
	Name string

	// Input is the raw Signature-Input member value. It is only
	// meaningful when HasInput is true.
	Input string

	// HasInput is false when no Signature-Input member carries Name.
	HasInput bool

	// Signature is the decoded signature value.
	Signature []byte
}

// ParseSignatureHeaders pairs Signature and Signature-Input header
// occurrences into signature contexts, ordered by first appearance in the
// Signature header. Every signature is kept; one without a matching input
// has HasInput set to false. Inputs without a signature are dropped.
//
// An occurrence that holds no valid member fails the whole parse; partial
// results are never returned. When a name repeats, the last member wins.
func ParseSignatureHeaders(signatures, inputs []string) ([]SignatureContext, error) {
	var (
		order  []string
		values = map[string][]byte{}
	)

	for _, occurrence := range signatures {
		members, err := parseSignatureOccurrence(occurrence)
		if err != nil {
			return nil, err
		}

		for _, m := range members {
			if _, ok := values[m.name]; !ok {
				order = append(order, m.name)
			}

			values[m.name] = m.value
		}
	}

	raw := map[string]string{}

	for _, occurrence := range inputs {
		members, err := parseInputOccurrence(occurrence)
		if err != nil {
			return nil, err
		}

		for _, m := range members {
			raw[m.name] = m.value
		}
	}

	out := make([]SignatureContext, 0, len(order))
	for _, name := range order {
		input, ok := raw[name]
		out = append(out, SignatureContext{
			Name:      name,
			Input:     input,
			HasInput:  ok,
			Signature: values[name],
		})
	}

	return out, nil
}

type signatureMember struct {
	name  string
	value []byte
}

// parseSignatureOccurrence parses "name=:base64:" members. Parameters on a
// member are allowed and ignored.
func parseSignatureOccurrence(s string) ([]signatureMember, error) {
	d, err := sfv.ParseDictionary(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSignatureHeader, err)
	}

	if d.Len() == 0 {
		return nil, fmt.Errorf("%w: no signatures in %q", ErrMalformedSignatureHeader, s)
	}

	members := make([]signatureMember, 0, d.Len())
	for _, name := range d.Keys() {
		m, _ := d.Get(name)

		it, ok := m.(sfv.Item)
		if !ok {
			return nil, fmt.Errorf("%w: signature %q is not an item", ErrMalformedSignatureHeader, name)
		}

		b, ok := it.Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("%w: signature %q is not byte-sequence encoded", ErrMalformedSignatureHeader, name)
		}

		members = append(members, signatureMember{name: name, value: b})
	}

	return members, nil
}

type inputMember struct {
	name  string
	value string
}

// parseInputOccurrence splits "name=<params>" members while keeping each
// value's text untouched. Only the outer shape is checked here: a valid key
// and a value that opens an inner list. The value itself is parsed later as
// signature parameters.
func parseInputOccurrence(s string) ([]inputMember, error) {
	parts := splitQuoteAware(s, ',')
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: no signature inputs in %q", ErrMalformedSignatureInputHeader, s)
	}

	members := make([]inputMember, 0, len(parts))
	for _, part := range parts {
		name, value, ok := strings.Cut(part, "=")
		if !ok || !isKey(name) {
			return nil, fmt.Errorf("%w: invalid member %q", ErrMalformedSignatureInputHeader, part)
		}

		if !strings.HasPrefix(value, "(") {
			return nil, fmt.Errorf("%w: member %q is not an inner list", ErrMalformedSignatureInputHeader, name)
		}

		members = append(members, inputMember{name: name, value: strings.TrimRight(value, " \t")})
	}

	return members, nil
}

// isKey reports whether s is a structured field dictionary key.
func isKey(s string) bool {
	if s == "" || !(s[0] >= 'a' && s[0] <= 'z' || s[0] == '*') {
		return false
	}

	for i := 1; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '-' || c == '.' || c == '*') {
			return false
		}
	}

	return true
}

// splitQuoteAware splits s on delim while respecting "..." quoted regions.
// Backslash-escaped quotes (\") inside quoted strings are handled. Each
// resulting part is trimmed of whitespace and empty parts are skipped.
func splitQuoteAware(s string, delim byte) []string {
	var result []string
	var part strings.Builder
	inQuote := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if inQuote {
			if ch == '\\' && i+1 < len(s) {
				part.WriteByte(ch)
				i++
				part.WriteByte(s[i])
				continue
			}

			if ch == '"' {
				inQuote = false
			}

			part.WriteByte(ch)
			continue
		}

		if ch == '"' {
			inQuote = true
			part.WriteByte(ch)
			continue
		}

		if ch == delim {
			if p := strings.TrimSpace(part.String()); p != "" {
				result = append(result, p)
			}

			part.Reset()
			continue
		}

		part.WriteByte(ch)
	}

	if p := strings.TrimSpace(part.String()); p != "" {
		result = append(result, p)
	}

	return result
}
