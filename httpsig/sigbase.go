package httpsig

import (
	"fmt"
	"strings"

	"github.com/vitalvas/msgsig/percent"
	"github.com/vitalvas/msgsig/sfv"
)

// SignatureBase builds the signature base per RFC 9421 Section 2.5. Each
// covered component produces one or more lines "<component-id>": <value>,
// in the order the components are listed, and the final line is
// "@signature-params": <params>. Lines are joined with "\n" and there is no
// trailing newline.
//
// The result depends only on msg and params, so building it twice over an
// unchanged message yields identical bytes.
func SignatureBase(msg Message, params *SignatureParams) ([]byte, error) {
	c := canonicalizer{msg: msg}

	if err := c.visitSignatureParams(params); err != nil {
		return nil, err
	}

	return []byte(strings.Join(c.lines, "\n")), nil
}

// canonicalizer collects signature base lines for one message.
type canonicalizer struct {
	msg   Message
	lines []string
}

func (c *canonicalizer) visitSignatureParams(params *SignatureParams) error {
	for _, comp := range params.components {
		if err := c.visit(comp); err != nil {
			return err
		}
	}

	value, err := params.Serialize()
	if err != nil {
		return err
	}

	c.emit(signatureParamsComponent, value)

	return nil
}

func (c *canonicalizer) visit(comp Component) error {
	switch comp.kind {
	case KindHeader:
		values := c.msg.HeaderValues(comp.name)
		if len(values) == 0 {
			return fmt.Errorf("%w: header %q", ErrComponentMissing, comp.name)
		}

		c.emit(comp, strings.Join(values, ", "))

	case KindDictionaryHeader:
		value, err := c.dictionaryMember(comp)
		if err != nil {
			return err
		}

		c.emit(comp, value)

	case KindDerived:
		value, err := c.msg.DerivedValue(comp.name)
		if err != nil {
			return err
		}

		c.emit(comp, value)

	case KindQueryParam:
		values := c.msg.QueryParamValues(comp.param)
		if len(values) == 0 {
			return fmt.Errorf("%w: query parameter %q", ErrComponentMissing, comp.param)
		}

		for _, v := range values {
			normalized, err := percent.Normalize(v)
			if err != nil {
				return fmt.Errorf("%w: query parameter %q: %w", ErrMalformedComponent, comp.param, err)
			}

			c.emit(comp, normalized)
		}

	case KindRequestResponse:
		values, err := c.requestSignatures(comp)
		if err != nil {
			return err
		}

		for _, v := range values {
			c.emit(comp, v)
		}

	case KindSignatureParams:
		return fmt.Errorf("%w: %s cannot be covered explicitly", ErrNotSupported, ComponentSignatureParams)

	default:
		return fmt.Errorf("%w: component %s", ErrNotSupported, comp)
	}

	return nil
}

func (c *canonicalizer) emit(comp Component, value string) {
	c.lines = append(c.lines, comp.String()+": "+value)
}

// dictionaryMember resolves a dictionary header member. Each header
// occurrence is parsed on its own and the last occurrence holding the key
// wins.
func (c *canonicalizer) dictionaryMember(comp Component) (string, error) {
	values := c.msg.HeaderValues(comp.name)
	if len(values) == 0 {
		return "", fmt.Errorf("%w: header %q", ErrComponentMissing, comp.name)
	}

	var (
		member sfv.Member
		found  bool
	)

	for _, v := range values {
		d, err := sfv.ParseDictionary(v)
		if err != nil {
			return "", fmt.Errorf("%w: header %q: %w", ErrMalformedComponent, comp.name, err)
		}

		if m, ok := d.Get(comp.key); ok {
			member, found = m, true
		}
	}

	if !found {
		return "", fmt.Errorf("%w: header %q has no key %q", ErrComponentMissing, comp.name, comp.key)
	}

	s, err := sfv.SerializeMember(member)
	if err != nil {
		return "", fmt.Errorf("%w: header %q: %w", ErrMalformedComponent, comp.name, err)
	}

	return s, nil
}

// requestSignatures returns the serialized member of every request
// Signature header occurrence that holds the component key.
func (c *canonicalizer) requestSignatures(comp Component) ([]string, error) {
	var values []string

	for _, v := range c.msg.RequestHeaderValues(headerSignature) {
		d, err := sfv.ParseDictionary(v)
		if err != nil {
			return nil, fmt.Errorf("%w: request signature header: %w", ErrMalformedComponent, err)
		}

		m, ok := d.Get(comp.key)
		if !ok {
			continue
		}

		s, err := sfv.SerializeMember(m)
		if err != nil {
			return nil, fmt.Errorf("%w: request signature %q: %w", ErrMalformedComponent, comp.key, err)
		}

		values = append(values, s)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("%w: request signature %q", ErrComponentMissing, comp.key)
	}

	return values, nil
}
