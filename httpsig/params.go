package httpsig

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/vitalvas/msgsig/sfv"
)

// SignatureParams holds the covered components and metadata of one
// signature. Component order is significant: it is the order of lines in
// the signature base.
//
// Params built with NewSignatureParams are serialized afresh. Params
// returned by ParseSignatureParams keep the text they were parsed from and
// reuse it verbatim as the @signature-params value, so that parameter order
// and formatting chosen by the signer survive verification.
type SignatureParams struct {
	components []Component

	// Created is the signature creation time. Zero means unset.
	Created time.Time

	// Expires is the signature expiration time. Zero means unset.
	Expires time.Time

	// Nonce is an optional opaque value chosen by the signer.
	Nonce string

	// Algorithm is the optional algorithm identifier.
	Algorithm Algorithm

	// KeyID identifies the key used to sign.
	KeyID string

	// Tag is an optional application-specific label.
	Tag string

	raw    string
	parsed bool
}

// NewSignatureParams returns params covering the given components in order.
func NewSignatureParams(components ...Component) (*SignatureParams, error) {
	p := &SignatureParams{}

	for _, c := range components {
		if err := p.AddComponent(c); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// AddComponent appends c to the covered components. The @signature-params
// component is always implicit; adding it fails with ErrNotSupported.
func (p *SignatureParams) AddComponent(c Component) error {
	if c.kind == KindSignatureParams {
		return fmt.Errorf("%w: %s cannot be covered explicitly", ErrNotSupported, ComponentSignatureParams)
	}

	p.components = append(p.components, c)

	return nil
}

// Components returns the covered components in order.
func (p *SignatureParams) Components() []Component {
	return slices.Clone(p.components)
}

// HasComponent reports whether c is covered.
func (p *SignatureParams) HasComponent(c Component) bool {
	return slices.Contains(p.components, c)
}

// Raw returns the text the params were parsed from.
func (p *SignatureParams) Raw() (string, bool) {
	return p.raw, p.parsed
}

// Serialize returns the @signature-params value: the original text for
// parsed params, or a fresh inner list with the parameters created,
// expires, nonce, alg, keyid and tag in that order, each only when set.
func (p *SignatureParams) Serialize() (string, error) {
	if p.parsed {
		return p.raw, nil
	}

	il := sfv.InnerList{Items: make([]sfv.Item, 0, len(p.components))}
	for _, c := range p.components {
		il.Items = append(il.Items, c.item())
	}

	if !p.Created.IsZero() {
		il.Params.Set("created", p.Created.Unix())
	}

	if !p.Expires.IsZero() {
		il.Params.Set("expires", p.Expires.Unix())
	}

	if p.Nonce != "" {
		il.Params.Set("nonce", p.Nonce)
	}

	if p.Algorithm != "" {
		il.Params.Set("alg", p.Algorithm.String())
	}

	if p.KeyID != "" {
		il.Params.Set("keyid", p.KeyID)
	}

	if p.Tag != "" {
		il.Params.Set("tag", p.Tag)
	}

	s, err := sfv.SerializeInnerList(il)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedSignatureParams, err)
	}

	return s, nil
}

// String returns the serialized params, or an empty string when they
// cannot be serialized.
func (p *SignatureParams) String() string {
	s, _ := p.Serialize()
	return s
}

// ParseSignatureParams parses a Signature-Input member value such as
// ("@method" "@path");created=1618884473;keyid="test-key". Unknown
// parameters are ignored; duplicate components and unregistered alg values
// are rejected.
func ParseSignatureParams(raw string) (*SignatureParams, error) {
	raw = strings.Trim(raw, " \t")

	il, err := sfv.ParseInnerList(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSignatureParams, err)
	}

	p := &SignatureParams{raw: raw, parsed: true}

	for _, it := range il.Items {
		c, err := componentFromItem(it)
		if err != nil {
			return nil, err
		}

		if p.HasComponent(c) {
			return nil, fmt.Errorf("%w: duplicate component %s", ErrMalformedSignatureParams, c)
		}

		p.components = append(p.components, c)
	}

	for _, param := range il.Params {
		switch param.Key {
		case "created":
			t, err := unixParam(param)
			if err != nil {
				return nil, err
			}

			p.Created = t

		case "expires":
			t, err := unixParam(param)
			if err != nil {
				return nil, err
			}

			p.Expires = t

		case "nonce":
			s, err := stringParam(param)
			if err != nil {
				return nil, err
			}

			p.Nonce = s

		case "alg":
			s, err := stringParam(param)
			if err != nil {
				return nil, err
			}

			alg, err := ParseAlgorithm(s)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrMalformedSignatureParams, err)
			}

			p.Algorithm = alg

		case "keyid":
			s, err := stringParam(param)
			if err != nil {
				return nil, err
			}

			p.KeyID = s

		case "tag":
			s, err := stringParam(param)
			if err != nil {
				return nil, err
			}

			p.Tag = s
		}
	}

	return p, nil
}

func unixParam(param sfv.Param) (time.Time, error) {
	n, ok := param.Value.(int64)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s must be an integer", ErrMalformedSignatureParams, param.Key)
	}

	return time.Unix(n, 0), nil
}

func stringParam(param sfv.Param) (string, error) {
	s, ok := param.Value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrMalformedSignatureParams, param.Key)
	}

	return s, nil
}
