package httpsig

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Policy is the data part of a VerifyConfig, loadable from YAML:
//
//	names: [sig1]
//	tags: [app]
//	required_components: ['"@method"', '"x-dict";key="b"']
//	require:
//	  created: true
//	  keyid: true
//	max_age: 5m
//	concurrency: 4
type Policy struct {
	Names              []string
	Tags               []string
	RequiredComponents []Component
	RequireCreated     bool
	RequireExpires     bool
	RequireNonce       bool
	RequireAlgorithm   bool
	RequireKeyID       bool
	MaxAge             time.Duration
	Concurrency        int
}

type policyDocument struct {
	Names              []string `yaml:"names"`
	Tags               []string `yaml:"tags"`
	RequiredComponents []string `yaml:"required_components"`
	Require            struct {
		Created bool `yaml:"created"`
		Expires bool `yaml:"expires"`
		Nonce   bool `yaml:"nonce"`
		Alg     bool `yaml:"alg"`
		KeyID   bool `yaml:"keyid"`
	} `yaml:"require"`
	MaxAge      string `yaml:"max_age"`
	Concurrency int    `yaml:"concurrency"`
}

// LoadPolicy reads a YAML policy. Unknown keys are rejected. An empty
// document yields the zero Policy.
func LoadPolicy(r io.Reader) (*Policy, error) {
	var doc policyDocument

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPolicy, err)
	}

	p := &Policy{
		Names:            doc.Names,
		Tags:             doc.Tags,
		RequireCreated:   doc.Require.Created,
		RequireExpires:   doc.Require.Expires,
		RequireNonce:     doc.Require.Nonce,
		RequireAlgorithm: doc.Require.Alg,
		RequireKeyID:     doc.Require.KeyID,
		Concurrency:      doc.Concurrency,
	}

	for _, spec := range doc.RequiredComponents {
		c, err := ParseComponent(spec)
		if err != nil {
			return nil, fmt.Errorf("%w: required component %q: %w", ErrMalformedPolicy, spec, err)
		}

		p.RequiredComponents = append(p.RequiredComponents, c)
	}

	if doc.MaxAge != "" {
		d, err := time.ParseDuration(doc.MaxAge)
		if err != nil {
			return nil, fmt.Errorf("%w: max_age: %w", ErrMalformedPolicy, err)
		}

		if d < 0 {
			return nil, fmt.Errorf("%w: max_age must not be negative", ErrMalformedPolicy)
		}

		p.MaxAge = d
	}

	if p.Concurrency < 0 {
		return nil, fmt.Errorf("%w: concurrency must not be negative", ErrMalformedPolicy)
	}

	return p, nil
}

// Apply copies the policy into cfg. Callbacks and the verifier are left
// untouched.
func (p *Policy) Apply(cfg *VerifyConfig) {
	cfg.Selection.Names = p.Names
	cfg.Selection.Tags = p.Tags
	cfg.RequiredComponents = p.RequiredComponents
	cfg.RequireCreated = p.RequireCreated
	cfg.RequireExpires = p.RequireExpires
	cfg.RequireNonce = p.RequireNonce
	cfg.RequireAlgorithm = p.RequireAlgorithm
	cfg.RequireKeyID = p.RequireKeyID
	cfg.MaxAge = p.MaxAge
	cfg.Concurrency = p.Concurrency
}
