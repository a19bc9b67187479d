package httpsig

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPolicy(t *testing.T) {
	t.Run("full document", func(t *testing.T) {
		doc := `
names: [sig1, sig2]
tags: [app]
required_components:
  - '"@method"'
  - '@authority'
  - '"x-dict";key="b"'
  - content-type
require:
  created: true
  expires: true
  nonce: true
  alg: true
  keyid: true
max_age: 5m
concurrency: 4
`
		p, err := LoadPolicy(strings.NewReader(doc))
		require.NoError(t, err)

		assert.Equal(t, &Policy{
			Names: []string{"sig1", "sig2"},
			Tags:  []string{"app"},
			RequiredComponents: []Component{
				Derived(ComponentMethod),
				Derived(ComponentAuthority),
				DictionaryHeader("x-dict", "b"),
				Header("content-type"),
			},
			RequireCreated:   true,
			RequireExpires:   true,
			RequireNonce:     true,
			RequireAlgorithm: true,
			RequireKeyID:     true,
			MaxAge:           5 * time.Minute,
			Concurrency:      4,
		}, p)
	})

	t.Run("empty document", func(t *testing.T) {
		p, err := LoadPolicy(strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, &Policy{}, p)
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name string
			doc  string
		}{
			{name: "unknown key", doc: "nmaes: [sig1]"},
			{name: "unknown require key", doc: "require: {created: true, date: true}"},
			{name: "bad yaml", doc: "names: [sig1"},
			{name: "bad component", doc: `required_components: ['"@signature-params"']`},
			{name: "bad duration", doc: "max_age: five minutes"},
			{name: "negative duration", doc: "max_age: -1s"},
			{name: "negative concurrency", doc: "concurrency: -2"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := LoadPolicy(strings.NewReader(tt.doc))
				assert.ErrorIs(t, err, ErrMalformedPolicy)
			})
		}
	})
}

func TestPolicyApply(t *testing.T) {
	p, err := LoadPolicy(strings.NewReader(`
tags: [app]
required_components: ['"@method"']
require: {keyid: true}
`))
	require.NoError(t, err)

	cfg := VerifyConfig{Verifier: acceptAll()}
	p.Apply(&cfg)

	assert.NotNil(t, cfg.Verifier)
	assert.Equal(t, []string{"app"}, cfg.Selection.Tags)
	assert.True(t, cfg.RequireKeyID)

	req := signedRequest(
		`sig1=("@method");keyid="k";tag="app"`,
		`sig2=("@path");tag="other"`,
	)

	results, err := VerifyMessage(context.Background(), NewRequestMessage(req), cfg)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "sig1", results[0].Name)
}
