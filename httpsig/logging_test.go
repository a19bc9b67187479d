package httpsig

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogResults(t *testing.T) {
	var buf bytes.Buffer
	hook := LogResults(zerolog.New(&buf).Level(zerolog.DebugLevel))

	req := signedRequest(
		`good=("@method");alg="ed25519";keyid="k1";tag="app"`,
		`bad=("x-missing");keyid="k2"`,
	)

	_, err := VerifyMessage(context.Background(), NewRequestMessage(req), VerifyConfig{
		Verifier:  acceptAll(),
		Selection: SelectAll(),
		OnResult:  hook,
	})
	require.Error(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var good, bad map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &good))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &bad))

	assert.Equal(t, "debug", good["level"])
	assert.Equal(t, "good", good["signature"])
	assert.Equal(t, "SuccessfullyVerified", good["result"])
	assert.Equal(t, "k1", good["keyid"])
	assert.Equal(t, "ed25519", good["alg"])
	assert.Equal(t, "app", good["tag"])
	assert.NotContains(t, good, "error")

	assert.Equal(t, "warn", bad["level"])
	assert.Equal(t, "bad", bad["signature"])
	assert.Equal(t, "SignatureInputComponentMissing", bad["result"])
	assert.Contains(t, bad["error"], "x-missing")
}

func TestLogResultsWithoutParams(t *testing.T) {
	var buf bytes.Buffer
	hook := LogResults(zerolog.New(&buf))

	req := httptest.NewRequest("GET", "https://example.com/", nil)
	req.Header.Set("Signature", "orphan=:AQID:")

	_, _ = VerifyMessage(context.Background(), NewRequestMessage(req), VerifyConfig{
		Verifier:  acceptAll(),
		Selection: SelectAll(),
		OnResult:  hook,
	})

	assert.Contains(t, buf.String(), `"signature":"orphan"`)
	assert.Contains(t, buf.String(), `"result":"SignatureInputNotFound"`)
	assert.NotContains(t, buf.String(), "keyid")
}
