package httpsig

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationResult(t *testing.T) {
	tests := []struct {
		result     VerificationResult
		name       string
		inputError bool
	}{
		{result: Unknown, name: "Unknown"},
		{result: SignatureInputNotFound, name: "SignatureInputNotFound", inputError: true},
		{result: SignatureInputMalformed, name: "SignatureInputMalformed", inputError: true},
		{result: SignatureInputComponentMissing, name: "SignatureInputComponentMissing", inputError: true},
		{result: NoMatchingVerifierFound, name: "NoMatchingVerifierFound"},
		{result: SignatureExpired, name: "SignatureExpired"},
		{result: SignatureMismatch, name: "SignatureMismatch"},
		{result: SuccessfullyVerified, name: "SuccessfullyVerified"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.result.String())
			assert.Equal(t, tt.inputError, tt.result.IsInputError())
		})
	}
}

func TestAggregate(t *testing.T) {
	ok := SignatureResult{Name: "ok", Result: SuccessfullyVerified}
	expired := SignatureResult{Name: "old", Result: SignatureExpired}
	unknown := SignatureResult{Name: "odd", Result: Unknown}
	missing := SignatureResult{Name: "bare", Result: SignatureInputNotFound}

	t.Run("nothing selected", func(t *testing.T) {
		assert.ErrorIs(t, aggregate(nil), ErrMissingSignatures)
	})

	t.Run("all verified", func(t *testing.T) {
		assert.NoError(t, aggregate([]SignatureResult{ok, ok}))
	})

	t.Run("failures", func(t *testing.T) {
		err := aggregate([]SignatureResult{ok, expired, unknown})

		var verr *VerificationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, ErrSignatureVerification, verr.Category)
		assert.Equal(t, []string{"old", "odd"}, verr.Names())
		assert.Equal(t, "httpsig: signature verification failed: old (SignatureExpired), odd (Unknown)", err.Error())
	})

	t.Run("input errors win regardless of order", func(t *testing.T) {
		err := aggregate([]SignatureResult{expired, missing, ok})

		assert.ErrorIs(t, err, ErrSignatureInput)
		assert.NotErrorIs(t, err, ErrSignatureVerification)
	})
}
