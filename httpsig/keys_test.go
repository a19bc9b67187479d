package httpsig

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyPairs(t *testing.T) {
	want := []Algorithm{
		AlgorithmEd25519,
		AlgorithmECDSAP256SHA256,
		AlgorithmECDSAP384SHA384,
		AlgorithmRSAPSSSHA512,
		AlgorithmRSAv15SHA256,
		AlgorithmHMACSHA256,
	}

	pairs := createKeyPairs(t)
	require.Len(t, pairs, len(want))

	for i, kp := range pairs {
		t.Run(kp.signer.Algorithm().String(), func(t *testing.T) {
			assert.Equal(t, want[i], kp.signer.Algorithm())
			assert.Equal(t, kp.signer.Algorithm(), kp.verifier.Algorithm())
			assert.Equal(t, kp.signer.KeyID(), kp.verifier.KeyID())

			sig, err := kp.signer.Sign([]byte("payload"))
			require.NoError(t, err)
			require.NotEmpty(t, sig)

			assert.NoError(t, kp.verifier.Verify([]byte("payload"), sig))
			assert.ErrorIs(t, kp.verifier.Verify([]byte("payload!"), sig), ErrSignatureInvalid)
			assert.ErrorIs(t, kp.verifier.Verify([]byte("payload"), nil), ErrSignatureInvalid)
		})
	}

	t.Run("signatures do not cross algorithms", func(t *testing.T) {
		sig, err := pairs[0].signer.Sign([]byte("payload"))
		require.NoError(t, err)

		for _, kp := range pairs[1:] {
			assert.ErrorIs(t, kp.verifier.Verify([]byte("payload"), sig), ErrSignatureInvalid, kp.verifier.Algorithm())
		}
	})
}

func TestHMACSHA256(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	signer, err := NewHMACSHA256Signer("shared", key)
	require.NoError(t, err)

	verifier, err := NewHMACSHA256Verifier("shared", key)
	require.NoError(t, err)

	first, err := signer.Sign([]byte("payload"))
	require.NoError(t, err)

	second, err := signer.Sign([]byte("payload"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 32)

	t.Run("caller key changes are not observed", func(t *testing.T) {
		key[0] ^= 0xff

		sig, err := signer.Sign([]byte("payload"))
		require.NoError(t, err)
		assert.Equal(t, first, sig)
		assert.NoError(t, verifier.Verify([]byte("payload"), sig))
	})
}

func TestInvalidKeys(t *testing.T) {
	p256, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	p384, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	require.NoError(t, err)

	small, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)

	tests := []struct {
		name string
		fn   func() error
	}{
		{name: "ed25519 short private key", fn: func() error {
			_, err := NewEd25519Signer("k", ed25519.PrivateKey(make([]byte, 10)))
			return err
		}},
		{name: "ed25519 short public key", fn: func() error {
			_, err := NewEd25519Verifier("k", ed25519.PublicKey(make([]byte, 10)))
			return err
		}},
		{name: "p256 nil private key", fn: func() error {
			_, err := NewECDSAP256Signer("k", nil)
			return err
		}},
		{name: "p256 nil public key", fn: func() error {
			_, err := NewECDSAP256Verifier("k", nil)
			return err
		}},
		{name: "p256 signer with p384 key", fn: func() error {
			_, err := NewECDSAP256Signer("k", p384)
			return err
		}},
		{name: "p256 verifier with p384 key", fn: func() error {
			_, err := NewECDSAP256Verifier("k", &p384.PublicKey)
			return err
		}},
		{name: "p384 signer with p256 key", fn: func() error {
			_, err := NewECDSAP384Signer("k", p256)
			return err
		}},
		{name: "p384 verifier with p256 key", fn: func() error {
			_, err := NewECDSAP384Verifier("k", &p256.PublicKey)
			return err
		}},
		{name: "rsa-pss nil private key", fn: func() error {
			_, err := NewRSAPSSSigner("k", nil)
			return err
		}},
		{name: "rsa-pss small key", fn: func() error {
			_, err := NewRSAPSSSigner("k", small)
			return err
		}},
		{name: "rsa-pss small public key", fn: func() error {
			_, err := NewRSAPSSVerifier("k", &small.PublicKey)
			return err
		}},
		{name: "rsa-v1_5 nil private key", fn: func() error {
			_, err := NewRSAv15Signer("k", nil)
			return err
		}},
		{name: "rsa-v1_5 nil public key", fn: func() error {
			_, err := NewRSAv15Verifier("k", nil)
			return err
		}},
		{name: "rsa-v1_5 small public key", fn: func() error {
			_, err := NewRSAv15Verifier("k", &small.PublicKey)
			return err
		}},
		{name: "hmac short signer key", fn: func() error {
			_, err := NewHMACSHA256Signer("k", make([]byte, 31))
			return err
		}},
		{name: "hmac short verifier key", fn: func() error {
			_, err := NewHMACSHA256Verifier("k", nil)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.fn(), ErrInvalidKey)
		})
	}
}
