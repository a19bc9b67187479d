package httpsig

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"slices"
)

const (
	minRSAKeyBits   = 2048
	minHMACKeyBytes = 32
)

var pssOptions = &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash}

// keySigner and keyVerifier back every built-in algorithm; the
// constructors below only validate the key and pick the functions.
type keySigner struct {
	alg   Algorithm
	keyID string
	sign  func(message []byte) ([]byte, error)
}

func (s *keySigner) Sign(message []byte) ([]byte, error) { return s.sign(message) }
func (s *keySigner) Algorithm() Algorithm                { return s.alg }
func (s *keySigner) KeyID() string                       { return s.keyID }

type keyVerifier struct {
	alg    Algorithm
	keyID  string
	verify func(message, signature []byte) bool
}

func (v *keyVerifier) Verify(message, signature []byte) error {
	if !v.verify(message, signature) {
		return ErrSignatureInvalid
	}

	return nil
}

func (v *keyVerifier) Algorithm() Algorithm { return v.alg }
func (v *keyVerifier) KeyID() string        { return v.keyID }

// NewEd25519Signer creates a Signer using Ed25519.
func NewEd25519Signer(keyID string, key ed25519.PrivateKey) (Signer, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: ed25519 private key must be %d bytes", ErrInvalidKey, ed25519.PrivateKeySize)
	}

	return &keySigner{alg: AlgorithmEd25519, keyID: keyID, sign: func(m []byte) ([]byte, error) {
		return ed25519.Sign(key, m), nil
	}}, nil
}

// NewEd25519Verifier creates a Verifier using Ed25519.
func NewEd25519Verifier(keyID string, key ed25519.PublicKey) (Verifier, error) {
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: ed25519 public key must be %d bytes", ErrInvalidKey, ed25519.PublicKeySize)
	}

	return &keyVerifier{alg: AlgorithmEd25519, keyID: keyID, verify: func(m, sig []byte) bool {
		return ed25519.Verify(key, m, sig)
	}}, nil
}

// NewECDSAP256Signer creates a Signer using ECDSA with curve P-256 and SHA-256.
func NewECDSAP256Signer(keyID string, key *ecdsa.PrivateKey) (Signer, error) {
	if err := checkCurve(key, elliptic.P256()); err != nil {
		return nil, err
	}

	return &keySigner{alg: AlgorithmECDSAP256SHA256, keyID: keyID, sign: func(m []byte) ([]byte, error) {
		digest := sha256.Sum256(m)
		return ecdsa.SignASN1(rand.Reader, key, digest[:])
	}}, nil
}

// NewECDSAP256Verifier creates a Verifier using ECDSA with curve P-256 and SHA-256.
func NewECDSAP256Verifier(keyID string, key *ecdsa.PublicKey) (Verifier, error) {
	if err := checkPublicCurve(key, elliptic.P256()); err != nil {
		return nil, err
	}

	return &keyVerifier{alg: AlgorithmECDSAP256SHA256, keyID: keyID, verify: func(m, sig []byte) bool {
		digest := sha256.Sum256(m)
		return ecdsa.VerifyASN1(key, digest[:], sig)
	}}, nil
}

// NewECDSAP384Signer creates a Signer using ECDSA with curve P-384 and SHA-384.
func NewECDSAP384Signer(keyID string, key *ecdsa.PrivateKey) (Signer, error) {
	if err := checkCurve(key, elliptic.P384()); err != nil {
		return nil, err
	}

	return &keySigner{alg: AlgorithmECDSAP384SHA384, keyID: keyID, sign: func(m []byte) ([]byte, error) {
		digest := sha512.Sum384(m)
		return ecdsa.SignASN1(rand.Reader, key, digest[:])
	}}, nil
}

// NewECDSAP384Verifier creates a Verifier using ECDSA with curve P-384 and SHA-384.
func NewECDSAP384Verifier(keyID string, key *ecdsa.PublicKey) (Verifier, error) {
	if err := checkPublicCurve(key, elliptic.P384()); err != nil {
		return nil, err
	}

	return &keyVerifier{alg: AlgorithmECDSAP384SHA384, keyID: keyID, verify: func(m, sig []byte) bool {
		digest := sha512.Sum384(m)
		return ecdsa.VerifyASN1(key, digest[:], sig)
	}}, nil
}

// NewRSAPSSSigner creates a Signer using RSASSA-PSS with SHA-512.
func NewRSAPSSSigner(keyID string, key *rsa.PrivateKey) (Signer, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: rsa private key must not be nil", ErrInvalidKey)
	}

	if err := checkRSASize(&key.PublicKey); err != nil {
		return nil, err
	}

	return &keySigner{alg: AlgorithmRSAPSSSHA512, keyID: keyID, sign: func(m []byte) ([]byte, error) {
		digest := sha512.Sum512(m)
		return rsa.SignPSS(rand.Reader, key, crypto.SHA512, digest[:], pssOptions)
	}}, nil
}

// NewRSAPSSVerifier creates a Verifier using RSASSA-PSS with SHA-512.
func NewRSAPSSVerifier(keyID string, key *rsa.PublicKey) (Verifier, error) {
	if err := checkRSASize(key); err != nil {
		return nil, err
	}

	return &keyVerifier{alg: AlgorithmRSAPSSSHA512, keyID: keyID, verify: func(m, sig []byte) bool {
		digest := sha512.Sum512(m)
		return rsa.VerifyPSS(key, crypto.SHA512, digest[:], sig, pssOptions) == nil
	}}, nil
}

// NewRSAv15Signer creates a Signer using RSASSA-PKCS1-v1_5 with SHA-256.
func NewRSAv15Signer(keyID string, key *rsa.PrivateKey) (Signer, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: rsa private key must not be nil", ErrInvalidKey)
	}

	if err := checkRSASize(&key.PublicKey); err != nil {
		return nil, err
	}

	return &keySigner{alg: AlgorithmRSAv15SHA256, keyID: keyID, sign: func(m []byte) ([]byte, error) {
		digest := sha256.Sum256(m)
		return rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	}}, nil
}

// NewRSAv15Verifier creates a Verifier using RSASSA-PKCS1-v1_5 with SHA-256.
func NewRSAv15Verifier(keyID string, key *rsa.PublicKey) (Verifier, error) {
	if err := checkRSASize(key); err != nil {
		return nil, err
	}

	return &keyVerifier{alg: AlgorithmRSAv15SHA256, keyID: keyID, verify: func(m, sig []byte) bool {
		digest := sha256.Sum256(m)
		return rsa.VerifyPKCS1v15(key, crypto.SHA256, digest[:], sig) == nil
	}}, nil
}

// NewHMACSHA256Signer creates a Signer using HMAC-SHA256.
// The key must be at least 32 bytes.
func NewHMACSHA256Signer(keyID string, key []byte) (Signer, error) {
	if len(key) < minHMACKeyBytes {
		return nil, fmt.Errorf("%w: hmac key must be at least %d bytes", ErrInvalidKey, minHMACKeyBytes)
	}

	key = slices.Clone(key)

	return &keySigner{alg: AlgorithmHMACSHA256, keyID: keyID, sign: func(m []byte) ([]byte, error) {
		return computeHMAC(key, m), nil
	}}, nil
}

// NewHMACSHA256Verifier creates a Verifier using HMAC-SHA256.
// The key must be at least 32 bytes.
func NewHMACSHA256Verifier(keyID string, key []byte) (Verifier, error) {
	if len(key) < minHMACKeyBytes {
		return nil, fmt.Errorf("%w: hmac key must be at least %d bytes", ErrInvalidKey, minHMACKeyBytes)
	}

	key = slices.Clone(key)

	return &keyVerifier{alg: AlgorithmHMACSHA256, keyID: keyID, verify: func(m, sig []byte) bool {
		return hmac.Equal(computeHMAC(key, m), sig)
	}}, nil
}

func computeHMAC(key, message []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(message)

	return h.Sum(nil)
}

func checkCurve(key *ecdsa.PrivateKey, curve elliptic.Curve) error {
	if key == nil {
		return fmt.Errorf("%w: ecdsa private key must not be nil", ErrInvalidKey)
	}

	return checkPublicCurve(&key.PublicKey, curve)
}

func checkPublicCurve(key *ecdsa.PublicKey, curve elliptic.Curve) error {
	if key == nil {
		return fmt.Errorf("%w: ecdsa public key must not be nil", ErrInvalidKey)
	}

	if key.Curve != curve {
		return fmt.Errorf("%w: key curve must be %s", ErrInvalidKey, curve.Params().Name)
	}

	return nil
}

func checkRSASize(key *rsa.PublicKey) error {
	if key == nil {
		return fmt.Errorf("%w: rsa public key must not be nil", ErrInvalidKey)
	}

	if key.N.BitLen() < minRSAKeyBits {
		return fmt.Errorf("%w: rsa key must be at least %d bits", ErrInvalidKey, minRSAKeyBits)
	}

	return nil
}
