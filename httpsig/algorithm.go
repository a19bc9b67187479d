package httpsig

import (
	"fmt"
	"slices"
)

// Algorithm is a value of the alg signature parameter, taken from the
// HTTP Signature Algorithms registry (RFC 9421 Section 6.2).
type Algorithm string

// Registered algorithms.
const (
	AlgorithmRSAPSSSHA512    Algorithm = "rsa-pss-sha512"
	AlgorithmRSAv15SHA256    Algorithm = "rsa-v1_5-sha256"
	AlgorithmHMACSHA256      Algorithm = "hmac-sha256"
	AlgorithmECDSAP256SHA256 Algorithm = "ecdsa-p256-sha256"
	AlgorithmECDSAP384SHA384 Algorithm = "ecdsa-p384-sha384"
	AlgorithmEd25519         Algorithm = "ed25519"
)

var registeredAlgorithms = []Algorithm{
	AlgorithmRSAPSSSHA512,
	AlgorithmRSAv15SHA256,
	AlgorithmHMACSHA256,
	AlgorithmECDSAP256SHA256,
	AlgorithmECDSAP384SHA384,
	AlgorithmEd25519,
}

// ParseAlgorithm returns the registered algorithm named s. Names are
// case-sensitive.
func ParseAlgorithm(s string) (Algorithm, error) {
	a := Algorithm(s)
	if !a.IsRegistered() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
	}

	return a, nil
}

// IsRegistered reports whether a is one of the registered algorithms.
func (a Algorithm) IsRegistered() bool {
	return slices.Contains(registeredAlgorithms, a)
}

func (a Algorithm) String() string {
	return string(a)
}

// Signer holds one private or shared key and signs raw bytes with it.
// KeySigner lifts a Signer into a MessageSigner.
type Signer interface {
	Sign(message []byte) ([]byte, error)
	Algorithm() Algorithm
	KeyID() string
}

// Verifier holds one public or shared key. Verify returns
// ErrSignatureInvalid when signature does not match message.
// KeyVerifier lifts one or more Verifiers into a MessageVerifier.
type Verifier interface {
	Verify(message, signature []byte) error
	Algorithm() Algorithm
	KeyID() string
}
