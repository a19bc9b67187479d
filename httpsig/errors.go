package httpsig

import "errors"

// Component errors.
var (
	// ErrComponentMissing is returned when a covered component has no value
	// in the message: an absent header, dictionary key or query parameter,
	// or @status on a request.
	ErrComponentMissing = errors.New("httpsig: component missing from message")

	// ErrNotSupported is returned for programmer errors: an unsupported
	// derived component, an explicit @signature-params component, or a
	// trailer lookup. These are never mapped to a verification result.
	ErrNotSupported = errors.New("httpsig: not supported")

	// ErrMalformedComponent is returned when a component value is present
	// but cannot be interpreted, such as a dictionary header that does not
	// parse.
	ErrMalformedComponent = errors.New("httpsig: malformed component value")
)

// Wire format errors.
var (
	// ErrMalformedSignatureHeader is returned when a Signature header
	// occurrence holds no valid member.
	ErrMalformedSignatureHeader = errors.New("httpsig: malformed signature header")

	// ErrMalformedSignatureInputHeader is returned when a Signature-Input
	// header occurrence holds no valid member.
	ErrMalformedSignatureInputHeader = errors.New("httpsig: malformed signature-input header")

	// ErrMalformedSignatureParams is returned when signature parameters
	// text cannot be parsed.
	ErrMalformedSignatureParams = errors.New("httpsig: malformed signature parameters")
)

// Signing errors.
var (
	// ErrNoSigner is returned when SignConfig has no Signer configured.
	ErrNoSigner = errors.New("httpsig: signer must not be nil")
)

// Verification errors.
var (
	// ErrNoVerifier is returned when VerifyConfig has no Verifier configured.
	ErrNoVerifier = errors.New("httpsig: verifier must not be nil")

	// ErrMissingSignatures is returned when a message carries no signature
	// selected for verification.
	ErrMissingSignatures = errors.New("httpsig: no signatures selected for verification")

	// ErrSignatureInput is the category of a VerificationError caused by
	// absent, malformed or policy-rejected signature input.
	ErrSignatureInput = errors.New("httpsig: signature input error")

	// ErrSignatureVerification is the category of a VerificationError
	// caused by expired or mismatching signatures.
	ErrSignatureVerification = errors.New("httpsig: signature verification failed")

	// ErrSignatureInvalid is returned by key verifiers when a signature
	// does not match its input.
	ErrSignatureInvalid = errors.New("httpsig: invalid signature")

	// ErrKeyNotFound is returned by a KeyResolver that has no key for the
	// requested key ID.
	ErrKeyNotFound = errors.New("httpsig: key not found")

	// ErrMalformedPolicy is returned when a policy document cannot be
	// loaded.
	ErrMalformedPolicy = errors.New("httpsig: malformed policy")
)

// Key material errors.
var (
	// ErrInvalidKey is returned when key material is invalid (nil, wrong
	// curve, insufficient size, etc.).
	ErrInvalidKey = errors.New("httpsig: invalid key material")

	// ErrUnsupportedAlgorithm is returned when no key implementation exists
	// for an algorithm.
	ErrUnsupportedAlgorithm = errors.New("httpsig: unsupported algorithm")
)

// Digest errors.
var (
	// ErrDigestMismatch is returned when Content-Digest verification fails.
	ErrDigestMismatch = errors.New("httpsig: content digest mismatch")

	// ErrDigestNotFound is returned when Content-Digest header is required
	// but not present.
	ErrDigestNotFound = errors.New("httpsig: content digest not found")

	// ErrUnsupportedDigest is returned when the digest algorithm is not
	// supported.
	ErrUnsupportedDigest = errors.New("httpsig: unsupported digest algorithm")
)
