package httpsig

import (
	"context"
	"errors"
	"fmt"
)

// MessageSigner is the signing backend used by SignMessage.
type MessageSigner interface {
	// UpdateParams sets signer-owned parameters, typically Algorithm and
	// KeyID, before the signature base is built.
	UpdateParams(msg Message, params *SignatureParams) error

	// Sign signs input with the key identified by keyID.
	Sign(ctx context.Context, keyID string, input []byte) ([]byte, error)
}

// MessageVerifier is the verification backend used by VerifyMessage.
//
// Verify returns NoMatchingVerifierFound, rather than an error, when the
// declared algorithm or key ID is not one it handles. A non-nil error
// aborts the whole verification pass.
type MessageVerifier interface {
	Verify(ctx context.Context, params *SignatureParams, input, signature []byte) (VerificationResult, error)
}

// KeyResolver returns a Verifier for the given key ID and algorithm. The
// algorithm is empty when the signature does not declare one. Returning
// ErrKeyNotFound, or a nil Verifier, means no key matches.
type KeyResolver func(ctx context.Context, keyID string, alg Algorithm) (Verifier, error)

// KeySigner adapts a single-key Signer to MessageSigner. It sets alg and
// keyid from the key and refuses to sign for any other key ID.
func KeySigner(s Signer) MessageSigner {
	return keySignerAdapter{signer: s}
}

type keySignerAdapter struct {
	signer Signer
}

func (a keySignerAdapter) UpdateParams(_ Message, params *SignatureParams) error {
	params.Algorithm = a.signer.Algorithm()
	params.KeyID = a.signer.KeyID()

	return nil
}

func (a keySignerAdapter) Sign(ctx context.Context, keyID string, input []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if keyID != a.signer.KeyID() {
		return nil, fmt.Errorf("%w: no private key for %q", ErrKeyNotFound, keyID)
	}

	return a.signer.Sign(input)
}

// KeyVerifier adapts a fixed set of Verifiers to MessageVerifier. A
// verifier matches when its key ID equals the signature's keyid (or the
// signature has none) and its algorithm equals the signature's alg (or the
// signature has none).
func KeyVerifier(verifiers ...Verifier) MessageVerifier {
	return ResolverVerifier(func(_ context.Context, keyID string, alg Algorithm) (Verifier, error) {
		for _, v := range verifiers {
			if keyID != "" && v.KeyID() != keyID {
				continue
			}

			if alg != "" && v.Algorithm() != alg {
				continue
			}

			return v, nil
		}

		return nil, ErrKeyNotFound
	})
}

// ResolverVerifier adapts a KeyResolver to MessageVerifier.
func ResolverVerifier(resolve KeyResolver) MessageVerifier {
	return resolverVerifier{resolve: resolve}
}

type resolverVerifier struct {
	resolve KeyResolver
}

func (rv resolverVerifier) Verify(ctx context.Context, params *SignatureParams, input, signature []byte) (VerificationResult, error) {
	if err := ctx.Err(); err != nil {
		return Unknown, err
	}

	v, err := rv.resolve(ctx, params.KeyID, params.Algorithm)
	if errors.Is(err, ErrKeyNotFound) || (err == nil && v == nil) {
		return NoMatchingVerifierFound, nil
	}

	if err != nil {
		return Unknown, err
	}

	if params.Algorithm != "" && v.Algorithm() != params.Algorithm {
		return NoMatchingVerifierFound, nil
	}

	if err := v.Verify(input, signature); err != nil {
		return SignatureMismatch, nil
	}

	return SuccessfullyVerified, nil
}
