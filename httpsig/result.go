package httpsig

import (
	"strings"
)

// VerificationResult is the outcome of verifying one signature. Values are
// ordered by the pipeline stage that produces them; only
// SuccessfullyVerified is a success.
type VerificationResult int

const (
	Unknown VerificationResult = iota
	SignatureInputNotFound
	SignatureInputMalformed
	SignatureInputComponentMissing
	NoMatchingVerifierFound
	SignatureExpired
	SignatureMismatch
	SuccessfullyVerified
)

func (r VerificationResult) String() string {
	switch r {
	case SignatureInputNotFound:
		return "SignatureInputNotFound"
	case SignatureInputMalformed:
		return "SignatureInputMalformed"
	case SignatureInputComponentMissing:
		return "SignatureInputComponentMissing"
	case NoMatchingVerifierFound:
		return "NoMatchingVerifierFound"
	case SignatureExpired:
		return "SignatureExpired"
	case SignatureMismatch:
		return "SignatureMismatch"
	case SuccessfullyVerified:
		return "SuccessfullyVerified"
	default:
		return "Unknown"
	}
}

// IsInputError reports whether r stems from absent, malformed or
// policy-rejected signature input rather than from the signature itself.
func (r VerificationResult) IsInputError() bool {
	switch r {
	case SignatureInputNotFound, SignatureInputMalformed, SignatureInputComponentMissing:
		return true
	default:
		return false
	}
}

// SignatureResult is the outcome for one named signature.
type SignatureResult struct {
	Name   string
	Result VerificationResult

	// Params is nil when the input was absent or malformed.
	Params *SignatureParams

	// Err explains a non-success result when one is known.
	Err error
}

// VerificationError is the aggregate failure of a verification pass. Its
// Category is ErrSignatureInput or ErrSignatureVerification and Signatures
// lists every signature in that category.
type VerificationError struct {
	Category   error
	Signatures []SignatureResult
}

func (e *VerificationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Category.Error())
	b.WriteString(": ")

	for i, s := range e.Signatures {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(s.Name)
		b.WriteString(" (")
		b.WriteString(s.Result.String())
		b.WriteByte(')')
	}

	return b.String()
}

func (e *VerificationError) Unwrap() error {
	return e.Category
}

// Names returns the failing signature names.
func (e *VerificationError) Names() []string {
	names := make([]string, len(e.Signatures))
	for i, s := range e.Signatures {
		names[i] = s.Name
	}

	return names
}

// aggregate turns per-signature results into the pass outcome: input
// errors take precedence over verification failures.
func aggregate(results []SignatureResult) error {
	if len(results) == 0 {
		return ErrMissingSignatures
	}

	var inputErrs, failures []SignatureResult

	for _, r := range results {
		switch {
		case r.Result == SuccessfullyVerified:
		case r.Result.IsInputError():
			inputErrs = append(inputErrs, r)
		default:
			failures = append(failures, r)
		}
	}

	if len(inputErrs) > 0 {
		return &VerificationError{Category: ErrSignatureInput, Signatures: inputErrs}
	}

	if len(failures) > 0 {
		return &VerificationError{Category: ErrSignatureVerification, Signatures: failures}
	}

	return nil
}
