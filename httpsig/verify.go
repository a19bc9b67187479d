package httpsig

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// Selection decides which signatures on a message are verified. A
// signature is selected when its name is listed in Names, its tag is listed
// in Tags, or Func returns true for it. Signatures that are not selected
// are ignored entirely; the zero Selection selects nothing.
type Selection struct {
	// Names lists signature names to verify.
	Names []string

	// Tags lists signature tag parameters to verify.
	Tags []string

	// Func is an optional predicate. Params is nil when the signature has
	// no input or its input does not parse.
	Func func(sc SignatureContext, params *SignatureParams) bool
}

// SelectAll returns a Selection that selects every signature.
func SelectAll() Selection {
	return Selection{Func: func(SignatureContext, *SignatureParams) bool { return true }}
}

func (s Selection) selects(sc SignatureContext, params *SignatureParams) bool {
	if slices.Contains(s.Names, sc.Name) {
		return true
	}

	if params != nil && params.Tag != "" && slices.Contains(s.Tags, params.Tag) {
		return true
	}

	return s.Func != nil && s.Func(sc, params)
}

// NonceFunc reports whether a nonce is acceptable, typically by checking a
// replay cache. It is only called for signatures that carry a nonce.
type NonceFunc func(ctx context.Context, nonce string, params *SignatureParams) bool

// ResultHook observes the outcome of every selected signature.
type ResultHook func(ctx context.Context, result SignatureResult)

// VerifyConfig configures HTTP message signature verification per RFC 9421.
type VerifyConfig struct {
	// Verifier checks signatures against their signature base. Required.
	Verifier MessageVerifier

	// Selection picks the signatures to verify.
	Selection Selection

	// RequiredComponents lists components every selected signature must
	// cover.
	RequiredComponents []Component

	// RequireCreated, RequireExpires, RequireNonce, RequireAlgorithm and
	// RequireKeyID make the matching signature parameter mandatory.
	RequireCreated   bool
	RequireExpires   bool
	RequireNonce     bool
	RequireAlgorithm bool
	RequireKeyID     bool

	// MaxAge is the maximum acceptable age of a signature. When non-zero,
	// the created parameter is mandatory and signatures older than MaxAge
	// are expired.
	MaxAge time.Duration

	// AcceptNonce, when set, is consulted for every nonce.
	AcceptNonce NonceFunc

	// OnResult, when set, is called once per selected signature in
	// discovery order after all of them are evaluated.
	OnResult ResultHook

	// RequireDigest, when true, requires a Content-Digest header that
	// matches the body and that every selected signature covers. Only
	// VerifyRequest and VerifyResponse check the body.
	RequireDigest bool

	// Concurrency bounds how many signatures are verified in parallel.
	// Values below 2 verify sequentially.
	Concurrency int

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// VerifyRequest verifies the signatures of a request and returns the
// aggregate outcome.
func VerifyRequest(ctx context.Context, r *http.Request, cfg VerifyConfig) error {
	if cfg.RequireDigest {
		if err := VerifyContentDigest(r); err != nil {
			return err
		}
	}

	_, err := VerifyMessage(ctx, NewRequestMessage(r), cfg)

	return err
}

// VerifyResponse verifies the signatures of a response. The request is used
// for request-derived components and may be nil when resp.Request is set.
func VerifyResponse(ctx context.Context, r *http.Request, resp *http.Response, cfg VerifyConfig) error {
	if cfg.RequireDigest {
		if err := VerifyResponseDigest(resp); err != nil {
			return err
		}
	}

	_, err := VerifyMessage(ctx, NewResponseMessage(r, resp), cfg)

	return err
}

// VerifyMessage evaluates every selected signature on msg and returns the
// per-signature results in discovery order together with the aggregate
// outcome: ErrMissingSignatures when nothing was selected, otherwise a
// *VerificationError for input errors, then for failed verifications, or
// nil.
//
// Malformed Signature or Signature-Input headers, misuse of unsupported
// components, a verifier error and context cancellation abort the pass and
// are returned directly without results.
func VerifyMessage(ctx context.Context, msg Message, cfg VerifyConfig) ([]SignatureResult, error) {
	if cfg.Verifier == nil {
		return nil, ErrNoVerifier
	}

	contexts, err := ParseSignatureHeaders(
		msg.HeaderValues(headerSignature),
		msg.HeaderValues(headerSignatureInput),
	)
	if err != nil {
		return nil, err
	}

	var selected []candidate

	for _, sc := range contexts {
		c := candidate{sc: sc}
		if sc.HasInput {
			c.params, c.parseErr = ParseSignatureParams(sc.Input)
		}

		if cfg.Selection.selects(sc, c.params) {
			selected = append(selected, c)
		}
	}

	e := evaluator{cfg: &cfg, msg: msg, now: time.Now}
	if cfg.Now != nil {
		e.now = cfg.Now
	}

	results, err := e.run(ctx, selected)
	if err != nil {
		return nil, err
	}

	if cfg.OnResult != nil {
		for _, r := range results {
			cfg.OnResult(ctx, r)
		}
	}

	return results, aggregate(results)
}

type candidate struct {
	sc       SignatureContext
	params   *SignatureParams
	parseErr error
}

type evaluator struct {
	cfg *VerifyConfig
	msg Message
	now func() time.Time
}

func (e *evaluator) run(ctx context.Context, candidates []candidate) ([]SignatureResult, error) {
	results := make([]SignatureResult, len(candidates))

	if e.cfg.Concurrency < 2 {
		for i, c := range candidates {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			r, err := e.evaluate(ctx, c)
			if err != nil {
				return nil, err
			}

			results[i] = r
		}

		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)

	for i, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			r, err := e.evaluate(gctx, c)
			if err != nil {
				return err
			}

			results[i] = r

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// evaluate runs one signature through the pipeline and stops at the first
// failing stage. A non-nil error is fatal to the whole pass.
func (e *evaluator) evaluate(ctx context.Context, c candidate) (SignatureResult, error) {
	res := SignatureResult{Name: c.sc.Name, Params: c.params}

	if !c.sc.HasInput {
		res.Result = SignatureInputNotFound
		res.Err = fmt.Errorf("%w: no signature-input for %q", ErrSignatureInput, c.sc.Name)

		return res, nil
	}

	if c.parseErr != nil {
		res.Result = SignatureInputMalformed
		res.Err = c.parseErr

		return res, nil
	}

	p := c.params

	if err := e.checkExpiry(p); err != nil {
		res.Result = SignatureExpired
		res.Err = err

		return res, nil
	}

	if err := e.checkRequired(ctx, p); err != nil {
		res.Result = SignatureInputComponentMissing
		res.Err = err

		return res, nil
	}

	base, err := SignatureBase(e.msg, p)
	switch {
	case errors.Is(err, ErrNotSupported):
		return res, err
	case errors.Is(err, ErrComponentMissing):
		res.Result = SignatureInputComponentMissing
		res.Err = err

		return res, nil
	case err != nil:
		res.Result = SignatureInputMalformed
		res.Err = err

		return res, nil
	}

	result, err := e.cfg.Verifier.Verify(ctx, p, base, c.sc.Signature)
	if err != nil {
		return res, err
	}

	res.Result = result
	if result != SuccessfullyVerified {
		res.Err = fmt.Errorf("%w: %s", ErrSignatureVerification, result)
	}

	return res, nil
}

var errExpired = errors.New("httpsig: signature expired")

func (e *evaluator) checkExpiry(p *SignatureParams) error {
	now := e.now()

	if e.cfg.MaxAge > 0 && !p.Created.IsZero() && p.Created.Add(e.cfg.MaxAge).Before(now) {
		return fmt.Errorf("%w: created %s is older than %s", errExpired, p.Created.UTC().Format(time.RFC3339), e.cfg.MaxAge)
	}

	if !p.Expires.IsZero() && !p.Expires.After(now) {
		return fmt.Errorf("%w: expired at %s", errExpired, p.Expires.UTC().Format(time.RFC3339))
	}

	return nil
}

func (e *evaluator) checkRequired(ctx context.Context, p *SignatureParams) error {
	cfg := e.cfg

	switch {
	case (cfg.RequireCreated || cfg.MaxAge > 0) && p.Created.IsZero():
		return fmt.Errorf("%w: created parameter required", ErrComponentMissing)
	case cfg.RequireExpires && p.Expires.IsZero():
		return fmt.Errorf("%w: expires parameter required", ErrComponentMissing)
	case cfg.RequireNonce && p.Nonce == "":
		return fmt.Errorf("%w: nonce parameter required", ErrComponentMissing)
	case cfg.RequireAlgorithm && p.Algorithm == "":
		return fmt.Errorf("%w: alg parameter required", ErrComponentMissing)
	case cfg.RequireKeyID && p.KeyID == "":
		return fmt.Errorf("%w: keyid parameter required", ErrComponentMissing)
	}

	if p.Nonce != "" && cfg.AcceptNonce != nil && !cfg.AcceptNonce(ctx, p.Nonce, p) {
		return fmt.Errorf("%w: nonce %q rejected", ErrComponentMissing, p.Nonce)
	}

	for _, c := range cfg.RequiredComponents {
		if !p.HasComponent(c) {
			return fmt.Errorf("%w: %s not covered", ErrComponentMissing, c)
		}
	}

	if cfg.RequireDigest && !p.HasComponent(Header(headerContentDigest)) {
		return fmt.Errorf("%w: %s not covered", ErrComponentMissing, headerContentDigest)
	}

	return nil
}
