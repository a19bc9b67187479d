package httpsig

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vitalvas/msgsig/sfv"
)

const defaultLabel = "sig1"

var (
	defaultRequestComponents = []Component{
		Derived(ComponentMethod),
		Derived(ComponentAuthority),
		Derived(ComponentPath),
	}

	defaultResponseComponents = []Component{
		Derived(ComponentStatus),
	}
)

// GenerateNonce returns a random version 4 UUID suitable for use in
// SignConfig.Nonce.
func GenerateNonce() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// SignConfig configures HTTP message signing per RFC 9421.
type SignConfig struct {
	// Signer produces signatures. Required.
	Signer MessageSigner

	// Label identifies the signature in Signature/Signature-Input headers.
	// Defaults to "sig1".
	Label string

	// Components lists the covered components in order. Defaults to
	// (@method @authority @path) for requests and (@status) for responses.
	Components []Component

	// Nonce is an optional nonce value included in signature parameters.
	Nonce string

	// Tag is an optional application-specific tag for the signature.
	Tag string

	// Created sets the signature creation time. When zero, time.Now() is
	// used.
	Created time.Time

	// Expires sets the signature expiration time. When zero, no expiration
	// is set.
	Expires time.Time

	// DigestAlgorithm, when set, makes SignRequest and SignResponse set a
	// Content-Digest header (RFC 9530) before signing. The content-digest
	// component is covered automatically.
	DigestAlgorithm DigestAlgorithm
}

// SignResult is a signature ready to be attached to a message.
type SignResult struct {
	// Label is the dictionary key for both header members.
	Label string

	// Params are the final signature parameters.
	Params *SignatureParams

	// Input is the Signature-Input member value.
	Input string

	// Signature is the raw signature.
	Signature []byte
}

// SignatureMember returns the Signature member value, the signature as a
// byte sequence.
func (r *SignResult) SignatureMember() string {
	s, _ := sfv.SerializeItem(sfv.Item{Value: r.Signature})
	return s
}

// SignMessage signs msg without changing it. The returned result holds the
// header members to attach.
func SignMessage(ctx context.Context, msg Message, cfg SignConfig) (*SignResult, error) {
	if cfg.Signer == nil {
		return nil, ErrNoSigner
	}

	label := cfg.Label
	if label == "" {
		label = defaultLabel
	}

	components := cfg.Components
	if len(components) == 0 {
		components = defaultRequestComponents
		if _, err := msg.DerivedValue(ComponentStatus); err == nil {
			components = defaultResponseComponents
		}
	}

	if cfg.DigestAlgorithm != "" {
		if digest := Header(headerContentDigest); !slices.Contains(components, digest) {
			components = append(slices.Clone(components), digest)
		}
	}

	params, err := NewSignatureParams(components...)
	if err != nil {
		return nil, err
	}

	params.Created = cfg.Created
	if params.Created.IsZero() {
		params.Created = time.Now()
	}

	params.Expires = cfg.Expires
	params.Nonce = cfg.Nonce
	params.Tag = cfg.Tag

	if err := cfg.Signer.UpdateParams(msg, params); err != nil {
		return nil, err
	}

	input, err := params.Serialize()
	if err != nil {
		return nil, err
	}

	base, err := SignatureBase(msg, params)
	if err != nil {
		return nil, err
	}

	sig, err := cfg.Signer.Sign(ctx, params.KeyID, base)
	if err != nil {
		return nil, err
	}

	return &SignResult{Label: label, Params: params, Input: input, Signature: sig}, nil
}

// SignRequest signs an HTTP request in-place by adding Signature and
// Signature-Input members per RFC 9421. Existing signatures are kept.
func SignRequest(ctx context.Context, r *http.Request, cfg SignConfig) error {
	if cfg.DigestAlgorithm != "" {
		if err := SetContentDigest(r, cfg.DigestAlgorithm); err != nil {
			return err
		}
	}

	res, err := SignMessage(ctx, NewRequestMessage(r), cfg)
	if err != nil {
		return err
	}

	res.attach(r.Header)

	return nil
}

// SignResponse signs a response in-place. The request is used for
// request-derived components and may be nil when resp.Request is set.
func SignResponse(ctx context.Context, r *http.Request, resp *http.Response, cfg SignConfig) error {
	if resp.Header == nil {
		resp.Header = http.Header{}
	}

	if cfg.DigestAlgorithm != "" {
		if err := SetResponseDigest(resp, cfg.DigestAlgorithm); err != nil {
			return err
		}
	}

	res, err := SignMessage(ctx, NewResponseMessage(r, resp), cfg)
	if err != nil {
		return err
	}

	res.attach(resp.Header)

	return nil
}

func (r *SignResult) attach(h http.Header) {
	appendDictMember(h, "Signature-Input", r.Label, r.Input)
	appendDictMember(h, "Signature", r.Label, r.SignatureMember())
}

// appendDictMember appends a key=value member to an RFC 8941 dictionary
// header. Existing occurrences are folded into one field value so that no
// member already on the message is lost.
func appendDictMember(h http.Header, header, key, value string) {
	members := h.Values(header)
	members = append(members, key+"="+value)

	h.Set(header, strings.Join(members, ", "))
}
