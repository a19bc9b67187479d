package httpsig

import "net/http"

// Transport is an http.RoundTripper that signs outgoing requests using
// HTTP Message Signatures (RFC 9421). When response verification is
// enabled, responses are verified before they are returned.
type Transport struct {
	base   http.RoundTripper
	config SignConfig
	verify *VerifyConfig
}

// NewTransport creates a signing Transport that delegates to base after
// signing each request. When base is nil, a clone of http.DefaultTransport
// is used, giving an independent connection pool with default proxy, TLS,
// and timeout settings.
//
// Configure base for custom proxy (HTTP/SOCKS), TLS, timeouts, and
// connection pool settings:
//
//	base := &http.Transport{
//	    Proxy:           http.ProxyFromEnvironment,
//	    TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS13},
//	    IdleConnTimeout: 90 * time.Second,
//	}
//	transport := httpsig.NewTransport(base, httpsig.SignConfig{Signer: httpsig.KeySigner(signer)})
func NewTransport(base *http.Transport, cfg SignConfig) *Transport {
	var rt http.RoundTripper
	if base != nil {
		rt = base
	} else {
		rt = http.DefaultTransport.(*http.Transport).Clone()
	}

	return &Transport{
		base:   rt,
		config: cfg,
	}
}

// VerifyResponses makes t verify every response with cfg. A response that
// fails verification is closed and its error returned from RoundTrip.
func (t *Transport) VerifyResponses(cfg VerifyConfig) *Transport {
	t.verify = &cfg
	return t
}

// RoundTrip signs a clone of the request and then delegates to the base
// transport. When GetBody is available, the clone receives its own body
// copy so that digest computation does not consume the caller's body.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	clone := req.Clone(ctx)

	if clone.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}

		clone.Body = body
	}

	if err := SignRequest(ctx, clone, t.config); err != nil {
		return nil, err
	}

	resp, err := t.base.RoundTrip(clone)
	if err != nil || t.verify == nil {
		return resp, err
	}

	if err := VerifyResponse(ctx, clone, resp, *t.verify); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return resp, nil
}
