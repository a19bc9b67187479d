// Package httpsig implements HTTP Message Signatures per RFC 9421 with
// optional Content-Digest support per RFC 9530.
//
// A signature covers an ordered list of components such as @method,
// a header or one member of a dictionary header. SignatureBase turns the
// components and a Message into the bytes that are signed; signer and
// verifier build the same bytes from the same list.
//
// # Supported Algorithms
//
// Six signature algorithms are built in:
//
//   - ed25519 (Edwards-Curve DSA)
//   - ecdsa-p256-sha256 (ECDSA P-256)
//   - ecdsa-p384-sha384 (ECDSA P-384)
//   - rsa-pss-sha512 (RSASSA-PSS)
//   - rsa-v1_5-sha256 (RSASSA-PKCS1-v1_5)
//   - hmac-sha256 (HMAC)
//
// Other backends, such as an HSM, implement MessageSigner and
// MessageVerifier directly.
//
// # Signing Requests
//
//	signer, err := httpsig.NewEd25519Signer("my-key-id", privateKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = httpsig.SignRequest(ctx, req, httpsig.SignConfig{
//	    Signer: httpsig.KeySigner(signer),
//	    Components: []httpsig.Component{
//	        httpsig.Derived(httpsig.ComponentMethod),
//	        httpsig.Derived(httpsig.ComponentAuthority),
//	        httpsig.Header("content-type"),
//	    },
//	})
//
// # Verifying Requests
//
// Only selected signatures are verified. A message whose signatures are all
// unselected fails with ErrMissingSignatures.
//
//	err := httpsig.VerifyRequest(ctx, req, httpsig.VerifyConfig{
//	    Verifier:           httpsig.KeyVerifier(verifier),
//	    Selection:          httpsig.Selection{Names: []string{"sig1"}},
//	    RequiredComponents: []httpsig.Component{httpsig.Derived(httpsig.ComponentMethod)},
//	    MaxAge:             5 * time.Minute,
//	    OnResult:           httpsig.LogResults(logger),
//	})
//
// Use VerifyMessage for the per-signature results. A failed pass returns a
// *VerificationError wrapping ErrSignatureInput or ErrSignatureVerification.
//
// The data part of a VerifyConfig can be loaded from YAML with LoadPolicy.
//
// # Client Transport
//
// NewTransport creates an http.RoundTripper that signs all outgoing
// requests:
//
//	client := &http.Client{
//	    Transport: httpsig.NewTransport(nil, httpsig.SignConfig{
//	        Signer: httpsig.KeySigner(signer),
//	    }),
//	}
//
// # Server Middleware
//
//	mw, err := httpsig.Middleware(httpsig.MiddlewareConfig{
//	    Verify: httpsig.VerifyConfig{
//	        Verifier:  httpsig.KeyVerifier(verifier),
//	        Selection: httpsig.SelectAll(),
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	handler = mw(handler)
//
// # Content-Digest
//
//	// Standalone usage:
//	err := httpsig.SetContentDigest(req, httpsig.DigestSHA256)
//
//	// Integrated with signing (adds Content-Digest and covers it):
//	err := httpsig.SignRequest(ctx, req, httpsig.SignConfig{
//	    Signer:          httpsig.KeySigner(signer),
//	    DigestAlgorithm: httpsig.DigestSHA256,
//	})
package httpsig
