package httpsig

import (
	"net/http"

	"github.com/rs/zerolog"
)

// MiddlewareConfig configures the server-side signature verification
// middleware.
type MiddlewareConfig struct {
	// Verify configures how signatures are verified.
	Verify VerifyConfig

	// OnError is called when verification fails. When nil, a plain 401
	// Unauthorized response is sent.
	OnError func(w http.ResponseWriter, r *http.Request, err error)

	// Logger, when set, receives one warning per rejected request.
	Logger *zerolog.Logger
}

// Middleware returns an http.Handler middleware that verifies HTTP message
// signatures on incoming requests per RFC 9421. It composes with any router
// that accepts func(http.Handler) http.Handler.
//
// It returns ErrNoVerifier if VerifyConfig.Verifier is nil.
func Middleware(cfg MiddlewareConfig) (func(http.Handler) http.Handler, error) {
	if cfg.Verify.Verifier == nil {
		return nil, ErrNoVerifier
	}

	onError := cfg.OnError
	if onError == nil {
		onError = defaultOnError
	}

	verifyCfg := cfg.Verify
	logger := cfg.Logger

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := VerifyRequest(r.Context(), r, verifyCfg); err != nil {
				if logger != nil {
					logger.Warn().
						Err(err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("rejected request signature")
				}

				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

// defaultOnError writes a 401 Unauthorized response with no body.
func defaultOnError(w http.ResponseWriter, _ *http.Request, _ error) {
	w.WriteHeader(http.StatusUnauthorized)
}
