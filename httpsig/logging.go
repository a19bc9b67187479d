package httpsig

import (
	"context"

	"github.com/rs/zerolog"
)

// LogResults returns a ResultHook that writes one event per signature to
// logger: debug for verified signatures, warn otherwise.
func LogResults(logger zerolog.Logger) ResultHook {
	return func(_ context.Context, r SignatureResult) {
		ev := logger.Warn()
		if r.Result == SuccessfullyVerified {
			ev = logger.Debug()
		}

		ev = ev.Str("signature", r.Name).Str("result", r.Result.String())

		if r.Params != nil {
			ev = ev.Str("keyid", r.Params.KeyID).
				Str("alg", r.Params.Algorithm.String()).
				Str("tag", r.Params.Tag)
		}

		if r.Err != nil {
			ev = ev.Err(r.Err)
		}

		ev.Msg("http message signature")
	}
}
