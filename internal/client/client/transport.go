package client

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/pricetool/priceopt/internal/common"
	"github.com/pricetool/priceopt/internal/logging"
)

// tokenError marks a failure to read the credential, so it is not reported
// as the server being unavailable.
type tokenError struct{ err error }

func (e *tokenError) Error() string { return "read token: " + e.err.Error() }
func (e *tokenError) Unwrap() error { return e.err }

// authTransport throttles requests, tags each with a request id and attaches
// the bearer token.
type authTransport struct {
	base    http.RoundTripper
	tokens  TokenSource
	limiter *rate.Limiter
	log     logging.Logger
	newID   func() string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	r := req.Clone(ctx)
	id := t.newID()
	r.Header.Set(common.RequestIDHeaderName, id)

	if t.tokens != nil {
		token, err := t.tokens.Token(ctx)
		if err != nil {
			return nil, &tokenError{err: err}
		}
		if token != "" {
			r.Header.Set(common.AuthorizationHeaderName, common.BearerToken(token))
		}
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(r)
	if err != nil {
		t.log.Warn(ctx, "api request failed",
			"method", r.Method, "path", r.URL.Path, "request_id", id, "error", err)
		return nil, err
	}
	t.log.Debug(ctx, "api request",
		"method", r.Method, "path", r.URL.Path, "status", resp.StatusCode,
		"request_id", id, "elapsed", time.Since(start))
	return resp, nil
}

func newRequestID() string { return uuid.NewString() }
