package apiclient

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	headerRequestID = "X-Request-ID"
	bearerType      = "Bearer"
)

// TokenSource supplies the current bearer token, "" when logged out.
type TokenSource interface {
	Token() string
}

// SessionEnder discards the current session.
type SessionEnder interface {
	EndSession(ctx context.Context)
}

// Navigator moves the operator to another console route.
type Navigator interface {
	Navigate(ctx context.Context, route string)
}

// authTransport decorates outgoing requests and intercepts 401 responses.
type authTransport struct {
	base       http.RoundTripper
	tokens     TokenSource
	sessions   SessionEnder
	navigator  Navigator
	loginRoute string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if out.Header.Get(headerRequestID) == "" {
		out.Header.Set(headerRequestID, uuid.NewString())
	}
	if token := t.tokens.Token(); token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: bearerType}).SetAuthHeader(out)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(out)
	event := log.Debug().
		Str("request_id", out.Header.Get(headerRequestID)).
		Str("method", out.Method).
		Str("path", out.URL.Path).
		Dur("took", time.Since(start))
	if err != nil {
		event.Err(err).Msg("backend request failed")
		return nil, err
	}
	event.Int("status", resp.StatusCode).Msg("backend request")

	if resp.StatusCode == http.StatusUnauthorized {
		t.unauthorized(out.Context(), out)
	}
	return resp, nil
}

func (t *authTransport) unauthorized(ctx context.Context, req *http.Request) {
	log.Warn().
		Str("request_id", req.Header.Get(headerRequestID)).
		Str("path", req.URL.Path).
		Msg("backend rejected credentials, ending session")
	t.sessions.EndSession(ctx)
	t.navigator.Navigate(ctx, t.loginRoute)
}
