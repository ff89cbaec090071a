package oauth

import (
	"context"
	"errors"
	"net/http"
)

// ErrNoToken is returned when no access token is cached and none can be
// obtained.
var ErrNoToken = errors.New("oauth: no access token available")

// TokenSource supplies the current access token.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// Transport is an http.RoundTripper that authenticates all requests using
// the provided TokenSource. There is no retry on 401: the webhook sender
// must not be induced to retry, so an expired token simply surfaces as the
// upstream failure it causes.
type Transport struct {
	// Source supplies the token to be used.
	Source TokenSource

	// Base is the RoundTripper used for the actual requests.
	// If nil, http.DefaultTransport is used.
	Base http.RoundTripper
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	token, ok := t.Source.Token(req.Context())
	if !ok {
		return nil, ErrNoToken
	}

	req2 := cloneRequest(req)
	req2.Header.Set("Authorization", "Bearer "+token)
	return base.RoundTrip(req2)
}

// cloneRequest returns a shallow copy of the request with a deep copy of
// its Header, so the caller's request is never mutated.
func cloneRequest(r *http.Request) *http.Request {
	r2 := new(http.Request)
	*r2 = *r
	r2.Header = make(http.Header, len(r.Header))
	for k, s := range r.Header {
		r2.Header[k] = append([]string(nil), s...)
	}
	return r2
}
