package http

import "net/http"

type authTransport struct {
	scheme    string
	token     string
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", t.scheme+" "+t.token)
	return t.transport.RoundTrip(clone)
}

// WithAuthToken injects a Bearer token into every outgoing request.
// An empty token leaves the transport untouched so unauthenticated
// endpoints keep working without extra config.
func WithAuthToken(token string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		if token == "" {
			return rt
		}
		return &authTransport{
			scheme:    "Bearer",
			token:     token,
			transport: rt,
		}
	})
}
