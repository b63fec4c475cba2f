package backend

import (
	"net/http"
	"strings"

	"github.com/handmade-gallery/storefront/internal/api/metrics"
)

type skipPurgeKey struct{}

// signInSurface lists the paths whose 401s are answers, not expired sessions.
var signInSurface = []string{
	"/auth/login",
	"/auth/register",
	"/auth/google",
	"/auth/forgot-password",
	"/auth/reset-password",
}

// authTransport injects the session token and applies the global 401 policy:
// outside the sign-in surface an unauthorized answer purges the session.
type authTransport struct {
	base   http.RoundTripper
	client *Client
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	hooks := t.client.sessionHooks()

	if hooks != nil && req.Header.Get("Authorization") == "" {
		if tok := hooks.Token(); tok != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && hooks != nil && t.purges(req) {
		metrics.BackendUnauthorizedTotal.Inc()
		t.client.log.Info().Str("path", req.URL.Path).Msg("backend rejected session token, signing out")
		hooks.ForceLogout(req.Context())
	}
	return resp, nil
}

func (t *authTransport) purges(req *http.Request) bool {
	if skip, _ := req.Context().Value(skipPurgeKey{}).(bool); skip {
		return false
	}
	for _, p := range signInSurface {
		if strings.HasSuffix(req.URL.Path, p) {
			return false
		}
	}
	return true
}
