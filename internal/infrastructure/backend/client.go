// Package backend is the HTTP client for the storefront backend API. It owns
// bearer-token injection, the global 401 policy and the mapping of backend
// payload variants onto the canonical domain records.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/handmade-gallery/storefront/internal/api/metrics"
	"github.com/handmade-gallery/storefront/internal/core/domain"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

// Config captures the settings for reaching the backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Transport overrides the underlying round tripper (tests).
	Transport http.RoundTripper
}

// SessionHooks is what the client needs from the session owner: the current
// bearer token and a way to purge the session on a 401.
type SessionHooks interface {
	Token() string
	ForceLogout(ctx context.Context)
}

// Client implements the ports.*API interfaces over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	hooks   atomic.Pointer[SessionHooks]
	log     zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		log:     log,
	}
	c.http = &http.Client{
		Timeout:   timeout,
		Transport: &authTransport{base: base, client: c},
	}
	return c
}

// Bind attaches the session owner. Until Bind is called requests carry no
// token and 401s purge nothing.
func (c *Client) Bind(h SessionHooks) {
	c.hooks.Store(&h)
}

func (c *Client) sessionHooks() SessionHooks {
	if h := c.hooks.Load(); h != nil {
		return *h
	}
	return nil
}

// call describes one backend request.
type call struct {
	method string
	path   string
	// route is the templated path used as the metrics label.
	route string
	body  any
	out   any
	// token, when set, is sent instead of the session token and disables the
	// 401 purge hook for this request.
	token string
}

func (c *Client) do(ctx context.Context, cl call) error {
	label := cl.method + " " + cl.route
	start := time.Now()

	var body io.Reader
	if cl.body != nil {
		buf, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", label, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", label, err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
		req = req.WithContext(context.WithValue(req.Context(), skipPurgeKey{}, true))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequestDuration.WithLabelValues(label, "unreachable").Observe(time.Since(start).Seconds())
		c.log.Warn().Err(err).Str("route", label).Msg("backend unreachable")
		return fmt.Errorf("%s: %w: %w", label, domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	metrics.BackendRequestDuration.WithLabelValues(label, outcome(resp.StatusCode)).Observe(time.Since(start).Seconds())

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &domain.APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
		c.log.Debug().Int("status", resp.StatusCode).Str("route", label).Str("message", apiErr.Message).Msg("backend rejected request")
		return fmt.Errorf("%s: %w", label, apiErr)
	}

	if cl.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		return fmt.Errorf("%s: %w: %v", label, domain.ErrUnexpectedResponse, err)
	}
	if env, ok := cl.out.(interface{ failed() (bool, string) }); ok {
		if failed, msg := env.failed(); failed {
			return fmt.Errorf("%s: %w: %s", label, domain.ErrUnexpectedResponse, msg)
		}
	}
	return nil
}

func outcome(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status >= http.StatusBadRequest:
		return "client_error"
	default:
		return "ok"
	}
}

// errorMessage pulls {"message"} or {"error"} out of an error body.
func errorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &env) != nil {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var apiErr *domain.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
