package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/handmade-gallery/storefront/internal/core/domain"
)

func (c *Client) Login(ctx context.Context, email, password string) (*domain.Credential, error) {
	var out authResponse
	err := c.do(ctx, call{
		method: http.MethodPost, path: "/auth/login", route: "/auth/login",
		body: map[string]string{"email": email, "password": password},
		out:  &out,
	})
	if err != nil {
		return nil, err
	}
	return out.credential("/auth/login")
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.Credential, error) {
	var out authResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/auth/register", route: "/auth/register", body: reg, out: &out}); err != nil {
		return nil, err
	}
	return out.credential("/auth/register")
}

func (c *Client) GoogleLogin(ctx context.Context, idToken string) (*domain.Credential, error) {
	var out authResponse
	err := c.do(ctx, call{
		method: http.MethodPost, path: "/auth/google", route: "/auth/google",
		body: map[string]string{"token": idToken},
		out:  &out,
	})
	if err != nil {
		return nil, err
	}
	return out.credential("/auth/google")
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, call{
		method: http.MethodPost, path: "/auth/forgot-password", route: "/auth/forgot-password",
		body: map[string]string{"email": email},
		out:  &envelope{},
	})
}

func (c *Client) ResetPassword(ctx context.Context, resetToken, password string) error {
	return c.do(ctx, call{
		method: http.MethodPost, path: "/auth/reset-password", route: "/auth/reset-password",
		body: map[string]string{"token": resetToken, "password": password},
		out:  &envelope{},
	})
}

func (c *Client) Profile(ctx context.Context, token string) (*domain.UserProfile, error) {
	var out profileResponse
	if err := c.do(ctx, call{method: http.MethodGet, path: "/auth/profile", route: "/auth/profile", out: &out, token: token}); err != nil {
		return nil, err
	}
	u, err := out.User.profile()
	if err != nil {
		return nil, fmt.Errorf("GET /auth/profile: %w", err)
	}
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (*domain.UserProfile, error) {
	var out profileResponse
	if err := c.do(ctx, call{method: http.MethodPut, path: "/auth/profile", route: "/auth/profile", body: upd, out: &out}); err != nil {
		return nil, err
	}
	u, err := out.User.profile()
	if err != nil {
		return nil, fmt.Errorf("PUT /auth/profile: %w", err)
	}
	return &u, nil
}

func (r authResponse) credential(route string) (*domain.Credential, error) {
	if r.Token == "" {
		return nil, fmt.Errorf("POST %s: %w: missing token", route, domain.ErrUnexpectedResponse)
	}
	u, err := r.User.profile()
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", route, err)
	}
	return &domain.Credential{Token: r.Token, User: u}, nil
}
