package ports

import (
	"context"

	"github.com/handmade-gallery/storefront/internal/core/domain"
)

// TokenVerifier checks a stored token and returns the refreshed profile.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.UserProfile, error)
}

// SessionReader exposes the current published session.
type SessionReader interface {
	Current() domain.Session
}

// SessionService is the session surface the HTTP layer drives.
type SessionService interface {
	SessionReader
	Ready() <-chan struct{}
	SignIn(ctx context.Context, email, password string) (domain.Session, error)
	GoogleSignIn(ctx context.Context, idToken string) (domain.Session, error)
	Register(ctx context.Context, reg domain.Registration) (domain.Session, error)
	SignInLocalAdmin(ctx context.Context, username, password string) (domain.Session, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, password string) error
	UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (domain.Session, error)
	Logout(ctx context.Context) error
}
