package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/handmade-gallery/storefront/internal/core/domain"
	"github.com/handmade-gallery/storefront/internal/pkg/validate"
)

type signInInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type resetInput struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// SignIn exchanges email and password for a backend credential and logs in.
func (m *SessionManager) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	if err := validate.Struct(signInInput{Email: email, Password: password}); err != nil {
		return domain.Session{}, err
	}
	cred, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return domain.Session{}, signInError(err)
	}
	return m.adopt(ctx, cred)
}

// GoogleSignIn exchanges a Google ID token for a backend credential.
func (m *SessionManager) GoogleSignIn(ctx context.Context, idToken string) (domain.Session, error) {
	if err := validate.Var("token", idToken, "required"); err != nil {
		return domain.Session{}, err
	}
	cred, err := m.auth.GoogleLogin(ctx, idToken)
	if err != nil {
		return domain.Session{}, signInError(err)
	}
	return m.adopt(ctx, cred)
}

// Register creates the account and signs it in.
func (m *SessionManager) Register(ctx context.Context, reg domain.Registration) (domain.Session, error) {
	if err := validate.Struct(reg); err != nil {
		return domain.Session{}, err
	}
	cred, err := m.auth.Register(ctx, reg)
	if err != nil {
		return domain.Session{}, fmt.Errorf("register: %w", err)
	}
	return m.adopt(ctx, cred)
}

// SignInLocalAdmin signs in the offline admin without contacting the backend.
func (m *SessionManager) SignInLocalAdmin(ctx context.Context, username, password string) (domain.Session, error) {
	if m.local == nil {
		return domain.Session{}, domain.ErrLocalAdminDisabled
	}
	cred, err := m.local.SignIn(username, password)
	if err != nil {
		m.log.Warn().Str("username", username).Msg("local admin sign-in rejected")
		return domain.Session{}, err
	}
	return m.adopt(ctx, cred)
}

func (m *SessionManager) ForgotPassword(ctx context.Context, email string) error {
	if err := validate.Var("email", email, "required,email"); err != nil {
		return err
	}
	if err := m.auth.ForgotPassword(ctx, email); err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}
	return nil
}

func (m *SessionManager) ResetPassword(ctx context.Context, resetToken, password string) error {
	if err := validate.Struct(resetInput{Token: resetToken, Password: password}); err != nil {
		return err
	}
	if err := m.auth.ResetPassword(ctx, resetToken, password); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

// UpdateProfile saves the editable fields. The offline admin has no backend
// account, so its profile is updated locally.
func (m *SessionManager) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (domain.Session, error) {
	cur := m.Current()
	if !cur.Authenticated() {
		return domain.Session{}, domain.ErrNotAuthenticated
	}
	if err := validate.Struct(upd); err != nil {
		return domain.Session{}, err
	}

	var user domain.UserProfile
	if m.local != nil && m.local.Issued(cur.Token) {
		user = *cur.User
		user.FirstName, user.LastName = upd.FirstName, upd.LastName
		user.Phone, user.ProfileImage = upd.Phone, upd.ProfileImage
	} else {
		fresh, err := m.auth.UpdateProfile(ctx, upd)
		if err != nil {
			return domain.Session{}, fmt.Errorf("update profile: %w", err)
		}
		user = *fresh
	}

	if err := m.UpdateUser(ctx, user); err != nil {
		return domain.Session{}, err
	}
	return m.Current(), nil
}

func (m *SessionManager) adopt(ctx context.Context, cred *domain.Credential) (domain.Session, error) {
	if err := m.Login(ctx, cred.User, cred.Token); err != nil {
		return domain.Session{}, err
	}
	return m.Current(), nil
}

// signInError turns a backend 401/400 on the sign-in surface into
// ErrInvalidCredentials.
func signInError(err error) error {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Status < 500 {
		return fmt.Errorf("sign in: %w: %s", domain.ErrInvalidCredentials, apiErr.Message)
	}
	return fmt.Errorf("sign in: %w", err)
}
