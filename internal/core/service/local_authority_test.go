package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/handmade-gallery/storefront/internal/core/domain"
)

func newTestAuthority(t *testing.T) *LocalAuthority {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("pass123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return NewLocalAuthority("admin", string(hash), "secret", time.Hour)
}

func TestLocalAuthority_SignInAndVerify(t *testing.T) {
	a := newTestAuthority(t)

	cred, err := a.SignIn("ADMIN", "pass123")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if !a.Issued(cred.Token) {
		t.Fatal("expected token to be recognised as locally issued")
	}
	user, err := a.Verify(context.Background(), cred.Token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Fatalf("unexpected role %q", user.Role)
	}
}

func TestLocalAuthority_RejectsBadCredentials(t *testing.T) {
	a := newTestAuthority(t)
	for _, tc := range []struct{ user, pass string }{
		{"admin", "nope"},
		{"someone", "pass123"},
		{"", ""},
	} {
		if _, err := a.SignIn(tc.user, tc.pass); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("SignIn(%q,%q): expected ErrInvalidCredentials, got %v", tc.user, tc.pass, err)
		}
	}
}

func TestLocalAuthority_VerifyRejects(t *testing.T) {
	a := newTestAuthority(t)
	cred, _ := a.SignIn("admin", "pass123")

	other := NewLocalAuthority("admin", "", "other-secret", time.Hour)
	if _, err := other.Verify(context.Background(), cred.Token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected signature mismatch to be rejected, got %v", err)
	}

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := a.Verify(context.Background(), cred.Token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}

	foreign, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"iss": "backend"}).SignedString([]byte("secret"))
	if a.Issued(foreign) {
		t.Fatal("tokens from other issuers must go to the backend")
	}
	if a.Issued("opaque-session-id") {
		t.Fatal("opaque tokens are not local")
	}
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	sign := func(exp time.Time) string {
		s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}).SignedString([]byte("k"))
		return s
	}
	if !tokenExpired(sign(now.Add(-time.Minute)), now) {
		t.Fatal("expected past exp to be expired")
	}
	if tokenExpired(sign(now.Add(time.Minute)), now) {
		t.Fatal("expected future exp to be valid")
	}
	if tokenExpired("not-a-jwt", now) {
		t.Fatal("opaque tokens are never pre-expired")
	}
}
