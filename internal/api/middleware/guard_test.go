package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/handmade-gallery/storefront/internal/core/domain"
)

type stubSessions struct {
	s     domain.Session
	ready chan struct{}
}

func readySessions(s domain.Session) *stubSessions {
	ch := make(chan struct{})
	close(ch)
	return &stubSessions{s: s, ready: ch}
}

func (s *stubSessions) Current() domain.Session { return s.s }
func (s *stubSessions) Ready() <-chan struct{}  { return s.ready }

func signedIn(role domain.Role) domain.Session {
	return domain.SignedIn(domain.Credential{Token: "t", User: domain.UserProfile{ID: "u1", Role: role}})
}

func serve(t *testing.T, mw echo.MiddlewareFunc, target string) (*httptest.ResponseRecorder, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		if _, ok := c.Get(SessionKey).(domain.Session); !ok {
			t.Errorf("session not stored in context")
		}
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, called, err
}

func TestGuard_Allows(t *testing.T) {
	rec, called, err := serve(t, Guard(readySessions(signedIn(domain.RoleSeller)), domain.RoleSeller), "/seller/dashboard")
	if err != nil || !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, code=%d called=%v err=%v", rec.Code, called, err)
	}
}

func TestGuard_RedirectsGuestToSignIn(t *testing.T) {
	rec, called, _ := serve(t, Guard(readySessions(domain.Guest()), domain.RoleSeller), "/seller/dashboard")
	if called {
		t.Fatal("should not reach next handler")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/signin?from=%2Fseller%2Fdashboard" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestGuard_RedirectsRoleMismatchToOwnDashboard(t *testing.T) {
	rec, called, _ := serve(t, Guard(readySessions(signedIn(domain.RoleBuyer)), domain.RoleSeller), "/seller/dashboard")
	if called {
		t.Fatal("should not reach next handler")
	}
	if loc := rec.Header().Get(echo.HeaderLocation); rec.Code != http.StatusFound || loc != "/user/dashboard" {
		t.Fatalf("expected redirect to /user/dashboard, got %d %q", rec.Code, loc)
	}
}

func TestRequireSession_StatusCodes(t *testing.T) {
	_, called, err := serve(t, RequireSession(readySessions(domain.Guest())), "/cart")
	var he *echo.HTTPError
	if called || !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}

	_, called, err = serve(t, RequireSession(readySessions(signedIn(domain.RoleBuyer)), domain.RoleAdmin, domain.RoleSeller), "/catalog/products")
	if called || !errors.As(err, &he) || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}

	_, called, err = serve(t, RequireSession(readySessions(signedIn(domain.RoleBuyer))), "/cart")
	if !called || err != nil {
		t.Fatalf("expected pass-through, got %v", err)
	}
}

func TestRequireSession_AbandonedBeforeBoot(t *testing.T) {
	e := echo.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil).WithContext(ctx)
	c := e.NewContext(req, httptest.NewRecorder())

	pending := &stubSessions{s: domain.Session{Status: domain.SessionLoading}, ready: make(chan struct{})}
	err := RequireSession(pending)(func(echo.Context) error {
		t.Fatal("should not reach next handler")
		return nil
	})(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %v", err)
	}
}
