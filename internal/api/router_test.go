package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/handmade-gallery/storefront/internal/core/domain"
	"github.com/handmade-gallery/storefront/internal/infrastructure/db/memory"
	"github.com/handmade-gallery/storefront/internal/infrastructure/queue"
)

type fixedSessions struct{ s domain.Session }

func (f fixedSessions) Current() domain.Session { return f.s }
func (f fixedSessions) Ready() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (f fixedSessions) SignIn(context.Context, string, string) (domain.Session, error) {
	return domain.Session{}, domain.ErrInvalidCredentials
}
func (f fixedSessions) GoogleSignIn(context.Context, string) (domain.Session, error) {
	return domain.Session{}, domain.ErrInvalidCredentials
}
func (f fixedSessions) Register(context.Context, domain.Registration) (domain.Session, error) {
	return domain.Session{}, domain.ErrInvalidCredentials
}
func (f fixedSessions) SignInLocalAdmin(context.Context, string, string) (domain.Session, error) {
	return domain.Session{}, domain.ErrLocalAdminDisabled
}
func (f fixedSessions) ForgotPassword(context.Context, string) error        { return nil }
func (f fixedSessions) ResetPassword(context.Context, string, string) error { return nil }
func (f fixedSessions) UpdateProfile(context.Context, domain.ProfileUpdate) (domain.Session, error) {
	return f.s, nil
}
func (f fixedSessions) Logout(context.Context) error { return nil }

func newTestRouter(s domain.Session) http.Handler {
	return NewRouter(Deps{
		Sessions: fixedSessions{s: s},
		Events:   queue.NewBus(zerolog.Nop()),
		Store:    memory.NewStore(),
	}, zerolog.Nop())
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_GuestIsRedirectedFromDashboard(t *testing.T) {
	rec := do(newTestRouter(domain.Guest()), http.MethodGet, "/seller/dashboard", "")

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/signin?from=%2Fseller%2Fdashboard" {
		t.Fatalf("unexpected redirect %q", loc)
	}
}

func TestRouter_WrongRoleGoesToOwnDashboard(t *testing.T) {
	buyer := domain.SignedIn(domain.Credential{Token: "t", User: domain.UserProfile{ID: "u1", Role: domain.RoleBuyer}})
	rec := do(newTestRouter(buyer), http.MethodGet, "/admin/dashboard", "")

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/user/dashboard" {
		t.Fatalf("expected redirect to /user/dashboard, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRouter_CatalogWritesNeedStaff(t *testing.T) {
	rec := do(newTestRouter(domain.Guest()), http.MethodPost, "/catalog/products", `{"title":"x"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for guest, got %d", rec.Code)
	}

	buyer := domain.SignedIn(domain.Credential{Token: "t", User: domain.UserProfile{ID: "u1", Role: domain.RoleBuyer}})
	rec = do(newTestRouter(buyer), http.MethodPost, "/catalog/products", `{"title":"x"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for buyer, got %d", rec.Code)
	}
}

func TestRouter_SignInErrorsUseEnvelope(t *testing.T) {
	rec := do(newTestRouter(domain.Guest()), http.MethodPost, "/session/login", `{"email":"a@b.co","password":"x"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"invalid credentials"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	h := newTestRouter(domain.Guest())
	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		if rec := do(h, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
