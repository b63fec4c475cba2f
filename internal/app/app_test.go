package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/handmade-gallery/storefront/internal/core/domain"
	"github.com/handmade-gallery/storefront/internal/infrastructure/config"
)

func testConfig(t *testing.T, baseURL string, overrides map[string]string) *config.Config {
	t.Helper()
	env := map[string]string{
		"API_BASE_URL":  baseURL,
		"STORE_BACKEND": "memory",
		"CART_MODE":     "local",
		"CATALOG_MODE":  "local",
	}
	for k, v := range overrides {
		env[k] = v
	}
	cfg, err := config.LoadFrom(context.Background(), envconfig.MapLookuper(env))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func TestApp_StartsAsGuestAndServesLocalCart(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	defer backend.Close()

	a, err := New(context.Background(), testConfig(t, backend.URL, nil), zerolog.Nop())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	select {
	case <-a.Session.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("session boot did not finish")
	}
	if s := a.Session.Current(); s.Status != domain.SessionUnauthenticated {
		t.Fatalf("expected guest session, got %s", s.Status)
	}

	ctx := context.Background()
	p, err := a.Catalog.AddProduct(ctx, domain.ProductDraft{
		Title: "Vase", Description: "Wheel thrown", Price: 25, Category: "ceramics", InStock: true,
	})
	if err != nil {
		t.Fatalf("AddProduct returned error: %v", err)
	}
	if err := a.Cart.AddToCart(ctx, *p, 2); err != nil {
		t.Fatalf("AddToCart returned error: %v", err)
	}
	if a.Cart.TotalItems() != 2 || a.Cart.TotalPrice() != 50 {
		t.Fatalf("unexpected totals %d/%v", a.Cart.TotalItems(), a.Cart.TotalPrice())
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestApp_ServerCartForGuestIsEmpty(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	defer backend.Close()

	a, err := New(context.Background(), testConfig(t, backend.URL, map[string]string{"CART_MODE": "server"}), zerolog.Nop())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer a.Close()

	if a.Cart.Mode() != domain.CartModeServer {
		t.Fatalf("expected server cart, got %s", a.Cart.Mode())
	}
	cart, err := a.Cart.Cart(context.Background())
	if err != nil || !cart.IsEmpty() {
		t.Fatalf("expected empty cart for guest, got %+v (%v)", cart, err)
	}
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	if _, err := openStore(context.Background(), config.StoreConfig{Backend: "etcd"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
