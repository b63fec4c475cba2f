package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/handmade-gallery/storefront/internal/core/domain"
)

func newTestServerCart(api *stubCartAPI, session *staticSession) *ServerCart {
	return NewServerCart(api, session, &recordingEvents{}, zerolog.Nop())
}

func seededCartAPI() *stubCartAPI {
	return &stubCartAPI{cart: domain.Cart{Lines: []domain.CartLine{
		{ItemID: "item-p-vase", Product: domain.ProductRef{ID: "p-vase"}, UnitPrice: 40, Quantity: 1},
	}}}
}

func TestServerCart_MutateThenRefetch(t *testing.T) {
	ctx := context.Background()
	api := seededCartAPI()
	c := newTestServerCart(api, signedInAs(domain.RoleBuyer))

	if err := c.Load(ctx); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := c.AddToCart(ctx, quilt, 2); err != nil {
		t.Fatalf("AddToCart returned error: %v", err)
	}

	want := []string{"get", "add", "get"}
	if got := api.callLog(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected calls %v, got %v", want, got)
	}
	if c.TotalItems() != 3 || c.TotalPrice() != 60 {
		t.Fatalf("expected refetched cart, items=%d total=%v", c.TotalItems(), c.TotalPrice())
	}
}

func TestServerCart_FailedMutationLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	api := seededCartAPI()
	c := newTestServerCart(api, signedInAs(domain.RoleBuyer))
	_ = c.Load(ctx)
	before, _ := c.Cart(ctx)

	api.mutErr = errNetwork
	if err := c.UpdateQuantity(ctx, "item-p-vase", 4); !errors.Is(err, errNetwork) {
		t.Fatalf("expected network error to surface, got %v", err)
	}
	after, _ := c.Cart(ctx)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("cart changed after failed mutation:\nbefore %+v\nafter  %+v", before, after)
	}
	if got := api.callLog(); got[len(got)-1] != "update" {
		t.Fatalf("failed mutation must not refetch, calls %v", got)
	}
}

func TestServerCart_RefetchFailureServesCachedThenRetries(t *testing.T) {
	ctx := context.Background()
	api := seededCartAPI()
	c := newTestServerCart(api, signedInAs(domain.RoleBuyer))
	_ = c.Load(ctx)

	api.onMutate = func() { api.getErr = errNetwork }
	if err := c.UpdateQuantity(ctx, "item-p-vase", 3); err != nil {
		t.Fatalf("refetch failure must not fail the mutation: %v", err)
	}
	if c.TotalItems() != 1 {
		t.Fatalf("expected pre-mutation cache, got %d items", c.TotalItems())
	}

	api.mu.Lock()
	api.getErr = nil
	api.onMutate = nil
	api.mu.Unlock()
	cart, err := c.Cart(ctx)
	if err != nil {
		t.Fatalf("Cart returned error: %v", err)
	}
	if cart.TotalItems() != 3 {
		t.Fatalf("expected next read to refetch, got %d items", cart.TotalItems())
	}
}

func TestServerCart_DisabledWithoutSession(t *testing.T) {
	ctx := context.Background()
	api := seededCartAPI()
	session := &staticSession{s: domain.Guest()}
	c := newTestServerCart(api, session)

	if err := c.AddToCart(ctx, vase, 1); !errors.Is(err, domain.ErrCartDisabled) {
		t.Fatalf("expected ErrCartDisabled, got %v", err)
	}
	cart, err := c.Cart(ctx)
	if err != nil || !cart.IsEmpty() {
		t.Fatalf("expected empty cart for guests, got %+v %v", cart, err)
	}
	if len(api.callLog()) != 0 {
		t.Fatal("guests must not reach the backend cart")
	}
}

func TestServerCart_RemoveAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	api := seededCartAPI()
	c := newTestServerCart(api, signedInAs(domain.RoleBuyer))
	_ = c.Load(ctx)
	calls := len(api.callLog())

	for i := 0; i < 2; i++ {
		if err := c.RemoveFromCart(ctx, "missing"); err != nil {
			t.Fatalf("remove #%d returned error: %v", i+1, err)
		}
	}
	if len(api.callLog()) != calls || c.TotalItems() != 1 {
		t.Fatal("removing an absent id must not touch the backend or state")
	}
}

func TestServerCart_UpdateBelowOneRemoves(t *testing.T) {
	ctx := context.Background()
	api := seededCartAPI()
	c := newTestServerCart(api, signedInAs(domain.RoleBuyer))
	_ = c.Load(ctx)

	if err := c.UpdateQuantity(ctx, "item-p-vase", 0); err != nil {
		t.Fatalf("UpdateQuantity returned error: %v", err)
	}
	if got := api.callLog(); got[1] != "remove" {
		t.Fatalf("expected remove call, got %v", got)
	}
	if c.TotalItems() != 0 {
		t.Fatal("expected line to be removed")
	}
}

func TestServerCart_QuantityOverCapNeverReachesBackend(t *testing.T) {
	ctx := context.Background()
	api := seededCartAPI()
	c := newTestServerCart(api, signedInAs(domain.RoleBuyer))
	_ = c.Load(ctx)
	calls := len(api.callLog())

	if err := c.AddToCart(ctx, quilt, domain.MaxLineQuantity+1); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("AddToCart: expected ErrValidation, got %v", err)
	}
	if err := c.UpdateQuantity(ctx, "item-p-vase", domain.MaxLineQuantity+1); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("UpdateQuantity: expected ErrValidation, got %v", err)
	}
	if len(api.callLog()) != calls || c.TotalItems() != 1 {
		t.Fatal("over-cap quantities must be rejected before any backend call")
	}
}

func TestServerCart_ResetDropsLateRefetch(t *testing.T) {
	ctx := context.Background()
	api := seededCartAPI()
	session := signedInAs(domain.RoleBuyer)
	c := newTestServerCart(api, session)
	_ = c.Load(ctx)

	// Logout lands between the mutation and its refetch.
	api.onMutate = func() {
		session.set(domain.Guest())
		c.Reset(ctx)
	}
	if err := c.AddToCart(ctx, quilt, 1); err != nil {
		t.Fatalf("AddToCart returned error: %v", err)
	}
	if c.TotalItems() != 0 {
		t.Fatalf("late refetch must not repopulate a reset cart, got %d items", c.TotalItems())
	}
}

func TestNewCartCoordinator_Mode(t *testing.T) {
	local, err := NewCartCoordinator(domain.CartModeLocal, CartDeps{Store: newStubStore()}, zerolog.Nop())
	if err != nil || local.Mode() != domain.CartModeLocal {
		t.Fatalf("expected local coordinator, got %v %v", local, err)
	}
	server, err := NewCartCoordinator(domain.CartModeServer, CartDeps{API: &stubCartAPI{}, Session: signedInAs(domain.RoleBuyer)}, zerolog.Nop())
	if err != nil || server.Mode() != domain.CartModeServer {
		t.Fatalf("expected server coordinator, got %v %v", server, err)
	}
	if _, err := NewCartCoordinator("hybrid", CartDeps{}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if _, err := NewCartCoordinator(domain.CartModeServer, CartDeps{}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for missing server deps")
	}
}
