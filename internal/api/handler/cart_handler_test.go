package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/handmade-gallery/storefront/internal/core/domain"
)

func catalogWith(products ...domain.Product) *stubCatalog {
	return &stubCatalog{products: products}
}

func TestCartHandler_AddItem_ResolvesProduct(t *testing.T) {
	cart := &stubCart{}
	vase := domain.Product{ID: "p1", Title: "Vase", Price: 20, Category: "ceramics"}
	h := NewCartHandler(cart, catalogWith(vase))
	c, rec := newContext(http.MethodPost, "/cart/items", jsonBody(`{"productId":"p1","quantity":2}`), nil)

	if err := h.AddItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(cart.added) != 1 || cart.added[0].Price != 20 || cart.qty[0] != 2 {
		t.Fatalf("cart not called with the catalog product: %+v %v", cart.added, cart.qty)
	}

	var resp cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Total != 40 || resp.TotalItems != 2 || len(resp.Lines) != 1 {
		t.Fatalf("unexpected cart response: %+v", resp)
	}
}

func TestCartHandler_AddItem_UnknownProduct(t *testing.T) {
	cart := &stubCart{}
	h := NewCartHandler(cart, catalogWith())
	c, _ := newContext(http.MethodPost, "/cart/items", jsonBody(`{"productId":"nope"}`), nil)

	if err := h.AddItem(c); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if len(cart.added) != 0 {
		t.Fatal("cart must not be touched")
	}
}

func TestCartHandler_AddItem_MissingProductID(t *testing.T) {
	h := NewCartHandler(&stubCart{}, catalogWith())
	c, _ := newContext(http.MethodPost, "/cart/items", jsonBody(`{"quantity":1}`), nil)

	err := h.AddItem(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields[0].Field != "productId" {
		t.Fatalf("expected validation error on productId, got %v", err)
	}
}

func TestCartHandler_QuantityOverCap(t *testing.T) {
	cart := &stubCart{}
	h := NewCartHandler(cart, catalogWith(domain.Product{ID: "p1", Price: 5}))

	c, _ := newContext(http.MethodPost, "/cart/items", jsonBody(`{"productId":"p1","quantity":9223372036854775807}`), nil)
	var ve *domain.ValidationError
	if err := h.AddItem(c); !errors.As(err, &ve) || ve.Fields[0].Field != "quantity" {
		t.Fatalf("expected validation error on quantity, got %v", err)
	}

	c, _ = newContext(http.MethodPut, "/cart/items/p1", jsonBody(`{"quantity":1000}`), nil)
	c.SetParamNames("id")
	c.SetParamValues("p1")
	if err := h.UpdateItem(c); !errors.As(err, &ve) || ve.Fields[0].Field != "quantity" {
		t.Fatalf("expected validation error on quantity, got %v", err)
	}
	if len(cart.added) != 0 {
		t.Fatal("cart must not be touched")
	}
}

func TestCartHandler_AddItem_CartDisabled(t *testing.T) {
	cart := &stubCart{err: domain.ErrCartDisabled}
	h := NewCartHandler(cart, catalogWith(domain.Product{ID: "p1", Price: 5}))
	c, _ := newContext(http.MethodPost, "/cart/items", jsonBody(`{"productId":"p1"}`), nil)

	if err := h.AddItem(c); !errors.Is(err, domain.ErrCartDisabled) {
		t.Fatalf("expected ErrCartDisabled, got %v", err)
	}
}

func TestCartHandler_Get_EmptyCartHasLinesArray(t *testing.T) {
	h := NewCartHandler(&stubCart{}, catalogWith())
	c, rec := newContext(http.MethodGet, "/cart", nil, nil)

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if lines, ok := resp["lines"].([]any); !ok || len(lines) != 0 {
		t.Fatalf("expected empty lines array, got %v", resp["lines"])
	}
	if resp["mode"] != "local" {
		t.Fatalf("unexpected mode: %v", resp["mode"])
	}
}

func TestCartHandler_RemoveItem(t *testing.T) {
	cart := &stubCart{}
	h := NewCartHandler(cart, catalogWith())
	c, _ := newContext(http.MethodDelete, "/cart/items/line-1", nil, nil)
	c.SetParamNames("id")
	c.SetParamValues("line-1")

	if err := h.RemoveItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(cart.removed) != 1 || cart.removed[0] != "line-1" {
		t.Fatalf("unexpected removals: %v", cart.removed)
	}
}
