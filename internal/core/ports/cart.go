package ports

import (
	"context"

	"github.com/handmade-gallery/storefront/internal/core/domain"
)

// CartCoordinator owns the buyer's cart. Returned carts are copies.
type CartCoordinator interface {
	Mode() domain.CartMode
	// Load restores or fetches the initial cart.
	Load(ctx context.Context) error
	Cart(ctx context.Context) (domain.Cart, error)
	AddToCart(ctx context.Context, product domain.Product, quantity int) error
	UpdateQuantity(ctx context.Context, itemID string, quantity int) error
	RemoveFromCart(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context) error
	// Reset drops all cart state without contacting the backend. It runs on
	// logout.
	Reset(ctx context.Context)
	TotalItems() int
	TotalPrice() float64
}
