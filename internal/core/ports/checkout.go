package ports

import (
	"context"

	"github.com/handmade-gallery/storefront/internal/core/domain"
)

// CheckoutService turns the current cart into an order.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, addr domain.ShippingAddress) (*domain.Order, error)
	Orders(ctx context.Context) ([]domain.Order, error)
}
