package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/handmade-gallery/storefront/internal/core/domain"
	"github.com/handmade-gallery/storefront/internal/core/ports"
	"github.com/handmade-gallery/storefront/internal/pkg/validate"
)

type checkoutService struct {
	orders  ports.OrderAPI
	cart    ports.CartCoordinator
	session ports.SessionReader
	log     zerolog.Logger
}

// NewCheckoutService returns a CheckoutService that submits the current cart.
func NewCheckoutService(orders ports.OrderAPI, cart ports.CartCoordinator, session ports.SessionReader, log zerolog.Logger) ports.CheckoutService {
	return &checkoutService{orders: orders, cart: cart, session: session, log: log}
}

// PlaceOrder submits the cart lines at their cart prices and clears the cart
// once the backend accepts the order.
func (s *checkoutService) PlaceOrder(ctx context.Context, addr domain.ShippingAddress) (*domain.Order, error) {
	if !s.session.Current().Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	if err := validate.Struct(addr); err != nil {
		return nil, err
	}

	cart, err := s.cart.Cart(ctx)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	if cart.IsEmpty() {
		return nil, domain.NewValidationError("items", "cart is empty")
	}

	req := domain.OrderRequest{
		ShippingAddress: addr,
		Items:           make([]domain.OrderItem, 0, len(cart.Lines)),
		Total:           cart.Total(),
	}
	for _, l := range cart.Lines {
		req.Items = append(req.Items, domain.OrderItem{
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
			Price:     l.UnitPrice,
		})
	}

	order, err := s.orders.CreateOrder(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	s.log.Info().Str("order_id", order.ID).Float64("total", req.Total).Int("items", len(req.Items)).Msg("order placed")

	if err := s.cart.ClearCart(ctx); err != nil {
		s.log.Warn().Err(err).Str("order_id", order.ID).Msg("order placed but cart not cleared")
	}
	return order, nil
}

func (s *checkoutService) Orders(ctx context.Context) ([]domain.Order, error) {
	if !s.session.Current().Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}
