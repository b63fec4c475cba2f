package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/handmade-gallery/storefront/internal/core/domain"
)

func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	var out orderResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/orders", route: "/orders", body: req, out: &out}); err != nil {
		return nil, err
	}
	if out.Order == nil {
		return nil, fmt.Errorf("POST /orders: %w: missing order", domain.ErrUnexpectedResponse)
	}
	o := out.Order.toDomain()
	return &o, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var out orderList
	if err := c.do(ctx, call{method: http.MethodGet, path: "/orders", route: "/orders", out: &out}); err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(out.Orders))
	for _, wo := range out.Orders {
		orders = append(orders, wo.toDomain())
	}
	return orders, nil
}
