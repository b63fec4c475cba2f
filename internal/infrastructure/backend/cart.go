package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/handmade-gallery/storefront/internal/core/domain"
)

func (c *Client) GetCart(ctx context.Context) (domain.Cart, error) {
	var out cartResponse
	if err := c.do(ctx, call{method: http.MethodGet, path: "/cart", route: "/cart", out: &out}); err != nil {
		return domain.Cart{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) AddCartItem(ctx context.Context, productID string, quantity int) error {
	return c.do(ctx, call{
		method: http.MethodPost, path: "/cart/add", route: "/cart/add",
		body: map[string]any{"productId": productID, "quantity": quantity},
	})
}

func (c *Client) UpdateCartItem(ctx context.Context, itemID string, quantity int) error {
	return c.do(ctx, call{
		method: http.MethodPut, path: "/cart/" + url.PathEscape(itemID), route: "/cart/:itemId",
		body: map[string]int{"quantity": quantity},
	})
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/cart/" + url.PathEscape(itemID), route: "/cart/:itemId"})
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/cart", route: "/cart"})
}
