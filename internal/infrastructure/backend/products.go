package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/handmade-gallery/storefront/internal/core/domain"
)

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out productList
	if err := c.do(ctx, call{method: http.MethodGet, path: "/products", route: "/products", out: &out}); err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(out.Products))
	for _, wp := range out.Products {
		products = append(products, wp.toDomain())
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var out productResponse
	if err := c.do(ctx, call{method: http.MethodGet, path: "/products/" + url.PathEscape(id), route: "/products/:id", out: &out}); err != nil {
		return nil, err
	}
	p := out.Product.toDomain()
	return &p, nil
}

func (c *Client) CreateProduct(ctx context.Context, draft domain.ProductDraft) (*domain.Product, error) {
	var out productResponse
	err := c.do(ctx, call{
		method: http.MethodPost, path: "/products", route: "/products",
		body: newProductPayload(draft), out: &out,
	})
	if err != nil {
		return nil, err
	}
	p := out.Product.toDomain()
	return &p, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, draft domain.ProductDraft) (*domain.Product, error) {
	var out productResponse
	err := c.do(ctx, call{
		method: http.MethodPut, path: "/products/" + url.PathEscape(id), route: "/products/:id",
		body: newProductPayload(draft), out: &out,
	})
	if err != nil {
		return nil, err
	}
	p := out.Product.toDomain()
	if p.ID == "" {
		p.ID = id
	}
	return &p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/products/" + url.PathEscape(id), route: "/products/:id"})
}
