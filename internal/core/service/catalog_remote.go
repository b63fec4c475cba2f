package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/handmade-gallery/storefront/internal/api/metrics"
	"github.com/handmade-gallery/storefront/internal/core/domain"
	"github.com/handmade-gallery/storefront/internal/core/ports"
	"github.com/handmade-gallery/storefront/internal/pkg/validate"
)

// RemoteCatalog serves the catalog from the backend /products endpoints.
type RemoteCatalog struct {
	api    ports.ProductAPI
	events ports.EventPublisher
	log    zerolog.Logger
}

func NewRemoteCatalog(api ports.ProductAPI, events ports.EventPublisher, log zerolog.Logger) *RemoteCatalog {
	return &RemoteCatalog{api: api, events: events, log: log}
}

// Load warms the catalog size gauge. Backend failures are logged, not fatal.
func (c *RemoteCatalog) Load(ctx context.Context) error {
	products, err := c.api.ListProducts(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("initial catalog fetch failed")
		return nil
	}
	metrics.CatalogProducts.Set(float64(len(products)))
	return nil
}

func (c *RemoteCatalog) List(ctx context.Context) ([]domain.Product, error) {
	products, err := c.api.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	metrics.CatalogProducts.Set(float64(len(products)))
	return products, nil
}

func (c *RemoteCatalog) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := c.api.GetProduct(ctx, id)
	if isNotFound(err) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

func (c *RemoteCatalog) AddProduct(ctx context.Context, draft domain.ProductDraft) (*domain.Product, error) {
	if err := validate.Struct(draft); err != nil {
		return nil, err
	}
	p, err := c.api.CreateProduct(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("add product: %w", err)
	}
	c.publish()
	return p, nil
}

func (c *RemoteCatalog) UpdateProduct(ctx context.Context, id string, draft domain.ProductDraft) (*domain.Product, error) {
	if err := validate.Struct(draft); err != nil {
		return nil, err
	}
	p, err := c.api.UpdateProduct(ctx, id, draft)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	c.publish()
	return p, nil
}

func (c *RemoteCatalog) DeleteProduct(ctx context.Context, id string) error {
	err := c.api.DeleteProduct(ctx, id)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	c.publish()
	return nil
}

func (c *RemoteCatalog) publish() {
	if c.events != nil {
		c.events.Publish(domain.TopicCatalog)
	}
}

func isNotFound(err error) bool {
	var apiErr *domain.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
