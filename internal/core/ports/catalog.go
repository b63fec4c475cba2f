package ports

import (
	"context"

	"github.com/handmade-gallery/storefront/internal/core/domain"
)

// CatalogRepository is the product catalog. Lists are in insertion order.
type CatalogRepository interface {
	Load(ctx context.Context) error
	List(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	AddProduct(ctx context.Context, draft domain.ProductDraft) (*domain.Product, error)
	// UpdateProduct replaces the fields of an existing product. An unknown id is
	// a no-op and returns (nil, nil).
	UpdateProduct(ctx context.Context, id string, draft domain.ProductDraft) (*domain.Product, error)
	// DeleteProduct removes the product. An unknown id is a no-op.
	DeleteProduct(ctx context.Context, id string) error
}
