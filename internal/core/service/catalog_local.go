package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/handmade-gallery/storefront/internal/api/metrics"
	"github.com/handmade-gallery/storefront/internal/core/domain"
	"github.com/handmade-gallery/storefront/internal/core/ports"
	"github.com/handmade-gallery/storefront/internal/pkg/validate"
)

const keyProducts = "products"

// LocalCatalog is the KV-persisted product catalog. Every mutation re-persists
// the whole collection before it becomes visible.
type LocalCatalog struct {
	store  ports.KVStore
	events ports.EventPublisher
	log    zerolog.Logger
	now    func() time.Time
	newID  func() (string, error)

	mu       sync.RWMutex
	products []domain.Product
}

func NewLocalCatalog(store ports.KVStore, events ports.EventPublisher, log zerolog.Logger) *LocalCatalog {
	return &LocalCatalog{
		store:  store,
		events: events,
		log:    log,
		now:    time.Now,
		newID:  newProductID,
	}
}

// newProductID returns a time-ordered UUIDv7.
func newProductID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Load restores the persisted collection. Malformed data is discarded.
func (c *LocalCatalog) Load(ctx context.Context) error {
	raw, ok, err := c.store.Get(ctx, keyProducts)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	var products []domain.Product
	if ok {
		if err := json.Unmarshal([]byte(raw), &products); err != nil {
			c.log.Warn().Err(err).Msg("discarding corrupt catalog")
			if delErr := c.store.Delete(ctx, keyProducts); delErr != nil {
				c.log.Warn().Err(delErr).Msg("failed to remove corrupt catalog")
			}
			products = nil
		}
	}

	c.mu.Lock()
	c.products = products
	metrics.CatalogProducts.Set(float64(len(products)))
	c.mu.Unlock()
	return nil
}

func (c *LocalCatalog) List(context.Context) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneProducts(c.products), nil
}

func (c *LocalCatalog) FindByID(_ context.Context, id string) (*domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.index(id); i >= 0 {
		p := c.products[i].Clone()
		return &p, nil
	}
	return nil, domain.ErrProductNotFound
}

func (c *LocalCatalog) AddProduct(ctx context.Context, draft domain.ProductDraft) (*domain.Product, error) {
	if err := validate.Struct(draft); err != nil {
		return nil, err
	}
	id, err := c.newID()
	if err != nil {
		return nil, fmt.Errorf("add product: generate id: %w", err)
	}
	p := draft.Product(id, c.now().UTC())

	c.mu.Lock()
	defer c.mu.Unlock()
	next := append(cloneProducts(c.products), p)
	if err := c.commit(ctx, next); err != nil {
		return nil, fmt.Errorf("add product: %w", err)
	}
	out := p.Clone()
	return &out, nil
}

func (c *LocalCatalog) UpdateProduct(ctx context.Context, id string, draft domain.ProductDraft) (*domain.Product, error) {
	if err := validate.Struct(draft); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return nil, nil
	}
	next := cloneProducts(c.products)
	next[i] = draft.Product(id, c.products[i].CreatedAt)
	if err := c.commit(ctx, next); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	out := next[i].Clone()
	return &out, nil
}

func (c *LocalCatalog) DeleteProduct(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return nil
	}
	next := cloneProducts(c.products)
	next = append(next[:i], next[i+1:]...)
	if err := c.commit(ctx, next); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// commit persists next and swaps it in. Callers hold mu.
func (c *LocalCatalog) commit(ctx context.Context, next []domain.Product) error {
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := c.store.Set(ctx, keyProducts, string(raw)); err != nil {
		return fmt.Errorf("persist catalog: %w", err)
	}
	c.products = next
	metrics.CatalogProducts.Set(float64(len(next)))
	if c.events != nil {
		c.events.Publish(domain.TopicCatalog)
	}
	return nil
}

func (c *LocalCatalog) index(id string) int {
	for i, p := range c.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func cloneProducts(in []domain.Product) []domain.Product {
	out := make([]domain.Product, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
