package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/handmade-gallery/storefront/internal/core/domain"
	"github.com/handmade-gallery/storefront/internal/core/ports"
)

const keyCart = "cart"

// LocalCart keeps the cart in memory and persists a snapshot after every
// mutation. Lines are keyed by product id and priced at the time of add.
type LocalCart struct {
	store  ports.KVStore
	events ports.EventPublisher
	log    zerolog.Logger

	mu   sync.Mutex
	cart domain.Cart
}

func NewLocalCart(store ports.KVStore, events ports.EventPublisher, log zerolog.Logger) *LocalCart {
	return &LocalCart{store: store, events: events, log: log}
}

func (c *LocalCart) Mode() domain.CartMode { return domain.CartModeLocal }

// Load restores the persisted snapshot. A corrupt snapshot is discarded.
func (c *LocalCart) Load(ctx context.Context) error {
	raw, ok, err := c.store.Get(ctx, keyCart)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	var cart domain.Cart
	if ok {
		if err := json.Unmarshal([]byte(raw), &cart); err != nil {
			c.log.Warn().Err(err).Msg("discarding corrupt cart snapshot")
			if delErr := c.store.Delete(ctx, keyCart); delErr != nil {
				c.log.Warn().Err(delErr).Msg("failed to remove corrupt cart snapshot")
			}
			cart = domain.Cart{}
		}
	}
	cart = sanitize(cart)

	c.mu.Lock()
	c.cart = cart
	c.mu.Unlock()
	c.publish()
	return nil
}

func (c *LocalCart) Cart(context.Context) (domain.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Clone(), nil
}

func (c *LocalCart) AddToCart(ctx context.Context, product domain.Product, quantity int) error {
	quantity, err := validateAdd(product, quantity)
	if err != nil {
		return err
	}
	err = c.apply(ctx, func(next *domain.Cart) error {
		if i, ok := next.Index(product.ID); ok {
			// Both operands are already capped, so the sum cannot overflow.
			if err := checkQuantity(next.Lines[i].Quantity + quantity); err != nil {
				return err
			}
			next.Lines[i].Quantity += quantity
			return nil
		}
		snap := product.Clone()
		next.Lines = append(next.Lines, domain.CartLine{
			ItemID:    product.ID,
			Product:   domain.ProductRef{ID: product.ID, Snapshot: &snap},
			UnitPrice: product.Price,
			Quantity:  quantity,
		})
		return nil
	})
	recordMutation(domain.CartModeLocal, "add", err)
	return err
}

func (c *LocalCart) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if err := checkQuantity(quantity); err != nil {
		return err
	}
	err := c.apply(ctx, func(next *domain.Cart) error {
		i, ok := next.Index(itemID)
		if !ok {
			return nil
		}
		if quantity < 1 {
			next.Lines = append(next.Lines[:i], next.Lines[i+1:]...)
			return nil
		}
		next.Lines[i].Quantity = quantity
		return nil
	})
	recordMutation(domain.CartModeLocal, "update", err)
	return err
}

func (c *LocalCart) RemoveFromCart(ctx context.Context, itemID string) error {
	err := c.apply(ctx, func(next *domain.Cart) error {
		if i, ok := next.Index(itemID); ok {
			next.Lines = append(next.Lines[:i], next.Lines[i+1:]...)
		}
		return nil
	})
	recordMutation(domain.CartModeLocal, "remove", err)
	return err
}

func (c *LocalCart) ClearCart(ctx context.Context) error {
	err := c.apply(ctx, func(next *domain.Cart) error {
		next.Lines = nil
		return nil
	})
	recordMutation(domain.CartModeLocal, "clear", err)
	return err
}

// Reset empties the cart and drops the snapshot.
func (c *LocalCart) Reset(ctx context.Context) {
	c.mu.Lock()
	c.cart = domain.Cart{}
	c.mu.Unlock()
	if err := c.store.Delete(ctx, keyCart); err != nil {
		c.log.Warn().Err(err).Msg("failed to remove cart snapshot")
	}
	c.publish()
}

func (c *LocalCart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.TotalItems()
}

func (c *LocalCart) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Total()
}

// apply runs mutate on a copy, persists the copy and only then swaps it in.
// On a persist error the in-memory cart is unchanged. Unchanged carts are not
// re-persisted.
func (c *LocalCart) apply(ctx context.Context, mutate func(*domain.Cart) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.cart.Clone()
	if err := mutate(&next); err != nil {
		return err
	}
	if cartsEqual(c.cart, next) {
		return nil
	}

	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := c.store.Set(ctx, keyCart, string(raw)); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	c.cart = next
	c.publish()
	return nil
}

func (c *LocalCart) publish() {
	if c.events != nil {
		c.events.Publish(domain.TopicCart)
	}
}

// sanitize drops lines a snapshot should never contain.
func sanitize(cart domain.Cart) domain.Cart {
	out := domain.Cart{Lines: make([]domain.CartLine, 0, len(cart.Lines))}
	for _, l := range cart.Lines {
		if l.ItemID == "" || l.Quantity < 1 || l.Quantity > domain.MaxLineQuantity || l.UnitPrice < 0 {
			continue
		}
		out.Lines = append(out.Lines, l)
	}
	return out
}

func cartsEqual(a, b domain.Cart) bool {
	if len(a.Lines) != len(b.Lines) {
		return false
	}
	for i := range a.Lines {
		if a.Lines[i].ItemID != b.Lines[i].ItemID || a.Lines[i].Quantity != b.Lines[i].Quantity {
			return false
		}
	}
	return true
}
