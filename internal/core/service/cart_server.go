package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/handmade-gallery/storefront/internal/core/domain"
	"github.com/handmade-gallery/storefront/internal/core/ports"
)

// ServerCart treats the backend cart as authoritative. Every mutation is sent
// to the backend and followed by a refetch that replaces the cached cart
// wholesale; nothing is applied optimistically.
//
// Mutations are serialised, so each refetch observes its own mutation. A Reset
// (logout) bumps the generation and any in-flight refetch result is dropped.
type ServerCart struct {
	api     ports.CartAPI
	session ports.SessionReader
	events  ports.EventPublisher
	log     zerolog.Logger

	opMu sync.Mutex

	mu     sync.RWMutex
	cart   domain.Cart
	loaded bool
	stale  bool
	gen    uint64
}

func NewServerCart(api ports.CartAPI, session ports.SessionReader, events ports.EventPublisher, log zerolog.Logger) *ServerCart {
	return &ServerCart{api: api, session: session, events: events, log: log}
}

func (c *ServerCart) Mode() domain.CartMode { return domain.CartModeServer }

// Load fetches the backend cart. Guests get an empty, disabled cart.
func (c *ServerCart) Load(ctx context.Context) error {
	if !c.session.Current().Authenticated() {
		return nil
	}
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.refresh(ctx, c.generation())
}

// Cart returns the cached cart, refetching first when it was never loaded or
// the last refetch failed. A refetch already in progress is not waited for.
func (c *ServerCart) Cart(ctx context.Context) (domain.Cart, error) {
	if !c.session.Current().Authenticated() {
		return domain.Cart{}, nil
	}

	c.mu.RLock()
	needsFetch := !c.loaded || c.stale
	c.mu.RUnlock()

	if needsFetch && c.opMu.TryLock() {
		err := c.refresh(ctx, c.generation())
		c.opMu.Unlock()
		c.mu.RLock()
		loaded := c.loaded
		c.mu.RUnlock()
		if err != nil && !loaded {
			return domain.Cart{}, err
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cart.Clone(), nil
}

func (c *ServerCart) AddToCart(ctx context.Context, product domain.Product, quantity int) error {
	quantity, err := validateAdd(product, quantity)
	if err != nil {
		return err
	}
	return c.mutate(ctx, "add", func(ctx context.Context) error {
		return c.api.AddCartItem(ctx, product.ID, quantity)
	})
}

func (c *ServerCart) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity < 1 {
		return c.RemoveFromCart(ctx, itemID)
	}
	if err := checkQuantity(quantity); err != nil {
		return err
	}
	if c.knownAbsent(itemID) {
		return nil
	}
	return c.mutate(ctx, "update", func(ctx context.Context) error {
		return c.api.UpdateCartItem(ctx, itemID, quantity)
	})
}

// RemoveFromCart is a no-op for ids absent from a loaded cart.
func (c *ServerCart) RemoveFromCart(ctx context.Context, itemID string) error {
	if c.knownAbsent(itemID) {
		return nil
	}
	return c.mutate(ctx, "remove", func(ctx context.Context) error {
		return c.api.RemoveCartItem(ctx, itemID)
	})
}

func (c *ServerCart) ClearCart(ctx context.Context) error {
	return c.mutate(ctx, "clear", c.api.ClearCart)
}

// Reset drops the cached cart without contacting the backend.
func (c *ServerCart) Reset(context.Context) {
	c.mu.Lock()
	c.cart = domain.Cart{}
	c.loaded = false
	c.stale = false
	c.gen++
	c.mu.Unlock()
	c.publish()
}

func (c *ServerCart) TotalItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cart.TotalItems()
}

func (c *ServerCart) TotalPrice() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cart.Total()
}

// mutate runs send then refetches. A send failure leaves the cache untouched
// and is returned. A refetch failure after a successful send marks the cache
// stale and is only logged; the next read retries.
func (c *ServerCart) mutate(ctx context.Context, op string, send func(context.Context) error) error {
	if !c.session.Current().Authenticated() {
		return domain.ErrCartDisabled
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	gen := c.generation()
	if err := send(ctx); err != nil {
		recordMutation(domain.CartModeServer, op, err)
		c.log.Warn().Err(err).Str("op", op).Msg("cart mutation failed")
		return fmt.Errorf("cart %s: %w", op, err)
	}
	recordMutation(domain.CartModeServer, op, nil)

	if err := c.refresh(ctx, gen); err != nil {
		c.log.Warn().Err(err).Str("op", op).Msg("cart refetch failed, serving cached cart")
	}
	return nil
}

// refresh fetches the backend cart and swaps it in unless a Reset happened
// since gen was read. Callers hold opMu.
func (c *ServerCart) refresh(ctx context.Context, gen uint64) error {
	cart, err := c.api.GetCart(ctx)

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		c.log.Debug().Msg("dropping cart fetched before reset")
		return nil
	}
	if err != nil {
		c.stale = true
		c.mu.Unlock()
		return fmt.Errorf("fetch cart: %w", err)
	}
	c.cart = cart
	c.loaded = true
	c.stale = false
	c.mu.Unlock()

	c.publish()
	return nil
}

func (c *ServerCart) knownAbsent(itemID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return false
	}
	_, ok := c.cart.Index(itemID)
	return !ok
}

func (c *ServerCart) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

func (c *ServerCart) publish() {
	if c.events != nil {
		c.events.Publish(domain.TopicCart)
	}
}
