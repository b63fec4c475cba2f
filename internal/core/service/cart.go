package service

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/handmade-gallery/storefront/internal/api/metrics"
	"github.com/handmade-gallery/storefront/internal/core/domain"
	"github.com/handmade-gallery/storefront/internal/core/ports"
)

// CartDeps groups the collaborators of both cart modes. Local mode needs Store;
// server mode needs API and Session.
type CartDeps struct {
	Store   ports.KVStore
	API     ports.CartAPI
	Session ports.SessionReader
	Events  ports.EventPublisher
}

// NewCartCoordinator builds the coordinator for mode. The mode is fixed for the
// lifetime of the coordinator.
func NewCartCoordinator(mode domain.CartMode, deps CartDeps, log zerolog.Logger) (ports.CartCoordinator, error) {
	switch mode {
	case domain.CartModeLocal:
		if deps.Store == nil {
			return nil, fmt.Errorf("local cart: store is required")
		}
		return NewLocalCart(deps.Store, deps.Events, log), nil
	case domain.CartModeServer:
		if deps.API == nil || deps.Session == nil {
			return nil, fmt.Errorf("server cart: api and session are required")
		}
		return NewServerCart(deps.API, deps.Session, deps.Events, log), nil
	default:
		return nil, fmt.Errorf("unknown cart mode %q", mode)
	}
}

func validateAdd(product domain.Product, quantity int) (int, error) {
	if product.ID == "" {
		return 0, domain.NewValidationError("productId", "productId is required")
	}
	if product.Price < 0 {
		return 0, domain.NewValidationError("price", "price must be at least 0")
	}
	if quantity < 1 {
		quantity = 1
	}
	if err := checkQuantity(quantity); err != nil {
		return 0, err
	}
	return quantity, nil
}

func checkQuantity(quantity int) error {
	if quantity > domain.MaxLineQuantity {
		return domain.NewValidationError("quantity", fmt.Sprintf("quantity must be at most %d", domain.MaxLineQuantity))
	}
	return nil
}

func recordMutation(mode domain.CartMode, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.CartMutationsTotal.WithLabelValues(string(mode), op, result).Inc()
}
