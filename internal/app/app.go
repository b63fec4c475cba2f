// Package app assembles the storefront shell: one store, one event bus, one
// backend client and the session, cart and catalog components built on them.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/handmade-gallery/storefront/internal/api"
	"github.com/handmade-gallery/storefront/internal/core/domain"
	"github.com/handmade-gallery/storefront/internal/core/ports"
	"github.com/handmade-gallery/storefront/internal/core/service"
	"github.com/handmade-gallery/storefront/internal/infrastructure/backend"
	"github.com/handmade-gallery/storefront/internal/infrastructure/config"
	"github.com/handmade-gallery/storefront/internal/infrastructure/db/memory"
	mongostore "github.com/handmade-gallery/storefront/internal/infrastructure/db/mongo"
	redisstore "github.com/handmade-gallery/storefront/internal/infrastructure/db/redis"
	"github.com/handmade-gallery/storefront/internal/infrastructure/db/sqlite"
	"github.com/handmade-gallery/storefront/internal/infrastructure/queue"
	"github.com/handmade-gallery/storefront/pkg/logger"
)

const storeTimeout = 5 * time.Second

// App owns every long-lived component of the shell.
type App struct {
	Store    ports.KVStore
	Bus      *queue.Bus
	Backend  *backend.Client
	Session  *service.SessionManager
	Cart     ports.CartCoordinator
	Catalog  ports.CatalogRepository
	Checkout ports.CheckoutService
	Echo     *echo.Echo

	log    zerolog.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New wires the components described by cfg. Nothing is loaded until Start.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	a := &App{Store: store, log: log}
	a.Bus = queue.NewBus(logger.Component(log, "bus"))
	a.Backend = backend.NewClient(backend.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, logger.Component(log, "backend"))

	var local *service.LocalAuthority
	if cfg.LocalAdmin.Enabled() {
		local = service.NewLocalAuthority(
			cfg.LocalAdmin.Username,
			cfg.LocalAdmin.PasswordHash,
			cfg.LocalAdmin.TokenSecret,
			cfg.LocalAdmin.TokenTTL,
		)
	}

	a.Session = service.NewSessionManager(service.SessionDeps{
		Store:  store,
		Auth:   a.Backend,
		Local:  local,
		Events: a.Bus,
	}, logger.Component(log, "session"))
	a.Backend.Bind(a.Session)

	a.Cart, err = service.NewCartCoordinator(domain.CartMode(cfg.CartMode), service.CartDeps{
		Store:   store,
		API:     a.Backend,
		Session: a.Session,
		Events:  a.Bus,
	}, logger.Component(log, "cart"))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	a.Session.OnLogout(a.Cart.Reset)

	switch cfg.CatalogMode {
	case "server":
		a.Catalog = service.NewRemoteCatalog(a.Backend, a.Bus, logger.Component(log, "catalog"))
	default:
		a.Catalog = service.NewLocalCatalog(store, a.Bus, logger.Component(log, "catalog"))
	}

	a.Checkout = service.NewCheckoutService(a.Backend, a.Cart, a.Session, logger.Component(log, "checkout"))

	a.Echo = api.NewRouter(api.Deps{
		Sessions: a.Session,
		Cart:     a.Cart,
		Catalog:  a.Catalog,
		Checkout: a.Checkout,
		Events:   a.Bus,
		Store:    store,
	}, logger.Component(log, "http"))
	// Open event streams end when the server shuts down.
	a.Echo.Server.RegisterOnShutdown(a.Bus.Close)

	return a, nil
}

// Start loads the catalog, then boots the session and the cart in the
// background. The readiness probe reports when boot has finished.
func (a *App) Start(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)

	if err := a.Catalog.Load(ctx); err != nil {
		a.log.Warn().Err(err).Msg("catalog load failed, starting empty")
	}

	// Subscribe before boot so the first session change is not missed.
	events, unsubscribe := a.Bus.Subscribe(8)

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		s := a.Session.Boot(ctx)
		a.log.Info().Str("status", string(s.Status)).Msg("session boot finished")
		if err := a.Cart.Load(ctx); err != nil {
			a.log.Warn().Err(err).Msg("cart load failed")
		}
	}()
	go func() {
		defer a.wg.Done()
		defer unsubscribe()
		a.followSession(ctx, events)
	}()
	return nil
}

// followSession refetches a server cart whenever a user signs in after boot.
func (a *App) followSession(ctx context.Context, events <-chan domain.Event) {
	wasSignedIn := false
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Topic != domain.TopicSession {
				continue
			}
			signedIn := a.Session.Current().Authenticated()
			if signedIn && !wasSignedIn && a.Cart.Mode() == domain.CartModeServer {
				if err := a.Cart.Load(ctx); err != nil {
					a.log.Warn().Err(err).Msg("cart refetch after sign-in failed")
				}
			}
			wasSignedIn = signedIn
		}
	}
}

// Close stops background work and releases the store.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	a.Bus.Close()
	a.wg.Wait()
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (ports.KVStore, error) {
	switch cfg.Backend {
	case "memory":
		return memory.NewStore(), nil
	case "sqlite":
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "redis":
		store, err := redisstore.Open(ctx, redisstore.Config{
			Addr:    cfg.RedisAddr,
			DB:      cfg.RedisDB,
			Prefix:  cfg.RedisPrefix,
			Timeout: storeTimeout,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case "mongo":
		store, err := mongostore.Open(ctx, mongostore.Config{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
			Timeout:  storeTimeout,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
