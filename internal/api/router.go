package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/handmade-gallery/storefront/internal/api/docs"
	"github.com/handmade-gallery/storefront/internal/api/handler"
	"github.com/handmade-gallery/storefront/internal/api/middleware"
	"github.com/handmade-gallery/storefront/internal/core/domain"
	"github.com/handmade-gallery/storefront/internal/core/ports"
)

// Deps are the components the shell exposes.
type Deps struct {
	Sessions ports.SessionService
	Cart     ports.CartCoordinator
	Catalog  ports.CatalogRepository
	Checkout ports.CheckoutService
	Events   ports.EventSubscriber
	Store    handler.Pinger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))

	signedIn := middleware.RequireSession(d.Sessions)
	staff := middleware.RequireSession(d.Sessions, domain.RoleAdmin, domain.RoleSeller)

	// --- Session ---
	sessionHandler := handler.NewSessionHandler(d.Sessions)
	s := e.Group("/session")
	s.GET("", sessionHandler.Get)
	s.POST("/login", sessionHandler.Login)
	s.POST("/google", sessionHandler.Google)
	s.POST("/register", sessionHandler.Register)
	s.POST("/forgot-password", sessionHandler.ForgotPassword)
	s.POST("/reset-password", sessionHandler.ResetPassword)
	s.POST("/local-admin", sessionHandler.LocalAdmin)
	s.POST("/logout", sessionHandler.Logout)
	s.PUT("/profile", sessionHandler.UpdateProfile, signedIn)

	// --- Cart (guests allowed; server mode answers 409 without a session) ---
	cartHandler := handler.NewCartHandler(d.Cart, d.Catalog)
	cart := e.Group("/cart")
	cart.GET("", cartHandler.Get)
	cart.DELETE("", cartHandler.Clear)
	cart.POST("/items", cartHandler.AddItem)
	cart.PUT("/items/:id", cartHandler.UpdateItem)
	cart.DELETE("/items/:id", cartHandler.RemoveItem)

	// --- Catalog ---
	catalogHandler := handler.NewCatalogHandler(d.Catalog, log)
	catalog := e.Group("/catalog")
	catalog.GET("/products", catalogHandler.List)
	catalog.GET("/products/:id", catalogHandler.Get)
	catalog.POST("/products", catalogHandler.Create, staff)
	catalog.PUT("/products/:id", catalogHandler.Update, staff)
	catalog.DELETE("/products/:id", catalogHandler.Delete, staff)
	catalog.GET("/export.xlsx", catalogHandler.Export, staff)
	catalog.POST("/import.xlsx", catalogHandler.Import, staff)

	// --- Checkout ---
	checkoutHandler := handler.NewCheckoutHandler(d.Checkout)
	e.POST("/checkout", checkoutHandler.PlaceOrder, signedIn)
	e.GET("/orders", checkoutHandler.Orders, signedIn)

	// --- Events ---
	e.GET("/events", handler.NewEventsHandler(d.Events, log).Stream)

	// --- Guarded views ---
	e.GET("/user/dashboard", handler.View("user-dashboard"), middleware.Guard(d.Sessions, domain.RoleBuyer))
	e.GET("/seller/dashboard", handler.View("seller-dashboard"), middleware.Guard(d.Sessions, domain.RoleSeller))
	e.GET("/admin/dashboard", handler.View("admin-dashboard"), middleware.Guard(d.Sessions, domain.RoleAdmin, domain.RoleSeller))
	e.GET("/booking", handler.View("booking"), middleware.Guard(d.Sessions))

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewHealthDependenciesHandler(d.Store, d.Sessions).Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
