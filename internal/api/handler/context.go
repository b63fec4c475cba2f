package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/handmade-gallery/storefront/internal/api/middleware"
	"github.com/handmade-gallery/storefront/internal/core/domain"
)

// ctxSession returns the session the guard middleware resolved. A missing or
// guest session means the route was mounted without a guard.
func ctxSession(c echo.Context) (domain.Session, error) {
	s, ok := c.Get(middleware.SessionKey).(domain.Session)
	if !ok || !s.Authenticated() {
		return domain.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "sign in required")
	}
	return s, nil
}

// bind decodes the request body into req and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
