package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/handmade-gallery/storefront/internal/core/access"
	"github.com/handmade-gallery/storefront/internal/core/domain"
)

// Guard protects a view. Unauthenticated visitors are redirected to sign-in
// with the requested path; role mismatches are redirected to the visitor's own
// dashboard. No roles means any signed-in role.
func Guard(sessions Sessions, roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, ok := awaitSession(c, sessions)
			if !ok {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session not ready")
			}
			d := access.Decide(s, roles, c.Request().URL.RequestURI())
			if !d.Allow {
				return c.Redirect(http.StatusFound, d.Location())
			}
			c.Set(SessionKey, s)
			return next(c)
		}
	}
}

// RequireSession protects an API route. It answers 401 for guests and 403 for
// role mismatches instead of redirecting.
func RequireSession(sessions Sessions, roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, ok := awaitSession(c, sessions)
			if !ok {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session not ready")
			}
			d := access.Decide(s, roles, c.Request().URL.RequestURI())
			if !d.Allow {
				if !s.Authenticated() {
					return echo.NewHTTPError(http.StatusUnauthorized, "sign in required")
				}
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			c.Set(SessionKey, s)
			return next(c)
		}
	}
}
