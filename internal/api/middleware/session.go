package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/handmade-gallery/storefront/internal/core/domain"
)

// SessionKey is the echo context key the resolved session is stored under.
const SessionKey = "session"

// Sessions is the session surface the middleware consumes.
type Sessions interface {
	Current() domain.Session
	Ready() <-chan struct{}
}

// awaitSession blocks until boot has resolved or the request is abandoned.
func awaitSession(c echo.Context, sessions Sessions) (domain.Session, bool) {
	select {
	case <-sessions.Ready():
		return sessions.Current(), true
	case <-c.Request().Context().Done():
		return domain.Session{}, false
	}
}
