package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// View answers a guarded page with the view name and the viewer. Rendering is
// left to the client.
func View(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, err := ctxSession(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, viewResponse{View: name, User: s.User})
	}
}
