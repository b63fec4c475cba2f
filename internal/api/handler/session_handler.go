package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/handmade-gallery/storefront/internal/core/domain"
	"github.com/handmade-gallery/storefront/internal/core/ports"
)

// SessionHandler exposes the session manager to views.
type SessionHandler struct {
	sessions ports.SessionService
}

func NewSessionHandler(sessions ports.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Get returns the published session without waiting for boot.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, newSessionResponse(h.sessions.Current()))
}

// Login signs in with email and password.
//
// @Summary      Sign in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.sessions.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionResponse(s))
}

// Google signs in with a Google ID token.
//
// @Summary      Sign in with Google
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      googleRequest  true  "Google ID token"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Router       /session/google [post]
func (h *SessionHandler) Google(c echo.Context) error {
	var req googleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.sessions.GoogleSignIn(c.Request().Context(), req.Token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionResponse(s))
}

// Register creates an account and signs it in.
//
// @Summary      Register
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      domain.Registration  true  "Account details"
// @Success      201   {object}  sessionResponse
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /session/register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var req domain.Registration
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	s, err := h.sessions.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newSessionResponse(s))
}

// LocalAdmin signs in the offline administrator.
//
// @Summary      Offline admin sign-in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      localAdminRequest  true  "Admin credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /session/local-admin [post]
func (h *SessionHandler) LocalAdmin(c echo.Context) error {
	var req localAdminRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.sessions.SignInLocalAdmin(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionResponse(s))
}

// ForgotPassword asks the backend to mail a reset link.
//
// @Summary      Request a password reset
// @Tags         session
// @Accept       json
// @Param        body  body  forgotPasswordRequest  true  "Account email"
// @Success      204
// @Failure      422  {object}  map[string]string
// @Router       /session/forgot-password [post]
func (h *SessionHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.sessions.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ResetPassword sets a new password using a reset token.
//
// @Summary      Reset password
// @Tags         session
// @Accept       json
// @Param        body  body  resetPasswordRequest  true  "Reset token and new password"
// @Success      204
// @Failure      422  {object}  map[string]string
// @Router       /session/reset-password [post]
func (h *SessionHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.sessions.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Logout ends the session. It is idempotent.
//
// @Summary      Sign out
// @Tags         session
// @Success      204
// @Router       /session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	if err := h.sessions.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateProfile saves the editable profile fields.
//
// @Summary      Update profile
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      domain.ProfileUpdate  true  "Profile fields"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /session/profile [put]
func (h *SessionHandler) UpdateProfile(c echo.Context) error {
	if _, err := ctxSession(c); err != nil {
		return err
	}
	var req domain.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	s, err := h.sessions.UpdateProfile(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionResponse(s))
}
