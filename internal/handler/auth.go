package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hospitality-reservation/internal/middleware"
	"github.com/iliyamo/hospitality-reservation/internal/service"
)

// AuthHandler exposes signup, login, logout and the current user.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler wires the handler to the auth service.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /api/auth/signup. It registers a customer and
// returns a session token with 201, or 409 when the email is taken.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req service.SignupInput
	if err := bind(c, &req); err != nil {
		return err
	}
	sess, err := h.auth.Signup(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "user registered successfully", sess)
}

// Login handles POST /api/auth/login. Unknown emails and wrong passwords
// share one 401 message; disabled accounts get their own.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return err
	}
	sess, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "login successful", sess)
}

// Logout revokes the bearer token of the request.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), middleware.BearerToken(c)); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "logged out", nil)
}

// Me handles GET /api/auth/me and returns the caller's user record.
func (h *AuthHandler) Me(c echo.Context) error {
	u, err := h.auth.Me(c.Request().Context(), middleware.Principal(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user retrieved", u)
}
