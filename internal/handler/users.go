package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hospitality-reservation/internal/middleware"
	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
	"github.com/iliyamo/hospitality-reservation/internal/service"
)

// UserHandler exposes account administration under /api/admin/users.
type UserHandler struct {
	svc *service.UserService
}

// NewUserHandler returns a handler backed by svc.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// List pages through accounts, optionally filtered by role and email.
func (h *UserHandler) List(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	f := repository.UserFilter{Role: model.Role(c.QueryParam("role")), Email: c.QueryParam("email"), Page: page}
	out, total, err := h.svc.List(c.Request().Context(), middleware.Principal(c), f)
	if err != nil {
		return err
	}
	return respondPage(c, "users retrieved", out, f.Page, total)
}

// Get returns one account.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	u, err := h.svc.Get(c.Request().Context(), middleware.Principal(c), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user retrieved", u)
}

// Update applies a partial change to roles, profile or the active flag.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req service.UserPatch
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := h.svc.Update(c.Request().Context(), middleware.Principal(c), id, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user updated successfully", u)
}

// Delete removes an account.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), middleware.Principal(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user deleted successfully", nil)
}
