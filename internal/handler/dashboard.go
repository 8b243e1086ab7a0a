package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hospitality-reservation/internal/middleware"
	"github.com/iliyamo/hospitality-reservation/internal/service"
)

type DashboardHandler struct {
	svc *service.DashboardService
}

// NewDashboardHandler constructs a DashboardHandler over svc.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Stats handles GET /api/dashboard/stats.
func (h *DashboardHandler) Stats(c echo.Context) error {
	st, err := h.svc.Stats(c.Request().Context(), middleware.Principal(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "dashboard statistics retrieved", st)
}
