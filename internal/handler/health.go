package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger checks a backing dependency.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	storage Pinger
}

// NewHealthHandler builds the health check. A nil pinger reports the
// storage as always up.
func NewHealthHandler(storage Pinger) *HealthHandler {
	return &HealthHandler{storage: storage}
}

// Health reports liveness and storage reachability.
func (h *HealthHandler) Health(c echo.Context) error {
	if h.storage != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.storage(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, envelope{
				Message: "storage unavailable",
				Error:   "storage unavailable",
				Code:    "unavailable",
				Data:    echo.Map{"status": "degraded"},
			})
		}
	}
	return respond(c, http.StatusOK, "ok", echo.Map{"status": "ok"})
}
