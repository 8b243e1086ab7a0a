package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hospitality-reservation/internal/handler"
	"github.com/iliyamo/hospitality-reservation/internal/service"
)

// RegisterBookings mounts restaurant and hotel bookings. Creating a
// booking is open to guests; availability searches are public; everything
// else needs a caller and the services decide between own and all.
func RegisterBookings(api *echo.Group, r *handler.RestaurantHandler, h *handler.HotelHandler, g guards) {
	rg := api.Group("/restaurant")
	rg.POST("", r.Create, g.guest...)
	rg.GET("", r.List, g.authed...)
	rg.GET("/available-tables", r.AvailableTables, g.public...)
	rg.GET("/date-range", r.DateRange, g.authed...)
	rg.GET("/:id", r.Get, g.authed...)
	rg.PUT("/:id", r.Update, g.authed...)
	rg.DELETE("/:id", r.Delete, g.authed...)

	hg := api.Group("/hotel/bookings")
	hg.POST("", h.Create, g.guest...)
	hg.GET("", h.List, g.authed...)
	hg.GET("/check-availability", h.CheckAvailability, g.public...)
	hg.GET("/date-range", h.DateRange, g.authed...)
	hg.GET("/stats", h.Stats, g.can(service.CapDashboardView)...)
	hg.GET("/:id", h.Get, g.authed...)
	hg.PUT("/:id", h.Update, g.authed...)
	hg.DELETE("/:id", h.Delete, g.authed...)

	api.GET("/hotel/rooms/available", h.AvailableRooms, g.public...)
}
