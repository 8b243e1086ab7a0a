package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hospitality-reservation/internal/handler"
	"github.com/iliyamo/hospitality-reservation/internal/middleware"
	"github.com/iliyamo/hospitality-reservation/internal/service"
)

// RegisterInventory mounts tables, rooms and menu items. Reads are public
// and served through the response cache; writes need inventory rights and
// purge the cache once they succeed.
func RegisterInventory(api *echo.Group, h *handler.InventoryHandler, opt Options, g guards) {
	cached := append(append([]echo.MiddlewareFunc{}, g.public...), middleware.ResponseCache(opt.Cache, opt.Redis))
	write := append(g.can(service.CapInventoryManage), middleware.PurgeCache(opt.Cache, opt.Redis, opt.Log))

	// ---- Tables ----
	api.GET("/tables", h.ListTables, cached...)
	api.GET("/tables/:id", h.GetTable, cached...)
	api.POST("/tables", h.CreateTable, write...)
	api.PUT("/tables/:id", h.UpdateTable, write...)
	api.DELETE("/tables/:id", h.DeleteTable, write...)

	// ---- Rooms ----
	api.GET("/hotel/rooms", h.ListRooms, cached...)
	api.GET("/hotel/rooms/:id", h.GetRoom, cached...)
	api.POST("/hotel/rooms", h.CreateRoom, write...)
	api.PUT("/hotel/rooms/:id", h.UpdateRoom, write...)
	api.DELETE("/hotel/rooms/:id", h.DeleteRoom, write...)

	// ---- Menu ----
	api.GET("/menu", h.ListMenu, cached...)
	api.GET("/menu/:id", h.GetMenuItem, cached...)
	api.POST("/menu", h.CreateMenuItem, write...)
	api.PUT("/menu/:id", h.UpdateMenuItem, write...)
	api.DELETE("/menu/:id", h.DeleteMenuItem, write...)
}
