package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hospitality-reservation/internal/handler"
	"github.com/iliyamo/hospitality-reservation/internal/service"
)

// RegisterBilling mounts the staff-only invoice routes and the dashboard.
func RegisterBilling(api *echo.Group, b *handler.BillingHandler, d *handler.DashboardHandler, g guards) {
	bg := api.Group("/billing", g.can(service.CapBillingManage)...)
	bg.POST("/create-from-booking", b.CreateFromBooking)
	bg.GET("", b.List)
	bg.GET("/stats", b.Stats)
	bg.GET("/export", b.Export)
	bg.GET("/:id", b.Get)
	bg.PUT("/:id", b.Update)
	bg.DELETE("/:id", b.Delete)
	bg.GET("/:id/bill", b.Bill)
	bg.GET("/:id/bill.pdf", b.BillPDF)

	api.GET("/dashboard/stats", d.Stats, g.can(service.CapDashboardView)...)
}

// RegisterUsers mounts account administration under /api/admin/users.
func RegisterUsers(api *echo.Group, u *handler.UserHandler, g guards) {
	ug := api.Group("/admin/users", g.can(service.CapUsersManage)...)
	ug.GET("", u.List)
	ug.GET("/:id", u.Get)
	ug.PUT("/:id", u.Update)
	ug.DELETE("/:id", u.Delete)
}
