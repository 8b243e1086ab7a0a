package router // package router defines how HTTP routes are registered for the API

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/hospitality-reservation/internal/config"
	"github.com/iliyamo/hospitality-reservation/internal/handler"
	"github.com/iliyamo/hospitality-reservation/internal/middleware"
	"github.com/iliyamo/hospitality-reservation/internal/service"
)

// Handlers bundles every HTTP handler the API mounts.
type Handlers struct {
	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Restaurant *handler.RestaurantHandler
	Hotel      *handler.HotelHandler
	Inventory  *handler.InventoryHandler
	Billing    *handler.BillingHandler
	Dashboard  *handler.DashboardHandler
	Users      *handler.UserHandler
}

// Options carries the cross-cutting settings applied to the routes.
type Options struct {
	Log            *slog.Logger
	Authenticator  middleware.Authenticator
	Redis          *redis.Client // nil disables the shared rate limit and the cache
	RateLimit      config.RateLimitConfig
	Cache          config.CacheConfig
	RequestTimeout time.Duration
}

// New builds the Echo instance with global middleware, the error handler
// and every route.
func New(h Handlers, opt Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(opt.Log)

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(opt.Log))
	e.Use(echomw.Recover())
	e.Use(middleware.RequestDeadline(opt.RequestTimeout))

	RegisterRoutes(e, h.Health)

	api := e.Group("/api")
	g := newGuards(opt)
	RegisterAuth(api, h.Auth, g)
	RegisterBookings(api, h.Restaurant, h.Hotel, g)
	RegisterInventory(api, h.Inventory, opt, g)
	RegisterBilling(api, h.Billing, h.Dashboard, g)
	RegisterUsers(api, h.Users, g)
	return e
}

// guards are the per-route middleware chains. Token resolution happens per
// route rather than on the whole /api group, so a stale token cannot lock
// a client out of login or the public reads. The limiter runs after
// authentication so it can key on the caller.
type guards struct {
	public []echo.MiddlewareFunc // token ignored
	guest  []echo.MiddlewareFunc // token optional, rejected when invalid
	authed []echo.MiddlewareFunc // token required
	limit  echo.MiddlewareFunc
	auth   middleware.Authenticator
}

func newGuards(opt Options) guards {
	limit := middleware.NewTokenBucket(opt.RateLimit, opt.Redis, opt.Log)
	return guards{
		public: []echo.MiddlewareFunc{limit},
		guest:  []echo.MiddlewareFunc{middleware.JWTAuth(opt.Authenticator, false), limit},
		authed: []echo.MiddlewareFunc{middleware.JWTAuth(opt.Authenticator, true), limit},
		limit:  limit,
		auth:   opt.Authenticator,
	}
}

// can requires a token whose roles grant c.
func (g guards) can(c service.Capability) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{middleware.JWTAuth(g.auth, true), g.limit, middleware.RequireCapability(c)}
}

// RegisterRoutes registers routes that sit outside /api. Currently it
// exposes only the health check.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
}

// RegisterAuth mounts signup and login (open) plus logout and me (caller
// required) under /api/auth.
func RegisterAuth(api *echo.Group, a *handler.AuthHandler, g guards) {
	ag := api.Group("/auth")
	ag.POST("/signup", a.Signup, g.public...)
	ag.POST("/login", a.Login, g.public...)
	ag.POST("/logout", a.Logout, g.authed...)
	ag.GET("/me", a.Me, g.authed...)
}
