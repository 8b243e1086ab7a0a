package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hospitality-reservation/internal/service"
)

// RequireCapability rejects callers whose roles do not grant c: 401 when
// nobody is authenticated, 403 otherwise. It must run after JWTAuth.
func RequireCapability(c service.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if err := service.Authorize(Principal(ctx), c); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}
