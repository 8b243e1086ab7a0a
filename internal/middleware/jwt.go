package middleware

import (
	"context"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/service"
)

const (
	principalKey = "principal"
	userIDKey    = "user_id"
)

// Authenticator verifies a bearer token and returns the caller.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*service.Principal, error)
}

// bearer extracts the token from the Authorization header.
func bearer(c echo.Context) (string, bool) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return raw, raw != ""
}

// JWTAuth resolves the bearer token into a principal and stores it in the
// context under "principal" (and the id under "user_id"). With required
// set, a missing or invalid token ends the request with 401; otherwise
// the request continues anonymously when no token is sent. A token that
// is sent but invalid is always rejected.
func JWTAuth(auth Authenticator, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c)
			if !ok {
				if required {
					return apperr.Authentication("missing bearer token")
				}
				return next(c)
			}
			p, err := auth.Authenticate(c.Request().Context(), raw)
			if err != nil {
				return err
			}
			c.Set(principalKey, p)
			c.Set(userIDKey, strconv.FormatUint(p.UserID, 10))
			return next(c)
		}
	}
}

// Principal returns the authenticated caller, or nil for anonymous
// requests.
func Principal(c echo.Context) *service.Principal {
	p, _ := c.Get(principalKey).(*service.Principal)
	return p
}

// BearerToken returns the raw token of the request, if any.
func BearerToken(c echo.Context) string {
	raw, _ := bearer(c)
	return raw
}
