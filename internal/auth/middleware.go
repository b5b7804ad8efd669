package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Middleware is the per-request authenticator. A request without an
// Authorization header proceeds unauthenticated and is denied later only where
// a permission is required; a request presenting an invalid or expired bearer
// token is rejected immediately.
func Middleware(issuer *Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				return next(c)
			}

			token := strings.TrimPrefix(header, "Bearer ")
			claims, err := issuer.DecodeAccess(token)
			if err != nil || Expired(claims) {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
			}

			principal := NewPrincipal(claims)
			ctx := WithPrincipal(c.Request().Context(), principal)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// RequirePermission guards a route behind one of the given permission
// abbreviations.
func RequirePermission(abbreviations ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := PrincipalFromContext(c.Request().Context())
			if principal == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
			}
			for _, abbreviation := range abbreviations {
				if principal.HasPermission(abbreviation) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
	}
}
