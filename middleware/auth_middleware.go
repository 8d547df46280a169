// middleware/auth_middleware.go
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/hireboard_notifications/models"
)

// HeaderAPIKey carries the shared key of internal callers.
const HeaderAPIKey = "X-API-Key"

// RequireUserType checks if the authenticated user has one of the allowed user types
func RequireUserType(allowedTypes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := GetPrincipal(c)
			if !ok || p.Role == "" {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Authentication failed: user type not found",
				})
			}

			for _, allowedType := range allowedTypes {
				if p.Role == allowedType {
					return next(c)
				}
			}

			c.Logger().Warnf("access denied for user type %s on %s", p.Role, c.Path())
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied for your user type",
			})
		}
	}
}

// APIKeyAuth authenticates internal services presenting the shared key as
// RoleService. Requests without the header continue to the JWT check; a
// wrong key is rejected outright.
func APIKeyAuth(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			presented := c.Request().Header.Get(HeaderAPIKey)
			if presented == "" {
				return next(c)
			}
			if apiKey == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(apiKey)) != 1 {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Invalid API key",
				})
			}
			c.Set(principalKey, Principal{ID: RoleService, Role: RoleService})
			return next(c)
		}
	}
}
