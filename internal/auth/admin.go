package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequireAdminKey gates privileged routes behind a shared admin key
// presented in X-Admin-Key. Role and policy evaluation proper live in the
// authorization layer in front of this service; this guard only keeps the
// admin surface off the public path.
func RequireAdminKey(adminKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if adminKey == "" {
			return fiber.NewError(http.StatusForbidden, "admin access not configured")
		}
		presented := c.Get("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(presented), []byte(adminKey)) != 1 {
			return fiber.NewError(http.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal was loaded by the bearer
// middleware.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
