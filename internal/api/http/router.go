package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Accounts    *handlers.AccountsHandler
	BearerAuth  *auth.Middleware
	AdminAPIKey string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Accounts.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/revoke", cfg.Auth.Revoke)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/introspect", cfg.Auth.Introspect)

	authGroup.Post("/verify/request", cfg.Accounts.RequestVerification)
	authGroup.Post("/verify/confirm", cfg.Accounts.VerifyEmail)
	authGroup.Post("/renewal/request", cfg.Accounts.RequestRenewal)
	authGroup.Post("/renewal/confirm", cfg.Accounts.ConfirmRenewal)

	// Example of a bearer-protected route: the caller's own profile,
	// verified against the current access signing key on every request.
	me := app.Group("/me", cfg.BearerAuth.Handle, auth.RequireAuthenticated())
	me.Get("/", handlers.Me)

	admin := app.Group("/admin", auth.RequireAdminKey(cfg.AdminAPIKey))
	admin.Post("/users/:id/activate", cfg.Accounts.Activate)
	admin.Post("/users/:id/deactivate", cfg.Accounts.Deactivate)
	admin.Post("/users/:id/suspend", cfg.Accounts.Suspend)
	admin.Post("/users/:id/block", cfg.Accounts.Block)
	admin.Post("/users/:id/revoke-tokens", cfg.Auth.AdminRevokeAll)
}
