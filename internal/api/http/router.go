package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/friendship-service/internal/api/http/handlers"
	"github.com/spec-kit/friendship-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Friends        *handlers.FriendsHandler
	Search         *handlers.SearchHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Snapshot)
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Accounts.Signup)
	authGroup.Post("/login", cfg.Accounts.Login)

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireAccount())
	api.Get("/search-users", cfg.Search.SearchUsers)
	api.Get("/friends", cfg.Friends.Friends)
	api.Get("/pending-requests", cfg.Friends.PendingRequests)
	api.Post("/friend-request", cfg.Friends.FriendRequest)
}
