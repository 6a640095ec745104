package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Teams          *handlers.TeamsHandler
	Categories     *handlers.CategoriesHandler
	Users          *handlers.UsersHandler
	Analytics      *handlers.AnalyticsHandler
	AI             *handlers.AIHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
	MetricsPath    string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil && cfg.MetricsPath != "" {
		app.Get(cfg.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	api := app.Group("/api/v1")
	authenticated := cfg.AuthMiddleware.Handle

	authGroup := api.Group("/auth")
	authGroup.Post("/register-tenant", cfg.Auth.RegisterTenant)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register-user", authenticated, auth.RequireRoles(domain.RoleAdmin), cfg.Auth.RegisterUser)

	tickets := api.Group("/tickets", authenticated, auth.RequireAgentTeam())
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/count", cfg.Tickets.CountTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)

	teams := api.Group("/teams", authenticated)
	teams.Post("/", cfg.Teams.CreateTeam)
	teams.Get("/", cfg.Teams.ListTeams)
	teams.Get("/count", cfg.Teams.CountTeams)
	teams.Get("/:id", cfg.Teams.GetTeam)
	teams.Put("/:id", cfg.Teams.UpdateTeam)
	teams.Delete("/:id", cfg.Teams.DeleteTeam)

	categories := api.Group("/categories", authenticated)
	categories.Post("/", cfg.Categories.CreateCategory)
	categories.Get("/", cfg.Categories.ListCategories)
	categories.Get("/count", cfg.Categories.CountCategories)
	categories.Get("/:id", cfg.Categories.GetCategory)
	categories.Put("/:id", cfg.Categories.UpdateCategory)
	categories.Delete("/:id", cfg.Categories.DeleteCategory)

	users := api.Group("/users", authenticated)
	users.Post("/", auth.RequireRoles(domain.RoleAdmin), cfg.Auth.RegisterUser)
	users.Get("/", cfg.Users.ListUsers)
	users.Get("/me", cfg.Users.Me)
	users.Get("/count", cfg.Users.CountUsers)
	users.Get("/:id", cfg.Users.GetUser)
	users.Put("/:id", cfg.Users.UpdateUser)
	users.Delete("/:id", cfg.Users.DeleteUser)

	analytics := api.Group("/analytics", authenticated)
	analytics.Get("/dashboard", cfg.Analytics.Dashboard)
	analytics.Get("/advanced", cfg.Analytics.Advanced)

	api.Post("/ai/process", authenticated, cfg.AI.ProcessText)
}
