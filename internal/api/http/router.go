package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Roles          *handlers.RolesHandler
	Employees      *handlers.EmployeesHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	api.Post("/auth/login", cfg.Auth.Login)

	authenticated := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	adminOnly := auth.RequireRole(domain.RoleAdmin)

	roles := authenticated.Group("/roles")
	roles.Get("/", adminOnly, cfg.Roles.List)
	roles.Get("/:id", cfg.Roles.Get)
	roles.Post("/", adminOnly, cfg.Roles.Create)
	roles.Put("/:id", adminOnly, cfg.Roles.Update)
	roles.Delete("/:id", adminOnly, cfg.Roles.Delete)

	employees := authenticated.Group("/employees")
	employees.Get("/", cfg.Employees.List)
	employees.Get("/:id", cfg.Employees.Get)
	employees.Post("/", adminOnly, cfg.Employees.Create)
	employees.Put("/:id", adminOnly, cfg.Employees.Update)
	employees.Patch("/:id/role/:roleId", adminOnly, cfg.Employees.AssignRole)
	employees.Delete("/:id", adminOnly, cfg.Employees.Delete)

	tickets := authenticated.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/number/:ticketNumber", cfg.Tickets.GetTicketByNumber)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Patch("/:id/remarks", cfg.Tickets.AddRemark)
	tickets.Delete("/:id", adminOnly, cfg.Tickets.DeleteTicket)
}
