package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tunepulse/tunepulse-api/internal/api/http/handlers"
	"github.com/tunepulse/tunepulse-api/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Profile        *handlers.ProfileHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/stats", cfg.Health.Stats)

	accounts := app.Group("/accounts")
	accounts.Post("/register", cfg.Accounts.Register)
	accounts.Post("/login", cfg.Accounts.Login)
	accounts.Post("/verify", cfg.Accounts.Verify)
	accounts.Post("/password-reset-request", cfg.Accounts.RequestPasswordReset)
	accounts.Put("/password-reset", cfg.Accounts.ResetPassword)
	accounts.Post("/confirm-email", cfg.Accounts.ConfirmEmailChange)

	protected := accounts.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/me", cfg.Accounts.Me)
	protected.Put("/profile", cfg.Profile.Update)
	protected.Post("/avatar", cfg.Profile.UploadAvatar)

	tickets := app.Group("/tickets")
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Get("/:ticketId", cfg.Tickets.Get)
	tickets.Patch("/:ticketId/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:ticketId/reply", cfg.Tickets.Reply)
	tickets.Delete("/:ticketId", cfg.Tickets.Delete)
}
