package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/config"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Health   *handlers.HealthHandler
	Clients  *handlers.ClientHandler
	Products *handlers.ProductHandler
	Orders   *handlers.OrderHandler
	Profiles *handlers.ProfileHandler
}

func Setup(app *fiber.App, cfg *config.Config, gate *services.AccessGate, h Handlers) {
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)

	// Protected routes take the JWT middleware per route so it never runs
	// for the public ones above.
	jwt := middleware.JWTProtected(cfg)
	api.Post("/auth/logout", jwt, h.Auth.Logout)
	api.Get("/me", jwt, h.Profiles.Me)

	api.Get("/clients", jwt, h.Clients.List)
	api.Post("/clients", jwt, h.Clients.Create)
	api.Get("/clients/:id", jwt, h.Clients.Get)
	api.Put("/clients/:id", jwt, h.Clients.Update)
	api.Delete("/clients/:id", jwt, h.Clients.SoftDelete)
	api.Post("/clients/:id/restore", jwt, h.Clients.Restore)

	api.Get("/products", jwt, h.Products.List)

	api.Get("/orders", jwt, h.Orders.List)
	api.Post("/orders", jwt, h.Orders.Create)
	api.Get("/orders/:id", jwt, h.Orders.Get)
	api.Delete("/orders/:id", jwt, h.Orders.Delete)

	// Admin panel (protected + admin required)
	admin := api.Group("/admin", jwt, middleware.AdminRequired(gate))
	admin.Delete("/clients/:id", h.Clients.HardDelete)
	admin.Post("/products", h.Products.Create)
	admin.Put("/products/:id", h.Products.Update)
	admin.Get("/profiles", h.Profiles.List)
	admin.Put("/profiles/:id/role", h.Profiles.SetRole)
	admin.Put("/profiles/:id/approval", h.Profiles.SetApproved)
	admin.Get("/profiles/:id/history", h.Profiles.History)
}
