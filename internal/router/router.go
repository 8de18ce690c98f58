package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/avhamm/vivalab-api/internal/config"
	"github.com/avhamm/vivalab-api/internal/handler"
	"github.com/avhamm/vivalab-api/internal/middleware"
	"github.com/avhamm/vivalab-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	GradingHandler  *handler.GradingHandler
	PassbackHandler *handler.PassbackHandler
	JWTMiddleware   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Lab grading and passback audit trail. These endpoints mutate grades,
	// so they are restricted to instructor-level roles and rate limited.
	labs := app.Group("/api/v2/labs",
		jwtMiddleware,
		middleware.RequireRole("instructor", "admin"),
		middleware.RateLimit("labs", 60, time.Minute),
	)

	if deps.GradingHandler != nil {
		deps.GradingHandler.Register(labs)
	}

	if deps.PassbackHandler != nil {
		deps.PassbackHandler.Register(labs)
	}
}
