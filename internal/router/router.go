package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/iago-labs/iago-go-api/internal/config"
	"github.com/iago-labs/iago-go-api/internal/handler"
	"github.com/iago-labs/iago-go-api/internal/middleware"
	"github.com/iago-labs/iago-go-api/internal/models"
	"github.com/iago-labs/iago-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	UserHandler      *handler.UserHandler
	FeedbackHandler  *handler.FeedbackHandler
	NarrativeHandler *handler.NarrativeHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		deps.AuthHandler.Register(auth)
		deps.AuthHandler.RegisterProtected(auth.Group("", jwtMiddleware))
	}

	if deps.UserHandler != nil {
		users := api.Group("/users")
		leaders := api.Group("/leaders")
		deps.UserHandler.RegisterPublic(users, leaders)

		protected := users.Group("", jwtMiddleware)
		deps.UserHandler.RegisterProtected(protected)
	}

	if deps.FeedbackHandler != nil {
		feedback := api.Group("/feedback", jwtMiddleware)
		deps.FeedbackHandler.Register(feedback)

		leaderOnly := feedback.Group("", middleware.RequireRole(models.RoleLeader))
		deps.FeedbackHandler.RegisterLeader(leaderOnly)
	}

	if deps.NarrativeHandler != nil {
		narrative := api.Group("/iago", jwtMiddleware)
		deps.NarrativeHandler.Register(narrative,
			middleware.RateLimit("iago:generate", cfg.GenerateRateLimit, cfg.GenerateRateWindow))
	}
}
