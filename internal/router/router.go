package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/school-fees-api/internal/config"
	"github.com/noah-isme/school-fees-api/internal/handler"
	"github.com/noah-isme/school-fees-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	StudentHandler      *handler.StudentHandler
	ClassTeacherHandler *handler.ClassTeacherHandler
	FeeHandler          *handler.FeeHandler
	FineHandler         *handler.FineHandler
	NotificationHandler *handler.NotificationHandler
	ActivityHandler     *handler.ActivityHandler
	JWTMiddleware       fiber.Handler
	LoginLimiter        fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	authn := deps.JWTMiddleware
	if authn == nil {
		authn = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"), authn, deps.LoginLimiter)
	}
	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(api.Group("/students", authn))
	}
	if deps.ClassTeacherHandler != nil {
		deps.ClassTeacherHandler.Register(api.Group("/class-teachers", authn))
	}
	if deps.FeeHandler != nil {
		deps.FeeHandler.Register(api.Group("/fees", authn))
	}
	if deps.FineHandler != nil {
		deps.FineHandler.Register(api.Group("/fines", authn))
	}
	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(api.Group("/notifications", authn))
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api.Group("/activity", authn))
	}
}
