package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-gradebook-api/internal/config"
	"github.com/noah-isme/gema-gradebook-api/internal/handler"
	"github.com/noah-isme/gema-gradebook-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	GradeHandler      *handler.GradeHandler
	WeightHandler     *handler.WeightHandler
	GradingHandler    *handler.GradingHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	AttendanceHandler *handler.AttendanceHandler
	CourseHandler     *handler.CourseHandler
	IdentityHandler   *handler.IdentityHandler
	HealthProbes      map[string]handler.HealthProbe
	JWTMiddleware     fiber.Handler
	Guards            handler.Guards
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	v2 := app.Group("/api/v2", jwtMiddleware)

	if deps.GradeHandler != nil {
		deps.GradeHandler.Register(v2)
	}
	if deps.WeightHandler != nil {
		deps.WeightHandler.Register(v2, deps.Guards)
	}
	if deps.GradingHandler != nil {
		deps.GradingHandler.Register(v2, deps.Guards)
	}
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(v2, deps.Guards)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(v2, deps.Guards)
	}
	if deps.AttendanceHandler != nil {
		deps.AttendanceHandler.Register(v2, deps.Guards)
	}
	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(v2, deps.Guards)
	}
	if deps.IdentityHandler != nil {
		deps.IdentityHandler.Register(v2, deps.Guards)
	}
}
