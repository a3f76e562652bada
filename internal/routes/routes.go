package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/lediangroup/repair-board/internal/handlers"
)

func Setup(
	app *fiber.App,
	reportHandler *handlers.ReportHandler,
	streamHandler *handlers.StreamHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP. The submit gate in the
	// report handler is separate and advisory.
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	reports := api.Group("/reports")
	reports.Get("/stream", streamHandler.Stream)
	reports.Get("/", reportHandler.List)
	reports.Post("/", reportHandler.Submit)
	reports.Get("/:id", reportHandler.Get)
	reports.Patch("/:id", reportHandler.Update)
	reports.Put("/:id/status", reportHandler.ChangeStatus)
	reports.Post("/:id/comments", reportHandler.AddComment)
	reports.Delete("/:id", reportHandler.Delete)
}
