package handlers

import (
	"cropadvisor/internal/app"
	"cropadvisor/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	api := router.Group("/api")
	HealthHandler(api, app.Config, app.Database)
	NewRecommendationHandler(*app, api).Register()
	NewDatasetHandler(*app, api).Register()

	// Path the existing browser client invokes.
	functions := router.Group("/functions/v1")
	NewRecommendationHandler(*app, functions).RegisterFunction()

	return nil
}

func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}
