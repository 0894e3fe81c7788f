package handlers

import (
	"context"
	"time"

	"cropadvisor/config"
	"cropadvisor/internal/database"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

func HealthHandler(router fiber.Router, config config.Config, db database.DB) {
	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"version": config.GeneralVersion,
			"service": "crop_advisor_api",
		})
	})

	router.Get("/health/ready", func(c *fiber.Ctx) error {
		log := logger.New("handlers").File("health_handler").Function("ready")

		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.Warn("database not ready", "error", err)
			return errorResponse(c, fiber.StatusServiceUnavailable, "Database unavailable")
		}
		if err := db.Cache.Ping(ctx); err != nil {
			log.Warn("cache not ready", "error", err)
			return errorResponse(c, fiber.StatusServiceUnavailable, "Cache unavailable")
		}

		return c.JSON(fiber.Map{"status": "ready"})
	})
}
