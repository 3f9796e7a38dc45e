package middleware

import (
	"go-analytics/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORSMiddleware returns Fiber's built-in CORS middleware for the configured origins
func CORSMiddleware(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:  cfg.AllowedOrigins,
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Content-Type,X-Request-ID,X-Requested-With",
		ExposeHeaders: "X-Request-ID",
	})
}
