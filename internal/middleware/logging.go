package middleware

import (
	"fmt"
	"time"

	"go-analytics/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// AccessLog writes one line per request. Server errors log at error level,
// client errors at warn.
func AccessLog(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// let the error handler set the status before it is logged
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		fields := []zap.Field{
			zap.String(logger.FieldRequestID, RequestID(c.UserContext())),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error("request failed", fields...)
		case status >= fiber.StatusBadRequest:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request", fields...)
		}
		return nil
	}
}

// Recover turns a handler panic into a 500 and logs it.
func Recover(log *zap.Logger) fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			log.Error("handler panicked",
				zap.String(logger.FieldRequestID, RequestID(c.UserContext())),
				zap.String("path", c.Path()),
				zap.String("panic", fmt.Sprint(e)),
				zap.Stack("stack"))
		},
	})
}
