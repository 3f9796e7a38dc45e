package middleware

import (
	"context"

	common_models "go-analytics/internal/common/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const requestIDLocal = "requestid"

// RequestIDMiddleware reuses the caller's X-Request-ID or generates one, and
// carries it on the request context for the service layer.
func RequestIDMiddleware() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: requestIDLocal,
	})
}

// PropagateRequestID copies the request id into the user context. It must run
// after RequestIDMiddleware.
func PropagateRequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals(requestIDLocal).(string); ok && id != "" {
			ctx := context.WithValue(c.UserContext(), common_models.RequestIDKey, id)
			c.SetUserContext(ctx)
		}
		return c.Next()
	}
}

// RequestID returns the id stored by PropagateRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(common_models.RequestIDKey).(string)
	return id
}
