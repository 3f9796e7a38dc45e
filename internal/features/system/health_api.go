package system

import (
	"context"
	"time"

	"go-analytics/internal/common/api"
	"go-analytics/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger is satisfied by the mongo client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type mongoPinger struct {
	db *database.MongodbDB
}

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.db.Client.Ping(ctx, nil)
}

type HealthApi struct {
	pinger Pinger
}

func NewHealthApi(db *database.MongodbDB) api.Route {
	return &HealthApi{pinger: mongoPinger{db: db}}
}

// Setup registers the health check and metrics routes
func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", h.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Check if the server is up and the database answers
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthApi) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "degraded",
			"database": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"status":   "ok",
		"database": "ok",
	})
}
