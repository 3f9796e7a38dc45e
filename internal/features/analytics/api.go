package analytics

import (
	"go-analytics/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsApi struct {
	AnalyticsController *AnalyticsController
}

func NewAnalyticsApi(analyticsController *AnalyticsController) api.Route {
	return &AnalyticsApi{
		AnalyticsController: analyticsController,
	}
}

func (api *AnalyticsApi) Setup(app *fiber.App) {
	analytics := app.Group("/api/analytics")

	// Intent catalogue
	intents := analytics.Group("/intents")
	intents.Get("/", api.AnalyticsController.ListIntents)
	intents.Post("/:intent", api.AnalyticsController.RunIntent)
	intents.Get("/:intent/export", api.AnalyticsController.ExportIntent)

	analytics.Get("/revenue", api.AnalyticsController.Revenue)
	analytics.Get("/customers", api.AnalyticsController.Customers)
	analytics.Get("/menu", api.AnalyticsController.Menu)
	analytics.Get("/operations", api.AnalyticsController.Operations)
	analytics.Get("/summary/:collection", api.AnalyticsController.Summary)
}
