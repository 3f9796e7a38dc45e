package chart

import (
	"go-analytics/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type ChartApi struct {
	ChartController *ChartController
}

func NewChartApi(chartController *ChartController) api.Route {
	return &ChartApi{
		ChartController: chartController,
	}
}

func (api *ChartApi) Setup(app *fiber.App) {
	group := app.Group("/api/charts")

	group.Post("/", api.ChartController.Generate)
	group.Get("/", api.ChartController.List)
	group.Get("/sources", api.ChartController.Sources)
	group.Get("/:file_id", api.ChartController.Get)
	group.Get("/:file_id/image", api.ChartController.Image)
}
