package chart

import (
	"go-analytics/internal/common/api"
	common_models "go-analytics/internal/common/models"

	"github.com/gofiber/fiber/v2"
)

type ChartController struct {
	ChartService ChartService
}

func NewChartController(chartService ChartService) *ChartController {
	return &ChartController{ChartService: chartService}
}

// Generate godoc
// @Summary Generate chart
// @Description Render a PNG chart from one of the chart data sources
// @Tags charts
// @Accept json
// @Produce json
// @Param request body GenerateChartRequest true "Chart request"
// @Success 201 {object} common_models.ChartResponse
// @Failure 400 {object} common_models.ChartResponse
// @Failure 422 {object} common_models.ChartResponse
// @Failure 500 {object} common_models.ChartResponse
// @Router /api/charts [post]
func (c *ChartController) Generate(ctx *fiber.Ctx) error {
	var req GenerateChartRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(common_models.ChartResponse{Error: "Invalid request body"})
	}

	result, err := c.ChartService.GenerateChart(ctx.UserContext(), req)
	if err != nil {
		return ctx.Status(api.StatusFor(err)).JSON(common_models.ChartResponse{Error: err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(common_models.ChartResponse{
		Success:     true,
		ChartFile:   result.Artifact.FileID,
		ChartPath:   result.Artifact.Path,
		ChartType:   string(result.Artifact.ChartType),
		Title:       result.Artifact.Title,
		DataPoints:  result.Artifact.PointCount,
		DataSummary: result.DataSummary,
	})
}

// List godoc
// @Summary List charts
// @Description List recently generated charts, newest first
// @Tags charts
// @Produce json
// @Param limit query int false "Max records" default(50)
// @Success 200 {object} common_models.Response
// @Failure 500 {object} common_models.Response
// @Router /api/charts [get]
func (c *ChartController) List(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 50)
	if limit < 1 {
		return api.BadRequest(ctx, "limit must be at least 1")
	}
	charts, err := c.ChartService.ListCharts(ctx.UserContext(), int64(limit))
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.JSON(common_models.OkWithCount(charts, len(charts)))
}

// Get godoc
// @Summary Get chart
// @Description Get the record of a generated chart
// @Tags charts
// @Produce json
// @Param file_id path string true "Chart file name"
// @Success 200 {object} common_models.Response
// @Failure 404 {object} common_models.Response
// @Router /api/charts/{file_id} [get]
func (c *ChartController) Get(ctx *fiber.Ctx) error {
	chart, err := c.ChartService.GetChart(ctx.UserContext(), ctx.Params("file_id"))
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.JSON(common_models.Ok(chart))
}

// Image godoc
// @Summary Get chart image
// @Description Download the rendered PNG
// @Tags charts
// @Produce png
// @Param file_id path string true "Chart file name"
// @Success 200 {file} binary
// @Failure 404 {object} common_models.Response
// @Router /api/charts/{file_id}/image [get]
func (c *ChartController) Image(ctx *fiber.Ctx) error {
	data, contentType, err := c.ChartService.GetChartImage(ctx.UserContext(), ctx.Params("file_id"))
	if err != nil {
		return api.Error(ctx, err)
	}
	ctx.Set(fiber.HeaderContentType, contentType)
	return ctx.Send(data)
}

// Sources godoc
// @Summary List chart data sources
// @Tags charts
// @Produce json
// @Success 200 {object} common_models.Response
// @Router /api/charts/sources [get]
func (c *ChartController) Sources(ctx *fiber.Ctx) error {
	sources := Sources()
	return ctx.JSON(common_models.OkWithCount(sources, len(sources)))
}
