package analytics

import (
	"go-analytics/internal/common/api"
	common_models "go-analytics/internal/common/models"
	"go-analytics/internal/features/pipeline"
	"go-analytics/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsController struct {
	AnalyticsService AnalyticsService
}

func NewAnalyticsController(analyticsService AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

func queryParams(ctx *fiber.Ctx) (pipeline.Params, error) {
	var req RunIntentRequest
	if err := ctx.QueryParser(&req); err != nil {
		return pipeline.Params{}, common_models.WrapError(common_models.KindInvalidRequest, err, "invalid query parameters")
	}
	if err := validation.ValidateStruct(&req); err != nil {
		return pipeline.Params{}, err
	}
	return req.Params(), nil
}

func respond(ctx *fiber.Ctx, res *IntentResult, err error) error {
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.JSON(common_models.OkWithCount(res, len(res.Results)))
}

// ListIntents godoc
// @Summary List intents
// @Description The catalogue of named analytical intents
// @Tags analytics
// @Produce json
// @Success 200 {object} common_models.Response
// @Router /api/analytics/intents [get]
func (c *AnalyticsController) ListIntents(ctx *fiber.Ctx) error {
	intents := c.AnalyticsService.ListIntents()
	return ctx.JSON(common_models.OkWithCount(intents, len(intents)))
}

// RunIntent godoc
// @Summary Run intent
// @Description Build and execute the pipeline of a named intent
// @Tags analytics
// @Accept json
// @Produce json
// @Param intent path string true "Intent name"
// @Param request body RunIntentRequest false "Intent parameters"
// @Success 200 {object} common_models.Response
// @Failure 400 {object} common_models.Response
// @Failure 503 {object} common_models.Response
// @Router /api/analytics/intents/{intent} [post]
func (c *AnalyticsController) RunIntent(ctx *fiber.Ctx) error {
	var req RunIntentRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return api.BadRequest(ctx, "Invalid request body")
		}
	}
	if err := validation.ValidateStruct(&req); err != nil {
		return api.Error(ctx, err)
	}

	res, err := c.AnalyticsService.RunIntent(ctx.UserContext(), ctx.Params("intent"), req.Params())
	return respond(ctx, res, err)
}

// ExportIntent godoc
// @Summary Export intent
// @Description Run an intent and store its rows as an xlsx file
// @Tags analytics
// @Produce json
// @Param intent path string true "Intent name"
// @Param limit query int false "Result limit"
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Success 201 {object} common_models.Response
// @Failure 400 {object} common_models.Response
// @Failure 422 {object} common_models.Response
// @Router /api/analytics/intents/{intent}/export [get]
func (c *AnalyticsController) ExportIntent(ctx *fiber.Ctx) error {
	params, err := queryParams(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}
	out, err := c.AnalyticsService.ExportIntent(ctx.UserContext(), ctx.Params("intent"), params)
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(common_models.Ok(out))
}

// Revenue godoc
// @Summary Revenue analytics
// @Tags analytics
// @Produce json
// @Param period query string false "daily, weekly or monthly" default(daily)
// @Param days_back query int false "Days returned by the daily period" default(7)
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} common_models.Response
// @Failure 400 {object} common_models.Response
// @Router /api/analytics/revenue [get]
func (c *AnalyticsController) Revenue(ctx *fiber.Ctx) error {
	params, err := queryParams(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}
	res, err := c.AnalyticsService.Revenue(ctx.UserContext(), ctx.Query("period"), params)
	return respond(ctx, res, err)
}

// Customers godoc
// @Summary Customer insights
// @Tags analytics
// @Produce json
// @Param analysis query string false "segments, top_spenders, count or loyalty" default(segments)
// @Param limit query int false "Result limit"
// @Success 200 {object} common_models.Response
// @Failure 400 {object} common_models.Response
// @Router /api/analytics/customers [get]
func (c *AnalyticsController) Customers(ctx *fiber.Ctx) error {
	params, err := queryParams(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}
	res, err := c.AnalyticsService.Customers(ctx.UserContext(), ctx.Query("analysis"), params)
	return respond(ctx, res, err)
}

// Menu godoc
// @Summary Menu performance
// @Tags analytics
// @Produce json
// @Param metric query string false "popularity, revenue or categories" default(popularity)
// @Param limit query int false "Result limit"
// @Success 200 {object} common_models.Response
// @Failure 400 {object} common_models.Response
// @Router /api/analytics/menu [get]
func (c *AnalyticsController) Menu(ctx *fiber.Ctx) error {
	params, err := queryParams(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}
	res, err := c.AnalyticsService.Menu(ctx.UserContext(), ctx.Query("metric"), params)
	return respond(ctx, res, err)
}

// Operations godoc
// @Summary Operational metrics
// @Tags analytics
// @Produce json
// @Param metric query string false "order_status, order_types, payment_methods or peak_days" default(order_status)
// @Success 200 {object} common_models.Response
// @Failure 400 {object} common_models.Response
// @Router /api/analytics/operations [get]
func (c *AnalyticsController) Operations(ctx *fiber.Ctx) error {
	params, err := queryParams(ctx)
	if err != nil {
		return api.Error(ctx, err)
	}
	res, err := c.AnalyticsService.Operations(ctx.UserContext(), ctx.Query("metric"), params)
	return respond(ctx, res, err)
}

// Summary godoc
// @Summary Collection summary
// @Tags analytics
// @Produce json
// @Param collection path string true "Collection name"
// @Success 200 {object} common_models.Response
// @Router /api/analytics/summary/{collection} [get]
func (c *AnalyticsController) Summary(ctx *fiber.Ctx) error {
	res, err := c.AnalyticsService.Summary(ctx.UserContext(), ctx.Params("collection"))
	return respond(ctx, res, err)
}
