package snapshot

import (
	"go-analytics/internal/common/api"
	common_models "go-analytics/internal/common/models"

	"github.com/gofiber/fiber/v2"
)

type SnapshotController struct {
	Service SnapshotService
}

func NewSnapshotController(service SnapshotService) *SnapshotController {
	return &SnapshotController{
		Service: service,
	}
}

// Status godoc
// @Summary Snapshot scheduler status
// @Tags snapshots
// @Produce json
// @Success 200 {object} common_models.Response
// @Router /api/snapshots/status [get]
func (c *SnapshotController) Status(ctx *fiber.Ctx) error {
	return ctx.JSON(common_models.Ok(c.Service.Status()))
}

// ListRuns godoc
// @Summary List snapshot runs
// @Tags snapshots
// @Produce json
// @Param limit query int false "Max records" default(50)
// @Success 200 {object} common_models.Response
// @Router /api/snapshots/runs [get]
func (c *SnapshotController) ListRuns(ctx *fiber.Ctx) error {
	runs, err := c.Service.ListRuns(ctx.UserContext(), ctx.QueryInt("limit", 50))
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.JSON(common_models.OkWithCount(runs, len(runs)))
}

// Run godoc
// @Summary Run snapshots now
// @Description Render a chart for every configured snapshot source
// @Tags snapshots
// @Produce json
// @Success 200 {object} common_models.Response
// @Failure 500 {object} common_models.Response
// @Router /api/snapshots/run [post]
func (c *SnapshotController) Run(ctx *fiber.Ctx) error {
	run, err := c.Service.RunNow(ctx.UserContext(), TriggerManual)
	if err != nil {
		return ctx.Status(api.StatusFor(err)).JSON(common_models.Response{Success: false, Data: run, Error: err.Error()})
	}
	return ctx.JSON(common_models.Ok(run))
}
