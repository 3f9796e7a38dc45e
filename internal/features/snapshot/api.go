package snapshot

import (
	"go-analytics/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type SnapshotApi struct {
	snapshotController *SnapshotController
}

func NewSnapshotApi(snapshotController *SnapshotController) api.Route {
	return &SnapshotApi{
		snapshotController: snapshotController,
	}
}

func (h *SnapshotApi) Setup(app *fiber.App) {
	snapshots := app.Group("/api/snapshots")

	snapshots.Get("/status", h.snapshotController.Status)
	snapshots.Get("/runs", h.snapshotController.ListRuns)
	snapshots.Post("/run", h.snapshotController.Run)
}
