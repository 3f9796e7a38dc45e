package datastore

import (
	"go-analytics/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type DatastoreApi struct {
	DatastoreController *DatastoreController
}

func NewDatastoreApi(datastoreController *DatastoreController) api.Route {
	return &DatastoreApi{DatastoreController: datastoreController}
}

func (api *DatastoreApi) Setup(app *fiber.App) {
	group := app.Group("/api/db/collections")

	group.Get("/", api.DatastoreController.ListCollections)
	group.Get("/:name", api.DatastoreController.Describe)
	group.Get("/:name/count", api.DatastoreController.Count)
	group.Post("/:name/find", api.DatastoreController.Find)
	group.Post("/:name/aggregate", api.DatastoreController.Aggregate)
	group.Post("/:name/insert", api.DatastoreController.Insert)
	group.Post("/:name/update", api.DatastoreController.Update)
}
