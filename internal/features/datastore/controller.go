package datastore

import (
	"go-analytics/internal/common/api"
	common_models "go-analytics/internal/common/models"
	"go-analytics/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type DatastoreController struct {
	DatastoreService DatastoreService
}

func NewDatastoreController(datastoreService DatastoreService) *DatastoreController {
	return &DatastoreController{DatastoreService: datastoreService}
}

// ListCollections godoc
// @Summary List collections
// @Description List every collection with its document count
// @Tags db
// @Produce json
// @Success 200 {object} common_models.Response
// @Failure 503 {object} common_models.Response
// @Router /api/db/collections [get]
func (c *DatastoreController) ListCollections(ctx *fiber.Ctx) error {
	infos, err := c.DatastoreService.ListCollections(ctx.UserContext())
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.JSON(common_models.OkWithCount(infos, len(infos)))
}

// Describe godoc
// @Summary Describe collection
// @Description Document count, field set and sample documents of a collection
// @Tags db
// @Produce json
// @Param name path string true "Collection name"
// @Param sample_size query int false "Number of samples" default(5)
// @Success 200 {object} common_models.Response
// @Failure 400 {object} common_models.Response
// @Router /api/db/collections/{name} [get]
func (c *DatastoreController) Describe(ctx *fiber.Ctx) error {
	sampleSize := ctx.QueryInt("sample_size", DefaultSampleSize)
	if sampleSize < 1 {
		return api.BadRequest(ctx, "sample_size must be at least 1")
	}
	desc, err := c.DatastoreService.DescribeCollection(ctx.UserContext(), ctx.Params("name"), sampleSize)
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.JSON(common_models.Ok(desc))
}

// Find godoc
// @Summary Find documents
// @Description Run a find with an extended JSON filter and a limit
// @Tags db
// @Accept json
// @Produce json
// @Param name path string true "Collection name"
// @Param request body FindRequest true "Filter and limit"
// @Success 200 {object} common_models.Response
// @Failure 400 {object} common_models.Response
// @Router /api/db/collections/{name}/find [post]
func (c *DatastoreController) Find(ctx *fiber.Ctx) error {
	var req FindRequest
	if err := api.DecodeExtJSON(ctx, &req); err != nil {
		return api.BadRequest(ctx, "Invalid request body: "+err.Error())
	}
	if err := validation.ValidateStruct(&req); err != nil {
		return api.Error(ctx, err)
	}

	docs, err := c.DatastoreService.Find(ctx.UserContext(), ctx.Params("name"), req)
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.JSON(common_models.OkWithCount(docs, len(docs)))
}

// Aggregate godoc
// @Summary Run aggregation
// @Description Run a caller supplied aggregation pipeline
// @Tags db
// @Accept json
// @Produce json
// @Param name path string true "Collection name"
// @Param request body AggregateRequest true "Pipeline"
// @Success 200 {object} common_models.Response
// @Failure 400 {object} common_models.Response
// @Failure 503 {object} common_models.Response
// @Router /api/db/collections/{name}/aggregate [post]
func (c *DatastoreController) Aggregate(ctx *fiber.Ctx) error {
	var req AggregateRequest
	if err := api.DecodeExtJSON(ctx, &req); err != nil {
		return api.Error(ctx, common_models.WrapError(common_models.KindInvalidPipeline, err, "pipeline is not a list of stage documents"))
	}

	docs, err := c.DatastoreService.Aggregate(ctx.UserContext(), ctx.Params("name"), req)
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.JSON(common_models.OkWithCount(docs, len(docs)))
}

// Insert godoc
// @Summary Insert documents
// @Description Insert one document or a list of documents
// @Tags db
// @Accept json
// @Produce json
// @Param name path string true "Collection name"
// @Param request body InsertRequest true "document or documents"
// @Success 201 {object} common_models.Response
// @Failure 400 {object} common_models.Response
// @Router /api/db/collections/{name}/insert [post]
func (c *DatastoreController) Insert(ctx *fiber.Ctx) error {
	var req InsertRequest
	if err := api.DecodeExtJSON(ctx, &req); err != nil {
		return api.BadRequest(ctx, "Invalid request body: "+err.Error())
	}

	result, err := c.DatastoreService.Insert(ctx.UserContext(), ctx.Params("name"), req)
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(common_models.Ok(result))
}

// Update godoc
// @Summary Update documents
// @Description update_many with an optional upsert
// @Tags db
// @Accept json
// @Produce json
// @Param name path string true "Collection name"
// @Param request body UpdateRequest true "filter, update and upsert"
// @Success 200 {object} common_models.Response
// @Failure 400 {object} common_models.Response
// @Router /api/db/collections/{name}/update [post]
func (c *DatastoreController) Update(ctx *fiber.Ctx) error {
	var req UpdateRequest
	if err := api.DecodeExtJSON(ctx, &req); err != nil {
		return api.BadRequest(ctx, "Invalid request body: "+err.Error())
	}

	result, err := c.DatastoreService.Update(ctx.UserContext(), ctx.Params("name"), req)
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.JSON(common_models.Ok(result))
}

// Count godoc
// @Summary Count documents
// @Tags db
// @Produce json
// @Param name path string true "Collection name"
// @Param filter query string false "Extended JSON filter"
// @Success 200 {object} common_models.Response
// @Router /api/db/collections/{name}/count [get]
func (c *DatastoreController) Count(ctx *fiber.Ctx) error {
	var req CountRequest
	if raw := ctx.Query("filter"); raw != "" {
		if err := api.DecodeExtJSONBytes([]byte(`{"filter":`+raw+`}`), &req); err != nil {
			return api.BadRequest(ctx, "filter is not valid JSON: "+err.Error())
		}
	}

	n, err := c.DatastoreService.Count(ctx.UserContext(), ctx.Params("name"), req.Filter)
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.JSON(common_models.Ok(fiber.Map{"collection": ctx.Params("name"), "count": n}))
}
