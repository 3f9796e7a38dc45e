package api

import (
	common_models "go-analytics/internal/common/models"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error kind to the HTTP status returned to clients.
func StatusFor(err error) int {
	switch common_models.KindOf(err) {
	case common_models.KindUnknownIntent,
		common_models.KindInvalidPipeline,
		common_models.KindFieldNotFound,
		common_models.KindInvalidRequest:
		return fiber.StatusBadRequest
	case common_models.KindNotFound:
		return fiber.StatusNotFound
	case common_models.KindNoValidData, common_models.KindDegenerateChart:
		return fiber.StatusUnprocessableEntity
	case common_models.KindDataSourceUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// Error writes err into the response envelope.
func Error(ctx *fiber.Ctx, err error) error {
	return ctx.Status(StatusFor(err)).JSON(common_models.Fail(err))
}

// BadRequest rejects a body or query that could not be parsed.
func BadRequest(ctx *fiber.Ctx, msg string) error {
	return Error(ctx, common_models.NewError(common_models.KindInvalidRequest, "%s", msg))
}
