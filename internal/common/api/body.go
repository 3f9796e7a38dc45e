package api

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
)

// DecodeExtJSON decodes a relaxed extended JSON body into out. An empty body
// decodes as {}.
func DecodeExtJSON(ctx *fiber.Ctx, out any) error {
	return DecodeExtJSONBytes(ctx.Body(), out)
}

func DecodeExtJSONBytes(body []byte, out any) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}
	return bson.UnmarshalExtJSON(body, false, out)
}
