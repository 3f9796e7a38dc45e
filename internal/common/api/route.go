package api

import "github.com/gofiber/fiber/v2"

// Route is implemented by every feature Api and collected by fx in the "routes" group.
type Route interface {
	Setup(app *fiber.App)
}
