package testapi

import (
	"github.com/gofiber/fiber/v2"
)

// TestRoutes configura las rutas de testing
type TestRoutes struct {
	handler *TestHandler
}

func NewTestRoutes(handler *TestHandler) *TestRoutes {
	return &TestRoutes{
		handler: handler,
	}
}

// Setup configura todas las rutas de testing (público, solo para desarrollo)
func (tr *TestRoutes) Setup(app *fiber.App) {
	test := app.Group("/test")

	test.Get("/", tr.handler.GetTestInstructions)
	test.Get("/instructions", tr.handler.GetTestInstructions)
	test.Post("/message", tr.handler.SendTestMessage)
}
