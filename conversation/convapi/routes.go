package convapi

import "github.com/gofiber/fiber/v2"

// ConversationRoutes registra las rutas de conversaciones
type ConversationRoutes struct {
	handler *ConversationHandler
	auth    fiber.Handler
}

func NewConversationRoutes(handler *ConversationHandler, auth fiber.Handler) *ConversationRoutes {
	return &ConversationRoutes{handler: handler, auth: auth}
}

func (cr *ConversationRoutes) Setup(app *fiber.App) {
	group := app.Group("/api/ops/conversations", cr.auth)

	group.Get("/", cr.handler.ListConversations)
	group.Get("/:id", cr.handler.GetConversation)
}
