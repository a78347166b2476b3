// Package convapi expone las conversaciones en el API de operador.
package convapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pelangilabs/moltbot/conversation"
	"github.com/pelangilabs/moltbot/pkg/kernel"
)

// ConversationHandler maneja las peticiones HTTP de conversaciones
type ConversationHandler struct {
	conversations conversation.ConversationRepository
	messages      conversation.MessageLog
}

func NewConversationHandler(
	conversations conversation.ConversationRepository,
	messages conversation.MessageLog,
) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		messages:      messages,
	}
}

// ListConversations lista conversaciones con paginación
// GET /api/ops/conversations
func (h *ConversationHandler) ListConversations(c *fiber.Ctx) error {
	req := conversation.ConversationListRequest{}
	req.Page = c.QueryInt("page", 1)
	req.PageSize = c.QueryInt("page_size", 20)
	req.Channel = c.Query("channel")
	req.Sender = c.Query("sender")

	if raw := c.Query("status"); raw != "" {
		status := conversation.Status(raw)
		req.Status = &status
	}

	result, err := h.conversations.List(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// GetConversation obtiene una conversación con su historial de mensajes
// GET /api/ops/conversations/:id
func (h *ConversationHandler) GetConversation(c *fiber.Ctx) error {
	id := kernel.NewConversationID(c.Params("id"))

	conv, err := h.conversations.FindByID(c.Context(), id)
	if err != nil {
		return err
	}

	records, err := h.messages.FindByConversation(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"conversation": conv,
		"messages":     records,
	})
}
