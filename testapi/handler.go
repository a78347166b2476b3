// Package testapi simulador de conversaciones para desarrollo local.
package testapi

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pelangilabs/moltbot/channels"
	"github.com/pelangilabs/moltbot/channels/channeladapters/console"
	"github.com/pelangilabs/moltbot/conversation"
)

// MessageProcessor procesa mensajes entrantes sin guardias de webhook
type MessageProcessor interface {
	ProcessDirect(ctx context.Context, msg conversation.InboundMessage) (*conversation.ProcessResult, error)
}

// TestHandler maneja las peticiones HTTP para testing
type TestHandler struct {
	processor MessageProcessor
	console   *console.Adapter
}

func NewTestHandler(processor MessageProcessor, consoleAdapter *console.Adapter) *TestHandler {
	return &TestHandler{
		processor: processor,
		console:   consoleAdapter,
	}
}

// SendTestMessage envía un mensaje de prueba por el canal de consola
// POST /test/message
func (h *TestHandler) SendTestMessage(c *fiber.Ctx) error {
	var req struct {
		SenderID   string `json:"sender_id"`
		SenderName string `json:"sender_name"`
		Text       string `json:"text"`
		Language   string `json:"language"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.SenderID == "" {
		req.SenderID = "test-user"
	}
	if req.Language == "" {
		req.Language = "en"
	}

	log.Printf("📨 [TEST CHANNEL] Received message: '%s' from %s", req.Text, req.SenderID)

	msg := conversation.InboundMessage{
		Channel:           channels.ChannelTypeConsole.String(),
		Sender:            req.SenderID,
		SenderName:        req.SenderName,
		Text:              req.Text,
		Language:          req.Language,
		ProviderMessageID: "test-" + uuid.NewString(),
	}

	result, err := h.processor.ProcessDirect(c.Context(), msg)
	if err != nil {
		log.Printf("❌ Failed to process message: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to process message",
			"details": err.Error(),
		})
	}

	// Las respuestas salieron por el adaptador de consola; se devuelven inline
	var replies []string
	for _, outgoing := range h.console.Drain(req.SenderID) {
		replies = append(replies, outgoing.Content.Text)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":         true,
		"conversation_id": result.ConversationID,
		"sender_id":       req.SenderID,
		"text":            req.Text,
		"replies":         replies,
		"hand_off":        result.HandOff,
		"completed":       result.Completed,
		"timestamp":       time.Now().Unix(),
	})
}

// GetTestInstructions devuelve instrucciones de uso
// GET /test/
func (h *TestHandler) GetTestInstructions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "moltbot test channel",
		"usage": fiber.Map{
			"method": "POST",
			"url":    "/test/message",
			"body": fiber.Map{
				"sender_id":   "test-user",
				"sender_name": "Aiman",
				"text":        "hello",
			},
		},
		"curl": `curl -X POST http://localhost:8080/test/message \
  -H "Content-Type: application/json" \
  -d '{"sender_id": "test-user", "sender_name": "Aiman", "text": "hello"}'`,
		"notes": []string{
			"El primer mensaje abre una conversación si coincide con un trigger o existe workflow por defecto",
			"Los mensajes siguientes avanzan la conversación un paso",
			"Las respuestas del bot se devuelven en el campo 'replies'",
		},
	})
}
