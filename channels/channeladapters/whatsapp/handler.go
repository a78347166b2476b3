package whatsapp

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pelangilabs/moltbot/conversation"
)

// MessageProcessor procesa los mensajes entrantes ya normalizados
type MessageProcessor interface {
	Process(ctx context.Context, msg conversation.InboundMessage) (*conversation.ProcessResult, error)
}

// WebhookHandler maneja la verificación y recepción del webhook de Meta
type WebhookHandler struct {
	adapter   *Adapter
	processor MessageProcessor
}

func NewWebhookHandler(adapter *Adapter, processor MessageProcessor) *WebhookHandler {
	return &WebhookHandler{
		adapter:   adapter,
		processor: processor,
	}
}

// VerifyWebhook responde al challenge de verificación de Meta
// GET /webhook/whatsapp
func (h *WebhookHandler) VerifyWebhook(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.adapter.config.WebhookVerifyToken {
		log.Printf("✅ WhatsApp webhook verified")
		return c.SendString(challenge)
	}

	log.Printf("❌ WhatsApp webhook verification failed - invalid token")
	return fiber.NewError(http.StatusForbidden, "Verification failed")
}

// ReceiveWebhook recibe eventos del webhook y los procesa en segundo plano.
// Responde 200 de inmediato para que Meta no reintente la entrega.
// POST /webhook/whatsapp
func (h *WebhookHandler) ReceiveWebhook(c *fiber.Ctx) error {
	body := c.Body()

	if err := h.adapter.VerifySignature(body, c.Get("X-Hub-Signature-256")); err != nil {
		log.Printf("❌ WhatsApp webhook signature rejected: %v", err)
		return err
	}

	messages, err := h.adapter.ParseWebhook(body)
	if err != nil {
		log.Printf("❌ Failed to parse WhatsApp webhook: %v", err)
		return c.SendStatus(fiber.StatusOK)
	}

	for _, msg := range messages {
		inbound := conversation.InboundMessage{
			Channel:           msg.Channel.String(),
			Sender:            msg.SenderID,
			SenderName:        msg.SenderName,
			Text:              msg.Content.Text,
			Language:          "en",
			ProviderMessageID: string(msg.MessageID),
		}

		go func(inbound conversation.InboundMessage) {
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			if _, err := h.processor.Process(ctx, inbound); err != nil {
				log.Printf("⚠️  Failed to process WhatsApp message %s: %v", inbound.ProviderMessageID, err)
			}
		}(inbound)
	}

	return c.SendStatus(fiber.StatusOK)
}
