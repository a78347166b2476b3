package whatsapp

import "github.com/gofiber/fiber/v2"

// WebhookRoutes registra las rutas del webhook de WhatsApp
type WebhookRoutes struct {
	handler *WebhookHandler
}

func NewWebhookRoutes(handler *WebhookHandler) *WebhookRoutes {
	return &WebhookRoutes{handler: handler}
}

func (wr *WebhookRoutes) Setup(app *fiber.App) {
	app.Get("/webhook/whatsapp", wr.handler.VerifyWebhook)
	app.Post("/webhook/whatsapp", wr.handler.ReceiveWebhook)
}
