// Package channels define los canales de mensajería soportados por el bot.
package channels

import "github.com/pelangilabs/moltbot/pkg/kernel"

// ChannelType representa el tipo de canal de mensajería
type ChannelType string

const (
	ChannelTypeWhatsApp ChannelType = "WHATSAPP"
	ChannelTypeConsole  ChannelType = "CONSOLE"
)

func (ct ChannelType) String() string {
	return string(ct)
}

// IsValid verifica si el tipo de canal es válido
func (ct ChannelType) IsValid() bool {
	switch ct {
	case ChannelTypeWhatsApp, ChannelTypeConsole:
		return true
	}
	return false
}

// MessageContent contenido de un mensaje
type MessageContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewTextContent crea contenido de texto plano
func NewTextContent(text string) MessageContent {
	return MessageContent{Type: "text", Text: text}
}

// OutgoingMessage mensaje saliente hacia un proveedor
type OutgoingMessage struct {
	RecipientID string         `json:"recipient_id"`
	Content     MessageContent `json:"content"`
}

// IncomingMessage mensaje entrante normalizado desde un proveedor
type IncomingMessage struct {
	MessageID  kernel.MessageID `json:"message_id"`
	Channel    ChannelType      `json:"channel"`
	SenderID   string           `json:"sender_id"`
	SenderName string           `json:"sender_name"`
	Content    MessageContent   `json:"content"`
	Timestamp  int64            `json:"timestamp"`
}
