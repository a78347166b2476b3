// Package conversation es el dueño del estado de workflow entre invocaciones
// del motor: la entidad Conversation, el log de mensajes y los puertos de la
// infraestructura que los sostiene.
package conversation

import (
	"time"

	"github.com/pelangilabs/moltbot/engine"
	"github.com/pelangilabs/moltbot/pkg/kernel"
)

// ============================================================================
// Conversation Entity
// ============================================================================

// Status estado del ciclo de vida de una conversación
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusHandedOff Status = "handed_off"
	StatusAbandoned Status = "abandoned"
)

// Conversation una conversación en curso o terminada con un huésped. Es la
// dueña del WorkflowState persistido entre mensajes.
type Conversation struct {
	ID          kernel.ConversationID `json:"id"`
	Channel     string                `json:"channel"`
	Sender      string                `json:"sender"`
	GuestName   string                `json:"guest_name,omitempty"`
	Language    string                `json:"language"`
	Status      Status                `json:"status"`
	State       *engine.WorkflowState `json:"state,omitempty"`
	StartedAt   time.Time             `json:"started_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
}

// NewConversation crea una conversación activa para un sender en un canal
func NewConversation(channel, sender, guestName, language string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        kernel.GenerateConversationID(),
		Channel:   channel,
		Sender:    sender,
		GuestName: guestName,
		Language:  language,
		Status:    StatusActive,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// IsActive indica si la conversación sigue aceptando mensajes
func (c *Conversation) IsActive() bool {
	return c.Status == StatusActive
}

// Complete marca la conversación como completada y descarta el estado
func (c *Conversation) Complete() {
	now := time.Now()
	c.Status = StatusCompleted
	c.State = nil
	c.CompletedAt = &now
	c.UpdatedAt = now
}

// HandOff marca la conversación como entregada a un operador humano
func (c *Conversation) HandOff() {
	now := time.Now()
	c.Status = StatusHandedOff
	c.State = nil
	c.CompletedAt = &now
	c.UpdatedAt = now
}

// Abandon marca la conversación como abandonada (cierre manual u operativo)
func (c *Conversation) Abandon() {
	now := time.Now()
	c.Status = StatusAbandoned
	c.State = nil
	c.CompletedAt = &now
	c.UpdatedAt = now
}

// ApplyState reemplaza el estado persistido tras una invocación del motor
func (c *Conversation) ApplyState(state *engine.WorkflowState) {
	c.State = state
	c.UpdatedAt = time.Now()
}

// Identity arma la identidad visible para las plantillas del motor
func (c *Conversation) Identity() engine.Identity {
	return engine.Identity{
		Name:    c.GuestName,
		Phone:   c.Sender,
		Channel: c.Channel,
	}
}

// ============================================================================
// Message Record
// ============================================================================

// Direction sentido de un mensaje registrado
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// MessageRecord entrada del log de mensajes. ProviderMessageID permite la
// deduplicación de reintentos de webhook.
type MessageRecord struct {
	ID                kernel.MessageID      `json:"id"`
	ConversationID    kernel.ConversationID `json:"conversation_id"`
	Direction         Direction             `json:"direction"`
	Text              string                `json:"text"`
	ProviderMessageID string                `json:"provider_message_id,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
}

// NewInboundRecord registra un mensaje entrante del huésped
func NewInboundRecord(conversationID kernel.ConversationID, text, providerMessageID string) MessageRecord {
	return MessageRecord{
		ID:                kernel.GenerateMessageID(),
		ConversationID:    conversationID,
		Direction:         DirectionInbound,
		Text:              text,
		ProviderMessageID: providerMessageID,
		CreatedAt:         time.Now(),
	}
}

// NewOutboundRecord registra una respuesta del bot
func NewOutboundRecord(conversationID kernel.ConversationID, text string) MessageRecord {
	return MessageRecord{
		ID:             kernel.GenerateMessageID(),
		ConversationID: conversationID,
		Direction:      DirectionOutbound,
		Text:           text,
		CreatedAt:      time.Now(),
	}
}
