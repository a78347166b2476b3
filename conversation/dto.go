package conversation

import (
	"github.com/Abraxas-365/craftable/storex"
)

// ============================================================================
// List DTOs
// ============================================================================

// ConversationListRequest request para listar conversaciones
type ConversationListRequest struct {
	storex.PaginationOptions

	Status  *Status `json:"status,omitempty"`
	Channel string  `json:"channel,omitempty"`
	Sender  string  `json:"sender,omitempty"`
}

// GetOffset retorna el offset SQL de la página pedida
func (clr ConversationListRequest) GetOffset() int {
	offset := (clr.Page - 1) * clr.PageSize
	if offset < 0 {
		return 0
	}
	return offset
}

// ConversationListResponse lista paginada de conversaciones
type ConversationListResponse = storex.Paginated[Conversation]

// ============================================================================
// Processing DTOs
// ============================================================================

// InboundMessage mensaje entrante normalizado desde un canal
type InboundMessage struct {
	Channel           string `json:"channel"`
	Sender            string `json:"sender"`
	SenderName        string `json:"sender_name,omitempty"`
	Text              string `json:"text"`
	Language          string `json:"language,omitempty"`
	ProviderMessageID string `json:"provider_message_id,omitempty"`
}

// ProcessResult resultado de procesar un mensaje entrante
type ProcessResult struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
	HandOff        bool   `json:"hand_off"`
	Completed      bool   `json:"completed"`
}
