package channels

import "context"

// ChannelAdapter define las operaciones de un proveedor de mensajería
type ChannelAdapter interface {
	// GetType devuelve el tipo de canal que implementa el adaptador
	GetType() ChannelType

	// SendMessage envía un mensaje saliente por el canal
	SendMessage(ctx context.Context, msg OutgoingMessage) error
}
