// Package console implementa un canal de pruebas que registra los envíos en memoria.
package console

import (
	"context"
	"log"
	"sync"

	"github.com/pelangilabs/moltbot/channels"
)

// Adapter implementa ChannelAdapter para el simulador de desarrollo.
// Guarda los mensajes salientes en memoria para que el API de pruebas los
// devuelva en la misma respuesta.
type Adapter struct {
	mu   sync.Mutex
	sent map[string][]channels.OutgoingMessage
}

func NewAdapter() *Adapter {
	return &Adapter{
		sent: make(map[string][]channels.OutgoingMessage),
	}
}

func (a *Adapter) GetType() channels.ChannelType {
	return channels.ChannelTypeConsole
}

func (a *Adapter) SendMessage(ctx context.Context, msg channels.OutgoingMessage) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.sent[msg.RecipientID] = append(a.sent[msg.RecipientID], msg)
	log.Printf("💬 [console → %s] %s", msg.RecipientID, msg.Content.Text)
	return nil
}

// Drain devuelve y limpia los mensajes acumulados para un destinatario
func (a *Adapter) Drain(recipient string) []channels.OutgoingMessage {
	a.mu.Lock()
	defer a.mu.Unlock()

	messages := a.sent[recipient]
	delete(a.sent, recipient)
	return messages
}
