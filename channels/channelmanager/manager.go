// Package channelmanager enruta mensajes salientes al adaptador correcto.
package channelmanager

import (
	"context"
	"log"
	"sync"

	"github.com/pelangilabs/moltbot/channels"
)

// Manager mantiene los adaptadores registrados por tipo de canal
type Manager struct {
	mu       sync.RWMutex
	adapters map[channels.ChannelType]channels.ChannelAdapter
}

func NewManager() *Manager {
	return &Manager{
		adapters: make(map[channels.ChannelType]channels.ChannelAdapter),
	}
}

// Register registra un adaptador para su tipo de canal
func (m *Manager) Register(adapter channels.ChannelAdapter) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.adapters[adapter.GetType()] = adapter
	log.Printf("✅ Channel adapter registered: %s", adapter.GetType())
}

// Adapter devuelve el adaptador registrado para el tipo dado
func (m *Manager) Adapter(channelType channels.ChannelType) (channels.ChannelAdapter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	adapter, ok := m.adapters[channelType]
	if !ok {
		return nil, channels.ErrUnknownChannel().WithDetail("channel", channelType.String())
	}
	return adapter, nil
}

// Send envía un mensaje saliente por el canal indicado
func (m *Manager) Send(ctx context.Context, channelType channels.ChannelType, msg channels.OutgoingMessage) error {
	adapter, err := m.Adapter(channelType)
	if err != nil {
		return err
	}
	return adapter.SendMessage(ctx, msg)
}

// SendTo satisface el puerto Replier del procesador de mensajes
func (m *Manager) SendTo(ctx context.Context, channel string, recipient string, content string) error {
	return m.Send(ctx, channels.ChannelType(channel), channels.OutgoingMessage{
		RecipientID: recipient,
		Content:     channels.NewTextContent(content),
	})
}

// Transport adapta el manager al puerto Transport del motor, fijando el canal
// por el que salen los mensajes de los nodos send y las acciones notify.
type Transport struct {
	manager     *Manager
	channelType channels.ChannelType
}

func NewTransport(manager *Manager, channelType channels.ChannelType) *Transport {
	return &Transport{manager: manager, channelType: channelType}
}

func (t *Transport) Send(ctx context.Context, recipient string, content string) error {
	return t.manager.Send(ctx, t.channelType, channels.OutgoingMessage{
		RecipientID: recipient,
		Content:     channels.NewTextContent(content),
	})
}
