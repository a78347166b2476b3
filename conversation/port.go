package conversation

import (
	"context"
	"time"

	"github.com/pelangilabs/moltbot/pkg/kernel"
)

// ============================================================================
// Repository Interfaces
// ============================================================================

// ConversationRepository persistencia de conversaciones
type ConversationRepository interface {
	Save(ctx context.Context, conv *Conversation) error
	FindByID(ctx context.Context, id kernel.ConversationID) (*Conversation, error)
	FindActiveByChannelAndSender(ctx context.Context, channel, sender string) (*Conversation, error)
	List(ctx context.Context, req ConversationListRequest) (ConversationListResponse, error)
}

// MessageLog registro de mensajes entrantes y salientes
type MessageLog interface {
	Append(ctx context.Context, record MessageRecord) error
	ExistsByProviderID(ctx context.Context, providerMessageID string) (bool, error)
	FindByConversation(ctx context.Context, id kernel.ConversationID) ([]MessageRecord, error)
}

// ============================================================================
// Infrastructure Interfaces
// ============================================================================

// Locker exclusión mutua por conversación: garantiza a lo sumo una invocación
// del motor en vuelo por conversación
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// RateLimiter tope de mensajes entrantes por sender
type RateLimiter interface {
	Allow(ctx context.Context, sender string) (bool, error)
}

// TranscriptArchiver archiva la transcripción de una conversación terminada
type TranscriptArchiver interface {
	Archive(ctx context.Context, conv *Conversation, summary string) error
}
