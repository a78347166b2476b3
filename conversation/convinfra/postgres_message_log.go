package convinfra

import (
	"context"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/jmoiron/sqlx"

	"github.com/pelangilabs/moltbot/conversation"
	"github.com/pelangilabs/moltbot/pkg/kernel"
)

type PostgresMessageLog struct {
	db *sqlx.DB
}

var _ conversation.MessageLog = (*PostgresMessageLog)(nil)

func NewPostgresMessageLog(db *sqlx.DB) *PostgresMessageLog {
	return &PostgresMessageLog{db: db}
}

// dbMessage is an intermediate struct for database operations
type dbMessage struct {
	ID                string    `db:"id"`
	ConversationID    string    `db:"conversation_id"`
	Direction         string    `db:"direction"`
	Text              string    `db:"text"`
	ProviderMessageID string    `db:"provider_message_id"`
	CreatedAt         time.Time `db:"created_at"`
}

func (l *PostgresMessageLog) Append(ctx context.Context, record conversation.MessageRecord) error {
	query := `
		INSERT INTO messages (
			id, conversation_id, direction, text, provider_message_id, created_at
		) VALUES (
			:id, :conversation_id, :direction, :text, :provider_message_id, :created_at
		)`

	_, err := l.db.NamedExecContext(ctx, query, dbMessage{
		ID:                record.ID.String(),
		ConversationID:    record.ConversationID.String(),
		Direction:         string(record.Direction),
		Text:              record.Text,
		ProviderMessageID: record.ProviderMessageID,
		CreatedAt:         record.CreatedAt,
	})
	if err != nil {
		return errx.Wrap(err, "failed to append message", errx.TypeInternal).
			WithDetail("conversation_id", record.ConversationID.String())
	}

	return nil
}

func (l *PostgresMessageLog) ExistsByProviderID(ctx context.Context, providerMessageID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM messages WHERE provider_message_id = $1)`

	var exists bool
	err := l.db.GetContext(ctx, &exists, query, providerMessageID)
	if err != nil {
		return false, errx.Wrap(err, "failed to check message existence", errx.TypeInternal).
			WithDetail("provider_message_id", providerMessageID)
	}

	return exists, nil
}

func (l *PostgresMessageLog) FindByConversation(ctx context.Context, id kernel.ConversationID) ([]conversation.MessageRecord, error) {
	query := `
		SELECT id, conversation_id, direction, text, provider_message_id, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`

	var dbMessages []dbMessage
	err := l.db.SelectContext(ctx, &dbMessages, query, id.String())
	if err != nil {
		return nil, errx.Wrap(err, "failed to load conversation messages", errx.TypeInternal).
			WithDetail("conversation_id", id.String())
	}

	records := make([]conversation.MessageRecord, 0, len(dbMessages))
	for _, m := range dbMessages {
		records = append(records, conversation.MessageRecord{
			ID:                kernel.MessageID(m.ID),
			ConversationID:    kernel.ConversationID(m.ConversationID),
			Direction:         conversation.Direction(m.Direction),
			Text:              m.Text,
			ProviderMessageID: m.ProviderMessageID,
			CreatedAt:         m.CreatedAt,
		})
	}

	return records, nil
}
