package convinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/craftable/storex"
	"github.com/jmoiron/sqlx"

	"github.com/pelangilabs/moltbot/conversation"
	"github.com/pelangilabs/moltbot/engine"
	"github.com/pelangilabs/moltbot/pkg/kernel"
)

type PostgresConversationRepository struct {
	db *sqlx.DB
}

var _ conversation.ConversationRepository = (*PostgresConversationRepository)(nil)

func NewPostgresConversationRepository(db *sqlx.DB) *PostgresConversationRepository {
	return &PostgresConversationRepository{db: db}
}

// dbConversation is an intermediate struct for database operations
type dbConversation struct {
	ID          string          `db:"id"`
	Channel     string          `db:"channel"`
	Sender      string          `db:"sender"`
	GuestName   string          `db:"guest_name"`
	Language    string          `db:"language"`
	Status      string          `db:"status"`
	State       json.RawMessage `db:"state"`
	StartedAt   time.Time       `db:"started_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
	CompletedAt *time.Time      `db:"completed_at"`
}

func toDBConversation(conv *conversation.Conversation) (*dbConversation, error) {
	stateJSON := []byte("null")
	if conv.State != nil {
		data, err := json.Marshal(conv.State)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal state: %w", err)
		}
		stateJSON = data
	}

	return &dbConversation{
		ID:          conv.ID.String(),
		Channel:     conv.Channel,
		Sender:      conv.Sender,
		GuestName:   conv.GuestName,
		Language:    conv.Language,
		Status:      string(conv.Status),
		State:       stateJSON,
		StartedAt:   conv.StartedAt,
		UpdatedAt:   conv.UpdatedAt,
		CompletedAt: conv.CompletedAt,
	}, nil
}

func toDomainConversation(dbConv *dbConversation) (*conversation.Conversation, error) {
	var state *engine.WorkflowState
	if len(dbConv.State) > 0 && string(dbConv.State) != "null" {
		state = &engine.WorkflowState{}
		if err := json.Unmarshal(dbConv.State, state); err != nil {
			return nil, fmt.Errorf("failed to unmarshal state: %w", err)
		}
	}

	return &conversation.Conversation{
		ID:          kernel.ConversationID(dbConv.ID),
		Channel:     dbConv.Channel,
		Sender:      dbConv.Sender,
		GuestName:   dbConv.GuestName,
		Language:    dbConv.Language,
		Status:      conversation.Status(dbConv.Status),
		State:       state,
		StartedAt:   dbConv.StartedAt,
		UpdatedAt:   dbConv.UpdatedAt,
		CompletedAt: dbConv.CompletedAt,
	}, nil
}

func (r *PostgresConversationRepository) Save(ctx context.Context, conv *conversation.Conversation) error {
	dbConv, err := toDBConversation(conv)
	if err != nil {
		return errx.Wrap(err, "failed to convert conversation", errx.TypeInternal).
			WithDetail("conversation_id", conv.ID.String())
	}

	query := `
		INSERT INTO conversations (
			id, channel, sender, guest_name, language, status, state,
			started_at, updated_at, completed_at
		) VALUES (
			:id, :channel, :sender, :guest_name, :language, :status, :state,
			:started_at, :updated_at, :completed_at
		)
		ON CONFLICT (id) DO UPDATE SET
			guest_name = EXCLUDED.guest_name,
			language = EXCLUDED.language,
			status = EXCLUDED.status,
			state = EXCLUDED.state,
			updated_at = EXCLUDED.updated_at,
			completed_at = EXCLUDED.completed_at`

	_, err = r.db.NamedExecContext(ctx, query, dbConv)
	if err != nil {
		return errx.Wrap(err, "failed to save conversation", errx.TypeInternal).
			WithDetail("conversation_id", conv.ID.String())
	}

	return nil
}

func (r *PostgresConversationRepository) FindByID(ctx context.Context, id kernel.ConversationID) (*conversation.Conversation, error) {
	query := `
		SELECT
			id, channel, sender, guest_name, language, status, state,
			started_at, updated_at, completed_at
		FROM conversations
		WHERE id = $1`

	var dbConv dbConversation
	err := r.db.GetContext(ctx, &dbConv, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, conversation.ErrConversationNotFound().WithDetail("conversation_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find conversation by id", errx.TypeInternal).
			WithDetail("conversation_id", id.String())
	}

	return toDomainConversation(&dbConv)
}

func (r *PostgresConversationRepository) FindActiveByChannelAndSender(ctx context.Context, channel, sender string) (*conversation.Conversation, error) {
	query := `
		SELECT
			id, channel, sender, guest_name, language, status, state,
			started_at, updated_at, completed_at
		FROM conversations
		WHERE channel = $1 AND sender = $2 AND status = 'active'
		ORDER BY started_at DESC
		LIMIT 1`

	var dbConv dbConversation
	err := r.db.GetContext(ctx, &dbConv, query, channel, sender)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, conversation.ErrConversationNotFound().
				WithDetail("channel", channel).
				WithDetail("sender", sender)
		}
		return nil, errx.Wrap(err, "failed to find active conversation", errx.TypeInternal).
			WithDetail("sender", sender)
	}

	return toDomainConversation(&dbConv)
}

func (r *PostgresConversationRepository) List(ctx context.Context, req conversation.ConversationListRequest) (conversation.ConversationListResponse, error) {
	conditions := []string{"1=1"}
	var args []any
	argPos := 1

	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(*req.Status))
		argPos++
	}

	if req.Channel != "" {
		conditions = append(conditions, fmt.Sprintf("channel = $%d", argPos))
		args = append(args, req.Channel)
		argPos++
	}

	if req.Sender != "" {
		conditions = append(conditions, fmt.Sprintf("sender = $%d", argPos))
		args = append(args, req.Sender)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM conversations WHERE %s", whereClause)
	var total int
	err := r.db.GetContext(ctx, &total, countQuery, args...)
	if err != nil {
		return conversation.ConversationListResponse{}, errx.Wrap(err, "failed to count conversations", errx.TypeInternal)
	}

	dataQuery := fmt.Sprintf(`
		SELECT
			id, channel, sender, guest_name, language, status, state,
			started_at, updated_at, completed_at
		FROM conversations
		WHERE %s
		ORDER BY updated_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argPos, argPos+1)

	args = append(args, req.PageSize, req.GetOffset())

	var dbConvs []dbConversation
	err = r.db.SelectContext(ctx, &dbConvs, dataQuery, args...)
	if err != nil {
		return conversation.ConversationListResponse{}, errx.Wrap(err, "failed to list conversations", errx.TypeInternal)
	}

	conversations := make([]conversation.Conversation, 0, len(dbConvs))
	for i := range dbConvs {
		conv, err := toDomainConversation(&dbConvs[i])
		if err != nil {
			return conversation.ConversationListResponse{}, errx.Wrap(err, "failed to convert conversation", errx.TypeInternal)
		}
		conversations = append(conversations, *conv)
	}

	return storex.NewPaginated(conversations, total, req.Page, req.PageSize), nil
}
