package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/promptline/promptline-api/internal/domain/model"
)

// ConversationRepo implements core.ConversationRepository on postgres.
// Messages are stored as a JSONB document.
type ConversationRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewConversationRepo creates a new ConversationRepo instance.
func NewConversationRepo(db *sql.DB, cfg RepoConfig) *ConversationRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &ConversationRepo{DB: db, timeProvider: tp}
}

const conversationColumns = `id, owner_id, messages, created_at, updated_at`

// Create persists a conversation.
func (r *ConversationRepo) Create(
	ctx context.Context,
	req *model.CreateConversationRequest,
) (*model.Conversation, error) {
	if req == nil {
		return nil, errors.New("create conversation request is required")
	}
	if req.OwnerID == "" {
		return nil, errors.New("owner id is required")
	}
	if len(req.Messages) == 0 {
		return nil, errors.New("messages are required")
	}

	messages, err := json.Marshal(req.Messages)
	if err != nil {
		return nil, fmt.Errorf("marshal messages: %w", err)
	}

	now := r.timeProvider.Now().UTC()
	row := r.DB.QueryRowContext(ctx, `
      INSERT INTO conversations(id, owner_id, messages, created_at, updated_at)
      VALUES ($1, $2, $3, $4, $4)
      RETURNING `+conversationColumns,
		uuid.NewString(), req.OwnerID, messages, now)

	conv, err := scanConversation(row)
	if err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}
	return conv, nil
}

// ListByOwner returns the owner's conversations, newest first.
func (r *ConversationRepo) ListByOwner(
	ctx context.Context,
	ownerID string,
) ([]*model.Conversation, error) {
	if ownerID == "" {
		return nil, errors.New("owner id is required")
	}

	rows, err := r.DB.QueryContext(ctx, `
      SELECT `+conversationColumns+`
      FROM conversations
      WHERE owner_id = $1
      ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var conversations []*model.Conversation
	for rows.Next() {
		conv, scanErr := scanConversation(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan conversation: %w", scanErr)
		}
		conversations = append(conversations, conv)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("conversation rows: %w", rowsErr)
	}
	return conversations, nil
}

func scanConversation(scanner rowScanner) (*model.Conversation, error) {
	conv := &model.Conversation{}
	var messages []byte
	if err := scanner.Scan(
		&conv.ID,
		&conv.OwnerID,
		&messages,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(messages) > 0 {
		if err := json.Unmarshal(messages, &conv.Messages); err != nil {
			return nil, fmt.Errorf("unmarshal messages: %w", err)
		}
	}
	conv.CreatedAt = conv.CreatedAt.UTC()
	conv.UpdatedAt = conv.UpdatedAt.UTC()
	return conv, nil
}
