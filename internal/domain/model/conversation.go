package model

import "time"

// Conversation is a persisted exchange between a user and a completion provider.
// Messages are stored as a JSON document and are append-only.
type Conversation struct {
	ID        string        `json:"id"         db:"id"`
	OwnerID   string        `json:"owner_id"   db:"owner_id"`
	Messages  []ChatMessage `json:"messages"   db:"messages"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// CreateConversationRequest represents a request to persist a conversation.
type CreateConversationRequest struct {
	OwnerID  string        `json:"owner_id"`
	Messages []ChatMessage `json:"messages"`
}
