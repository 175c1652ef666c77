package model

import (
	"errors"
	"time"
)

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	// ChatRoleUser marks a message authored by the caller.
	ChatRoleUser ChatRole = "user"
	// ChatRoleAssistant marks a message authored by the completion provider.
	ChatRoleAssistant ChatRole = "assistant"
	// ChatRoleSystem marks a system prompt message.
	ChatRoleSystem ChatRole = "system"
)

// ChatMessage is a single message in a conversation.
type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

const (
	maxChatMessageLen = 1000
	maxChatTokens     = 1000
	maxTemperature    = 2.0
)

// ChatRequest represents a chat completion request from a caller.
type ChatRequest struct {
	Message     string  `json:"message"`
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// ApplyDefaults fills zero-valued tuning fields with their defaults.
func (r *ChatRequest) ApplyDefaults() {
	if r.Model == "" {
		r.Model = "gpt-3.5-turbo"
	}
	if r.MaxTokens == 0 {
		r.MaxTokens = 150
	}
	if r.Temperature == 0 {
		r.Temperature = 0.7
	}
}

// Validate validates the ChatRequest fields.
func (r *ChatRequest) Validate() error {
	if r.Message == "" {
		return errors.New("message is required")
	}
	if len(r.Message) > maxChatMessageLen {
		return errors.New("message exceeds maximum length")
	}
	if r.MaxTokens < 0 || r.MaxTokens > maxChatTokens {
		return errors.New("max_tokens must be between 0 and 1000")
	}
	if r.Temperature < 0 || r.Temperature > maxTemperature {
		return errors.New("temperature must be between 0.0 and 2.0")
	}
	return nil
}

// JobKindChat identifies a background chat completion payload.
const JobKindChat = "chat"

// JobPayload is the envelope stored on a job record and handed to the
// executor. Kind selects the worker handler; exactly one payload field is set.
// OwnerID travels with the payload so the worker can attribute side effects
// without a lookup against the record store.
type JobPayload struct {
	Kind    string       `json:"kind"`
	OwnerID string       `json:"owner_id"`
	Chat    *ChatRequest `json:"chat,omitempty"`
}

// TokenUsage reports token accounting from a completion provider.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse represents a completed chat exchange.
type ChatResponse struct {
	ID        string     `json:"id"`
	Message   string     `json:"message"`
	Model     string     `json:"model"`
	Usage     TokenUsage `json:"usage"`
	CreatedAt time.Time  `json:"created_at"`
}
