package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/promptline/promptline-api/internal/apperrors"
	"github.com/promptline/promptline-api/internal/core"
	"github.com/promptline/promptline-api/internal/domain/model"
)

// ChatServiceOptions groups dependencies for ChatService.
type ChatServiceOptions struct {
	Provider      core.CompletionProvider     // Required: completion backend
	Conversations core.ConversationRepository // Required: exchange history
	Jobs          *JobService                 // Required for background submissions
	Logger        *slog.Logger                // Optional: structured logger
}

// ChatService executes chat completions, either synchronously against the
// provider or as a tracked background job, and records finished exchanges as
// conversations.
type ChatService struct {
	provider      core.CompletionProvider
	conversations core.ConversationRepository
	jobs          *JobService
	logger        *slog.Logger
}

// NewChatService constructs a new ChatService.
func NewChatService(opts ChatServiceOptions) (*ChatService, error) {
	if opts.Provider == nil {
		return nil, errors.New("CompletionProvider is required")
	}
	if opts.Conversations == nil {
		return nil, errors.New("ConversationRepository is required")
	}
	if opts.Jobs == nil {
		return nil, errors.New("JobService is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "chat_service")
	}

	return &ChatService{
		provider:      opts.Provider,
		conversations: opts.Conversations,
		jobs:          opts.Jobs,
		logger:        logger,
	}, nil
}

// MustNewChatService constructs a new ChatService and panics on error.
func MustNewChatService(opts ChatServiceOptions) *ChatService {
	svc, err := NewChatService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create ChatService: %v", err))
	}
	return svc
}

// Complete runs the chat completion synchronously and records the exchange.
// A conversation write failure is logged but does not discard the reply the
// caller already paid for.
func (s *ChatService) Complete(
	ctx context.Context,
	ownerID string,
	req model.ChatRequest,
) (*model.ChatResponse, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeValidation, "invalid chat request")
	}

	resp, err := s.provider.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	s.recordExchange(ctx, ownerID, req, resp)
	return resp, nil
}

// SubmitBackground enqueues the chat completion as a tracked job and returns
// the pending record. The work itself happens in the background worker. When
// submission fails, the Failed record is returned alongside the error.
func (s *ChatService) SubmitBackground(
	ctx context.Context,
	ownerID string,
	req model.ChatRequest,
) (*model.Job, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeValidation, "invalid chat request")
	}

	payload, err := json.Marshal(model.JobPayload{
		Kind:    model.JobKindChat,
		OwnerID: ownerID,
		Chat:    &req,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal job payload: %w", err)
	}

	return s.jobs.SubmitJob(ctx, ownerID, payload)
}

// ListConversations returns the owner's conversation history, newest first.
func (s *ChatService) ListConversations(
	ctx context.Context,
	ownerID string,
) ([]*model.Conversation, error) {
	conversations, err := s.conversations.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStoreUnavailable, "list conversations")
	}
	return conversations, nil
}

func (s *ChatService) recordExchange(
	ctx context.Context,
	ownerID string,
	req model.ChatRequest,
	resp *model.ChatResponse,
) {
	now := time.Now().UTC()
	_, err := s.conversations.Create(ctx, &model.CreateConversationRequest{
		OwnerID: ownerID,
		Messages: []model.ChatMessage{
			{Role: model.ChatRoleUser, Content: req.Message, Timestamp: now},
			{Role: model.ChatRoleAssistant, Content: resp.Message, Timestamp: resp.CreatedAt},
		},
	})
	if err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to record conversation",
			"owner_id", ownerID, "error", err)
	}
}
