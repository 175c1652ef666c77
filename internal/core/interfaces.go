// Package core defines the capability interfaces (ports in hexagonal
// architecture) consumed by the service layer. Services depend on these
// contracts, never on concrete adapters, so the whole system is testable
// with in-memory fakes.
package core

import (
	"context"
	"encoding/json"
	"errors"

	domainjob "github.com/promptline/promptline-api/internal/domain/job"
	"github.com/promptline/promptline-api/internal/domain/model"
)

// Sentinel errors shared by the store contracts.
var (
	// ErrJobNotFound is returned when a job record does not exist.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobTerminal is returned when a status update targets a record that
	// already reached a terminal state. The write is rejected, never applied.
	ErrJobTerminal = errors.New("job already in terminal state")
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser is returned when a username or email is already registered.
	ErrDuplicateUser = errors.New("username or email already registered")
)

// UpdateJobStatusParams groups parameters for JobRecordStore.UpdateStatus.
type UpdateJobStatusParams struct {
	ID     string
	Status model.JobStatus
	// Result is written only for a succeeded transition.
	Result json.RawMessage
	// Error is written only for a failed transition.
	Error *string
}

// JobRecordStore is the durable key-value store of job metadata.
//
// UpdateStatus performs an atomic read-modify-write: transitions against a
// record that is already terminal fail with ErrJobTerminal so a stale
// reconciliation pass can never clobber a terminal result. Updates to a single
// id serialize; updates to different ids are fully independent.
type JobRecordStore interface {
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	UpdateStatus(ctx context.Context, params UpdateJobStatusParams) (*model.Job, error)
	// BindHandle associates the executor-native id with the record at
	// submission time. The association is 1:1 and never changes.
	BindHandle(ctx context.Context, id, nativeID string) error
	Stats(ctx context.Context) (*model.JobStats, error)
}

// ExecutorHandle is the executor-native reference for one submitted unit of work.
type ExecutorHandle struct {
	NativeID string
}

// JobExecutor abstracts the thing that actually runs the work. Any executor
// (in-process goroutine pool, external durable queue, remote batch service)
// satisfies the contract as long as Poll is idempotent and side-effect-free.
//
// Submit failure is synchronous; no retry is attempted here. Retry policy,
// if any, belongs to the caller.
type JobExecutor interface {
	Submit(ctx context.Context, payload json.RawMessage) (ExecutorHandle, error)
	Poll(ctx context.Context, nativeID string) (domainjob.PollResult, error)
}

// CompletionProvider produces a chat completion from an external AI service.
type CompletionProvider interface {
	Complete(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error)
}

// RateLimiter decides whether a principal may perform another request in the
// current window. It is injected as a capability; the window and threshold
// are configuration of the implementation, not of the caller.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// CreateUserParams groups parameters for UserRepository.Create.
type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
}

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, params CreateUserParams) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// ConversationRepository defines the interface for conversation data operations.
type ConversationRepository interface {
	Create(ctx context.Context, req *model.CreateConversationRequest) (*model.Conversation, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Conversation, error)
}
