// Package mocks provides mock implementations for testing the promptline services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the
// core port interfaces. The mocks are generated using go:generate directives and
// provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	store := mocks.NewMockJobRecordStore(ctrl)
//	store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(job, nil)
package mocks

// Generate mock for JobRecordStore interface from internal/core package.
// This creates MockJobRecordStore with methods for all JobRecordStore interface methods:
// Create, GetByID, UpdateStatus, BindHandle, Stats
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_record_store_mock.go github.com/promptline/promptline-api/internal/core JobRecordStore

// Generate mock for JobExecutor interface from internal/core package.
// This creates MockJobExecutor with methods for all JobExecutor interface methods:
// Submit, Poll
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_executor_mock.go github.com/promptline/promptline-api/internal/core JobExecutor

// Generate mock for CompletionProvider interface from internal/core package.
// This creates MockCompletionProvider with methods for all CompletionProvider interface methods:
// Complete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=completion_provider_mock.go github.com/promptline/promptline-api/internal/core CompletionProvider

// Generate mock for UserRepository interface from internal/core package.
// This creates MockUserRepository with methods for all UserRepository interface methods:
// Create, GetByID, GetByUsername
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_repository_mock.go github.com/promptline/promptline-api/internal/core UserRepository

// Generate mock for ConversationRepository interface from internal/core package.
// This creates MockConversationRepository with methods for all ConversationRepository interface methods:
// Create, ListByOwner
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=conversation_repository_mock.go github.com/promptline/promptline-api/internal/core ConversationRepository

// Generate mock for RateLimiter interface from internal/core package.
// This creates MockRateLimiter with methods for all RateLimiter interface methods:
// Allow
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=rate_limiter_mock.go github.com/promptline/promptline-api/internal/core RateLimiter
