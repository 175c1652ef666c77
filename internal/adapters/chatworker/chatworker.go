// Package chatworker runs the consuming half of the durable chat queue: it
// pops task envelopes, executes the completion against the configured
// provider and records the executor-native outcome that status polls read.
package chatworker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/promptline/promptline-api/internal/adapters/executor/redisq"
	"github.com/promptline/promptline-api/internal/core"
	"github.com/promptline/promptline-api/internal/domain/model"
)

// HandlerFunc processes one task payload and returns the result document.
type HandlerFunc func(ctx context.Context, payload *model.JobPayload) (json.RawMessage, error)

// DispatcherOptions groups dependencies for the Dispatcher.
type DispatcherOptions struct {
	Provider      core.CompletionProvider     // Required: completion backend
	Conversations core.ConversationRepository // Optional: exchange history
	TaskTimeout   time.Duration               // Optional: per-task cap, default 60s
	Logger        *slog.Logger                // Optional: structured logger
}

// Dispatcher decodes task envelopes and routes them to the handler registered
// for their kind. It is shared by the queue-consuming Runner and the
// in-process executor, so both run identical task semantics.
type Dispatcher struct {
	provider      core.CompletionProvider
	conversations core.ConversationRepository
	taskTimeout   time.Duration
	logger        *slog.Logger
	handlers      map[string]HandlerFunc
}

// NewDispatcher constructs a Dispatcher and registers the built-in handlers.
func NewDispatcher(opts DispatcherOptions) (*Dispatcher, error) {
	if opts.Provider == nil {
		return nil, errors.New("completion provider is required")
	}

	taskTimeout := opts.TaskTimeout
	if taskTimeout <= 0 {
		taskTimeout = 60 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		provider:      opts.Provider,
		conversations: opts.Conversations,
		taskTimeout:   taskTimeout,
		logger:        logger.With("component", "chatworker"),
		handlers:      make(map[string]HandlerFunc),
	}
	d.handlers[model.JobKindChat] = d.handleChat
	return d, nil
}

// Handle decodes the envelope and runs the handler registered for its kind
// under the per-task timeout.
func (d *Dispatcher) Handle(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
	var payload model.JobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	h, ok := d.handlers[payload.Kind]
	if !ok {
		return nil, fmt.Errorf("no handler for payload kind %q", payload.Kind)
	}

	ctx, cancel := context.WithTimeout(ctx, d.taskTimeout)
	defer cancel()
	return h(ctx, &payload)
}

func (d *Dispatcher) handleChat(ctx context.Context, payload *model.JobPayload) (json.RawMessage, error) {
	if payload.Chat == nil {
		return nil, errors.New("chat payload is empty")
	}

	resp, err := d.provider.Complete(ctx, *payload.Chat)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	d.recordExchange(ctx, payload, resp)

	result, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("marshal chat result: %w", err)
	}
	return result, nil
}

// recordExchange persists the finished exchange as conversation history.
// History is best-effort on this path; the task result is the source of truth.
func (d *Dispatcher) recordExchange(
	ctx context.Context,
	payload *model.JobPayload,
	resp *model.ChatResponse,
) {
	if d.conversations == nil || payload.OwnerID == "" {
		return
	}

	now := time.Now().UTC()
	_, err := d.conversations.Create(ctx, &model.CreateConversationRequest{
		OwnerID: payload.OwnerID,
		Messages: []model.ChatMessage{
			{Role: model.ChatRoleUser, Content: payload.Chat.Message, Timestamp: now},
			{Role: model.ChatRoleAssistant, Content: resp.Message, Timestamp: resp.CreatedAt},
		},
	})
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to record conversation",
			"owner_id", payload.OwnerID, "error", err)
	}
}

// RunnerOptions groups dependencies for the Runner.
type RunnerOptions struct {
	Consumer      *redisq.Consumer            // Required: queue consumer
	Provider      core.CompletionProvider     // Required: completion backend
	Conversations core.ConversationRepository // Optional: exchange history
	Concurrency   int                         // Optional: worker goroutines, default 1
	TaskTimeout   time.Duration               // Optional: per-task cap, default 60s
	Logger        *slog.Logger                // Optional: structured logger
}

// Runner processes queued chat tasks with a pool of workers.
type Runner struct {
	consumer   *redisq.Consumer
	dispatcher *Dispatcher
	workers    int
	logger     *slog.Logger
}

// NewRunner constructs a Runner and registers the built-in handlers.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Consumer == nil {
		return nil, errors.New("queue consumer is required")
	}

	dispatcher, err := NewDispatcher(DispatcherOptions{
		Provider:      opts.Provider,
		Conversations: opts.Conversations,
		TaskTimeout:   opts.TaskTimeout,
		Logger:        opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	workers := opts.Concurrency
	if workers <= 0 {
		workers = 1
	}

	return &Runner{
		consumer:   opts.Consumer,
		dispatcher: dispatcher,
		workers:    workers,
		logger:     dispatcher.logger,
	}, nil
}

// Run starts worker goroutines and processes tasks until the context is
// cancelled. The first fatal error cancels all workers.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting chat worker", "workers", r.workers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	for range r.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.workerLoop(ctx); err != nil {
				// first error wins, cancels all workers
				select {
				case errCh <- err:
					cancel()
				default:
				}
			}
		}()
	}

	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return ctx.Err()
	}
}

func (r *Runner) workerLoop(ctx context.Context) error {
	for ctx.Err() == nil {
		task, err := r.consumer.Dequeue(ctx)
		switch {
		case err == nil:
			r.processTask(ctx, task)
		case errors.Is(err, redisq.ErrNoTask):
			// Blocking pop timed out; loop to observe cancellation.
		case ctx.Err() != nil:
			return nil
		default:
			return fmt.Errorf("dequeue task: %w", err)
		}
	}
	return ctx.Err()
}

func (r *Runner) processTask(ctx context.Context, task *redisq.Task) {
	start := time.Now()

	if err := r.consumer.MarkStarted(ctx, task.NativeID); err != nil {
		r.logger.ErrorContext(ctx, "mark started error",
			"native_id", task.NativeID, "error", err)
	}

	result, err := r.dispatcher.Handle(ctx, task.Payload)
	if err != nil {
		r.logger.ErrorContext(ctx, "task failed",
			"native_id", task.NativeID, "duration", time.Since(start), "error", err)
		if failErr := r.consumer.Fail(ctx, task.NativeID, err.Error()); failErr != nil {
			r.logger.ErrorContext(ctx, "record failure error",
				"native_id", task.NativeID, "error", failErr)
		}
		return
	}

	if err := r.consumer.Complete(ctx, task.NativeID, result); err != nil {
		r.logger.ErrorContext(ctx, "record completion error",
			"native_id", task.NativeID, "error", err)
		return
	}
	r.logger.InfoContext(ctx, "task completed",
		"native_id", task.NativeID, "duration", time.Since(start))
}
