// Package inproc implements a fire-and-forget job executor that runs work in
// goroutines of the current process. Task state lives only in memory: it does
// not survive a restart, and finished entries are dropped after the retention
// window, after which polls report the task as unknown. It exists for single
// process deployments and tests; redisq is the durable option.
package inproc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/promptline/promptline-api/internal/core"
	domainjob "github.com/promptline/promptline-api/internal/domain/job"
)

// Handler performs the actual work for one task.
type Handler func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)

// Config holds the executor options.
type Config struct {
	Handler Handler
	// Retention bounds how long finished task state is pollable.
	Retention time.Duration
	// RunTimeout caps a single task execution. Zero means no cap.
	RunTimeout time.Duration
	Logger     *slog.Logger
}

// DefaultRetention matches the durable executor's default window.
const DefaultRetention = time.Hour

type taskState struct {
	status domainjob.NativeStatus
	result json.RawMessage
	err    string
}

// Executor implements core.JobExecutor in-process.
type Executor struct {
	handler    Handler
	retention  time.Duration
	runTimeout time.Duration
	logger     *slog.Logger

	mu    sync.RWMutex
	tasks map[string]*taskState

	// wg tracks in-flight goroutines so Close can drain them.
	wg sync.WaitGroup
}

// New creates an Executor running cfg.Handler for every submitted task.
func New(cfg Config) (*Executor, error) {
	if cfg.Handler == nil {
		return nil, errors.New("handler is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	retention := cfg.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Executor{
		handler:    cfg.Handler,
		retention:  retention,
		runTimeout: cfg.RunTimeout,
		logger:     logger.With("component", "inproc_executor"),
		tasks:      make(map[string]*taskState),
	}, nil
}

// Submit starts the handler in a goroutine and returns immediately. The
// work runs detached from the caller's context.
func (e *Executor) Submit(_ context.Context, payload json.RawMessage) (core.ExecutorHandle, error) {
	id := uuid.NewString()

	e.mu.Lock()
	e.tasks[id] = &taskState{status: domainjob.NativeStatusQueued}
	e.mu.Unlock()

	e.wg.Add(1)
	go e.run(id, payload)

	return core.ExecutorHandle{NativeID: id}, nil
}

func (e *Executor) run(id string, payload json.RawMessage) {
	defer e.wg.Done()

	ctx := context.Background()
	if e.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.runTimeout)
		defer cancel()
	}

	e.setStatus(id, func(s *taskState) {
		s.status = domainjob.NativeStatusStarted
	})

	result, err := e.handler(ctx, payload)
	if err != nil {
		msg := err.Error()
		e.logger.ErrorContext(ctx, "task failed", "native_id", id, "error", err)
		e.setStatus(id, func(s *taskState) {
			s.status = domainjob.NativeStatusFailed
			s.err = msg
		})
	} else {
		// A successful task must carry a result; the reconciler persists it
		// as the record's write-once result field.
		if len(result) == 0 {
			result = json.RawMessage(`{}`)
		}
		e.setStatus(id, func(s *taskState) {
			s.status = domainjob.NativeStatusSucceeded
			s.result = result
		})
	}

	// Drop the finished entry once retention lapses.
	time.AfterFunc(e.retention, func() {
		e.mu.Lock()
		delete(e.tasks, id)
		e.mu.Unlock()
	})
}

func (e *Executor) setStatus(id string, update func(*taskState)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.tasks[id]; ok {
		update(s)
	}
}

// Poll reports the in-memory task state. Unknown ids, including entries
// already expired, map to the unknown status.
func (e *Executor) Poll(_ context.Context, nativeID string) (domainjob.PollResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s, ok := e.tasks[nativeID]
	if !ok {
		return domainjob.PollResult{Status: domainjob.NativeStatusUnknown}, nil
	}

	poll := domainjob.PollResult{Status: s.status, Error: s.err}
	if len(s.result) > 0 {
		poll.Result = append(json.RawMessage(nil), s.result...)
	}
	return poll, nil
}

// Close waits for in-flight tasks to finish, up to the context deadline.
func (e *Executor) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight tasks: %w", ctx.Err())
	}
}
