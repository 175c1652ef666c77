// Package redisq implements a durable job executor on top of a Redis list
// queue. Submitted work survives process restarts; results and status markers
// are kept only for a configurable retention window, after which polls report
// the native status as unknown.
package redisq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/promptline/promptline-api/internal/core"
	domainjob "github.com/promptline/promptline-api/internal/domain/job"
)

const (
	// DefaultQueue is the Redis list the executor pushes work onto.
	DefaultQueue = "promptline:chat:queue"
	// DefaultKeyPrefix prefixes per-task status, result and error keys.
	DefaultKeyPrefix = "promptline:task:"
	// DefaultRetention bounds how long results are readable after completion.
	DefaultRetention = time.Hour
)

// Config holds the executor options.
type Config struct {
	Client    redis.UniversalClient
	Queue     string
	KeyPrefix string
	Retention time.Duration
}

// Executor submits work to the queue and polls task state. The consuming side
// of the same queue lives in Consumer.
type Executor struct {
	client    redis.UniversalClient
	queue     string
	keyPrefix string
	retention time.Duration
}

// New creates an Executor. Zero config fields fall back to the defaults.
func New(cfg Config) (*Executor, error) {
	if cfg.Client == nil {
		return nil, errors.New("redis client is required")
	}
	e := &Executor{
		client:    cfg.Client,
		queue:     cfg.Queue,
		keyPrefix: cfg.KeyPrefix,
		retention: cfg.Retention,
	}
	if e.queue == "" {
		e.queue = DefaultQueue
	}
	if e.keyPrefix == "" {
		e.keyPrefix = DefaultKeyPrefix
	}
	if e.retention <= 0 {
		e.retention = DefaultRetention
	}
	return e, nil
}

// Task is the envelope pushed onto the queue.
type Task struct {
	NativeID   string          `json:"native_id"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Submit enqueues the payload and marks the task queued. The returned handle
// carries the executor-native task id.
func (e *Executor) Submit(ctx context.Context, payload json.RawMessage) (core.ExecutorHandle, error) {
	task := Task{
		NativeID:   uuid.NewString(),
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	}
	body, err := json.Marshal(task)
	if err != nil {
		return core.ExecutorHandle{}, fmt.Errorf("marshal task: %w", err)
	}

	_, err = e.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, e.statusKey(task.NativeID),
			string(domainjob.NativeStatusQueued), e.retention)
		pipe.LPush(ctx, e.queue, body)
		return nil
	})
	if err != nil {
		return core.ExecutorHandle{}, fmt.Errorf("enqueue task: %w", err)
	}
	return core.ExecutorHandle{NativeID: task.NativeID}, nil
}

// Poll reports the executor-native view of the task. A missing status key,
// whether never written or expired past retention, maps to unknown.
func (e *Executor) Poll(ctx context.Context, nativeID string) (domainjob.PollResult, error) {
	if nativeID == "" {
		return domainjob.PollResult{Status: domainjob.NativeStatusUnknown}, nil
	}

	raw, err := e.client.Get(ctx, e.statusKey(nativeID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainjob.PollResult{Status: domainjob.NativeStatusUnknown}, nil
		}
		return domainjob.PollResult{}, fmt.Errorf("poll status: %w", err)
	}

	status := domainjob.NativeStatus(raw)
	switch status {
	case domainjob.NativeStatusSucceeded:
		return e.pollResult(ctx, nativeID, status)
	case domainjob.NativeStatusFailed:
		return e.pollError(ctx, nativeID, status)
	case domainjob.NativeStatusQueued, domainjob.NativeStatusStarted:
		return domainjob.PollResult{Status: status}, nil
	default:
		return domainjob.PollResult{Status: domainjob.NativeStatusUnknown}, nil
	}
}

func (e *Executor) pollResult(
	ctx context.Context,
	nativeID string,
	status domainjob.NativeStatus,
) (domainjob.PollResult, error) {
	raw, err := e.client.Get(ctx, e.resultKey(nativeID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Status outlived the result payload; report retention loss.
			return domainjob.PollResult{Status: domainjob.NativeStatusUnknown}, nil
		}
		return domainjob.PollResult{}, fmt.Errorf("poll result: %w", err)
	}
	return domainjob.PollResult{Status: status, Result: json.RawMessage(raw)}, nil
}

func (e *Executor) pollError(
	ctx context.Context,
	nativeID string,
	status domainjob.NativeStatus,
) (domainjob.PollResult, error) {
	raw, err := e.client.Get(ctx, e.errorKey(nativeID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainjob.PollResult{Status: status}, nil
		}
		return domainjob.PollResult{}, fmt.Errorf("poll error: %w", err)
	}
	return domainjob.PollResult{Status: status, Error: raw}, nil
}

func (e *Executor) statusKey(id string) string { return e.keyPrefix + id + ":status" }
func (e *Executor) resultKey(id string) string { return e.keyPrefix + id + ":result" }
func (e *Executor) errorKey(id string) string  { return e.keyPrefix + id + ":error" }
