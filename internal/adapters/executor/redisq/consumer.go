package redisq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainjob "github.com/promptline/promptline-api/internal/domain/job"
)

// Consumer is the worker-side view of the queue: it pops task envelopes and
// records their progress under the same keys the Executor polls.
type Consumer struct {
	client    redis.UniversalClient
	queue     string
	keyPrefix string
	retention time.Duration
	popWait   time.Duration
}

// NewConsumer creates a Consumer matching the Executor built from cfg.
func NewConsumer(cfg Config) (*Consumer, error) {
	if cfg.Client == nil {
		return nil, errors.New("redis client is required")
	}
	c := &Consumer{
		client:    cfg.Client,
		queue:     cfg.Queue,
		keyPrefix: cfg.KeyPrefix,
		retention: cfg.Retention,
		popWait:   5 * time.Second,
	}
	if c.queue == "" {
		c.queue = DefaultQueue
	}
	if c.keyPrefix == "" {
		c.keyPrefix = DefaultKeyPrefix
	}
	if c.retention <= 0 {
		c.retention = DefaultRetention
	}
	return c, nil
}

// ErrNoTask is returned by Dequeue when the blocking pop times out with the
// queue still empty.
var ErrNoTask = errors.New("no task available")

// Dequeue blocks up to the pop wait for the next task envelope.
func (c *Consumer) Dequeue(ctx context.Context) (*Task, error) {
	vals, err := c.client.BRPop(ctx, c.popWait, c.queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoTask
		}
		return nil, fmt.Errorf("pop task: %w", err)
	}
	// BRPOP returns [queue, value].
	if len(vals) < 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of %d elements", len(vals))
	}

	var task Task
	if err := json.Unmarshal([]byte(vals[1]), &task); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return &task, nil
}

// MarkStarted records that a worker picked the task up.
func (c *Consumer) MarkStarted(ctx context.Context, nativeID string) error {
	err := c.client.Set(ctx, c.statusKey(nativeID),
		string(domainjob.NativeStatusStarted), c.retention).Err()
	if err != nil {
		return fmt.Errorf("mark started: %w", err)
	}
	return nil
}

// Complete records a successful outcome and its result document. Both keys
// expire after the retention window.
func (c *Consumer) Complete(ctx context.Context, nativeID string, result json.RawMessage) error {
	// A successful task must carry a result; the reconciler persists it as
	// the record's write-once result field.
	if len(result) == 0 {
		result = json.RawMessage(`{}`)
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.resultKey(nativeID), []byte(result), c.retention)
		pipe.Set(ctx, c.statusKey(nativeID),
			string(domainjob.NativeStatusSucceeded), c.retention)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record completion: %w", err)
	}
	return nil
}

// Fail records a failed outcome with the given message.
func (c *Consumer) Fail(ctx context.Context, nativeID, message string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.errorKey(nativeID), message, c.retention)
		pipe.Set(ctx, c.statusKey(nativeID),
			string(domainjob.NativeStatusFailed), c.retention)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record failure: %w", err)
	}
	return nil
}

func (c *Consumer) statusKey(id string) string { return c.keyPrefix + id + ":status" }
func (c *Consumer) resultKey(id string) string { return c.keyPrefix + id + ":result" }
func (c *Consumer) errorKey(id string) string  { return c.keyPrefix + id + ":error" }
