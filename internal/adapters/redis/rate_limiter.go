// Package redis provides Redis-backed adapters shared by the HTTP layer.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/promptline/promptline-api/internal/core"
)

// RateLimiterConfig holds the fixed-window limiter options.
type RateLimiterConfig struct {
	Client redis.UniversalClient
	// Limit is the number of requests allowed per window.
	Limit int
	// Window is the fixed window size.
	Window time.Duration
	// KeyPrefix namespaces the counter keys.
	KeyPrefix string
}

// RateLimiter implements a fixed-window counter per key. The first request in
// a window creates the counter with the window TTL; once the counter passes
// the limit, requests are denied until the key expires.
type RateLimiter struct {
	client    redis.UniversalClient
	limit     int
	window    time.Duration
	keyPrefix string
}

var _ core.RateLimiter = (*RateLimiter)(nil)

// NewRateLimiter creates a RateLimiter from cfg.
func NewRateLimiter(cfg RateLimiterConfig) (*RateLimiter, error) {
	if cfg.Client == nil {
		return nil, errors.New("redis client is required")
	}
	if cfg.Limit <= 0 {
		return nil, errors.New("limit must be positive")
	}
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "promptline:ratelimit:"
	}
	return &RateLimiter{
		client:    cfg.Client,
		limit:     cfg.Limit,
		window:    window,
		keyPrefix: prefix,
	}, nil
}

// Allow reports whether the key may perform another request in the current
// window. INCR and EXPIRE run in one pipeline so a counter can never be left
// without a TTL.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("key cannot be empty")
	}

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, l.keyPrefix+key)
		pipe.Expire(ctx, l.keyPrefix+key, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}

	return incr.Val() <= int64(l.limit), nil
}
