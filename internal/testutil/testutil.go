// Package testutil provides shared helpers for integration tests.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// TestTime returns a fixed time for deterministic tests.
func TestTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

// StringPtr returns a pointer to the given string value.
func StringPtr(s string) *string {
	return &s
}

// GetTestRedisAddr resolves the Redis address for integration tests, trying
// REDIS_ADDR first and then the usual local addresses.
func GetTestRedisAddr(t *testing.T) (string, bool) {
	t.Helper()

	candidates := []string{"localhost:6379", "redis:6379"}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		candidates = []string{addr}
	}

	for _, addr := range candidates {
		if pingRedis(addr) {
			return addr, true
		}
	}
	return "", false
}

func pingRedis(addr string) bool {
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer func() {
		_ = client.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}

// SetupTestRedis returns a Redis client on a flushed test database, skipping
// the test when no server is reachable. Set TEST_REQUIRE_REDIS to fail
// instead of skipping.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr, ok := GetTestRedisAddr(t)
	if !ok {
		if os.Getenv("TEST_REQUIRE_REDIS") != "" {
			t.Fatal("Redis not available for testing")
		}
		t.Skip("Redis not available for testing")
	}

	db := 1
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	t.Cleanup(func() {
		_ = client.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing at %s: %v", addr, err)
	}
	client.FlushDB(ctx)

	return client
}
