package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptline/promptline-api/internal/testutil"
)

func TestRateLimiterAllow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)
	limiter, err := NewRateLimiter(RateLimiterConfig{
		Client: client,
		Limit:  3,
		Window: time.Minute,
	})
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ok, allowErr := limiter.Allow(ctx, "user-1")
		require.NoError(t, allowErr)
		assert.True(t, ok, "request %d should be allowed", i+1)
	}

	ok, err := limiter.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok, "request over the limit should be denied")

	// Independent keys do not share the counter.
	ok, err = limiter.Allow(ctx, "user-2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiterConfigValidation(t *testing.T) {
	_, err := NewRateLimiter(RateLimiterConfig{})
	require.Error(t, err)
}

func TestRateLimiterEmptyKey(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)
	limiter, err := NewRateLimiter(RateLimiterConfig{Client: client, Limit: 1})
	require.NoError(t, err)

	_, err = limiter.Allow(context.Background(), "")
	require.Error(t, err)
}
