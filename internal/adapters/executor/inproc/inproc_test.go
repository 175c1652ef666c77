package inproc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainjob "github.com/promptline/promptline-api/internal/domain/job"
)

func TestSubmitSucceeded(t *testing.T) {
	exec, err := New(Config{
		Handler: func(_ context.Context, payload json.RawMessage) (json.RawMessage, error) {
			return json.RawMessage(`{"echo":` + string(payload) + `}`), nil
		},
	})
	require.NoError(t, err)

	h, err := exec.Submit(context.Background(), json.RawMessage(`{"prompt":"hi"}`))
	require.NoError(t, err)
	require.NotEmpty(t, h.NativeID)

	require.Eventually(t, func() bool {
		poll, pollErr := exec.Poll(context.Background(), h.NativeID)
		return pollErr == nil && poll.Status == domainjob.NativeStatusSucceeded
	}, time.Second, 5*time.Millisecond)

	poll, err := exec.Poll(context.Background(), h.NativeID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"echo":{"prompt":"hi"}}`, string(poll.Result))
	assert.Empty(t, poll.Error)
}

func TestSubmitSucceededNilResult(t *testing.T) {
	exec, err := New(Config{
		Handler: func(context.Context, json.RawMessage) (json.RawMessage, error) {
			return nil, nil
		},
	})
	require.NoError(t, err)

	h, err := exec.Submit(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		poll, pollErr := exec.Poll(context.Background(), h.NativeID)
		return pollErr == nil && poll.Status == domainjob.NativeStatusSucceeded
	}, time.Second, 5*time.Millisecond)

	// Success always carries a result document, even from a handler that
	// returned none.
	poll, err := exec.Poll(context.Background(), h.NativeID)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(poll.Result))
}

func TestSubmitFailed(t *testing.T) {
	exec, err := New(Config{
		Handler: func(context.Context, json.RawMessage) (json.RawMessage, error) {
			return nil, errors.New("provider unavailable")
		},
	})
	require.NoError(t, err)

	h, err := exec.Submit(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		poll, pollErr := exec.Poll(context.Background(), h.NativeID)
		return pollErr == nil && poll.Status == domainjob.NativeStatusFailed
	}, time.Second, 5*time.Millisecond)

	poll, err := exec.Poll(context.Background(), h.NativeID)
	require.NoError(t, err)
	assert.Equal(t, "provider unavailable", poll.Error)
}

func TestPollUnknown(t *testing.T) {
	exec, err := New(Config{
		Handler: func(context.Context, json.RawMessage) (json.RawMessage, error) {
			return nil, nil
		},
	})
	require.NoError(t, err)

	poll, err := exec.Poll(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, domainjob.NativeStatusUnknown, poll.Status)
}

func TestRetentionExpiry(t *testing.T) {
	exec, err := New(Config{
		Handler: func(context.Context, json.RawMessage) (json.RawMessage, error) {
			return json.RawMessage(`{}`), nil
		},
		Retention: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	h, err := exec.Submit(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		poll, pollErr := exec.Poll(context.Background(), h.NativeID)
		return pollErr == nil && poll.Status == domainjob.NativeStatusUnknown
	}, time.Second, 5*time.Millisecond)
}

func TestClose(t *testing.T) {
	release := make(chan struct{})
	exec, err := New(Config{
		Handler: func(context.Context, json.RawMessage) (json.RawMessage, error) {
			<-release
			return json.RawMessage(`{}`), nil
		},
	})
	require.NoError(t, err)

	_, err = exec.Submit(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, exec.Close(ctx))

	close(release)
	require.NoError(t, exec.Close(context.Background()))
}

func TestNewRequiresHandler(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}
