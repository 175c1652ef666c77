package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptline/promptline-api/internal/apperrors"
	"github.com/promptline/promptline-api/internal/domain/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(Config{APIKey: "hf-key", BaseURL: server.URL})
}

func TestComplete(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+DefaultModel, r.URL.Path)
		assert.Equal(t, "Bearer hf-key", r.Header.Get("Authorization"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Inputs)

		_, _ = w.Write([]byte(`[{"generated_text": "hi from hf"}]`))
	})

	resp, err := client.Complete(context.Background(), model.ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hi from hf", resp.Message)
	assert.Equal(t, DefaultModel, resp.Model)
	assert.NotEmpty(t, resp.ID)
}

func TestCompleteCustomModel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/google/flan-t5-base", r.URL.Path)
		_, _ = w.Write([]byte(`[{"generated_text": "ok"}]`))
	})

	resp, err := client.Complete(context.Background(), model.ChatRequest{
		Message: "hello",
		Model:   "google/flan-t5-base",
	})
	require.NoError(t, err)
	assert.Equal(t, "google/flan-t5-base", resp.Model)
}

func TestCompleteRateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Complete(context.Background(), model.ChatRequest{Message: "hello"})
	require.Error(t, err)
	assert.True(t, apperrors.IsRateLimited(err))
}

func TestCompleteUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": "model loading"}`))
	})

	_, err := client.Complete(context.Background(), model.ChatRequest{Message: "hello"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUpstream, apperrors.GetCode(err))
}

func TestCompleteEmptyResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := client.Complete(context.Background(), model.ChatRequest{Message: "hello"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUpstream, apperrors.GetCode(err))
}
