// Package huggingface implements the completion provider port against the
// HuggingFace Inference API.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/promptline/promptline-api/internal/apperrors"
	"github.com/promptline/promptline-api/internal/core"
	"github.com/promptline/promptline-api/internal/domain/model"
)

// DefaultBaseURL is the hosted inference endpoint.
const DefaultBaseURL = "https://api-inference.huggingface.co/models"

// DefaultModel is used when the request does not name a model the inference
// API knows.
const DefaultModel = "microsoft/DialoGPT-medium"

const maxResponseBytes = 1 << 20

// Config holds the client options.
type Config struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// Client calls the HuggingFace text generation endpoint.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ core.CompletionProvider = (*Client)(nil)

// New creates a Client from cfg. The API key is optional; public models can
// be queried anonymously at a lower rate.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{apiKey: cfg.APIKey, baseURL: baseURL, client: hc}
}

type generateRequest struct {
	Inputs string `json:"inputs"`
}

type generateResult struct {
	GeneratedText string `json:"generated_text"`
}

// Complete sends the prompt to the inference API. The API returns a list of
// generated candidates; the first one becomes the reply.
func (c *Client) Complete(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	modelName := req.Model
	if modelName == "" || modelName == "gpt-3.5-turbo" {
		modelName = DefaultModel
	}

	body, err := json.Marshal(generateRequest{Inputs: req.Message})
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/"+modelName, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.Wrap(err, apperrors.CodeUpstream, "request timeout")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeUpstream, "huggingface request failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUpstream, "read huggingface response")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, apperrors.New(apperrors.CodeRateLimited,
			"rate limit exceeded, please try again later")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.Newf(apperrors.CodeUpstream,
			"huggingface api error: status %d: %s", resp.StatusCode, string(respBody))
	}

	var results []generateResult
	if err := json.Unmarshal(respBody, &results); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUpstream, "decode huggingface response")
	}
	if len(results) == 0 {
		return nil, apperrors.New(apperrors.CodeUpstream, "huggingface response is empty")
	}

	return &model.ChatResponse{
		ID:        uuid.NewString(),
		Message:   results[0].GeneratedText,
		Model:     modelName,
		CreatedAt: time.Now().UTC(),
	}, nil
}
