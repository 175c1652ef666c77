// Package openai implements the completion provider port against the OpenAI
// chat completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/promptline/promptline-api/internal/apperrors"
	"github.com/promptline/promptline-api/internal/core"
	"github.com/promptline/promptline-api/internal/domain/model"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// maxResponseBytes bounds how much of a provider response is read.
const maxResponseBytes = 1 << 20

// Config holds the client options.
type Config struct {
	APIKey  string
	BaseURL string
	// Client is optional and defaults to a client with a 30s timeout.
	Client *http.Client
}

// Client calls the OpenAI chat completions endpoint.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ core.CompletionProvider = (*Client)(nil)

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{apiKey: cfg.APIKey, baseURL: baseURL, client: hc}, nil
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
	Usage model.TokenUsage `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends the chat request and maps the provider's reply onto the
// domain response. Provider-side throttling surfaces as a rate-limited error
// so callers can relay the condition instead of masking it as internal.
func (c *Client) Complete(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	body, err := json.Marshal(completionRequest{
		Model:       req.Model,
		Messages:    []wireMessage{{Role: string(model.ChatRoleUser), Content: req.Message}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUpstream, "openai request failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUpstream, "read openai response")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, apperrors.New(apperrors.CodeRateLimited,
			"rate limit exceeded, please try again later")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.Newf(apperrors.CodeUpstream,
			"openai api error: %s", errorMessage(respBody, resp.StatusCode))
	}

	var parsed completionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUpstream, "decode openai response")
	}
	if len(parsed.Choices) == 0 {
		return nil, apperrors.New(apperrors.CodeUpstream, "openai response has no choices")
	}

	return &model.ChatResponse{
		ID:        parsed.ID,
		Message:   parsed.Choices[0].Message.Content,
		Model:     parsed.Model,
		Usage:     parsed.Usage,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func errorMessage(body []byte, status int) string {
	var parsed apiError
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return fmt.Sprintf("status %d", status)
}
