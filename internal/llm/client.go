// Package llm wraps the OpenAI chat completions API with the request
// timeout and bounded retry policy every network-bound generation call
// in the pipeline goes through.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type Client struct {
	api        *openai.Client
	model      string
	timeout    time.Duration
	maxRetries int
	logger     *slog.Logger
}

type Options struct {
	Timeout    time.Duration // per attempt; 0 means 120s
	MaxRetries int           // retries after the first attempt
}

func NewClient(api *openai.Client, model string, opts Options, logger *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	return &Client{
		api:        api,
		model:      model,
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
		logger:     logger,
	}
}

// NewAPI builds the underlying OpenAI client. baseURL is optional and
// exists for tests and OpenAI-compatible gateways.
func NewAPI(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// Complete sends a system+user prompt pair and returns the generated text.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int, temperature float32) (string, error) {
	return c.complete(ctx, system, user, maxTokens, temperature, nil)
}

// CompleteJSON is Complete with the JSON-object response format set, for
// calls whose output is parsed rather than displayed.
func (c *Client) CompleteJSON(ctx context.Context, system, user string, maxTokens int, temperature float32) (string, error) {
	format := &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}
	return c.complete(ctx, system, user, maxTokens, temperature, format)
}

func (c *Client) complete(ctx context.Context, system, user string, maxTokens int, temperature float32, format *openai.ChatCompletionResponseFormat) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:      maxTokens,
		Temperature:    temperature,
		ResponseFormat: format,
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			c.logger.Warn("retrying completion", "attempt", attempt, "backoff", backoff, "error", lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.api.CreateChatCompletion(attemptCtx, req)
		cancel()

		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("completion: empty response")
			}
			return resp.Choices[0].Message.Content, nil
		}

		lastErr = err
		if !retryable(err) {
			break
		}
	}

	return "", fmt.Errorf("completion: %w", lastErr)
}

// retryable reports whether err is worth another attempt: rate limits,
// server-side failures and transport errors. Client errors (bad request,
// bad key) are not.
func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
