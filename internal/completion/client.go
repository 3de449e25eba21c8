// Package completion sends prompts to an OpenAI-compatible chat completion
// provider (OpenRouter by default) and returns the raw reply text.
package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/suykerbuyk/devflow/internal/config"
	"github.com/suykerbuyk/devflow/internal/logging"
	"github.com/suykerbuyk/devflow/internal/sanitize"
)

// Completer turns a free-text prompt into a raw reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client is a Completer backed by a chat completions endpoint.
type Client struct {
	client    openai.Client
	model     string
	maxTokens int
	apiKey    string
	logger    *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a Client from provider config. The API key is read from the
// environment variable the config names.
func New(cfg config.ProviderConfig, opts ...Option) (*Client, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set %s", ErrNoAPIKey, cfg.APIKeyEnv)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout() > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.Timeout()))
	}
	// OpenRouter attribution headers.
	if cfg.SiteURL != "" {
		reqOpts = append(reqOpts, option.WithHeader("HTTP-Referer", cfg.SiteURL))
	}
	if cfg.SiteName != "" {
		reqOpts = append(reqOpts, option.WithHeader("X-Title", cfg.SiteName))
	}

	c := &Client{
		client:    openai.NewClient(reqOpts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		apiKey:    apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger)
	return c, nil
}

// Model returns the model identifier requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// Complete sends prompt as a single user message and returns the first
// choice's content unmodified.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.maxTokens))
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", c.wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &Error{
			Status:  http.StatusInternalServerError,
			Message: "no completion generated",
			Details: sanitize.RedactKey(resp.RawJSON(), c.apiKey),
		}
	}

	c.logger.Debug("completion finished",
		zap.String("model", c.model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)))

	return resp.Choices[0].Message.Content, nil
}

func (c *Client) wrapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		c.logger.Warn("provider rejected completion",
			zap.String("model", c.model),
			zap.Int("status", apiErr.StatusCode))
		return &Error{
			Status:  apiErr.StatusCode,
			Message: "provider returned an error",
			Details: sanitize.RedactKey(apiErr.RawJSON(), c.apiKey),
			Err:     err,
		}
	}

	c.logger.Warn("completion request failed", zap.Error(err))
	return &Error{
		Status:  http.StatusInternalServerError,
		Message: "completion request failed",
		Details: sanitize.RedactKey(err.Error(), c.apiKey),
		Err:     err,
	}
}
