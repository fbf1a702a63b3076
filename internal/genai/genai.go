// Package genai wraps the OpenAI-compatible chat completion API used to
// generate assistant replies.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/straxovka-go/insbot/internal/models"
)

// Default decoding configuration matching the production deployment.
const (
	// DefaultBaseURL points at OpenRouter's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// DefaultModel is the completion model requested through OpenRouter.
	DefaultModel = "openai/gpt-3.5-turbo"
	// DefaultTemperature is the sampling temperature for replies.
	DefaultTemperature = 0.5
	// DefaultMaxTokens caps the length of a generated reply.
	DefaultMaxTokens = 200
	// DefaultTimeout bounds one completion call; expiry is treated as a
	// provider failure.
	DefaultTimeout = 30 * time.Second
)

// ClientInterface defines the completion operations needed by the dialogue
// orchestrator.
type ClientInterface interface {
	// GenerateWithMessages returns one assistant reply for an ordered list
	// of role-tagged turns.
	GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)
}

// completionService defines the minimal chat completion surface, allowing a
// mock in tests.
type completionService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Opts holds configuration options for the completion client.
type Opts struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration
}

// Option defines a configuration option for the completion client.
type Option func(*Opts)

// WithAPIKey sets the provider API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithBaseURL sets the provider base URL.
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithModel sets the completion model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// WithTimeout sets the per-call timeout. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// Client wraps the chat completion service with a fixed decoding
// configuration.
type Client struct {
	completions completionService
	model       string
	temperature float64
	maxTokens   int64
	timeout     time.Duration
}

// NewClient initializes a completion client. Falls back to the
// OPENROUTER_API_KEY environment variable when no key option is given.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Opts{
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY not set")
	}

	slog.Debug("genai.NewClient: completion client configured", "base_url", cfg.BaseURL, "model", cfg.Model, "timeout", cfg.Timeout)
	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey), option.WithBaseURL(cfg.BaseURL))
	return &Client{
		completions: &cli.Chat.Completions,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
	}, nil
}

// GenerateWithMessages generates one assistant reply from the given ordered
// message list. Empty or malformed provider payloads are reported as errors.
func (c *Client) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	slog.Debug("genai.GenerateWithMessages: invoking completion", "model", c.model, "messageCount", len(messages))

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(c.maxTokens),
	})
	if err != nil {
		slog.Error("genai.GenerateWithMessages: completion request failed", "error", err, "model", c.model)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Error("genai.GenerateWithMessages: provider returned no choices", "model", c.model)
		return "", fmt.Errorf("no choices returned")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		slog.Error("genai.GenerateWithMessages: provider returned empty content", "model", c.model)
		return "", models.ErrEmptyCompletion
	}

	slog.Debug("genai.GenerateWithMessages: reply generated", "responseLength", len(content))
	return content, nil
}
