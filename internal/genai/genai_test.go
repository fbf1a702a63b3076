package genai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/straxovka-go/insbot/internal/models"
)

// mockCompletions implements completionService for tests.
type mockCompletions struct {
	resp      *openai.ChatCompletion
	err       error
	gotParams openai.ChatCompletionNewParams
	calls     int
}

func (m *mockCompletions) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.calls++
	m.gotParams = body
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func newTestClient(mock *mockCompletions) *Client {
	return &Client{
		completions: mock,
		model:       DefaultModel,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
		timeout:     time.Second,
	}
}

func TestGenerateWithMessages_Success(t *testing.T) {
	mock := &mockCompletions{
		resp: &openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "  Ответ про полис.  "}},
			},
		},
	}
	c := newTestClient(mock)

	out, err := c.GenerateWithMessages(context.Background(), []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("system"),
		openai.UserMessage("вопрос"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Ответ про полис." {
		t.Errorf("expected trimmed content, got %q", out)
	}
	if mock.gotParams.Model != openai.ChatModel(DefaultModel) {
		t.Errorf("expected model %s, got %s", DefaultModel, mock.gotParams.Model)
	}
	if len(mock.gotParams.Messages) != 2 {
		t.Errorf("expected 2 messages forwarded, got %d", len(mock.gotParams.Messages))
	}
}

func TestGenerateWithMessages_ProviderError(t *testing.T) {
	mock := &mockCompletions{err: fmt.Errorf("connection refused")}
	c := newTestClient(mock)

	if _, err := c.GenerateWithMessages(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestGenerateWithMessages_NoChoices(t *testing.T) {
	mock := &mockCompletions{resp: &openai.ChatCompletion{}}
	c := newTestClient(mock)

	if _, err := c.GenerateWithMessages(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestGenerateWithMessages_EmptyContent(t *testing.T) {
	mock := &mockCompletions{
		resp: &openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "   "}},
			},
		},
	}
	c := newTestClient(mock)

	_, err := c.GenerateWithMessages(context.Background(), nil)
	if !errors.Is(err, models.ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	if _, err := NewClient(); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestNewClient_WithOptions(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	c, err := NewClient(WithAPIKey("test-key"), WithModel("openai/gpt-4o-mini"), WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.model != "openai/gpt-4o-mini" {
		t.Errorf("expected model override, got %s", c.model)
	}
	if c.timeout != 5*time.Second {
		t.Errorf("expected timeout override, got %s", c.timeout)
	}
}
