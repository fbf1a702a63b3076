// Package telegram wraps the Telegram Bot HTTP API for insbot.
//
// Only the small surface the bot needs is covered: sending plain, HTML, and
// keyboard messages, registering the webhook, and decoding webhook updates.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// DefaultAPIBaseURL is the production Telegram Bot API endpoint.
const DefaultAPIBaseURL = "https://api.telegram.org"

// DefaultHTTPTimeout bounds one Bot API request.
const DefaultHTTPTimeout = 10 * time.Second

// TelegramSender defines the outbound operations used by the messaging layer.
type TelegramSender interface {
	SendMessage(ctx context.Context, chatID string, text string) error
	SendLinkButton(ctx context.Context, chatID string, html string, label string, url string) error
	SendMenu(ctx context.Context, chatID string, text string, options []string) error
}

// Opts holds configuration options for the Telegram client.
type Opts struct {
	Token      string
	APIBaseURL string
	HTTPClient *http.Client
}

// Option defines a configuration option for the Telegram client.
type Option func(*Opts)

// WithToken sets the bot token.
func WithToken(token string) Option {
	return func(o *Opts) { o.Token = token }
}

// WithAPIBaseURL overrides the Bot API endpoint (used in tests).
func WithAPIBaseURL(url string) Option {
	return func(o *Opts) { o.APIBaseURL = url }
}

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = client }
}

// Client talks to the Telegram Bot API for one bot token.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a Telegram client. Falls back to the TELEGRAM_TOKEN
// environment variable if no token option is provided.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Opts{APIBaseURL: DefaultAPIBaseURL}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Token == "" {
		cfg.Token = os.Getenv("TELEGRAM_TOKEN")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram bot token must be provided")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	slog.Debug("telegram.NewClient: client configured", "api_base_url", cfg.APIBaseURL, "token_set", cfg.Token != "")
	return &Client{token: cfg.Token, baseURL: cfg.APIBaseURL, http: cfg.HTTPClient}, nil
}

// Wire types for the subset of the Bot API the bot consumes.

// Chat identifies a Telegram chat.
type Chat struct {
	ID int64 `json:"id"`
}

// IncomingMessage is a message inside a webhook update.
type IncomingMessage struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
	Date      int64  `json:"date"`
}

// Update is one webhook delivery.
type Update struct {
	UpdateID int64            `json:"update_id"`
	Message  *IncomingMessage `json:"message"`
}

// ParseUpdate decodes a webhook update payload.
func ParseUpdate(data []byte) (Update, error) {
	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		return Update{}, fmt.Errorf("failed to decode update: %w", err)
	}
	return u, nil
}

type inlineKeyboardButton struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type inlineKeyboardMarkup struct {
	InlineKeyboard [][]inlineKeyboardButton `json:"inline_keyboard"`
}

type keyboardButton struct {
	Text string `json:"text"`
}

type replyKeyboardMarkup struct {
	Keyboard       [][]keyboardButton `json:"keyboard"`
	ResizeKeyboard bool               `json:"resize_keyboard"`
}

type sendMessageRequest struct {
	ChatID      string      `json:"chat_id"`
	Text        string      `json:"text"`
	ParseMode   string      `json:"parse_mode,omitempty"`
	ReplyMarkup interface{} `json:"reply_markup,omitempty"`
}

type setWebhookRequest struct {
	URL string `json:"url"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage sends a plain text message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID string, text string) error {
	return c.call(ctx, "sendMessage", sendMessageRequest{ChatID: chatID, Text: text})
}

// SendLinkButton sends an HTML message with a single inline URL button.
func (c *Client) SendLinkButton(ctx context.Context, chatID string, html string, label string, url string) error {
	return c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:    chatID,
		Text:      html,
		ParseMode: "HTML",
		ReplyMarkup: inlineKeyboardMarkup{
			InlineKeyboard: [][]inlineKeyboardButton{{{Text: label, URL: url}}},
		},
	})
}

// SendMenu sends a message with a reply keyboard, one option per row. A
// chosen option arrives back as a plain text message equal to its label.
func (c *Client) SendMenu(ctx context.Context, chatID string, text string, options []string) error {
	keyboard := make([][]keyboardButton, 0, len(options))
	for _, opt := range options {
		keyboard = append(keyboard, []keyboardButton{{Text: opt}})
	}
	return c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: replyKeyboardMarkup{Keyboard: keyboard, ResizeKeyboard: true},
	})
}

// SetWebhook registers the webhook URL with Telegram.
func (c *Client) SetWebhook(ctx context.Context, url string) error {
	slog.Info("telegram.SetWebhook: registering webhook", "url", url)
	return c.call(ctx, "setWebhook", setWebhookRequest{URL: url})
}

// call posts one Bot API method. Errors never include the bot token.
func (c *Client) call(ctx context.Context, method string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("failed to decode %s response (status %d): %w", method, resp.StatusCode, err)
	}
	if !apiResp.OK {
		slog.Error("telegram.call: API returned error", "method", method, "status", resp.StatusCode, "description", apiResp.Description)
		return fmt.Errorf("%s failed: %s", method, apiResp.Description)
	}

	slog.Debug("telegram.call: API call succeeded", "method", method)
	return nil
}
