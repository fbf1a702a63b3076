package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/straxovka-go/insbot/internal/models"
)

// DefaultChannelBufferSize defines the buffer size for the response channel.
const DefaultChannelBufferSize = 100

// Service implements messaging.Service over the Telegram Bot API. Incoming
// webhook updates are decoded and fed into the Responses channel; the
// webhook HTTP handler is mounted by the API server.
type Service struct {
	client     TelegramSender
	tgClient   *Client // full client, needed for webhook registration
	webhookURL string
	responses  chan models.Response
	stopOnce   sync.Once
}

// NewService creates a Telegram messaging service wrapping the given sender.
// webhookURL is registered with Telegram on Start; empty skips registration
// (useful when the webhook is managed externally or in tests).
func NewService(client TelegramSender, webhookURL string) *Service {
	s := &Service{
		client:     client,
		webhookURL: webhookURL,
		responses:  make(chan models.Response, DefaultChannelBufferSize),
	}
	if tgClient, ok := client.(*Client); ok {
		s.tgClient = tgClient
		slog.Debug("telegram.NewService: created with full client for webhook registration")
	} else {
		slog.Debug("telegram.NewService: created with interface client (likely mock)")
	}
	return s
}

// ValidateAndCanonicalizeRecipient checks that the recipient is a Telegram
// chat id: a base-10 integer, negative for group chats.
func (s *Service) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	trimmed := strings.TrimSpace(recipient)
	if trimmed == "" {
		return "", models.ErrEmptyRecipient
	}
	if _, err := strconv.ParseInt(trimmed, 10, 64); err != nil {
		return "", fmt.Errorf("invalid chat id %q: %w", recipient, err)
	}
	return trimmed, nil
}

// SendMessage sends a plain text message.
func (s *Service) SendMessage(ctx context.Context, to string, body string) error {
	slog.Debug("telegram.Service.SendMessage: sending", "to", to, "bodyLength", len(body))
	if err := s.client.SendMessage(ctx, to, body); err != nil {
		slog.Error("telegram.Service.SendMessage: send failed", "error", err, "to", to)
		return err
	}
	return nil
}

// SendLinkButton sends an HTML message with one inline URL button.
func (s *Service) SendLinkButton(ctx context.Context, to string, body string, label string, url string) error {
	slog.Debug("telegram.Service.SendLinkButton: sending", "to", to, "url", url)
	if err := s.client.SendLinkButton(ctx, to, body, label, url); err != nil {
		slog.Error("telegram.Service.SendLinkButton: send failed", "error", err, "to", to)
		return err
	}
	return nil
}

// SendMenu sends a message with a reply keyboard of options.
func (s *Service) SendMenu(ctx context.Context, to string, body string, options []string) error {
	slog.Debug("telegram.Service.SendMenu: sending", "to", to, "options", len(options))
	if err := s.client.SendMenu(ctx, to, body, options); err != nil {
		slog.Error("telegram.Service.SendMenu: send failed", "error", err, "to", to)
		return err
	}
	return nil
}

// Start registers the webhook with Telegram when a webhook URL and full
// client are available.
func (s *Service) Start(ctx context.Context) error {
	if s.tgClient == nil || s.webhookURL == "" {
		slog.Debug("telegram.Service.Start: skipping webhook registration", "hasClient", s.tgClient != nil, "webhookURL_set", s.webhookURL != "")
		return nil
	}
	if err := s.tgClient.SetWebhook(ctx, s.webhookURL); err != nil {
		return fmt.Errorf("failed to register webhook: %w", err)
	}
	slog.Info("telegram.Service.Start: webhook registered", "url", s.webhookURL)
	return nil
}

// Stop closes the response channel.
func (s *Service) Stop() error {
	s.stopOnce.Do(func() {
		close(s.responses)
		slog.Info("telegram.Service.Stop: stopped and response channel closed")
	})
	return nil
}

// Responses returns the channel of incoming message events.
func (s *Service) Responses() <-chan models.Response {
	return s.responses
}

// WebhookHandler returns the HTTP handler that receives Telegram updates.
// It always answers 200 for well-formed requests: Telegram redelivers
// updates on any other status, and redelivery of a handled message would
// duplicate conversation turns.
func (s *Service) WebhookHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			defer r.Body.Close()
		}
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			slog.Warn("telegram.WebhookHandler: method not allowed", "method", r.Method)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			slog.Warn("telegram.WebhookHandler: failed to read body", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		update, err := ParseUpdate(body)
		if err != nil {
			slog.Warn("telegram.WebhookHandler: malformed update", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		// Non-text updates (stickers, edits, joins) are acknowledged and
		// ignored.
		if update.Message == nil || update.Message.Text == "" {
			slog.Debug("telegram.WebhookHandler: ignoring non-text update", "updateID", update.UpdateID)
			w.WriteHeader(http.StatusOK)
			return
		}

		resp := models.Response{
			From: strconv.FormatInt(update.Message.Chat.ID, 10),
			Body: update.Message.Text,
			Time: update.Message.Date,
		}
		select {
		case s.responses <- resp:
			slog.Debug("telegram.WebhookHandler: update queued", "updateID", update.UpdateID, "from", resp.From)
		default:
			slog.Error("telegram.WebhookHandler: response channel full, dropping update", "updateID", update.UpdateID, "from", resp.From)
		}
		w.WriteHeader(http.StatusOK)
	})
}
