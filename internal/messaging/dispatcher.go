package messaging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/straxovka-go/insbot/internal/catalog"
	"github.com/straxovka-go/insbot/internal/models"
)

// StartCommand is the transport command that requests the service menu.
const StartCommand = "/start"

// MessageHandler produces one outbound action for one inbound message.
// sentAt is the transport's timestamp for the message.
type MessageHandler interface {
	HandleMessage(ctx context.Context, conversationID, rawText string, sentAt time.Time) models.Action
}

// Dispatcher consumes incoming message events from a messaging service and
// routes them to the dialogue orchestrator. Each message is handled in its
// own goroutine; ordering within one conversation is enforced by the
// conversation store's per-id lock, so separate conversations never wait on
// each other.
type Dispatcher struct {
	svc     Service
	handler MessageHandler
	catalog *catalog.Catalog
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher with the given service and handler.
func NewDispatcher(svc Service, handler MessageHandler, cat *catalog.Catalog) *Dispatcher {
	return &Dispatcher{svc: svc, handler: handler, catalog: cat}
}

// Start begins consuming incoming messages until the context is cancelled or
// the service's response channel closes.
func (d *Dispatcher) Start(ctx context.Context) {
	slog.Debug("Dispatcher.Start: consuming responses")
	d.wg.Add(1)
	go d.loop(ctx)
}

// Wait blocks until the consume loop and all in-flight handlers finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) loop(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			slog.Info("Dispatcher.loop: context cancelled, stopping")
			return
		case resp, ok := <-d.svc.Responses():
			if !ok {
				slog.Info("Dispatcher.loop: response channel closed, stopping")
				return
			}
			d.wg.Add(1)
			go func(resp models.Response) {
				defer d.wg.Done()
				d.dispatch(ctx, resp)
			}(resp)
		}
	}
}

// dispatch handles one inbound message end to end.
func (d *Dispatcher) dispatch(ctx context.Context, resp models.Response) {
	messageID := uuid.NewString()
	slog.Debug("Dispatcher.dispatch: handling message",
		"messageID", messageID,
		"conversationID", resp.From,
		"bodyLength", len(resp.Body))

	conversationID, err := d.svc.ValidateAndCanonicalizeRecipient(resp.From)
	if err != nil {
		slog.Warn("Dispatcher.dispatch: invalid conversation id, message dropped", "error", err, "messageID", messageID)
		return
	}

	// The menu command is a transport concern handled before classification.
	if strings.TrimSpace(resp.Body) == StartCommand {
		if err := d.svc.SendMenu(ctx, conversationID, d.catalog.Replies.Greeting, d.catalog.ServiceNames()); err != nil {
			slog.Error("Dispatcher.dispatch: failed to send service menu", "error", err, "messageID", messageID, "conversationID", conversationID)
		}
		return
	}

	sentAt := time.Now()
	if resp.Time > 0 {
		sentAt = time.Unix(resp.Time, 0)
	}
	action := d.handler.HandleMessage(ctx, conversationID, resp.Body, sentAt)
	d.deliver(ctx, conversationID, action, messageID)
}

// deliver renders one outbound action through the messaging service.
func (d *Dispatcher) deliver(ctx context.Context, to string, action models.Action, messageID string) {
	if !models.IsValidActionType(action.Type) {
		slog.Error("Dispatcher.deliver: unknown action type", "type", action.Type, "messageID", messageID)
		return
	}
	var err error
	switch action.Type {
	case models.ActionServiceLink:
		err = d.svc.SendLinkButton(ctx, to, action.Text, d.catalog.Replies.LinkButtonLabel, action.URL)
	default:
		err = d.svc.SendMessage(ctx, to, action.Text)
	}
	if err != nil {
		slog.Error("Dispatcher.deliver: failed to send reply",
			"error", err,
			"messageID", messageID,
			"conversationID", to,
			"actionType", action.Type)
		return
	}
	slog.Info("Dispatcher.deliver: reply sent", "messageID", messageID, "conversationID", to, "actionType", action.Type)
}
