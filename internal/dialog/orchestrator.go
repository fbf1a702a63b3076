// Package dialog implements the per-message dialogue orchestrator: the entry
// point that turns one inbound text message into exactly one outbound action.
package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"

	"github.com/straxovka-go/insbot/internal/catalog"
	"github.com/straxovka-go/insbot/internal/classify"
	"github.com/straxovka-go/insbot/internal/convo"
	"github.com/straxovka-go/insbot/internal/genai"
	"github.com/straxovka-go/insbot/internal/models"
)

// Orchestrator routes classified messages to the catalog, the canned reply
// texts, or the completion provider.
type Orchestrator struct {
	catalog     *catalog.Catalog
	store       *convo.Store
	prompts     *convo.Builder
	genaiClient genai.ClientInterface
}

// NewOrchestrator creates an orchestrator with its collaborators.
func NewOrchestrator(cat *catalog.Catalog, store *convo.Store, prompts *convo.Builder, genaiClient genai.ClientInterface) *Orchestrator {
	slog.Debug("dialog.NewOrchestrator: creating orchestrator", "hasGenAI", genaiClient != nil)
	return &Orchestrator{
		catalog:     cat,
		store:       store,
		prompts:     prompts,
		genaiClient: genaiClient,
	}
}

// HandleMessage classifies one inbound message and returns the outbound
// action. sentAt is the transport's timestamp for the message and becomes
// the recorded user turn's timestamp. Provider failures are absorbed into
// the fixed apology action and are never surfaced to the transport; no
// internal error detail reaches the end user.
func (o *Orchestrator) HandleMessage(ctx context.Context, conversationID, rawText string, sentAt time.Time) models.Action {
	intent := classify.Classify(rawText, o.catalog)
	slog.Info("Orchestrator.HandleMessage: message classified",
		"conversationID", conversationID,
		"intent", intent.Kind,
		"messageLength", len(rawText))

	switch intent.Kind {
	case models.IntentServiceAction:
		url, ok := o.catalog.LookupService(intent.ServiceName)
		if !ok {
			// The classifier only emits names it found in the catalog.
			slog.Error("Orchestrator.HandleMessage: classified service missing from catalog", "service", intent.ServiceName)
			return models.Action{Type: models.ActionStaticText, Text: o.catalog.Replies.OffCatalog}
		}
		return models.Action{
			Type:        models.ActionServiceLink,
			ServiceName: intent.ServiceName,
			URL:         url,
			Text:        fmt.Sprintf(o.catalog.Replies.ServiceLink, intent.ServiceName),
		}

	case models.IntentDisallowed:
		return models.Action{Type: models.ActionStaticText, Text: o.catalog.Replies.Disallowed}

	case models.IntentOffCatalog, models.IntentNotOnTopic:
		// Both map to the same contact text in the default policy.
		return models.Action{Type: models.ActionStaticText, Text: o.catalog.Replies.OffCatalog}

	default:
		return o.generateReply(ctx, conversationID, strings.TrimSpace(rawText), sentAt)
	}
}

// generateReply runs the generation path: record the user turn, build the
// system prompt, call the completion provider with the full history, and
// record the reply. Handling is serialized per conversation id; separate
// conversations proceed in parallel while a completion call is outstanding.
func (o *Orchestrator) generateReply(ctx context.Context, conversationID, text string, sentAt time.Time) models.Action {
	o.store.Lock(conversationID)
	defer o.store.Unlock(conversationID)

	if sentAt.IsZero() {
		sentAt = time.Now()
	}
	o.store.AppendTurn(conversationID, models.Turn{
		Role:      models.RoleUser,
		Content:   text,
		Timestamp: sentAt,
	})

	// The disclosure flag is marked inside the builder, before the
	// completion call, regardless of its outcome.
	systemPrompt := o.prompts.BuildSystemPrompt(conversationID)

	messages := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(systemPrompt)}
	for _, turn := range o.store.History(conversationID) {
		switch turn.Role {
		case models.RoleUser:
			messages = append(messages, openai.UserMessage(turn.Content))
		case models.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		}
	}

	reply, err := o.genaiClient.GenerateWithMessages(ctx, messages)
	if err != nil {
		// The user turn stays recorded: the next turn's context keeps the
		// unanswered question.
		slog.Error("Orchestrator.generateReply: completion failed", "error", err, "conversationID", conversationID)
		return models.Action{Type: models.ActionErrorNotice, Text: o.catalog.Replies.Apology}
	}

	o.store.AppendTurn(conversationID, models.Turn{
		Role:      models.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now(),
	})

	slog.Info("Orchestrator.generateReply: reply generated", "conversationID", conversationID, "responseLength", len(reply))
	return models.Action{Type: models.ActionGeneratedReply, Text: reply}
}
