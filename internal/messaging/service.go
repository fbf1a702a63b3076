// Package messaging provides the pluggable message delivery abstraction and
// the dispatcher that routes incoming messages to the dialogue orchestrator.
package messaging

import (
	"context"

	"github.com/straxovka-go/insbot/internal/models"
)

// Service defines a pluggable message delivery abstraction.
// It supports sending plain and richly formatted replies, and provides a
// channel for incoming message events.
type Service interface {
	// ValidateAndCanonicalizeRecipient validates and canonicalizes a
	// recipient identifier. This allows each service to implement its own
	// recipient validation rules.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)

	// SendMessage sends a plain text message to a recipient.
	SendMessage(ctx context.Context, to string, body string) error

	// SendLinkButton sends a message with a single inline URL button.
	SendLinkButton(ctx context.Context, to string, body string, label string, url string) error

	// SendMenu sends a message with a selectable menu of options; a chosen
	// option arrives back as a plain text message equal to its label.
	SendMenu(ctx context.Context, to string, body string, options []string) error

	// Start begins any background processing (e.g., webhook registration).
	Start(ctx context.Context) error

	// Stop stops background processing and cleans up resources.
	Stop() error

	// Responses returns a channel of incoming message events.
	Responses() <-chan models.Response
}
