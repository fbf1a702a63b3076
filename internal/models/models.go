// Package models defines the core data structures for insbot.
//
// It includes conversation turns, classified intents, and outbound actions,
// which are shared across modules.
package models

import (
	"errors"
	"time"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser marks a turn written by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks a turn produced by the completion provider.
	RoleAssistant Role = "assistant"
)

// Turn represents a single message in a conversation history.
// Turns are immutable once created; ordering is chronological.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// IntentKind defines how an inbound message was classified.
type IntentKind string

const (
	// IntentServiceAction maps a message to a self-service catalog entry.
	IntentServiceAction IntentKind = "service_action"
	// IntentOffCatalog marks a catalog-adjacent topic that is not offered online.
	IntentOffCatalog IntentKind = "off_catalog"
	// IntentDisallowed marks a topic the assistant must not discuss.
	IntentDisallowed IntentKind = "disallowed"
	// IntentNotOnTopic marks a message with no recognizable insurance keyword.
	IntentNotOnTopic IntentKind = "not_on_topic"
	// IntentNeedsGeneration marks a message that requires a generated answer.
	IntentNeedsGeneration IntentKind = "needs_generation"
)

// Intent is the result of classifying one inbound message.
// ServiceName is set only for IntentServiceAction.
type Intent struct {
	Kind        IntentKind `json:"kind"`
	ServiceName string     `json:"service_name,omitempty"`
}

// ActionType defines how an outbound action should be rendered by the transport.
type ActionType string

const (
	// ActionServiceLink sends a self-service link, rendered as a URL button.
	ActionServiceLink ActionType = "service_link"
	// ActionStaticText sends a fixed plain-text reply.
	ActionStaticText ActionType = "static_text"
	// ActionGeneratedReply sends a completion-provider generated reply.
	ActionGeneratedReply ActionType = "generated_reply"
	// ActionErrorNotice sends the fixed apology after a provider failure.
	ActionErrorNotice ActionType = "error_notice"
)

// Action represents one outbound action produced for one inbound message.
type Action struct {
	Type        ActionType `json:"type"`
	ServiceName string     `json:"service_name,omitempty"` // set for service_link
	URL         string     `json:"url,omitempty"`          // set for service_link
	Text        string     `json:"text"`
}

// Response represents an incoming message event from the transport.
type Response struct {
	From string `json:"from"` // conversation id (chat id for Telegram)
	Body string `json:"body"`
	Time int64  `json:"time"`
}

// Error variables for better error handling and testability
var (
	ErrEmptyConversationID = errors.New("conversation id cannot be empty")
	ErrEmptyRecipient      = errors.New("recipient cannot be empty")
	ErrUnknownService      = errors.New("service not present in catalog")
	ErrEmptyCompletion     = errors.New("completion provider returned empty content")
)

// IsValidActionType checks if the given action type is supported.
func IsValidActionType(at ActionType) bool {
	switch at {
	case ActionServiceLink, ActionStaticText, ActionGeneratedReply, ActionErrorNotice:
		return true
	default:
		return false
	}
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
