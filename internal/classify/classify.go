// Package classify implements the ordered decision policy that turns one
// inbound text message into exactly one intent.
package classify

import (
	"log/slog"
	"strings"

	"github.com/straxovka-go/insbot/internal/catalog"
	"github.com/straxovka-go/insbot/internal/models"
)

// Classify maps one raw inbound message to exactly one intent.
//
// Checks run in fixed order, first match wins: exact catalog name,
// disallowed topics, off-catalog topics, then the on-topic allow-list.
// Disallowed topics are checked before off-catalog triggers so a compliance
// exclusion cannot be bypassed by a more specific catalog-adjacent trigger.
// The catalog lookup is exact on the trimmed original text: menu button
// presses arrive as plain text identical to the displayed service name.
func Classify(rawText string, cat *catalog.Catalog) models.Intent {
	trimmed := strings.TrimSpace(rawText)

	if _, ok := cat.LookupService(trimmed); ok {
		slog.Debug("classify.Classify: exact catalog match", "service", trimmed)
		return models.Intent{Kind: models.IntentServiceAction, ServiceName: trimmed}
	}

	upper := strings.ToUpper(trimmed)

	if containsAny(upper, cat.DisallowedTriggers) {
		slog.Debug("classify.Classify: disallowed topic trigger matched")
		return models.Intent{Kind: models.IntentDisallowed}
	}

	if containsAny(upper, cat.OffCatalogTriggers) {
		slog.Debug("classify.Classify: off-catalog trigger matched")
		return models.Intent{Kind: models.IntentOffCatalog}
	}

	// An empty message contains no keyword and lands here.
	if !containsAny(upper, cat.OnTopicKeywords) {
		slog.Debug("classify.Classify: no on-topic keyword present")
		return models.Intent{Kind: models.IntentNotOnTopic}
	}

	return models.Intent{Kind: models.IntentNeedsGeneration}
}

// containsAny reports whether upper contains any of the patterns,
// case-insensitively. Matching is substring containment, not word-boundary
// aware: a keyword embedded in an unrelated word still matches.
func containsAny(upper string, patterns []string) bool {
	for _, p := range patterns {
		if p == "" {
			// An empty pattern would match every message.
			continue
		}
		if strings.Contains(upper, strings.ToUpper(p)) {
			return true
		}
	}
	return false
}
