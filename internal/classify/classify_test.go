package classify

import (
	"testing"

	"github.com/straxovka-go/insbot/internal/catalog"
	"github.com/straxovka-go/insbot/internal/models"
)

func TestClassify_ExactCatalogMatch(t *testing.T) {
	cat := catalog.Default()
	intent := Classify("ОСАГО", cat)
	if intent.Kind != models.IntentServiceAction {
		t.Fatalf("expected service action, got %s", intent.Kind)
	}
	if intent.ServiceName != "ОСАГО" {
		t.Errorf("expected service name ОСАГО, got %q", intent.ServiceName)
	}
}

func TestClassify_ExactMatchTrimsWhitespace(t *testing.T) {
	cat := catalog.Default()
	intent := Classify("  ОСАГО \n", cat)
	if intent.Kind != models.IntentServiceAction {
		t.Fatalf("expected service action for padded name, got %s", intent.Kind)
	}
}

func TestClassify_NonExactCatalogNameIsNotServiceAction(t *testing.T) {
	cat := catalog.Default()
	// "ОСАГО онлайн" is not an exact catalog name; the embedded keyword
	// still puts it on the generation path.
	intent := Classify("ОСАГО онлайн", cat)
	if intent.Kind == models.IntentServiceAction {
		t.Fatalf("fuzzy match must not yield a service action")
	}
	if intent.Kind != models.IntentNeedsGeneration {
		t.Errorf("expected needs generation, got %s", intent.Kind)
	}
}

func TestClassify_OffCatalogTrigger(t *testing.T) {
	cat := catalog.Default()
	intent := Classify("хочу ДМС", cat)
	if intent.Kind != models.IntentOffCatalog {
		t.Fatalf("expected off catalog, got %s", intent.Kind)
	}
}

func TestClassify_OffCatalogTriggerIsCaseInsensitive(t *testing.T) {
	cat := catalog.Default()
	intent := Classify("интересует дмс для сотрудников", cat)
	if intent.Kind != models.IntentOffCatalog {
		t.Fatalf("expected off catalog for lowercase trigger, got %s", intent.Kind)
	}
}

func TestClassify_DisallowedTakesPrecedenceOverOffCatalog(t *testing.T) {
	cat := catalog.Default()
	// Contains both a disallowed trigger and an off-catalog trigger.
	intent := Classify("посоветуй инвестиции вместо ДМС", cat)
	if intent.Kind != models.IntentDisallowed {
		t.Fatalf("expected disallowed to win over off catalog, got %s", intent.Kind)
	}
}

func TestClassify_NoKeywordIsNotOnTopic(t *testing.T) {
	cat := catalog.Default()
	intent := Classify("какая сейчас погода", cat)
	if intent.Kind != models.IntentNotOnTopic {
		t.Fatalf("expected not on topic, got %s", intent.Kind)
	}
}

func TestClassify_EmptyTextIsNotOnTopic(t *testing.T) {
	cat := catalog.Default()
	for _, text := range []string{"", "   ", "\n\t"} {
		intent := Classify(text, cat)
		if intent.Kind != models.IntentNotOnTopic {
			t.Errorf("expected not on topic for %q, got %s", text, intent.Kind)
		}
	}
}

func TestClassify_OnTopicKeywordNeedsGeneration(t *testing.T) {
	cat := catalog.Default()
	intent := Classify("сколько стоит страхование имущества", cat)
	if intent.Kind != models.IntentNeedsGeneration {
		t.Fatalf("expected needs generation, got %s", intent.Kind)
	}
}

func TestClassify_KeywordEmbeddedInWordMatches(t *testing.T) {
	cat := catalog.Default()
	// Matching is substring containment, not word-boundary aware.
	intent := Classify("перестраховка", cat)
	if intent.Kind != models.IntentNeedsGeneration {
		t.Fatalf("expected embedded keyword to match, got %s", intent.Kind)
	}
}

func TestClassify_AllCatalogNamesMapToServiceAction(t *testing.T) {
	cat := catalog.Default()
	for _, name := range cat.ServiceNames() {
		intent := Classify(name, cat)
		if intent.Kind != models.IntentServiceAction || intent.ServiceName != name {
			t.Errorf("catalog name %q: expected service action, got %s (%q)", name, intent.Kind, intent.ServiceName)
		}
	}
}
