package convo

import (
	"log/slog"
	"strings"
)

// Default prompt blocks matching the production deployment.
const (
	// DefaultPersona describes the assistant's role.
	DefaultPersona = "Ты — ассистент по страхованию Straxovka-Go."
	// DefaultPolicy describes tone and answer structure.
	DefaultPolicy = "Используй короткие шаблоны ответов по теме."
	// DefaultDisclosureFirst instructs the provider to issue the data
	// controller disclosure in its reply.
	DefaultDisclosureFirst = "В первом ответе обязательно упомяни, что мы — операторы ПДн, и дай ссылку на политику: https://straxovka-go.ru/privacy"
	// DefaultDisclosureRepeat instructs the provider not to repeat it.
	DefaultDisclosureRepeat = "Не упоминай политику конфиденциальности повторно."
)

// Builder composes the system prompt for a conversation turn from typed
// blocks: persona, behavioral policy, and the conditional compliance clause.
type Builder struct {
	store            *Store
	persona          string
	policy           string
	disclosureFirst  string
	disclosureRepeat string
}

// BuilderOption defines a configuration option for the Builder.
type BuilderOption func(*Builder)

// WithPersona overrides the persona block.
func WithPersona(persona string) BuilderOption {
	return func(b *Builder) { b.persona = persona }
}

// WithPolicy overrides the behavioral policy block.
func WithPolicy(policy string) BuilderOption {
	return func(b *Builder) { b.policy = policy }
}

// WithDisclosure overrides the first-reply and repeat compliance clauses.
func WithDisclosure(first, repeat string) BuilderOption {
	return func(b *Builder) {
		b.disclosureFirst = first
		b.disclosureRepeat = repeat
	}
}

// NewBuilder creates a prompt builder backed by the given conversation store.
func NewBuilder(store *Store, opts ...BuilderOption) *Builder {
	b := &Builder{
		store:            store,
		persona:          DefaultPersona,
		policy:           DefaultPolicy,
		disclosureFirst:  DefaultDisclosureFirst,
		disclosureRepeat: DefaultDisclosureRepeat,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildSystemPrompt returns the instruction block for the conversation's next
// generated reply. The compliance clause must appear in the first generated
// reply of every conversation and in no subsequent reply, so the disclosure
// flag is marked here, before the completion call: a provider failure on the
// first exchange must not cause the disclosure to be repeated later.
func (b *Builder) BuildSystemPrompt(conversationID string) string {
	blocks := []string{b.persona, b.policy}
	if b.store.HasDisclosed(conversationID) {
		blocks = append(blocks, b.disclosureRepeat)
	} else {
		blocks = append(blocks, b.disclosureFirst)
		b.store.MarkDisclosed(conversationID)
		slog.Debug("convo.BuildSystemPrompt: first-reply disclosure clause included", "conversationID", conversationID)
	}
	return strings.TrimSpace(strings.Join(blocks, "\n"))
}
