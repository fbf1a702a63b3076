// Package convo provides per-conversation state for the assistant: the
// ordered dialogue history, the one-shot privacy disclosure flag, and the
// system prompt builder that consults it.
package convo

import (
	"log/slog"
	"sync"
	"time"

	"github.com/straxovka-go/insbot/internal/models"
)

// Default bounds for the in-memory store. The observed production variants
// grow without bound; these caps make the limit an explicit configuration
// choice instead.
const (
	// DefaultMaxHistory is the default cap on turns kept per conversation.
	DefaultMaxHistory = 100
	// DefaultMaxConversations is the default cap on tracked conversations.
	DefaultMaxConversations = 10000
	// DefaultIdleTTL is the default idle time after which a conversation
	// becomes eligible for eviction.
	DefaultIdleTTL = 24 * time.Hour
)

// conversation holds the mutable state for one conversation id.
type conversation struct {
	// handling serializes end-to-end message handling for this id.
	handling sync.Mutex
	// pinned counts holders of and waiters on the handling lock. Guarded by
	// Store.mu, not this conversation's mu. A pinned conversation must not
	// be evicted: deleting it would orphan the held lock and a later Unlock
	// would operate on a recreated, never-locked mutex.
	pinned int
	// mu protects the fields below.
	mu         sync.Mutex
	history    []models.Turn
	disclosed  bool
	lastActive time.Time
}

// Store is an in-memory conversation store keyed by conversation id.
// State lives for the process lifetime, subject to the configured bounds;
// nothing is persisted across restarts.
type Store struct {
	mu               sync.Mutex
	conversations    map[string]*conversation
	maxHistory       int           // 0 means unlimited
	maxConversations int           // 0 means unlimited
	idleTTL          time.Duration // 0 means never evict by idle time
}

// Option defines a configuration option for the Store.
type Option func(*Store)

// WithMaxHistory caps the number of turns kept per conversation; the oldest
// turns are dropped first. Zero means unlimited.
func WithMaxHistory(n int) Option {
	return func(s *Store) { s.maxHistory = n }
}

// WithMaxConversations caps the number of tracked conversations. Zero means
// unlimited.
func WithMaxConversations(n int) Option {
	return func(s *Store) { s.maxConversations = n }
}

// WithIdleTTL sets the idle time after which a conversation may be evicted.
// Zero disables idle eviction.
func WithIdleTTL(d time.Duration) Option {
	return func(s *Store) { s.idleTTL = d }
}

// NewStore creates a conversation store with the given options.
func NewStore(opts ...Option) *Store {
	s := &Store{
		conversations:    make(map[string]*conversation),
		maxHistory:       DefaultMaxHistory,
		maxConversations: DefaultMaxConversations,
		idleTTL:          DefaultIdleTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	slog.Debug("convo.NewStore: store created", "maxHistory", s.maxHistory, "maxConversations", s.maxConversations, "idleTTL", s.idleTTL)
	return s
}

// Lock serializes message handling for one conversation id. Handling for
// other ids proceeds in parallel. Every Lock must be paired with Unlock.
// A conversation is pinned against eviction from Lock until Unlock.
func (s *Store) Lock(conversationID string) {
	s.mu.Lock()
	c := s.getOrCreateLocked(conversationID)
	c.pinned++
	s.mu.Unlock()
	c.handling.Lock()
	c.touch()
}

// Unlock releases the per-conversation handling lock.
func (s *Store) Unlock(conversationID string) {
	s.mu.Lock()
	c := s.conversations[conversationID]
	if c != nil {
		c.pinned--
	}
	s.mu.Unlock()
	if c == nil {
		// Pinned conversations are never evicted, so this is a caller bug.
		slog.Error("convo.Unlock: unlock of untracked conversation", "conversationID", conversationID)
		return
	}
	c.touch()
	c.handling.Unlock()
}

// History returns a copy of the conversation's turns in chronological order.
func (s *Store) History(conversationID string) []models.Turn {
	c := s.getOrCreate(conversationID)
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Turn, len(c.history))
	copy(out, c.history)
	return out
}

// AppendTurn appends a turn to the conversation history, dropping the oldest
// turns if the history cap is exceeded.
func (s *Store) AppendTurn(conversationID string, turn models.Turn) {
	c := s.getOrCreate(conversationID)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, turn)
	if s.maxHistory > 0 && len(c.history) > s.maxHistory {
		drop := len(c.history) - s.maxHistory
		c.history = append(c.history[:0:0], c.history[drop:]...)
		slog.Debug("convo.AppendTurn: history trimmed", "conversationID", conversationID, "dropped", drop)
	}
	c.lastActive = time.Now()
}

// MarkDisclosed idempotently records that the privacy disclosure was issued
// for this conversation. The flag never resets.
func (s *Store) MarkDisclosed(conversationID string) {
	c := s.getOrCreate(conversationID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.disclosed {
		slog.Debug("convo.MarkDisclosed: disclosure marked", "conversationID", conversationID)
	}
	c.disclosed = true
}

// HasDisclosed reports whether the privacy disclosure was already issued.
func (s *Store) HasDisclosed(conversationID string) bool {
	c := s.getOrCreate(conversationID)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disclosed
}

// Count returns the number of tracked conversations.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// getOrCreate returns the conversation for id, creating it lazily.
func (s *Store) getOrCreate(conversationID string) *conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(conversationID)
}

// getOrCreateLocked is getOrCreate for callers already holding s.mu. Creation
// never fails; when the store is over its conversation cap, idle entries are
// evicted first.
func (s *Store) getOrCreateLocked(conversationID string) *conversation {
	if c, ok := s.conversations[conversationID]; ok {
		return c
	}
	if s.maxConversations > 0 && len(s.conversations) >= s.maxConversations {
		s.evictLocked()
	}
	c := &conversation{lastActive: time.Now()}
	s.conversations[conversationID] = c
	slog.Debug("convo.getOrCreate: conversation created", "conversationID", conversationID, "total", len(s.conversations))
	return c
}

// evictLocked removes idle conversations, and if none are idle, the least
// recently active one. Pinned conversations are exempt: their handling lock
// is held or awaited. Callers must hold s.mu.
func (s *Store) evictLocked() {
	now := time.Now()
	evicted := 0
	var oldestID string
	var oldestAt time.Time
	for id, c := range s.conversations {
		if c.pinned > 0 {
			continue
		}
		c.mu.Lock()
		last := c.lastActive
		c.mu.Unlock()
		if s.idleTTL > 0 && now.Sub(last) > s.idleTTL {
			delete(s.conversations, id)
			evicted++
			continue
		}
		if oldestID == "" || last.Before(oldestAt) {
			oldestID = id
			oldestAt = last
		}
	}
	if evicted == 0 && oldestID != "" {
		delete(s.conversations, oldestID)
		evicted++
		slog.Warn("convo.evictLocked: conversation cap reached, evicted least recently active", "conversationID", oldestID)
	}
	slog.Info("convo.evictLocked: eviction pass completed", "evicted", evicted, "remaining", len(s.conversations))
}

func (c *conversation) touch() {
	c.mu.Lock()
	c.lastActive = time.Now()
	c.mu.Unlock()
}
