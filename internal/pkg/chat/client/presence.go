package client

import (
	"sort"
	"sync"
	"time"

	chat "mentorchat/internal/pkg/chat/application/domain"
)

// DefaultTypingTTL bounds how long a typing indicator survives without a
// refresh. A lost stop event therefore clears itself instead of sticking
// forever.
const DefaultTypingTTL = 6 * time.Second

type typingEntry struct {
	name  string
	timer *time.Timer
}

// Tracker keeps the set of counterparts currently typing in the open
// conversation. It is driven purely by inbound signals and holds nothing
// across a conversation switch.
type Tracker struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]*typingEntry // userID -> entry
}

func NewTracker(ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTypingTTL
	}
	return &Tracker{ttl: ttl, entries: make(map[string]*typingEntry)}
}

// Apply upserts the signal's user on IsTyping=true (restarting its expiry)
// and removes it on IsTyping=false.
func (t *Tracker) Apply(sig chat.TypingSignal) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !sig.IsTyping {
		t.removeLocked(sig.UserID)
		return
	}

	if e, ok := t.entries[sig.UserID]; ok {
		e.name = sig.UserName
		e.timer.Reset(t.ttl)
		return
	}

	userID := sig.UserID
	t.entries[userID] = &typingEntry{
		name: sig.UserName,
		timer: time.AfterFunc(t.ttl, func() {
			t.mu.Lock()
			t.removeLocked(userID)
			t.mu.Unlock()
		}),
	}
}

// Typing returns the display names currently typing, sorted for stable
// rendering.
func (t *Tracker) Typing() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// Reset clears the set, stopping all expiry timers. Called when the open
// conversation changes.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id := range t.entries {
		t.removeLocked(id)
	}
}

func (t *Tracker) removeLocked(userID string) {
	if e, ok := t.entries[userID]; ok {
		e.timer.Stop()
		delete(t.entries, userID)
	}
}
