package client

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	chat "mentorchat/internal/pkg/chat/application/domain"
	"mentorchat/internal/pkg/chat/wire"
)

// Directory owns the ordered conversation list for the signed-in user. The
// collection holds at most one entry per conversation id and is always sorted
// by UpdatedAt descending.
type Directory struct {
	self chat.User
	api  Backend
	log  zerolog.Logger

	mu    sync.Mutex
	chats []chat.Conversation
}

func NewDirectory(self chat.User, api Backend, log zerolog.Logger) *Directory {
	return &Directory{self: self, api: api, log: log}
}

// Load fetches all conversations for the current user. On failure the
// collection stays empty and the error is retryable.
func (d *Directory) Load(ctx context.Context) error {
	chats, err := d.api.ListChats(ctx)
	if err != nil {
		return transient("load conversations", err)
	}

	d.mu.Lock()
	d.chats = chats
	d.sortLocked()
	d.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the collection in display order.
func (d *Directory) Snapshot() []chat.Conversation {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]chat.Conversation, len(d.chats))
	copy(out, d.chats)
	return out
}

// UpsertFromEvent refreshes a conversation's last message and re-sorts the
// collection, whether or not that conversation is currently open. An id the
// directory has never seen is dropped; the next Load picks it up.
func (d *Directory) UpsertFromEvent(conversationID string, delta wire.ChatDelta) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.chats {
		if d.chats[i].ID != conversationID {
			continue
		}
		d.chats[i].LastMessage = delta.LastMessage
		if delta.UpdatedAt.After(d.chats[i].UpdatedAt) {
			d.chats[i].UpdatedAt = delta.UpdatedAt
		}
		d.sortLocked()
		return
	}
	d.log.Debug().Str("conversation", conversationID).Msg("event for unknown conversation")
}

// Create asks the backend for a conversation with the counterpart and
// prepends it unless an entry with the same id already exists. A failed
// create leaves the collection unchanged.
func (d *Directory) Create(ctx context.Context, counterpartID string) (*chat.Conversation, error) {
	if counterpartID == "" {
		return nil, ErrNoCounterpart
	}

	conv, err := d.api.CreateChat(ctx, counterpartID)
	if err != nil {
		return nil, transient("create conversation", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.chats {
		if d.chats[i].ID == conv.ID {
			existing := d.chats[i]
			return &existing, nil
		}
	}
	d.chats = append([]chat.Conversation{*conv}, d.chats...)
	return conv, nil
}

func (d *Directory) sortLocked() {
	sort.SliceStable(d.chats, func(i, j int) bool {
		return d.chats[i].UpdatedAt.After(d.chats[j].UpdatedAt)
	})
}
