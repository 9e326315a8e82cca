package chat

import (
	"errors"
	"time"
)

// Domain-level errors for conversation behaviors
var (
	ErrInvalidConversation = errors.New("chat: conversation/message mismatch")
	ErrNotParticipant      = errors.New("chat: sender is not a participant in the conversation")
	ErrEmptyMessage        = errors.New("chat: empty message content")
	ErrBackdatedMessage    = errors.New("chat: message timestamp is backdated")
)

// Thread is the domain aggregate for a conversation and its posting rules.
//
// The aggregate is in-memory only; the application layer hydrates it with the
// conversation and its last activity timestamp before invoking behaviors.
// Persistence is handled by repositories outside the domain.
type Thread struct {
	Conversation  Conversation
	LastMessageAt *time.Time // last persisted message CreatedAt, if known
}

// PostMessage applies domain rules and returns a validated message ready to
// persist.
//
// Validations:
// - Conversation/message identity must match
// - Sender must be a participant
// - Message must not be backdated relative to LastMessageAt (if known)
// - Content must be non-empty after trimming
//
// If m.CreatedAt is zero it is set to now. On success LastMessageAt advances
// to the message timestamp.
func (t *Thread) PostMessage(m Message, now time.Time) (Message, error) {
	if m.ConversationID == "" || t.Conversation.ID == "" || m.ConversationID != t.Conversation.ID {
		return Message{}, ErrInvalidConversation
	}

	if !t.Conversation.HasParticipant(m.Sender.ID) {
		return Message{}, ErrNotParticipant
	}

	ts := m.CreatedAt
	if ts.IsZero() {
		if now.IsZero() {
			now = time.Now().UTC()
		}
		ts = now.UTC()
	}

	if t.LastMessageAt != nil && ts.Before(t.LastMessageAt.UTC()) {
		return Message{}, ErrBackdatedMessage
	}

	validated, err := NewMessage(Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Sender:         m.Sender,
		Content:        m.Content,
		CreatedAt:      ts,
	})
	if err != nil {
		return Message{}, err
	}

	t.LastMessageAt = &validated.CreatedAt
	return *validated, nil
}
