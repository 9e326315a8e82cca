package chat

import (
	"strings"
	"time"
)

// Message is an immutable log entry in a conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Sender         User      `json:"sender"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewMessage normalizes and validates a message before it enters the system.
// Content is trimmed; whitespace-only content is rejected.
func NewMessage(m Message) (*Message, error) {
	if m.ConversationID == "" || m.Sender.ID == "" {
		return nil, ErrInvalidConversation
	}

	m.Content = strings.TrimSpace(m.Content)
	if m.Content == "" {
		return nil, ErrEmptyMessage
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	return &m, nil
}

// Summary projects the message into the denormalized conversation view.
func (m Message) Summary() MessageSummary {
	return MessageSummary{
		Content:   m.Content,
		SenderID:  m.Sender.ID,
		CreatedAt: m.CreatedAt,
	}
}
