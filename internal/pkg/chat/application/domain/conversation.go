package chat

import "time"

// MessageSummary is the denormalized last-message view carried on a
// conversation so the directory can order itself without loading histories.
type MessageSummary struct {
	Content   string    `json:"content"`
	SenderID  string    `json:"senderId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Conversation is a 1:1 thread between a mentee and a mentor.
// The participant pair is fixed at creation.
type Conversation struct {
	ID           string          `json:"id"`
	Participants [2]User         `json:"participants"`
	LastMessage  *MessageSummary `json:"lastMessage,omitempty"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// HasParticipant tells whether userID is part of this conversation.
func (c Conversation) HasParticipant(userID string) bool {
	return c.Participants[0].ID == userID || c.Participants[1].ID == userID
}

// CounterpartOf returns the other participant from userID's point of view.
func (c Conversation) CounterpartOf(userID string) (User, bool) {
	switch userID {
	case c.Participants[0].ID:
		return c.Participants[1], true
	case c.Participants[1].ID:
		return c.Participants[0], true
	}
	return User{}, false
}
