package repository

import (
	"context"

	chat "mentorchat/internal/pkg/chat/application/domain"
)

// ChatRepository defines persistence operations for the chat domain.
//
// CreateConversation is idempotent per participant pair: asking for a pair
// that already has a conversation returns the existing row. Uniqueness of the
// pair is enforced here, not in clients.
type ChatRepository interface {
	CreateConversation(ctx context.Context, menteeID string, mentorID string) (*chat.Conversation, error)
	GetConversationsByUser(ctx context.Context, userID string) ([]chat.Conversation, error)
	GetConversation(ctx context.Context, conversationID string) (*chat.Conversation, []chat.Message, error)
	IsParticipant(ctx context.Context, conversationID string, userID string) (bool, error)

	// SaveMessage persists the message and bumps the conversation's
	// denormalized summary in the same transaction. It returns the
	// server-assigned message id.
	SaveMessage(ctx context.Context, m chat.Message) (string, error)

	// RefreshSummary recomputes the denormalized summary from the message
	// log. Used as a repair path by the background task.
	RefreshSummary(ctx context.Context, conversationID string) error

	GetUser(ctx context.Context, userID string) (*chat.User, error)
	ListUsersByRole(ctx context.Context, role chat.Role) ([]chat.User, error)
}
