package usecase

import (
	"context"
	"fmt"
	"time"

	chat "mentorchat/internal/pkg/chat/application/domain"
	repository "mentorchat/internal/pkg/chat/persistence/repository/port"
)

// SendMessageInput carries the data needed to post a new message.
type SendMessageInput struct {
	ConversationID string
	Sender         chat.User
	Content        string
}

// SendMessageResult is the persisted message plus the refreshed summary the
// directory needs and the conversation it landed in (for fan-out).
type SendMessageResult struct {
	Message      chat.Message
	Summary      chat.MessageSummary
	Conversation chat.Conversation
}

// SendMessageUseCase validates a message against the conversation aggregate
// and persists it. One class per use case (own file).
type SendMessageUseCase struct {
	Repo repository.ChatRepository
}

func NewSendMessageUseCase(repo repository.ChatRepository) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*SendMessageResult, error) {
	if in.ConversationID == "" || in.Sender.ID == "" {
		return nil, fmt.Errorf("conversation_id and sender are required")
	}

	conv, _, err := uc.Repo.GetConversation(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	thread := chat.Thread{Conversation: *conv}
	if conv.LastMessage != nil {
		at := conv.LastMessage.CreatedAt
		thread.LastMessageAt = &at
	}

	msg, err := thread.PostMessage(chat.Message{
		ConversationID: in.ConversationID,
		Sender:         in.Sender,
		Content:        in.Content,
	}, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	id, err := uc.Repo.SaveMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	msg.ID = id

	return &SendMessageResult{Message: msg, Summary: msg.Summary(), Conversation: *conv}, nil
}
