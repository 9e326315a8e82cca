package usecase

import (
	"context"
	"fmt"

	chat "mentorchat/internal/pkg/chat/application/domain"
	repository "mentorchat/internal/pkg/chat/persistence/repository/port"
)

// OpenChatInput identifies the conversation being opened and the user opening it.
type OpenChatInput struct {
	ConversationID string
	UserID         string
}

// OpenChatUseCase returns a conversation and its full history in ascending
// order, after verifying the caller is a participant.
type OpenChatUseCase struct {
	Repo repository.ChatRepository
}

func NewOpenChatUseCase(repo repository.ChatRepository) *OpenChatUseCase {
	return &OpenChatUseCase{Repo: repo}
}

func (uc *OpenChatUseCase) Execute(ctx context.Context, in OpenChatInput) (*chat.Conversation, []chat.Message, error) {
	if in.ConversationID == "" || in.UserID == "" {
		return nil, nil, fmt.Errorf("conversation_id and user_id are required")
	}

	ok, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return nil, nil, chat.ErrNotParticipant
	}

	conv, msgs, err := uc.Repo.GetConversation(ctx, in.ConversationID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return conv, msgs, nil
}
