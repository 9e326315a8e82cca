package usecase

import (
	"context"
	"fmt"

	chat "mentorchat/internal/pkg/chat/application/domain"
	repository "mentorchat/internal/pkg/chat/persistence/repository/port"
)

// ListChatsInput identifies the user whose directory is being loaded.
type ListChatsInput struct {
	UserID string
}

// ListChatsUseCase returns all conversations for a user, most recent activity
// first. One class per use case (own file).
type ListChatsUseCase struct {
	Repo repository.ChatRepository
}

func NewListChatsUseCase(repo repository.ChatRepository) *ListChatsUseCase {
	return &ListChatsUseCase{Repo: repo}
}

func (uc *ListChatsUseCase) Execute(ctx context.Context, in ListChatsInput) ([]chat.Conversation, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	convs, err := uc.Repo.GetConversationsByUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return convs, nil
}
