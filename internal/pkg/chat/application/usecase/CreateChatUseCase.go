package usecase

import (
	"context"
	"fmt"

	chat "mentorchat/internal/pkg/chat/application/domain"
	repository "mentorchat/internal/pkg/chat/persistence/repository/port"
)

// CreateChatInput carries the caller and the counterpart to open a
// conversation with. The caller's role decides which side of the pair each
// user lands on.
type CreateChatInput struct {
	Requester     chat.User
	ParticipantID string
}

// CreateChatUseCase opens a conversation between the requester and the given
// counterpart, or returns the existing one for the pair. One class per use
// case (own file).
type CreateChatUseCase struct {
	Repo repository.ChatRepository
}

func NewCreateChatUseCase(repo repository.ChatRepository) *CreateChatUseCase {
	return &CreateChatUseCase{Repo: repo}
}

func (uc *CreateChatUseCase) Execute(ctx context.Context, in CreateChatInput) (*chat.Conversation, error) {
	if in.Requester.ID == "" || in.ParticipantID == "" {
		return nil, fmt.Errorf("requester and participant_id are required")
	}
	if in.Requester.ID == in.ParticipantID {
		return nil, fmt.Errorf("cannot open a conversation with yourself")
	}

	other, err := uc.Repo.GetUser(ctx, in.ParticipantID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	menteeID, mentorID := in.Requester.ID, other.ID
	if in.Requester.Role != chat.RoleMentee {
		menteeID, mentorID = other.ID, in.Requester.ID
	}

	conv, err := uc.Repo.CreateConversation(ctx, menteeID, mentorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return conv, nil
}
