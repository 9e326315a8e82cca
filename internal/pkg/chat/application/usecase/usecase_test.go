package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "mentorchat/internal/pkg/chat/application/domain"
)

// stubRepository is an in-memory ChatRepository for use case tests.
type stubRepository struct {
	users         map[string]chat.User
	conversations map[string]*chat.Conversation
	messages      map[string][]chat.Message
	nextID        int

	failAll bool
}

func newStubRepository() *stubRepository {
	return &stubRepository{
		users:         make(map[string]chat.User),
		conversations: make(map[string]*chat.Conversation),
		messages:      make(map[string][]chat.Message),
	}
}

func (r *stubRepository) addUser(u chat.User) { r.users[u.ID] = u }

func (r *stubRepository) addConversation(menteeID, mentorID string) *chat.Conversation {
	r.nextID++
	conv := &chat.Conversation{ID: fmt.Sprintf("conv-%d", r.nextID), UpdatedAt: time.Now().UTC()}
	conv.Participants[0] = r.users[menteeID]
	conv.Participants[1] = r.users[mentorID]
	r.conversations[conv.ID] = conv
	return conv
}

func (r *stubRepository) CreateConversation(ctx context.Context, menteeID, mentorID string) (*chat.Conversation, error) {
	if r.failAll {
		return nil, errors.New("db down")
	}
	for _, c := range r.conversations {
		if c.Participants[0].ID == menteeID && c.Participants[1].ID == mentorID {
			out := *c
			return &out, nil
		}
	}
	conv := r.addConversation(menteeID, mentorID)
	out := *conv
	return &out, nil
}

func (r *stubRepository) GetConversationsByUser(ctx context.Context, userID string) ([]chat.Conversation, error) {
	if r.failAll {
		return nil, errors.New("db down")
	}
	var out []chat.Conversation
	for _, c := range r.conversations {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubRepository) GetConversation(ctx context.Context, conversationID string) (*chat.Conversation, []chat.Message, error) {
	if r.failAll {
		return nil, nil, errors.New("db down")
	}
	c, ok := r.conversations[conversationID]
	if !ok {
		return nil, nil, errors.New("not found")
	}
	out := *c
	return &out, append([]chat.Message(nil), r.messages[conversationID]...), nil
}

func (r *stubRepository) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	if r.failAll {
		return false, errors.New("db down")
	}
	c, ok := r.conversations[conversationID]
	if !ok {
		return false, nil
	}
	return c.HasParticipant(userID), nil
}

func (r *stubRepository) SaveMessage(ctx context.Context, m chat.Message) (string, error) {
	if r.failAll {
		return "", errors.New("db down")
	}
	r.nextID++
	m.ID = fmt.Sprintf("msg-%d", r.nextID)
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], m)

	c := r.conversations[m.ConversationID]
	summary := m.Summary()
	c.LastMessage = &summary
	c.UpdatedAt = m.CreatedAt
	return m.ID, nil
}

func (r *stubRepository) RefreshSummary(ctx context.Context, conversationID string) error {
	if r.failAll {
		return errors.New("db down")
	}
	return nil
}

func (r *stubRepository) GetUser(ctx context.Context, userID string) (*chat.User, error) {
	if r.failAll {
		return nil, errors.New("db down")
	}
	u, ok := r.users[userID]
	if !ok {
		return nil, errors.New("no such user")
	}
	return &u, nil
}

func (r *stubRepository) ListUsersByRole(ctx context.Context, role chat.Role) ([]chat.User, error) {
	if r.failAll {
		return nil, errors.New("db down")
	}
	var out []chat.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

var (
	mentee = chat.User{ID: "u-mentee", DisplayName: "Ana Silva", Role: chat.RoleMentee}
	mentor = chat.User{ID: "u-mentor", DisplayName: "Marta Gomez", Role: chat.RoleMentor}
)

func seededRepo() *stubRepository {
	repo := newStubRepository()
	repo.addUser(mentee)
	repo.addUser(mentor)
	return repo
}

func TestCreateChatAssignsSidesByRole(t *testing.T) {
	repo := seededRepo()
	uc := NewCreateChatUseCase(repo)

	// Mentee requesting: mentee side is the requester.
	conv, err := uc.Execute(context.Background(), CreateChatInput{Requester: mentee, ParticipantID: mentor.ID})
	require.NoError(t, err)
	assert.Equal(t, mentee.ID, conv.Participants[0].ID)
	assert.Equal(t, mentor.ID, conv.Participants[1].ID)

	// Mentor requesting the same pair resolves to the same conversation.
	again, err := uc.Execute(context.Background(), CreateChatInput{Requester: mentor, ParticipantID: mentee.ID})
	require.NoError(t, err)
	assert.Equal(t, conv.ID, again.ID)
}

func TestCreateChatRejectsSelf(t *testing.T) {
	uc := NewCreateChatUseCase(seededRepo())
	_, err := uc.Execute(context.Background(), CreateChatInput{Requester: mentee, ParticipantID: mentee.ID})
	assert.Error(t, err)
}

func TestCreateChatUnknownParticipant(t *testing.T) {
	uc := NewCreateChatUseCase(seededRepo())
	_, err := uc.Execute(context.Background(), CreateChatInput{Requester: mentee, ParticipantID: "u-ghost"})
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestListChatsRequiresUser(t *testing.T) {
	uc := NewListChatsUseCase(seededRepo())
	_, err := uc.Execute(context.Background(), ListChatsInput{})
	assert.Error(t, err)
}

func TestListChatsReturnsOnlyOwn(t *testing.T) {
	repo := seededRepo()
	other := chat.User{ID: "u-other", DisplayName: "Jon", Role: chat.RoleMentee}
	repo.addUser(other)
	repo.addConversation(mentee.ID, mentor.ID)
	repo.addConversation(other.ID, mentor.ID)

	uc := NewListChatsUseCase(repo)
	convs, err := uc.Execute(context.Background(), ListChatsInput{UserID: mentee.ID})
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.True(t, convs[0].HasParticipant(mentee.ID))
}

func TestListCounterpartsByRole(t *testing.T) {
	repo := seededRepo()
	uc := NewListCounterpartsUseCase(repo, nil)

	mentors, err := uc.Execute(context.Background(), ListCounterpartsInput{Role: chat.RoleMentee})
	require.NoError(t, err)
	require.Len(t, mentors, 1)
	assert.Equal(t, mentor.ID, mentors[0].ID)

	mentees, err := uc.Execute(context.Background(), ListCounterpartsInput{Role: chat.RoleMentor})
	require.NoError(t, err)
	require.Len(t, mentees, 1)
	assert.Equal(t, mentee.ID, mentees[0].ID)

	// Admins browse mentees too.
	mentees, err = uc.Execute(context.Background(), ListCounterpartsInput{Role: chat.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, mentees, 1)
}

func TestListCounterpartsFiltersByName(t *testing.T) {
	repo := seededRepo()
	repo.addUser(chat.User{ID: "u-m2", DisplayName: "Martin Cole", Role: chat.RoleMentor})

	uc := NewListCounterpartsUseCase(repo, nil)

	matched, err := uc.Execute(context.Background(), ListCounterpartsInput{Role: chat.RoleMentee, Query: "mart"})
	require.NoError(t, err)
	assert.Len(t, matched, 2)

	matched, err = uc.Execute(context.Background(), ListCounterpartsInput{Role: chat.RoleMentee, Query: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestListCounterpartsRejectsUnknownRole(t *testing.T) {
	uc := NewListCounterpartsUseCase(seededRepo(), nil)
	_, err := uc.Execute(context.Background(), ListCounterpartsInput{Role: "wizard"})
	assert.Error(t, err)
}

func TestOpenChatRequiresParticipant(t *testing.T) {
	repo := seededRepo()
	conv := repo.addConversation(mentee.ID, mentor.ID)

	uc := NewOpenChatUseCase(repo)
	_, _, err := uc.Execute(context.Background(), OpenChatInput{ConversationID: conv.ID, UserID: "u-stranger"})
	assert.ErrorIs(t, err, chat.ErrNotParticipant)
}

func TestOpenChatReturnsHistory(t *testing.T) {
	repo := seededRepo()
	conv := repo.addConversation(mentee.ID, mentor.ID)
	repo.messages[conv.ID] = []chat.Message{
		{ID: "m1", ConversationID: conv.ID, Sender: mentee, Content: "hi", CreatedAt: time.Now().UTC()},
	}

	uc := NewOpenChatUseCase(repo)
	got, msgs, err := uc.Execute(context.Background(), OpenChatInput{ConversationID: conv.ID, UserID: mentee.ID})
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)
}

func TestSendMessagePersistsAndSummarizes(t *testing.T) {
	repo := seededRepo()
	conv := repo.addConversation(mentee.ID, mentor.ID)

	uc := NewSendMessageUseCase(repo)
	res, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: conv.ID,
		Sender:         mentee,
		Content:        "  Hello mentor  ",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Message.ID)
	assert.Equal(t, "Hello mentor", res.Message.Content)
	assert.Equal(t, mentee.ID, res.Summary.SenderID)
	assert.Equal(t, conv.ID, res.Conversation.ID)

	stored := repo.messages[conv.ID]
	require.Len(t, stored, 1)
	assert.Equal(t, res.Message.ID, stored[0].ID)
}

func TestSendMessageRejectsOutsider(t *testing.T) {
	repo := seededRepo()
	conv := repo.addConversation(mentee.ID, mentor.ID)

	uc := NewSendMessageUseCase(repo)
	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: conv.ID,
		Sender:         chat.User{ID: "u-stranger", Role: chat.RoleMentee},
		Content:        "hi",
	})
	assert.ErrorIs(t, err, chat.ErrNotParticipant)
	assert.Empty(t, repo.messages[conv.ID])
}

func TestSendMessageRejectsBlank(t *testing.T) {
	repo := seededRepo()
	conv := repo.addConversation(mentee.ID, mentor.ID)

	uc := NewSendMessageUseCase(repo)
	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: conv.ID,
		Sender:         mentee,
		Content:        "   ",
	})
	assert.ErrorIs(t, err, chat.ErrEmptyMessage)
}

func TestSendMessageWrapsRepositoryFailure(t *testing.T) {
	repo := seededRepo()
	conv := repo.addConversation(mentee.ID, mentor.ID)
	repo.failAll = true

	uc := NewSendMessageUseCase(repo)
	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: conv.ID,
		Sender:         mentee,
		Content:        "hi",
	})
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestJoinConversationGatesOnMembership(t *testing.T) {
	repo := seededRepo()
	conv := repo.addConversation(mentee.ID, mentor.ID)

	uc := NewJoinConversationUseCase(repo)
	assert.NoError(t, uc.Execute(context.Background(), JoinConversationInput{ConversationID: conv.ID, UserID: mentee.ID}))

	err := uc.Execute(context.Background(), JoinConversationInput{ConversationID: conv.ID, UserID: "u-stranger"})
	assert.ErrorIs(t, err, chat.ErrNotParticipant)
}
