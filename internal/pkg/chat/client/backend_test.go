package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	chat "mentorchat/internal/pkg/chat/application/domain"
	"mentorchat/internal/pkg/chat/wire"
)

// fakeBackend is an in-memory Backend for tests. Error fields, when set,
// make the corresponding call fail.
type fakeBackend struct {
	mu sync.Mutex

	chats    map[string]*chat.Conversation
	history  map[string][]chat.Message
	roster   []chat.User
	nextID   int
	sendSeen []string

	listErr   error
	rosterErr error
	createErr error
	openErr   error
	sendErr   error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		chats:   make(map[string]*chat.Conversation),
		history: make(map[string][]chat.Message),
	}
}

func (f *fakeBackend) addChat(conv chat.Conversation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := conv
	f.chats[conv.ID] = &c
}

func (f *fakeBackend) ListChats(ctx context.Context) ([]chat.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]chat.Conversation, 0, len(f.chats))
	for _, c := range f.chats {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeBackend) ListCounterparts(ctx context.Context, role chat.Role) ([]chat.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rosterErr != nil {
		return nil, f.rosterErr
	}
	return append([]chat.User(nil), f.roster...), nil
}

func (f *fakeBackend) CreateChat(ctx context.Context, participantID string) (*chat.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, c := range f.chats {
		if c.HasParticipant(participantID) {
			out := *c
			return &out, nil
		}
	}
	f.nextID++
	conv := chat.Conversation{
		ID:        fmt.Sprintf("conv-%d", f.nextID),
		UpdatedAt: time.Now().UTC(),
	}
	conv.Participants[1] = chat.User{ID: participantID, DisplayName: participantID, Role: chat.RoleMentor}
	f.chats[conv.ID] = &conv
	out := conv
	return &out, nil
}

func (f *fakeBackend) OpenChat(ctx context.Context, conversationID string) (*chat.Conversation, []chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, nil, f.openErr
	}
	c, ok := f.chats[conversationID]
	if !ok {
		return nil, nil, errors.New("no such conversation")
	}
	out := *c
	return &out, append([]chat.Message(nil), f.history[conversationID]...), nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, conversationID string, content string) (*chat.Message, *wire.ChatDelta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, nil, f.sendErr
	}
	f.nextID++
	msg := chat.Message{
		ID:             fmt.Sprintf("msg-%d", f.nextID),
		ConversationID: conversationID,
		Sender:         testUser,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	f.history[conversationID] = append(f.history[conversationID], msg)
	f.sendSeen = append(f.sendSeen, content)

	summary := msg.Summary()
	delta := wire.ChatDelta{ID: conversationID, LastMessage: &summary, UpdatedAt: msg.CreatedAt}
	out := msg
	return &out, &delta, nil
}

// nopJoiner satisfies roomJoiner for tests that don't care about rooms.
type nopJoiner struct {
	mu     sync.Mutex
	joined []string
}

func (j *nopJoiner) JoinConversation(conversationID string) {
	j.mu.Lock()
	j.joined = append(j.joined, conversationID)
	j.mu.Unlock()
}

// nopEmitter satisfies typingEmitter and records edges.
type nopEmitter struct {
	mu    sync.Mutex
	edges []bool
}

func (e *nopEmitter) EmitTyping(conversationID string, isTyping bool) {
	e.mu.Lock()
	e.edges = append(e.edges, isTyping)
	e.mu.Unlock()
}
