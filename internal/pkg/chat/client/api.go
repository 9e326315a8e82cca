package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	chat "mentorchat/internal/pkg/chat/application/domain"
	"mentorchat/internal/pkg/chat/wire"
)

// Backend is the REST surface of the chat service as consumed by the client.
// Implementations must be safe for concurrent use.
type Backend interface {
	ListChats(ctx context.Context) ([]chat.Conversation, error)
	ListCounterparts(ctx context.Context, role chat.Role) ([]chat.User, error)
	CreateChat(ctx context.Context, participantID string) (*chat.Conversation, error)
	OpenChat(ctx context.Context, conversationID string) (*chat.Conversation, []chat.Message, error)
	SendMessage(ctx context.Context, conversationID string, content string) (*chat.Message, *wire.ChatDelta, error)
}

// restBackend talks to the /api/v1 surface over plain HTTP. The caller's
// identity rides on every request; authentication itself is owned by the
// platform gateway.
type restBackend struct {
	base   string
	userID string
	hc     *http.Client
}

// NewRESTBackend constructs a Backend for the given base URL (e.g.
// "http://localhost:8080/api/v1") acting as userID. Every request carries a
// client-side timeout so a dead server cannot wedge a flow forever.
func NewRESTBackend(base string, userID string) Backend {
	return &restBackend{
		base:   strings.TrimRight(base, "/"),
		userID: userID,
		hc:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *restBackend) ListChats(ctx context.Context) ([]chat.Conversation, error) {
	var out wire.ChatsResponse
	if err := b.do(ctx, http.MethodGet, "/chats", nil, &out); err != nil {
		return nil, err
	}
	return out.Chats, nil
}

func (b *restBackend) ListCounterparts(ctx context.Context, role chat.Role) ([]chat.User, error) {
	if role == chat.RoleMentee {
		var out wire.MentorsResponse
		if err := b.do(ctx, http.MethodGet, "/chats/mentors", nil, &out); err != nil {
			return nil, err
		}
		return out.Mentors, nil
	}
	var out wire.StudentsResponse
	if err := b.do(ctx, http.MethodGet, "/chats/students", nil, &out); err != nil {
		return nil, err
	}
	return out.Students, nil
}

func (b *restBackend) CreateChat(ctx context.Context, participantID string) (*chat.Conversation, error) {
	var out wire.CreateChatResponse
	in := wire.CreateChatRequest{ParticipantID: participantID}
	if err := b.do(ctx, http.MethodPost, "/chats", in, &out); err != nil {
		return nil, err
	}
	return &out.Chat, nil
}

func (b *restBackend) OpenChat(ctx context.Context, conversationID string) (*chat.Conversation, []chat.Message, error) {
	var out wire.OpenChatResponse
	path := "/chats/" + url.PathEscape(conversationID)
	if err := b.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, nil, err
	}
	conv := out.Chat.Conversation
	return &conv, out.Chat.Messages, nil
}

func (b *restBackend) SendMessage(ctx context.Context, conversationID string, content string) (*chat.Message, *wire.ChatDelta, error) {
	var out wire.SendMessageResponse
	path := "/chats/" + url.PathEscape(conversationID) + "/messages"
	in := wire.SendMessageRequest{Content: content}
	if err := b.do(ctx, http.MethodPost, path, in, &out); err != nil {
		return nil, nil, err
	}
	return &out.Message, &out.Chat, nil
}

func (b *restBackend) do(ctx context.Context, method string, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("X-User-ID", b.userID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var er wire.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&er) == nil && er.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, er.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
