package client

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	chat "mentorchat/internal/pkg/chat/application/domain"
)

// Pipeline drives an outgoing message from keystroke to durable record:
// optimistic local echo, then server confirmation or retraction.
type Pipeline struct {
	self      chat.User
	api       Backend
	session   *Session
	directory *Directory
	log       zerolog.Logger
}

func NewPipeline(self chat.User, api Backend, session *Session, directory *Directory, log zerolog.Logger) *Pipeline {
	return &Pipeline{self: self, api: api, session: session, directory: directory, log: log}
}

// Send posts content to the open conversation.
//
// The temporary record is appended before the request is issued and the
// confirmation replaces it by temporary id, never by content match. On
// failure the temporary record is retracted entirely; the caller's input
// buffer is not restored.
func (p *Pipeline) Send(ctx context.Context, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	conversationID := p.session.ConversationID()
	if conversationID == "" {
		return nil, ErrNoOpenConversation
	}

	temp := chat.Message{
		ID:             "tmp-" + uuid.NewString(),
		ConversationID: conversationID,
		Sender:         p.self,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	p.session.AppendPending(temp)

	msg, delta, err := p.api.SendMessage(ctx, conversationID, content)
	if err != nil {
		p.session.RemoveByID(temp.ID)
		return nil, transient("send message", err)
	}

	p.session.ReplaceByTempID(temp.ID, *msg)
	p.directory.UpsertFromEvent(conversationID, *delta)

	confirmed := Message{Message: *msg, State: StateConfirmed}
	return &confirmed, nil
}
