package client

import (
	"context"
	"sync"
)

// typingEmitter is the slice of the realtime channel the composer needs.
type typingEmitter interface {
	EmitTyping(conversationID string, isTyping bool)
}

// Composer tracks the input buffer for the open conversation and emits
// typing signals only on the empty/non-empty edges, never per keystroke.
type Composer struct {
	pipeline *Pipeline
	session  *Session
	emitter  typingEmitter

	mu  sync.Mutex
	buf string
}

func NewComposer(pipeline *Pipeline, session *Session, emitter typingEmitter) *Composer {
	return &Composer{pipeline: pipeline, session: session, emitter: emitter}
}

// SetText replaces the buffer with the current input state, emitting a typing
// signal if the buffer crossed the empty boundary in either direction.
func (c *Composer) SetText(text string) {
	c.mu.Lock()
	wasEmpty := c.buf == ""
	c.buf = text
	isEmpty := c.buf == ""
	c.mu.Unlock()

	if wasEmpty != isEmpty {
		if id := c.session.ConversationID(); id != "" {
			c.emitter.EmitTyping(id, isEmpty == false)
		}
	}
}

// Text returns the current buffer.
func (c *Composer) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf
}

// Submit sends the buffer through the pipeline. Whitespace-only input is
// rejected without touching any state. The buffer is cleared as soon as the
// optimistic echo is queued; a failed send does not restore it.
func (c *Composer) Submit(ctx context.Context) (*Message, error) {
	c.mu.Lock()
	text := c.buf
	c.mu.Unlock()

	if isBlank(text) {
		return nil, ErrEmptyContent
	}
	if c.session.ConversationID() == "" {
		return nil, ErrNoOpenConversation
	}

	c.SetText("")
	return c.pipeline.Send(ctx, text)
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
