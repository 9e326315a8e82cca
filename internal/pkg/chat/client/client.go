package client

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	chat "mentorchat/internal/pkg/chat/application/domain"
	"mentorchat/internal/pkg/chat/wire"
)

// Config assembles a Client. Self is required: every component takes the
// caller's identity explicitly, there is no ambient current-user state.
type Config struct {
	Self      chat.User
	Backend   Backend
	SocketURL string
	TypingTTL time.Duration
	Logger    zerolog.Logger
}

// Client wires the chat subsystem together for one signed-in user and
// routes inbound channel events to the right owner: directory ordering,
// session content, typing presence.
type Client struct {
	self chat.User
	log  zerolog.Logger

	Directory *Directory
	Roster    *Roster
	Session   *Session
	Pipeline  *Pipeline
	Composer  *Composer
	Presence  *Tracker
	Channel   *Channel
}

// Ensure the facade is the channel's dispatch target
var _ EventHandler = (*Client)(nil)

// New builds a Client from cfg.
func New(cfg Config) *Client {
	c := &Client{
		self: cfg.Self,
		log:  cfg.Logger,
	}

	c.Channel = NewChannel(cfg.SocketURL, c, cfg.Logger)
	c.Directory = NewDirectory(cfg.Self, cfg.Backend, cfg.Logger)
	c.Roster = NewRoster(cfg.Self, cfg.Backend, cfg.Logger)
	c.Session = NewSession(cfg.Backend, c.Channel, cfg.Logger)
	c.Pipeline = NewPipeline(cfg.Self, cfg.Backend, c.Session, c.Directory, cfg.Logger)
	c.Composer = NewComposer(c.Pipeline, c.Session, c.Channel)
	c.Presence = NewTracker(cfg.TypingTTL)
	return c
}

// Start runs the realtime channel until ctx is canceled.
func (c *Client) Start(ctx context.Context) error {
	return c.Channel.Run(ctx)
}

// OpenConversation switches the open session to conversationID: history is
// reloaded, the channel swaps rooms, and typing presence from the previous
// conversation is dropped.
func (c *Client) OpenConversation(ctx context.Context, conversationID string) error {
	if err := c.Session.Open(ctx, conversationID); err != nil {
		return err
	}
	c.Presence.Reset()
	return nil
}

// StartConversation opens (or resumes) a conversation with the counterpart
// and makes it the open session.
func (c *Client) StartConversation(ctx context.Context, counterpartID string) (*chat.Conversation, error) {
	conv, err := c.Directory.Create(ctx, counterpartID)
	if err != nil {
		return nil, err
	}
	if err := c.OpenConversation(ctx, conv.ID); err != nil {
		return nil, err
	}
	return conv, nil
}

// HandleNewMessage implements EventHandler. The directory refresh is
// unconditional; the session append is handed straight to AppendFromEvent,
// which decides under its own lock whether the message belongs to the open
// conversation and is new. Checking the open conversation here first would
// reintroduce a window for a concurrent OpenConversation to swap sessions
// between the check and the append.
func (c *Client) HandleNewMessage(chatID string, msg chat.Message, delta *wire.ChatDelta) {
	c.Session.AppendFromEvent(msg)
	if delta != nil {
		c.Directory.UpsertFromEvent(chatID, *delta)
	}
}

// HandleTyping implements EventHandler. Signals for anything but the open
// conversation are dropped; the tracker is scoped to it.
func (c *Client) HandleTyping(sig chat.TypingSignal) {
	if sig.ConversationID != c.Session.ConversationID() {
		return
	}
	if sig.UserID == c.self.ID {
		return
	}
	c.Presence.Apply(sig)
}
