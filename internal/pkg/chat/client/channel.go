package client

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	chat "mentorchat/internal/pkg/chat/application/domain"
	"mentorchat/internal/pkg/chat/wire"
)

// ChannelState is the realtime connection lifecycle.
type ChannelState int32

const (
	ChannelDisconnected ChannelState = iota
	ChannelConnecting
	ChannelJoined
)

func (s ChannelState) String() string {
	switch s {
	case ChannelConnecting:
		return "connecting"
	case ChannelJoined:
		return "joined"
	}
	return "disconnected"
}

// EventHandler receives inbound events decoded off the realtime channel.
type EventHandler interface {
	HandleNewMessage(chatID string, msg chat.Message, delta *wire.ChatDelta)
	HandleTyping(sig chat.TypingSignal)
}

// Channel maintains the single realtime connection for a signed-in session.
// Connecting joins the user's own room server-side; at most one conversation
// room is occupied at a time and it is re-joined automatically after a
// reconnect. While disconnected, sends still flow over REST, so delivery
// degrades rather than fails.
type Channel struct {
	url     string
	handler EventHandler
	log     zerolog.Logger
	dialer  *websocket.Dialer

	minBackoff time.Duration
	maxBackoff time.Duration

	mu    sync.Mutex
	state ChannelState
	conn  *websocket.Conn
	room  string // conversation room that should be occupied
}

// NewChannel constructs a Channel for the given websocket URL
// (e.g. "ws://localhost:8080/api/v1/chats/ws?user_id=<id>").
func NewChannel(url string, handler EventHandler, log zerolog.Logger) *Channel {
	return &Channel{
		url:        url,
		handler:    handler,
		log:        log,
		dialer:     websocket.DefaultDialer,
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
	}
}

// Run connects and keeps the channel alive until ctx is canceled, redialing
// with capped exponential backoff. It blocks.
func (ch *Channel) Run(ctx context.Context) error {
	backoff := ch.minBackoff

	for {
		if ctx.Err() != nil {
			ch.setState(ChannelDisconnected, nil)
			return ctx.Err()
		}

		ch.setState(ChannelConnecting, nil)
		conn, _, err := ch.dialer.DialContext(ctx, ch.url, nil)
		if err != nil {
			ch.setState(ChannelDisconnected, nil)
			ch.log.Debug().Err(err).Dur("retry_in", backoff).Msg("channel dial failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, ch.maxBackoff)
			continue
		}

		backoff = ch.minBackoff
		ch.setState(ChannelJoined, conn)
		ch.rejoinRoom()

		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = conn.Close()
			case <-done:
			}
		}()

		ch.readLoop(conn)
		close(done)
		_ = conn.Close()
		ch.setState(ChannelDisconnected, nil)
	}
}

// State returns the current connection state.
func (ch *Channel) State() ChannelState {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.state
}

// JoinConversation swaps the occupied conversation room. The leave/join pair
// is sent under the channel lock so room membership moves atomically with the
// client's notion of which conversation is open.
func (ch *Channel) JoinConversation(conversationID string) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	previous := ch.room
	ch.room = conversationID
	if ch.conn == nil || conversationID == previous {
		return
	}
	if previous != "" {
		ch.writeLocked(wire.ClientFrame{Type: wire.FrameLeaveChat, ConversationID: previous})
	}
	if conversationID != "" {
		ch.writeLocked(wire.ClientFrame{Type: wire.FrameJoinChat, ConversationID: conversationID})
	}
}

// EmitTyping sends a typing edge for the conversation. Dropped silently while
// disconnected; typing presence is ephemeral by design.
func (ch *Channel) EmitTyping(conversationID string, isTyping bool) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.conn == nil {
		return
	}
	ch.writeLocked(wire.ClientFrame{
		Type:           wire.FrameTyping,
		ConversationID: conversationID,
		IsTyping:       isTyping,
	})
}

func (ch *Channel) rejoinRoom() {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.conn != nil && ch.room != "" {
		ch.writeLocked(wire.ClientFrame{Type: wire.FrameJoinChat, ConversationID: ch.room})
	}
}

func (ch *Channel) setState(state ChannelState, conn *websocket.Conn) {
	ch.mu.Lock()
	ch.state = state
	ch.conn = conn
	ch.mu.Unlock()
}

func (ch *Channel) writeLocked(frame wire.ClientFrame) {
	if err := ch.conn.WriteJSON(frame); err != nil {
		ch.log.Debug().Err(err).Str("type", frame.Type).Msg("channel write failed")
	}
}

func (ch *Channel) readLoop(conn *websocket.Conn) {
	for {
		var frame wire.ServerFrame
		if err := conn.ReadJSON(&frame); err != nil {
			ch.log.Debug().Err(err).Msg("channel read ended")
			return
		}
		ch.dispatch(frame)
	}
}

func (ch *Channel) dispatch(frame wire.ServerFrame) {
	switch frame.Type {
	case wire.FrameNewMessage:
		if frame.Message != nil {
			ch.handler.HandleNewMessage(frame.ChatID, *frame.Message, frame.Chat)
		}
	case wire.FrameUserTyping:
		if frame.Typing != nil {
			ch.handler.HandleTyping(*frame.Typing)
		}
	case wire.FrameError:
		ch.log.Warn().Str("code", frame.Code).Str("error", frame.Error).Msg("channel error frame")
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
