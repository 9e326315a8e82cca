package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "mentorchat/internal/pkg/chat/application/domain"
	"mentorchat/internal/pkg/chat/wire"
)

type recordingHandler struct {
	messages chan chat.Message
	typing   chan chat.TypingSignal
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		messages: make(chan chat.Message, 16),
		typing:   make(chan chat.TypingSignal, 16),
	}
}

func (h *recordingHandler) HandleNewMessage(chatID string, msg chat.Message, delta *wire.ChatDelta) {
	h.messages <- msg
}

func (h *recordingHandler) HandleTyping(sig chat.TypingSignal) {
	h.typing <- sig
}

// wsTestServer upgrades every request and hands the connection to serve.
func wsTestServer(t *testing.T, serve func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serve(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestChannelDispatchesServerFrames(t *testing.T) {
	srv := wsTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		_ = conn.WriteJSON(wire.ServerFrame{
			Type:    wire.FrameNewMessage,
			ChatID:  "c1",
			Message: &chat.Message{ID: "m1", ConversationID: "c1", Content: "hi"},
		})
		_ = conn.WriteJSON(wire.ServerFrame{
			Type:   wire.FrameUserTyping,
			Typing: &chat.TypingSignal{ConversationID: "c1", UserID: "u2", UserName: "Marta", IsTyping: true},
		})
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	handler := newRecordingHandler()
	ch := NewChannel(wsURL(srv), handler, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = ch.Run(ctx) }()

	select {
	case msg := <-handler.messages:
		assert.Equal(t, "m1", msg.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("new-message frame never dispatched")
	}

	select {
	case sig := <-handler.typing:
		assert.Equal(t, "u2", sig.UserID)
		assert.True(t, sig.IsTyping)
	case <-time.After(2 * time.Second):
		t.Fatal("user-typing frame never dispatched")
	}

	assert.Equal(t, ChannelJoined, ch.State())
}

func TestChannelRejoinsRoomAfterReconnect(t *testing.T) {
	frames := make(chan wire.ClientFrame, 16)
	conns := make(chan struct{}, 4)
	srv := wsTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		conns <- struct{}{}

		var frame wire.ClientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		frames <- frame

		// First connection dies right after the join; later ones stay up.
		if len(conns) == 1 {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	ch := NewChannel(wsURL(srv), newRecordingHandler(), zerolog.Nop())
	ch.minBackoff = 10 * time.Millisecond
	ch.JoinConversation("c1") // set before any connection exists

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = ch.Run(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case frame := <-frames:
			assert.Equal(t, wire.FrameJoinChat, frame.Type)
			assert.Equal(t, "c1", frame.ConversationID)
		case <-time.After(3 * time.Second):
			t.Fatalf("join frame %d never arrived", i+1)
		}
	}
}

func TestChannelSwapSendsLeaveThenJoin(t *testing.T) {
	frames := make(chan wire.ClientFrame, 16)
	srv := wsTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		for {
			var frame wire.ClientFrame
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			frames <- frame
		}
	})

	ch := NewChannel(wsURL(srv), newRecordingHandler(), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = ch.Run(ctx) }()

	require.Eventually(t, func() bool {
		return ch.State() == ChannelJoined
	}, 2*time.Second, 10*time.Millisecond)

	ch.JoinConversation("c1")
	ch.JoinConversation("c2")

	want := []wire.ClientFrame{
		{Type: wire.FrameJoinChat, ConversationID: "c1"},
		{Type: wire.FrameLeaveChat, ConversationID: "c1"},
		{Type: wire.FrameJoinChat, ConversationID: "c2"},
	}
	for _, w := range want {
		select {
		case got := <-frames:
			assert.Equal(t, w.Type, got.Type)
			assert.Equal(t, w.ConversationID, got.ConversationID)
		case <-time.After(2 * time.Second):
			t.Fatalf("frame %s %s never arrived", w.Type, w.ConversationID)
		}
	}
}

func TestChannelEmitTypingWhileDisconnectedIsDropped(t *testing.T) {
	ch := NewChannel("ws://127.0.0.1:1/nope", newRecordingHandler(), zerolog.Nop())

	// No connection: must not panic, nothing to assert beyond that.
	ch.EmitTyping("c1", true)
	ch.EmitTyping("c1", false)
	assert.Equal(t, ChannelDisconnected, ch.State())
}

func TestChannelJoinSameRoomIsNoop(t *testing.T) {
	frames := make(chan wire.ClientFrame, 16)
	srv := wsTestServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		for {
			var frame wire.ClientFrame
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			frames <- frame
		}
	})

	ch := NewChannel(wsURL(srv), newRecordingHandler(), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = ch.Run(ctx) }()

	require.Eventually(t, func() bool {
		return ch.State() == ChannelJoined
	}, 2*time.Second, 10*time.Millisecond)

	ch.JoinConversation("c1")
	ch.JoinConversation("c1")

	select {
	case frame := <-frames:
		assert.Equal(t, wire.FrameJoinChat, frame.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("join frame never arrived")
	}

	select {
	case frame := <-frames:
		t.Fatalf("unexpected extra frame %s %s", frame.Type, frame.ConversationID)
	case <-time.After(150 * time.Millisecond):
	}
}
