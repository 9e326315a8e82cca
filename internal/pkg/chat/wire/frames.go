// Package wire holds the JSON shapes shared by both ends of the chat
// subsystem: realtime channel frames and REST envelopes. Keeping them in one
// place is what lets the client and server agree on field names.
package wire

import (
	"time"

	chat "mentorchat/internal/pkg/chat/application/domain"
)

// Frame type identifiers. Client-to-server frames carry commands; server-to-
// client frames carry acknowledgements and events.
const (
	// client -> server
	FrameJoinChat  = "join-chat"
	FrameLeaveChat = "leave-chat"
	FrameTyping    = "typing"

	// server -> client
	FrameConnected  = "connected"
	FrameJoined     = "joined"
	FrameLeft       = "left"
	FrameError      = "error"
	FrameNewMessage = "new-message"
	FrameUserTyping = "user-typing"
)

// ClientFrame is the envelope for commands sent over the realtime channel.
// The sender's identity is taken from the connection, never from the frame.
type ClientFrame struct {
	Type           string `json:"type" validate:"required,oneof=join-chat leave-chat typing"`
	ConversationID string `json:"conversationId" validate:"required"`
	UserName       string `json:"userName,omitempty"`
	IsTyping       bool   `json:"isTyping,omitempty"`
}

// ChatDelta is the directory-facing slice of a conversation refreshed by a
// send: just enough to update lastMessage and re-sort.
type ChatDelta struct {
	ID          string               `json:"id"`
	LastMessage *chat.MessageSummary `json:"lastMessage"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// ServerFrame is the envelope for everything pushed to a client.
type ServerFrame struct {
	Type    string             `json:"type"`
	ChatID  string             `json:"chatId,omitempty"`
	Message *chat.Message      `json:"message,omitempty"`
	Chat    *ChatDelta         `json:"chat,omitempty"`
	Typing  *chat.TypingSignal `json:"typing,omitempty"`
	Code    string             `json:"code,omitempty"`
	Error   string             `json:"error,omitempty"`
}
