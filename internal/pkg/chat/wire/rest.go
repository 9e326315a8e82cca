package wire

import chat "mentorchat/internal/pkg/chat/application/domain"

// REST envelopes for the /chats surface.

type ChatsResponse struct {
	Chats []chat.Conversation `json:"chats"`
}

type MentorsResponse struct {
	Mentors []chat.User `json:"mentors"`
}

type StudentsResponse struct {
	Students []chat.User `json:"students"`
}

type CreateChatRequest struct {
	ParticipantID string `json:"participantId" binding:"required"`
}

type CreateChatResponse struct {
	Chat chat.Conversation `json:"chat"`
}

// ChatWithMessages is a conversation plus its full ascending history,
// returned when a conversation is opened.
type ChatWithMessages struct {
	chat.Conversation
	Messages []chat.Message `json:"messages"`
}

type OpenChatResponse struct {
	Chat ChatWithMessages `json:"chat"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type SendMessageResponse struct {
	Message chat.Message `json:"message"`
	Chat    ChatDelta    `json:"chat"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
