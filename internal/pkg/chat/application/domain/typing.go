package chat

// TypingSignal is the ephemeral presence event relayed between participants
// of a conversation. It is never persisted; lost signals are tolerated by
// expiry on the receiving side.
type TypingSignal struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	UserName       string `json:"userName"`
	IsTyping       bool   `json:"isTyping"`
}
