package client

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	chat "mentorchat/internal/pkg/chat/application/domain"
)

// DeliveryState tracks a message through the send pipeline.
type DeliveryState string

const (
	StatePending   DeliveryState = "pending"
	StateConfirmed DeliveryState = "confirmed"
)

// Message is a conversation entry as rendered on this device: the wire
// message plus its local delivery state. Failed sends are retracted rather
// than kept, so a session only ever holds pending and confirmed entries.
type Message struct {
	chat.Message
	State DeliveryState
}

// roomJoiner is the slice of the realtime channel the session needs: swap the
// single active conversation room.
type roomJoiner interface {
	JoinConversation(conversationID string)
}

// Session owns the message history of the one open conversation. Insertion
// is idempotent by message id; order is insertion order and is never
// revisited, which keeps it causally consistent with what this device saw.
type Session struct {
	api   Backend
	rooms roomJoiner
	log   zerolog.Logger

	mu             sync.Mutex
	conversationID string
	messages       []Message
	byID           map[string]int // message id -> index in messages
}

func NewSession(api Backend, rooms roomJoiner, log zerolog.Logger) *Session {
	return &Session{
		api:   api,
		rooms: rooms,
		log:   log,
		byID:  make(map[string]int),
	}
}

// Open discards any previously loaded messages, fetches the full history for
// the new conversation, and moves the realtime channel into its room. On
// failure the previous session stays intact and the error is retryable.
func (s *Session) Open(ctx context.Context, conversationID string) error {
	conv, history, err := s.api.OpenChat(ctx, conversationID)
	if err != nil {
		return transient("open conversation", err)
	}

	s.mu.Lock()
	s.conversationID = conv.ID
	s.messages = make([]Message, 0, len(history))
	s.byID = make(map[string]int, len(history))
	for _, m := range history {
		s.appendLocked(Message{Message: m, State: StateConfirmed})
	}
	// The room swap happens under the same lock as the open-conversation id,
	// so overlapping Opens cannot finish with the channel occupying the room
	// of a conversation that is no longer open. The channel takes only its
	// own lock and never calls back into the session.
	s.rooms.JoinConversation(conv.ID)
	s.mu.Unlock()
	return nil
}

// ConversationID returns the id of the open conversation, or "" if none.
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// Messages returns a copy of the session in render order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// AppendPending inserts an optimistic local echo at the tail. Messages for
// anything but the open conversation are rejected.
func (s *Session) AppendPending(m chat.Message) bool {
	return s.append(Message{Message: m, State: StatePending})
}

// AppendConfirmed inserts a server-confirmed message at the tail. Inserting
// an id the session already holds, or a message for another conversation,
// is a no-op.
func (s *Session) AppendConfirmed(m chat.Message) bool {
	return s.append(Message{Message: m, State: StateConfirmed})
}

// AppendFromEvent inserts a message delivered over the realtime channel.
// Identical semantics to AppendConfirmed: the id check is what stops the
// sender's own broadcast echo from double-rendering, and the conversation
// check is what keeps an event that raced an Open out of the wrong history.
func (s *Session) AppendFromEvent(m chat.Message) bool {
	return s.append(Message{Message: m, State: StateConfirmed})
}

// ReplaceByTempID swaps the optimistic record for the server-assigned one,
// matching by temporary id, never by content. The entry keeps its position.
// If the temp id is gone but the server id is already present (the broadcast
// echo won the race), this is a no-op.
func (s *Session) ReplaceByTempID(tempID string, m chat.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[tempID]
	if !ok {
		return false
	}
	if j, dup := s.byID[m.ID]; dup && j != i {
		// Server record already arrived via the channel; drop the echo.
		s.removeAtLocked(i)
		return true
	}

	delete(s.byID, tempID)
	s.messages[i] = Message{Message: m, State: StateConfirmed}
	s.byID[m.ID] = i
	return true
}

// RemoveByID retracts a message, shifting later entries down.
func (s *Session) RemoveByID(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return false
	}
	s.removeAtLocked(i)
	return true
}

func (s *Session) append(m Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(m)
}

func (s *Session) appendLocked(m Message) bool {
	// The conversation check happens under the same lock as the insert, so a
	// concurrent Open cannot slip in between a caller's guard and the append
	// and let a message land in the wrong history.
	if s.conversationID == "" || m.ConversationID != s.conversationID {
		return false
	}
	if _, dup := s.byID[m.ID]; dup {
		return false
	}
	s.byID[m.ID] = len(s.messages)
	s.messages = append(s.messages, m)
	return true
}

func (s *Session) removeAtLocked(i int) {
	delete(s.byID, s.messages[i].ID)
	s.messages = append(s.messages[:i], s.messages[i+1:]...)
	for j := i; j < len(s.messages); j++ {
		s.byID[s.messages[j].ID] = j
	}
}
