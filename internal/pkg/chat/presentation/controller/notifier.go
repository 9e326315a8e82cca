package controller

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"mentorchat/internal/infrastructure/realtime"
	chat "mentorchat/internal/pkg/chat/application/domain"
	"mentorchat/internal/pkg/chat/wire"
)

// Notifier pushes server frames to participants through the local router and
// the cross-node bridge.
//
// With 1:1 conversations and one active socket per user, per-user delivery
// fully covers new-message fan-out, so the sender's own session receives its
// message back too; clients reconcile by message id. Typing signals go
// through the conversation room instead so only sessions with the
// conversation open receive them.
type Notifier struct {
	Router *realtime.Router
	Bridge *realtime.Bridge
	Log    zerolog.Logger
}

func NewNotifier(router *realtime.Router, bridge *realtime.Bridge, log zerolog.Logger) *Notifier {
	return &Notifier{Router: router, Bridge: bridge, Log: log}
}

// NewMessage delivers a new-message frame to every participant of conv.
func (n *Notifier) NewMessage(ctx context.Context, conv chat.Conversation, msg chat.Message, delta wire.ChatDelta) {
	frame := wire.ServerFrame{
		Type:    wire.FrameNewMessage,
		ChatID:  conv.ID,
		Message: &msg,
		Chat:    &delta,
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		n.Log.Error().Err(err).Msg("encode new-message frame")
		return
	}

	for _, p := range conv.Participants {
		if n.Router.NotifyUser(p.ID, payload) {
			continue
		}
		// Not attached here; maybe on another node.
		n.Bridge.PublishUser(ctx, p.ID, payload)
	}
}

// Typing relays a typing signal to the conversation room, excluding its sender.
func (n *Notifier) Typing(ctx context.Context, sig chat.TypingSignal) {
	frame := wire.ServerFrame{
		Type:   wire.FrameUserTyping,
		ChatID: sig.ConversationID,
		Typing: &sig,
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		n.Log.Error().Err(err).Msg("encode user-typing frame")
		return
	}

	n.Router.Broadcast(sig.ConversationID, payload, sig.UserID)
	n.Bridge.PublishChat(ctx, sig.ConversationID, payload, sig.UserID)
}
