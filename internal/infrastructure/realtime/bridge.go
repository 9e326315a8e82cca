package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	chatChannelPrefix = "chat:"
	userChannelPrefix = "user:"
)

// Bridge relays room traffic between nodes over Redis pub/sub so a broadcast
// reaches sessions attached elsewhere. Each node publishes with its own
// origin id and skips envelopes it published itself; local delivery is done
// directly by the caller.
type Bridge struct {
	node   string
	rdb    *redis.Client
	router *Router
	log    zerolog.Logger
}

type envelope struct {
	Origin  string          `json:"origin"`
	Exclude string          `json:"exclude,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// NewBridge wires the router to a Redis client. rdb may be nil, in which case
// every method is a no-op and the deployment is single-node.
func NewBridge(rdb *redis.Client, router *Router, log zerolog.Logger) *Bridge {
	return &Bridge{
		node:   uuid.NewString(),
		rdb:    rdb,
		router: router,
		log:    log,
	}
}

// Run subscribes to chat and user channels and re-broadcasts foreign
// envelopes to local sessions. It blocks until ctx is canceled.
func (b *Bridge) Run(ctx context.Context) error {
	if b.rdb == nil {
		<-ctx.Done()
		return nil
	}

	pubsub := b.rdb.PSubscribe(ctx, chatChannelPrefix+"*", userChannelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.deliver(msg.Channel, []byte(msg.Payload))
		}
	}
}

// PublishChat fans payload out to the conversation room on other nodes.
func (b *Bridge) PublishChat(ctx context.Context, conversationID string, payload []byte, excludeUserID string) {
	b.publish(ctx, chatChannelPrefix+conversationID, payload, excludeUserID)
}

// PublishUser fans payload out to the user's session on other nodes.
func (b *Bridge) PublishUser(ctx context.Context, userID string, payload []byte) {
	b.publish(ctx, userChannelPrefix+userID, payload, "")
}

func (b *Bridge) publish(ctx context.Context, channel string, payload []byte, exclude string) {
	if b.rdb == nil {
		return
	}
	raw, err := json.Marshal(envelope{Origin: b.node, Exclude: exclude, Payload: payload})
	if err != nil {
		return
	}
	if err := b.rdb.Publish(ctx, channel, raw).Err(); err != nil {
		b.log.Warn().Str("channel", channel).Err(err).Msg("bridge publish failed")
	}
}

func (b *Bridge) deliver(channel string, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		b.log.Warn().Str("channel", channel).Err(err).Msg("bridge envelope decode failed")
		return
	}
	if env.Origin == b.node {
		return
	}

	switch {
	case strings.HasPrefix(channel, chatChannelPrefix):
		b.router.Broadcast(strings.TrimPrefix(channel, chatChannelPrefix), env.Payload, env.Exclude)
	case strings.HasPrefix(channel, userChannelPrefix):
		b.router.NotifyUser(strings.TrimPrefix(channel, userChannelPrefix), env.Payload)
	}
}
