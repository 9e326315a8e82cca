package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"mentorchat/internal/infrastructure/realtime"
	chat "mentorchat/internal/pkg/chat/application/domain"
	"mentorchat/internal/pkg/chat/application/usecase"
	repoAdapter "mentorchat/internal/pkg/chat/persistence/repository/adapter"
	"mentorchat/internal/pkg/chat/wire"
)

// ChatSocketController handles the websocket endpoint for realtime chat
// traffic. Connecting joins the user's own room; conversation rooms are
// joined one at a time via join-chat frames, mirroring the single open
// conversation on the client.
type ChatSocketController struct {
	router          *realtime.Router
	notifier        *Notifier
	joinRoomUC      *usecase.JoinConversationUseCase
	repo            *repoAdapter.PgChatRepository
	validate        *validator.Validate
	log             zerolog.Logger
	inflightTimeout time.Duration
}

func NewChatSocketController(pool *pgxpool.Pool, router *realtime.Router, notifier *Notifier, log zerolog.Logger) *ChatSocketController {
	repo := repoAdapter.NewPgChatRepository(pool)
	return &ChatSocketController{
		router:          router,
		notifier:        notifier,
		joinRoomUC:      usecase.NewJoinConversationUseCase(repo),
		repo:            repo,
		validate:        validator.New(),
		log:             log,
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The platform gateway fronts this service; origin policy lives there.
		return true
	},
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades HTTP connections to websocket and processes frames until
// the client disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, wire.ErrorResponse{Error: "user_id is required"})
			return
		}

		lookupCtx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
		user, err := ctl.repo.GetUser(lookupCtx, userID)
		cancel()
		if err != nil {
			c.JSON(http.StatusUnauthorized, wire.ErrorResponse{Error: "unknown user"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; nothing more to do.
			return
		}

		conn := realtime.NewConnection(user.ID, ws)
		ctl.router.Attach(conn)
		conn.Start()
		defer func() {
			ctl.router.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		_ = conn.SendJSON(wire.ServerFrame{Type: wire.FrameConnected})

		// The one conversation room this session currently occupies.
		joined := ""

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.replyError(conn, "read_error", err.Error())
				return
			}

			var frame wire.ClientFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}
			if err := ctl.validate.Struct(frame); err != nil {
				ctl.replyError(conn, "bad_request", err.Error())
				continue
			}

			switch frame.Type {
			case wire.FrameJoinChat:
				joined = ctl.handleJoin(c, conn, frame, joined)
			case wire.FrameLeaveChat:
				joined = ctl.handleLeave(conn, frame, joined)
			case wire.FrameTyping:
				ctl.handleTyping(c, conn, *user, frame, joined)
			}
		}
	}
}

// handleJoin swaps the session into the requested conversation room and
// returns the room now occupied. The leave-old/join-new transition happens
// before the ack so events cannot leak into the wrong session.
func (ctl *ChatSocketController) handleJoin(c *gin.Context, conn *realtime.Connection, frame wire.ClientFrame, joined string) string {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	err := ctl.joinRoomUC.Execute(ctx, usecase.JoinConversationInput{
		ConversationID: frame.ConversationID,
		UserID:         conn.UserID,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return joined
	}

	if joined != "" && joined != frame.ConversationID {
		ctl.router.Leave(joined, conn)
	}
	ctl.router.Join(frame.ConversationID, conn)

	_ = conn.SendJSON(wire.ServerFrame{Type: wire.FrameJoined, ChatID: frame.ConversationID})
	return frame.ConversationID
}

func (ctl *ChatSocketController) handleLeave(conn *realtime.Connection, frame wire.ClientFrame, joined string) string {
	ctl.router.Leave(frame.ConversationID, conn)
	_ = conn.SendJSON(wire.ServerFrame{Type: wire.FrameLeft, ChatID: frame.ConversationID})
	if joined == frame.ConversationID {
		return ""
	}
	return joined
}

func (ctl *ChatSocketController) handleTyping(c *gin.Context, conn *realtime.Connection, user chat.User, frame wire.ClientFrame, joined string) {
	// Only relay typing for the room this session actually occupies; anything
	// else is a stale or forged frame.
	if frame.ConversationID != joined {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	ctl.notifier.Typing(ctx, chat.TypingSignal{
		ConversationID: frame.ConversationID,
		UserID:         user.ID,
		UserName:       user.DisplayName,
		IsTyping:       frame.IsTyping,
	})
}

func (ctl *ChatSocketController) handleUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		ctl.replyError(conn, "internal_error", "unexpected persistence error")
	case errors.Is(err, chat.ErrNotParticipant):
		ctl.replyError(conn, "forbidden", "user is not a participant in this conversation")
	default:
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, code string, message string) {
	_ = conn.SendJSON(wire.ServerFrame{Type: wire.FrameError, Code: code, Error: message})
}
