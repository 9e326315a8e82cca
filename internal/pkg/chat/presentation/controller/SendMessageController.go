package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	queueport "mentorchat/internal/infrastructure/queue/port"
	chat "mentorchat/internal/pkg/chat/application/domain"
	"mentorchat/internal/pkg/chat/application/task"
	"mentorchat/internal/pkg/chat/application/usecase"
	"mentorchat/internal/pkg/chat/persistence/repository/adapter"
	repository "mentorchat/internal/pkg/chat/persistence/repository/port"
	"mentorchat/internal/pkg/chat/wire"
)

// SendMessageController persists a message, answers the sender with the
// confirmed record, and fans the new-message event out to both participants
// (one controller per endpoint).
type SendMessageController struct {
	UC       *usecase.SendMessageUseCase
	Repo     repository.ChatRepository
	Notifier *Notifier
	Q        queueport.Client
}

func NewSendMessageController(pool *pgxpool.Pool, notifier *Notifier, q queueport.Client) *SendMessageController {
	repo := adapter.NewPgChatRepository(pool)
	return &SendMessageController{
		UC:       usecase.NewSendMessageUseCase(repo),
		Repo:     repo,
		Notifier: notifier,
		Q:        q,
	}
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		chatID := c.Param("chatId")
		if chatID == "" {
			c.JSON(http.StatusBadRequest, wire.ErrorResponse{Error: "chatId is required"})
			return
		}

		user, ok := currentUser(c, h.Repo)
		if !ok {
			return
		}

		var req wire.SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, wire.ErrorResponse{Error: err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		result, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: chatID,
			Sender:         *user,
			Content:        req.Content,
		})
		if err != nil {
			status := http.StatusBadRequest
			switch {
			case errors.Is(err, chat.ErrNotParticipant):
				status = http.StatusForbidden
			case errors.Is(err, usecase.ErrPersistence):
				status = http.StatusInternalServerError
			}
			c.JSON(status, wire.ErrorResponse{Error: err.Error()})
			return
		}

		summary := result.Summary
		delta := wire.ChatDelta{
			ID:          chatID,
			LastMessage: &summary,
			UpdatedAt:   summary.CreatedAt,
		}

		h.Notifier.NewMessage(ctx, result.Conversation, result.Message, delta)
		task.EnqueueRefreshSummary(ctx, h.Q, chatID)

		c.JSON(http.StatusCreated, wire.SendMessageResponse{
			Message: result.Message,
			Chat:    delta,
		})
	}
}
