package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "mentorchat/internal/pkg/chat/application/domain"
	"mentorchat/internal/pkg/chat/application/usecase"
	"mentorchat/internal/pkg/chat/persistence/repository/adapter"
	repository "mentorchat/internal/pkg/chat/persistence/repository/port"
	"mentorchat/internal/pkg/chat/wire"
)

// OpenChatController returns a conversation and its full ascending history
// (one controller per endpoint).
type OpenChatController struct {
	UC   *usecase.OpenChatUseCase
	Repo repository.ChatRepository
}

func NewOpenChatController(pool *pgxpool.Pool) *OpenChatController {
	repo := adapter.NewPgChatRepository(pool)
	return &OpenChatController{UC: usecase.NewOpenChatUseCase(repo), Repo: repo}
}

func (h *OpenChatController) Handle() gin.HandlerFunc {
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

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, msgs, err := h.UC.Execute(ctx, usecase.OpenChatInput{
			ConversationID: chatID,
			UserID:         user.ID,
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

		if msgs == nil {
			msgs = []chat.Message{}
		}
		c.JSON(http.StatusOK, wire.OpenChatResponse{
			Chat: wire.ChatWithMessages{Conversation: *conv, Messages: msgs},
		})
	}
}
