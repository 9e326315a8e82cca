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

// ListChatsController handles the conversation directory endpoint
// (one controller per endpoint).
type ListChatsController struct {
	UC   *usecase.ListChatsUseCase
	Repo repository.ChatRepository
}

func NewListChatsController(pool *pgxpool.Pool) *ListChatsController {
	repo := adapter.NewPgChatRepository(pool)
	return &ListChatsController{UC: usecase.NewListChatsUseCase(repo), Repo: repo}
}

func (h *ListChatsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, h.Repo)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		convs, err := h.UC.Execute(ctx, usecase.ListChatsInput{UserID: user.ID})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, wire.ErrorResponse{Error: err.Error()})
			return
		}

		if convs == nil {
			convs = []chat.Conversation{}
		}
		c.JSON(http.StatusOK, wire.ChatsResponse{Chats: convs})
	}
}
