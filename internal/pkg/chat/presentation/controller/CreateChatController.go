package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"mentorchat/internal/pkg/chat/application/usecase"
	"mentorchat/internal/pkg/chat/persistence/repository/adapter"
	repository "mentorchat/internal/pkg/chat/persistence/repository/port"
	"mentorchat/internal/pkg/chat/wire"
)

// CreateChatController handles the conversation creation endpoint
// (one controller per endpoint). Creating a pair that already has a
// conversation returns the existing one.
type CreateChatController struct {
	UC   *usecase.CreateChatUseCase
	Repo repository.ChatRepository
}

func NewCreateChatController(pool *pgxpool.Pool) *CreateChatController {
	repo := adapter.NewPgChatRepository(pool)
	return &CreateChatController{UC: usecase.NewCreateChatUseCase(repo), Repo: repo}
}

func (h *CreateChatController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, h.Repo)
		if !ok {
			return
		}

		var req wire.CreateChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, wire.ErrorResponse{Error: err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, err := h.UC.Execute(ctx, usecase.CreateChatInput{
			Requester:     *user,
			ParticipantID: req.ParticipantID,
		})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, wire.ErrorResponse{Error: err.Error()})
			return
		}

		c.JSON(http.StatusCreated, wire.CreateChatResponse{Chat: *conv})
	}
}
