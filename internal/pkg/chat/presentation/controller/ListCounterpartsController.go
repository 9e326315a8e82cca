package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "mentorchat/internal/infrastructure/cache/port"
	chat "mentorchat/internal/pkg/chat/application/domain"
	"mentorchat/internal/pkg/chat/application/usecase"
	"mentorchat/internal/pkg/chat/persistence/repository/adapter"
	repository "mentorchat/internal/pkg/chat/persistence/repository/port"
	"mentorchat/internal/pkg/chat/wire"
)

// ListCounterpartsController serves the roster endpoints: /chats/mentors
// lists mentors (the candidates for a mentee) and /chats/students lists
// mentees. An optional ?q= filters by display name, case-insensitive.
type ListCounterpartsController struct {
	UC   *usecase.ListCounterpartsUseCase
	Repo repository.ChatRepository
	// role whose counterparts this endpoint lists
	asRole chat.Role
	// key for the response envelope: "mentors" or "students"
	side string
}

func NewListMentorsController(pool *pgxpool.Pool, cache cacheport.Cache) *ListCounterpartsController {
	repo := adapter.NewPgChatRepository(pool)
	return &ListCounterpartsController{
		UC:     usecase.NewListCounterpartsUseCase(repo, cache),
		Repo:   repo,
		asRole: chat.RoleMentee,
		side:   "mentors",
	}
}

func NewListStudentsController(pool *pgxpool.Pool, cache cacheport.Cache) *ListCounterpartsController {
	repo := adapter.NewPgChatRepository(pool)
	return &ListCounterpartsController{
		UC:     usecase.NewListCounterpartsUseCase(repo, cache),
		Repo:   repo,
		asRole: chat.RoleMentor,
		side:   "students",
	}
}

func (h *ListCounterpartsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentUser(c, h.Repo); !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		users, err := h.UC.Execute(ctx, usecase.ListCounterpartsInput{
			Role:  h.asRole,
			Query: c.Query("q"),
		})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, wire.ErrorResponse{Error: err.Error()})
			return
		}

		if users == nil {
			users = []chat.User{}
		}
		if h.side == "students" {
			c.JSON(http.StatusOK, wire.StudentsResponse{Students: users})
			return
		}
		c.JSON(http.StatusOK, wire.MentorsResponse{Mentors: users})
	}
}
