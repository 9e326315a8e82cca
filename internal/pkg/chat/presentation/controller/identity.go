package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	chat "mentorchat/internal/pkg/chat/application/domain"
	repository "mentorchat/internal/pkg/chat/persistence/repository/port"
)

// UserHeader carries the authenticated user's id. Authentication itself is
// owned by the platform gateway; by the time a request lands here the id is
// trusted.
const UserHeader = "X-User-ID"

// currentUser resolves the caller's identity record, writing the error
// response itself when resolution fails.
func currentUser(c *gin.Context, repo repository.ChatRepository) (*chat.User, bool) {
	id := c.GetHeader(UserHeader)
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing " + UserHeader + " header"})
		return nil, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := repo.GetUser(ctx, id)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return nil, false
	}
	return u, true
}
