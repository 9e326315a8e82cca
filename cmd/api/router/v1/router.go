package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	cacheport "mentorchat/internal/infrastructure/cache/port"
	queueport "mentorchat/internal/infrastructure/queue/port"
	"mentorchat/internal/infrastructure/realtime"
	httpHandler "mentorchat/internal/pkg/chat/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1.
func RegisterRoutes(
	r *gin.Engine,
	pool *pgxpool.Pool,
	router *realtime.Router,
	bridge *realtime.Bridge,
	cache cacheport.Cache,
	q queueport.Client,
	log zerolog.Logger,
) {
	v1 := r.Group("/api/v1")
	httpHandler.RegisterRoutes(v1, pool, router, bridge, cache, q, log)
}
