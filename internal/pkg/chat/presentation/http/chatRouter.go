package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	cacheport "mentorchat/internal/infrastructure/cache/port"
	queueport "mentorchat/internal/infrastructure/queue/port"
	"mentorchat/internal/infrastructure/realtime"
	"mentorchat/internal/pkg/chat/presentation/controller"
)

// RegisterRoutes registers the chat endpoints under the given router group.
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(
	g *gin.RouterGroup,
	pool *pgxpool.Pool,
	router *realtime.Router,
	bridge *realtime.Bridge,
	cache cacheport.Cache,
	q queueport.Client,
	log zerolog.Logger,
) {
	notifier := controller.NewNotifier(router, bridge, log)

	listCtl := controller.NewListChatsController(pool)
	mentorsCtl := controller.NewListMentorsController(pool, cache)
	studentsCtl := controller.NewListStudentsController(pool, cache)
	createCtl := controller.NewCreateChatController(pool)
	openCtl := controller.NewOpenChatController(pool)
	sendCtl := controller.NewSendMessageController(pool, notifier, q)
	socketCtl := controller.NewChatSocketController(pool, router, notifier, log)

	// GET  /chats             -> conversation directory, newest activity first
	g.GET("/chats", listCtl.Handle())

	// GET  /chats/mentors     -> mentors a mentee can start a conversation with
	// GET  /chats/students    -> mentees visible to a mentor or admin
	g.GET("/chats/mentors", mentorsCtl.Handle())
	g.GET("/chats/students", studentsCtl.Handle())

	// POST /chats             -> open (or return) the conversation with a counterpart
	g.POST("/chats", createCtl.Handle())

	// GET  /chats/ws          -> websocket endpoint for realtime traffic
	g.GET("/chats/ws", socketCtl.Handle())

	// GET  /chats/:chatId     -> conversation plus full message history
	g.GET("/chats/:chatId", openCtl.Handle())

	// POST /chats/:chatId/messages -> persist a message and fan it out
	g.POST("/chats/:chatId/messages", sendCtl.Handle())
}
