package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	router "mentorchat/cmd/api/router/v1"
	"mentorchat/internal/config"
	cacheAdapter "mentorchat/internal/infrastructure/cache/adapter"
	cacheport "mentorchat/internal/infrastructure/cache/port"
	"mentorchat/internal/infrastructure/database"
	queueAdapter "mentorchat/internal/infrastructure/queue/adapter"
	queueport "mentorchat/internal/infrastructure/queue/port"
	"mentorchat/internal/infrastructure/realtime"
	"mentorchat/internal/pkg/chat/application/task"
	repoAdapter "mentorchat/internal/pkg/chat/persistence/repository/adapter"
)

func main() {
	// A missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := newLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	pool, err := database.Connect(connectCtx, cfg.Postgres.DSN)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()

	// Redis-backed pieces are optional; without them the node runs standalone.
	var (
		cache    cacheport.Cache
		qClient  queueport.Client
		qServer  queueport.Server
		redisCli *cacheAdapter.RedisCache
	)
	if cfg.Redis.URL != "" {
		redisCli, err = cacheAdapter.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to redis")
		}
		defer redisCli.Close()
		cache = redisCli

		qClient, err = queueAdapter.NewAsynqClient(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("create queue client")
		}
		defer qClient.Close()

		qServer, err = queueAdapter.NewAsynqServer(cfg.Redis.URL, cfg.Queue.Name, cfg.Queue.Concurrency, log)
		if err != nil {
			log.Fatal().Err(err).Msg("create queue server")
		}
	}

	rtRouter := realtime.NewRouter()
	defer rtRouter.Close()

	var bridge *realtime.Bridge
	if redisCli != nil {
		bridge = realtime.NewBridge(redisCli.Client(), rtRouter, log)
	} else {
		bridge = realtime.NewBridge(nil, rtRouter, log)
	}
	go func() {
		if err := bridge.Run(ctx); err != nil {
			log.Error().Err(err).Msg("realtime bridge stopped")
		}
	}()

	if qServer != nil {
		repo := repoAdapter.NewPgChatRepository(pool)
		task.RegisterRefreshSummaryTask(qServer, repo)
		go func() {
			if err := qServer.Run(ctx); err != nil {
				log.Error().Err(err).Msg("queue server stopped")
			}
		}()
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	router.RegisterRoutes(r, pool, rtRouter, bridge, cache, qClient, log)

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	out := os.Stderr
	if cfg.Pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: out}).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
