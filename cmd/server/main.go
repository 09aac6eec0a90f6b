// Package main runs the quiz room server: websocket gateway, leaderboard API and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mockify/backend/config"
	"github.com/mockify/backend/internal/gateway"
	"github.com/mockify/backend/internal/history"
	"github.com/mockify/backend/internal/leaderboard"
	"github.com/mockify/backend/internal/middleware"
	"github.com/mockify/backend/internal/realtime"
	"github.com/mockify/backend/internal/worker"
	"github.com/mockify/backend/pkg/database"
	"github.com/mockify/backend/pkg/queue"
	"github.com/mockify/backend/pkg/redis"
	"github.com/mockify/backend/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.Log.Level)
	defer logger.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var mirror realtime.Mirror
	var hooks gateway.Hooks
	if cfg.Redis.Enabled() {
		rdb, err := redis.NewClient(ctx, redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()

		redisMirror := realtime.NewRedisMirror(rdb.Client, logger)
		go redisMirror.Run(ctx)
		mirror = redisMirror
		hooks = worker.GatewayHooks(queue.NewQueue(rdb.Client, logger), logger)
		logger.Info("redis mirror and archive queue enabled")
	} else {
		logger.Info("redis not configured; results are kept in memory only")
	}

	var archive leaderboard.ArchiveSource
	if cfg.Database.Enabled() {
		pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, logger)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer pool.Close()
		archive = history.NewRepository(pool)
	}

	hub := realtime.NewHub(logger, mirror)
	gw := gateway.New(gateway.Config{
		MaxParticipants: cfg.Room.MaxParticipants,
		CodeLength:      cfg.Room.CodeLength,
		IdleTTL:         cfg.Room.IdleTTL,
		SweepInterval:   cfg.Room.SweepInterval,
		ChatMaxLength:   cfg.Room.ChatMaxLength,
	}, hub, gateway.WithLogger(logger), gateway.WithHooks(hooks))
	go gw.RunSweeper(ctx)

	dispatcher := realtime.NewDispatcher(gw, logger)
	leaderboardHandler := leaderboard.NewHandler(gw, archive, logger)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger, "/api/health"))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			response.OK(c, gin.H{"status": "ok", "rooms": gw.RoomCount(), "connections": hub.ClientCount()})
		})
		api.GET("/rooms/:code/leaderboard", leaderboardHandler.Get)
	}

	router.GET("/ws", realtime.ServeWs(hub, dispatcher, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(level string) *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		config.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, _ := config.Build()
	return logger
}
