// Package main runs the LMS dashboard HTTP server with graceful shutdown.
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

	"github.com/batchlms/backend/config"
	"github.com/batchlms/backend/internal/batches"
	"github.com/batchlms/backend/internal/meetings"
	"github.com/batchlms/backend/internal/middleware"
	"github.com/batchlms/backend/internal/recordings"
	"github.com/batchlms/backend/internal/vimeo"
	"github.com/batchlms/backend/internal/worker"
	"github.com/batchlms/backend/internal/zoom"
	"github.com/batchlms/backend/pkg/database"
	"github.com/batchlms/backend/pkg/queue"
	"github.com/batchlms/backend/pkg/redis"
	"github.com/batchlms/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	zoomClient := zoom.NewClient(cfg.Zoom, logger)
	vimeoClient := vimeo.NewClient(cfg.Vimeo, logger)

	// Repositories
	batchRepo := batches.NewRepository(pool)
	meetingRepo := meetings.NewRepository(pool)
	recordingRepo := recordings.NewRepository(pool)

	// Webhook reconciliation: verified events go through the Redis queue so
	// the webhook response never waits on storage.
	jobQueue := queue.NewQueue(rdb.Client, logger)
	reconciler := recordings.NewReconciler(recordingRepo, logger)
	reconcileWorker := worker.NewReconcileProcessor(reconciler, jobQueue, logger)
	webhookHandler := recordings.NewWebhookHandler(cfg.Zoom.WebhookSecret, worker.QueueDispatcher{Queue: jobQueue}, logger)

	// Meetings
	meetingService := meetings.NewService(batchRepo, meetingRepo, recordingRepo, zoomClient, logger)
	meetingHandler := meetings.NewHandler(meetingService, logger)

	// Batches
	batchDeleter := batches.NewDeleter(batchRepo, vimeoClient, logger)
	batchHandler := batches.NewHandler(batchRepo, batchDeleter, meetingRepo, recordingRepo, logger)

	// Vimeo catalog
	vimeoHandler := vimeo.NewHandler(vimeoClient, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Webhook (raw body; signature is verified inside the handler)
	router.POST("/zoom-webhook", webhookHandler.Handle)
	router.GET("/zoom-webhook", webhookHandler.Ping)

	api := router.Group("/api")
	{
		api.GET("/batch", batchHandler.List)
		api.POST("/batch", batchHandler.Create)
		api.GET("/batch/:batchId/meetings", batchHandler.ListMeetings)
		api.DELETE("/batch/:id", batchHandler.Delete)

		api.POST("/zoom/:batchId/:day/:session", meetingHandler.Create)
		api.GET("/zoom/recordings/:meetingId", meetingHandler.ListRecordings)
		api.DELETE("/zoom/recordings/:meetingId", meetingHandler.DeleteRecordings)
		api.DELETE("/zoom/:id", meetingHandler.Delete)

		api.GET("/vimeo", vimeoHandler.List)
		api.DELETE("/vimeo/:videoId", vimeoHandler.Delete)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// In-process reconcile worker
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go reconcileWorker.Run(workerCtx)
	logger.Info("reconcile worker started")

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
