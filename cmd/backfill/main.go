// Package main runs the one-shot uuid backfill over historical recordings.
// Exits 0 when the pass completes (individual item failures are logged and
// skipped), 1 on an unrecoverable top-level error.
package main

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/batchlms/backend/config"
	"github.com/batchlms/backend/internal/backfill"
	"github.com/batchlms/backend/internal/recordings"
	"github.com/batchlms/backend/internal/zoom"
	"github.com/batchlms/backend/pkg/database"
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

	job := backfill.NewJob(
		recordings.NewRepository(pool),
		zoom.NewClient(cfg.Zoom, logger),
		logger,
	)
	if err := job.Run(ctx); err != nil {
		logger.Fatal("backfill failed", zap.Error(err))
	}
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
