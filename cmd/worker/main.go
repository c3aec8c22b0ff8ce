package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/refinery-hq/refinery/internal/config"
	"github.com/refinery-hq/refinery/internal/processing"
	"github.com/refinery-hq/refinery/internal/store"
	minioclient "github.com/refinery-hq/refinery/internal/store/minio"
	"github.com/refinery-hq/refinery/internal/store/postgres"
	vk "github.com/refinery-hq/refinery/internal/store/valkey"
)

func main() {
	_ = godotenv.Load(".env") // ignore error if .env missing

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := postgres.NewPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	s := store.New(pool)

	// Valkey
	vkClient, err := vk.NewClient(cfg.Valkey)
	if err != nil {
		logger.Error("failed to connect to valkey", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer vkClient.Close()
	logger.Info("connected to valkey")

	// MinIO
	minioClient, err := minioclient.NewClient(cfg.MinIO)
	if err != nil {
		logger.Error("failed to connect to minio", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := minioClient.EnsureBucket(ctx); err != nil {
		logger.Error("failed to ensure bucket", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("connected to minio", slog.String("bucket", minioClient.Bucket()))

	pipeline := processing.NewPipeline(s, minioClient, logger, cfg.Worker.BatchSize)

	consumer := processing.NewConsumer(vkClient, cfg.Worker.ConsumerID, logger)
	if err := consumer.EnsureGroup(ctx); err != nil {
		logger.Error("failed to ensure consumer group", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("starting worker, consuming from stream",
		slog.String("stream", processing.StreamName),
		slog.String("consumer_id", cfg.Worker.ConsumerID))
	if err := consumer.Consume(ctx, func(ctx context.Context, msg processing.RunMessage) error {
		return pipeline.Execute(ctx, msg.RunID)
	}); err != nil {
		if ctx.Err() == nil {
			logger.Error("consumer error", slog.String("error", err.Error()))
		}
	}

	logger.Info("worker stopped")
}
