package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/refinery-hq/refinery/internal/api"
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

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	s := store.New(pool)

	deps := &api.RouterDeps{}

	// MinIO (optional — enables uploads and artifact downloads)
	mc, err := minioclient.NewClient(cfg.MinIO)
	if err != nil {
		logger.Warn("minio connection failed, uploads disabled", slog.String("error", err.Error()))
	} else {
		if err := mc.EnsureBucket(ctx); err != nil {
			logger.Warn("minio ensure bucket failed", slog.String("error", err.Error()))
		}
		deps.MinIO = mc
		logger.Info("connected to minio", slog.String("bucket", mc.Bucket()))
	}

	// Valkey (optional — enables the run queue)
	vkClient, err := vk.NewClient(cfg.Valkey)
	if err != nil {
		logger.Warn("valkey connection failed, run queue disabled", slog.String("error", err.Error()))
	} else {
		deps.Producer = processing.NewProducer(vkClient)
		defer vkClient.Close()
		logger.Info("connected to valkey")
	}

	router := api.NewRouter(logger, s, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting API server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
