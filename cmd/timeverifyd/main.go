package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/preevind/timeverify/internal/common"
	"github.com/preevind/timeverify/internal/jobstore"
	"github.com/preevind/timeverify/internal/metrics"
	"github.com/preevind/timeverify/internal/orchestrator"
	"github.com/preevind/timeverify/internal/report"
	"github.com/preevind/timeverify/internal/server"
	"github.com/preevind/timeverify/internal/vision/anthropic"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store := jobstore.New(logger, jobstore.WithRetention(cfg.Jobs.Retention))
	visionClient := anthropic.NewClient(cfg.Vision, logger)
	orch := orchestrator.New(store, visionClient, logger,
		orchestrator.WithWorkers(cfg.Jobs.Workers),
		orchestrator.WithQueueSize(cfg.Jobs.QueueSize),
		orchestrator.WithTaskTimeout(cfg.Jobs.TaskTimeout),
	)

	h := server.NewHandler(
		orch,
		metrics.NewService(store),
		report.NewGenerator(logger),
		cfg.Vision.APIKey != "",
		cfg.Server.MaxUploadMB,
		logger,
	)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.NewRouter(h),
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	orch.Shutdown(shutdownCtx)
	store.Stop()
	logger.Info("stopped")
}
