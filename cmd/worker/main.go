package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ekomarov/drafter/internal/bootstrap"
	"github.com/ekomarov/drafter/internal/config"
	"github.com/ekomarov/drafter/internal/observability/logging"
	"github.com/ekomarov/drafter/internal/observability/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewWorkerMetrics("worker")
	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{
		BatchMetrics:     m,
		QueueLagObserver: m.ObserveQueueLag,
	})
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: m.Handler(),
	}
	go func() {
		logger.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker metrics server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeOutlineGeneration(ctx, func(handlerCtx context.Context, outlineID string) error {
		m.StartBatch()
		defer m.FinishBatch()

		runCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Minute)
		defer cancel()
		return app.Batch.GenerateOutline(runCtx, outlineID)
	})
	if err != nil {
		logger.Error("worker subscribe failed", "error", err)
		os.Exit(1)
	}
}
