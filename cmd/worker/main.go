package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uinjkt-dev/campus-assistant/internal/bootstrap"
	"github.com/uinjkt-dev/campus-assistant/internal/config"
	"github.com/uinjkt-dev/campus-assistant/internal/observability/logging"
	"github.com/uinjkt-dev/campus-assistant/internal/observability/metrics"
)

const syncTimeout = 5 * time.Minute

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	m := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:        ":" + cfg.WorkerMetricsPort,
		Handler:     m.Handler(),
		ReadTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeCorpusUploaded(ctx, func(handlerCtx context.Context, uploadID string) error {
		syncCtx, cancel := context.WithTimeout(handlerCtx, syncTimeout)
		defer cancel()

		m.StartSync()
		started := time.Now()
		rows, syncErr := app.SyncUC.SyncByID(syncCtx, uploadID)
		m.FinishSync("worker", time.Since(started), syncErr)
		if syncErr == nil {
			m.ObserveSyncedRows("worker", rows)
		}
		return syncErr
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
