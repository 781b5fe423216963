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

	httpadapter "github.com/uinjkt-dev/campus-assistant/internal/adapters/http"
	"github.com/uinjkt-dev/campus-assistant/internal/adapters/whatsapp"
	"github.com/uinjkt-dev/campus-assistant/internal/bootstrap"
	"github.com/uinjkt-dev/campus-assistant/internal/config"
	"github.com/uinjkt-dev/campus-assistant/internal/observability/logging"
	"github.com/uinjkt-dev/campus-assistant/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	m := metrics.NewHTTPServerMetrics("api")
	limiter := httpadapter.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)

	router := httpadapter.NewRouter(app.ChatUC, app.EvalUC, app.IngestUC, m, limiter)
	router.Mount("/metrics", m.Handler())
	router.MountLimited("/webhook/whatsapp", whatsapp.NewHandler(app.ChatUC, app.Sessions, app.Tickets, m))

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
