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

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonMunkholm/airsat/internal/config"
	"github.com/JonMunkholm/airsat/internal/core"
	"github.com/JonMunkholm/airsat/internal/logging"
	"github.com/JonMunkholm/airsat/internal/metrics"
	"github.com/JonMunkholm/airsat/internal/source"
	"github.com/JonMunkholm/airsat/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	if cfg.Metrics.Enabled {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			slog.Error("failed to register metrics", "error", err)
			os.Exit(1)
		}
	}

	// Read and clean the dataset once; any failure aborts startup.
	loader, err := source.New(source.Options{
		Path:        cfg.Data.Path,
		Sheet:       cfg.Data.Sheet,
		Delimiter:   cfg.Data.DelimiterRune(),
		DatabaseURL: cfg.Database.URL,
		Table:       cfg.Data.Table,
		OrderBy:     cfg.Data.OrderBy,
		MaxConns:    cfg.Database.MaxConns,
	})
	if err != nil {
		slog.Error("failed to configure data source", "error", err)
		os.Exit(1)
	}

	loadID := uuid.New()
	loadLogger := logger.With("load_id", loadID, "source", loader.String())

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.Data.LoadTimeout)
	start := time.Now()
	raw, err := loader.Load(loadCtx)
	cancelLoad()
	if err != nil {
		msg := core.MapError(err)
		loadLogger.Error("failed to load dataset", "error", err, "code", msg.Code, "action", msg.Action)
		os.Exit(1)
	}
	loadLogger.Info("dataset read", "rows", raw.Len(), "duration_ms", time.Since(start).Milliseconds())

	data, report, err := core.NewCleaner(loadLogger).Clean(raw)
	if err != nil {
		msg := core.MapError(err)
		loadLogger.Error("failed to clean dataset", "error", err, "code", msg.Code, "action", msg.Action)
		os.Exit(1)
	}
	metrics.ObserveClean(report)

	server := web.NewServer(cfg, data, web.LoadInfo{
		ID:       loadID,
		Source:   loader.String(),
		LoadedAt: time.Now(),
		Report:   report,
	})

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		server.Close()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
