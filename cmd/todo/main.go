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

	"github.com/tendant/simple-todo/pkg/app"
	"github.com/tendant/simple-todo/pkg/config"
	"github.com/tendant/simple-todo/pkg/database"
	errs "github.com/tendant/simple-todo/pkg/errors"
	"github.com/tendant/simple-todo/pkg/logging"
	"github.com/tendant/simple-todo/pkg/metrics"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	errs.SetDebug(!cfg.IsProduction())

	ctx := context.Background()

	var backend app.Backend
	switch cfg.Store {
	case config.StoreMemory:
		slog.Warn("Using in-memory store, data is lost on restart")
		backend = app.MemoryBackend()
	default:
		dsn := cfg.Database.ToDatabaseURL()
		if err := database.Migrate(dsn, cfg.MigrationsDir); err != nil {
			slog.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		pool, err := database.Connect(ctx, dsn, cfg.Database.MaxConns)
		if err != nil {
			slog.Error("Failed to connect to database", "host", cfg.Database.Host, "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		collector := metrics.NewPoolStatsCollector(pool)
		collector.Start(15 * time.Second)
		defer collector.Stop()

		backend = app.PostgresBackend(pool)
	}

	a := app.New(cfg, backend)
	if err := a.Bootstrap(ctx); err != nil {
		slog.Error("Failed to bootstrap roles and admin user", "error", err)
		os.Exit(1)
	}

	stop := make(chan struct{})
	if a.RateLimit != nil {
		a.RateLimit.Start(stop)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "addr", cfg.ListenAddr, "store", cfg.Store, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")
	close(stop)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	slog.Info("Server exited")
}
