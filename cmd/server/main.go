package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/exposure/internal/catalog"
	"github.com/JonMunkholm/exposure/internal/category"
	"github.com/JonMunkholm/exposure/internal/config"
	"github.com/JonMunkholm/exposure/internal/logging"
	"github.com/JonMunkholm/exposure/internal/session"
	"github.com/JonMunkholm/exposure/internal/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, release, err := catalog.Open(ctx, cfg.Catalog)
	if err != nil {
		slog.Error("failed to open catalog", "error", err)
		os.Exit(1)
	}
	defer release()

	// Build the canonical table once at startup so a broken catalog stops
	// the process instead of failing the first request.
	canonical := category.NewCanonical(src)
	if _, err := canonical.Table(ctx); err != nil {
		slog.Error("failed to build category table", "error", err)
		os.Exit(1)
	}
	slog.Info("category table ready", "rows", canonical.Len())

	store := session.NewStore(cfg.Session.TTL)
	go store.StartSweeper(ctx, cfg.Session.SweepInterval)

	manager := session.NewManager(store, category.NewCodec(canonical))
	server := web.NewServer(ctx, cfg, manager)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-shutdownDone
	slog.Info("server stopped")
}
