package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/datamanager/internal/config"
	"github.com/JonMunkholm/datamanager/internal/logging"
	"github.com/JonMunkholm/datamanager/internal/session"
	"github.com/JonMunkholm/datamanager/internal/store"
	_ "github.com/JonMunkholm/datamanager/internal/store/postgres" // register "postgres"
	_ "github.com/JonMunkholm/datamanager/internal/store/sqlite"   // register "sqlite"
	"github.com/JonMunkholm/datamanager/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	envErr := godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	closer := logging.Setup(logging.OptionsFrom(cfg.Logging))
	defer closer.Close()

	if envErr != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()
	kv, err := store.Open(ctx, store.ConfigFrom(cfg.Storage))
	if err != nil {
		slog.Error("failed to open layout store", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer kv.Close()
	slog.Info("layout store ready", "backend", cfg.Storage.Backend)

	opts, err := session.OptionsFromConfig(cfg)
	if err != nil {
		slog.Error("invalid session options", "error", err)
		os.Exit(1)
	}
	sessions := session.NewManager(kv, session.NewLimiter(cfg), opts)
	server := web.NewServer(cfg, sessions, kv)

	// Background jobs stop when jobCtx is cancelled.
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go sessions.StartSweeper(jobCtx, cfg.Session.SweepInterval)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let running decodes finish before closing the listener.
		if status := sessions.Limiter().Status(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := sessions.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil {
		slog.Error("server stopped", "error", err)
		cancelJobs()
		os.Exit(1)
	}
	<-shutdownDone
	slog.Info("server stopped")
}
