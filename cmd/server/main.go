// Package main is the entry point for the authgate server. It loads
// configuration, establishes database connections, applies migrations,
// wires the auth plugin, and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/keyxmakerx/authgate/internal/app"
	"github.com/keyxmakerx/authgate/internal/config"
	"github.com/keyxmakerx/authgate/internal/database"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("authgate exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("authgate", pflag.ContinueOnError)
	configPath := flags.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	migrateOnly := flags.Bool("migrate-only", false, "apply database migrations and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	// --- Load Configuration ---
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, config.ErrMissingSecret) {
			return fmt.Errorf("refusing to start without a token signing secret: %w", err)
		}
		return fmt.Errorf("loading config: %w", err)
	}

	setupLogging(cfg)

	slog.Info("starting authgate",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("revocation_backend", cfg.Auth.RevocationBackend),
	)
	if cfg.Auth.RevocationBackend == config.RevocationMemory && !cfg.IsDevelopment() {
		slog.Warn("memory revocation backend loses revoked tokens on restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Connect to MariaDB ---
	db, err := database.NewMariaDB(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to MariaDB: %w", err)
	}
	defer db.Close()
	slog.Info("connected to MariaDB")

	if err := database.RunMigrations(db); err != nil {
		return err
	}
	if *migrateOnly {
		return nil
	}

	// --- Connect to Redis (only when something uses it) ---
	var rdb *redis.Client
	if cfg.NeedsRedis() {
		rdb, err = database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connecting to Redis: %w", err)
		}
		defer rdb.Close()
		slog.Info("connected to Redis")
	}

	// --- Create Application ---
	deps, err := app.BuildAuthDeps(cfg, db, rdb)
	if err != nil {
		return err
	}

	application, err := app.New(cfg, db, rdb)
	if err != nil {
		return err
	}
	if err := application.RegisterRoutes(deps); err != nil {
		return err
	}

	// --- Graceful Shutdown ---
	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")

		// Give in-flight requests 10 seconds to complete.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := application.Echo.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced shutdown", slog.Any("error", err))
		}
	}()

	if err := application.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// setupLogging configures the global slog logger. Development uses text
// format for readability, everything else JSON for log aggregation.
func setupLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var handler slog.Handler
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel maps LOG_LEVEL to a slog level, defaulting to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
