// Package cli provides common CLI initialization utilities shared by
// cmd/ledger and cmd/ledger-worker.
package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"ledger/internal/config"
	applog "ledger/internal/log"
)

// ShutdownTimeout bounds the graceful shutdown of every binary.
const ShutdownTimeout = 30 * time.Second

// SetupLogger builds the process logger for component at the configured
// level and installs it as the slog default.
func SetupLogger(component, level string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Component = component
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		cfg.Level = slog.LevelInfo
	}

	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it, running the
// extra checks when given. It exits the process on failure.
func LoadAndValidateConfig(logger *applog.Logger, extra ...func(*config.Config) error) *config.Config {
	cfg := config.Load()
	checks := append([]func(*config.Config) error{(*config.Config).Validate}, extra...)
	for _, check := range checks {
		if err := check(cfg); err != nil {
			logger.Error("Configuration validation failed", "error", err)
			os.Exit(1)
		}
	}
	return cfg
}

// Run starts serve under a context cancelled on SIGINT or SIGTERM. Once the
// context ends or serve returns, shutdown gets ShutdownTimeout to release
// resources. The first error of either side is returned.
func Run(logger *applog.Logger, serve func(ctx context.Context) error, shutdown func(ctx context.Context) error) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	serveCtx, cancelServe := context.WithCancel(gctx)
	defer cancelServe()

	g.Go(func() error {
		defer cancelServe()
		return serve(serveCtx)
	})
	g.Go(func() error {
		<-serveCtx.Done()
		if sigCtx.Err() != nil {
			logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				logger.Warn("Shutdown timeout reached", applog.FieldOperation, applog.OpShutdown)
			}
			return err
		}
		logger.Info("Shutdown complete", applog.FieldOperation, applog.OpShutdown)
		return nil
	})

	return g.Wait()
}
