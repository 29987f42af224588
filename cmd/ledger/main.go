package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"ledger/internal/backend"
	"ledger/internal/cli"
	apphttp "ledger/internal/http"
	"ledger/internal/ledger"
	applog "ledger/internal/log"
	"ledger/internal/session"
)

func main() {
	cli.LoadEnvFile()

	// Bootstrap logger until the configured level is known.
	logger := cli.SetupLogger(applog.ComponentApp, "info")
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(applog.ComponentApp, cfg.LogLevel)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	be, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).
		CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	svc := ledger.NewService(be.Repository, be.Publisher)
	sessions := session.NewResolver(cfg.SessionMaxAge, cfg.CookieSecure)

	srv := apphttp.NewServer(":"+cfg.Port, svc, sessions, apphttp.Options{
		MountPath:          cfg.MountPath,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Logger:             logger.WithComponent(applog.ComponentHTTP),
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	logger.Info("Starting ledger server",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"mount_path", cfg.MountPath,
		"events_enabled", be.Publisher != nil)

	err = cli.Run(logger,
		func(ctx context.Context) error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
		func(ctx context.Context) error {
			return errors.Join(srv.Shutdown(ctx), be.Close())
		})
	if err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
