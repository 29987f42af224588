package main

import (
	"context"
	"errors"
	"os"

	"ledger/internal/amqp"
	"ledger/internal/cli"
	"ledger/internal/config"
	applog "ledger/internal/log"
	gsheet "ledger/internal/sheets/google"
	"ledger/internal/storage"
	"ledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(applog.ComponentWorker, "info")
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)
	logger = cli.SetupLogger(applog.ComponentWorker, cfg.LogLevel)

	logger.Info("Starting ledger-worker", applog.FieldOperation, applog.OpStartup)

	// Read-only use: the worker looks up rows announced by the server.
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	sheetsClient, err := gsheet.New(context.Background(), gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	mirror := worker.NewMirrorWorker(repo, sheetsClient)

	err = cli.Run(logger,
		func(ctx context.Context) error {
			err := amqpClient.ConsumeTransactionCreated(ctx, mirror.HandleTransactionCreated)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
		func(ctx context.Context) error {
			return amqpClient.Close()
		})
	if err != nil {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}
