package main

import (
	"context"
	"os"
	"time"

	"finanze/internal/amqp"
	"finanze/internal/cli"
	gsheet "finanze/internal/records/google"
	"finanze/internal/services"
	"finanze/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	logger.Info("starting finanze-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the mirror worker")
		os.Exit(1)
	}

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLitePath)
	defer sqliteRepo.Close()

	sheetsClient, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	processor := services.NewMirrorProcessor(sqliteRepo, sheetsClient)
	mirrorWorker := worker.NewMirrorWorker(amqpClient, processor, worker.MirrorWorkerConfig{
		ReconcileInterval: cfg.ReconcileInterval,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := mirrorWorker.Stop(stopCtx); err != nil {
			logger.Error("mirror worker stop error", "error", err)
		}
	})

	if err := mirrorWorker.Start(ctx); err != nil {
		logger.Error("failed to start mirror worker", "error", err)
		os.Exit(1)
	}

	logger.Info("mirror worker running",
		"queue", cfg.AMQPQueue,
		"reconcile_interval", cfg.ReconcileInterval.String())

	cli.WaitForShutdown(ctx, done)
	logger.Info("worker stopped gracefully")
}
