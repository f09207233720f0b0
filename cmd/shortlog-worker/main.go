package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"shortlog/internal/cli"
	applog "shortlog/internal/log"
	"shortlog/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(slog.LevelInfo)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.SlogLevel()).WithComponent(applog.ComponentWorker)

	logger.InfoContext(context.Background(), "Starting shortlog-worker")

	if !cfg.SheetsEnabled() {
		logger.ErrorContext(context.Background(), "GOOGLE_SPREADSHEET_ID is required for the sync worker")
		os.Exit(1)
	}

	res := cli.InitBackend(context.Background(), logger, cfg)
	syncWorker := worker.NewSyncWorker(cli.NewReportService(res))

	var consumer worker.Consumer
	if res.AMQP != nil {
		consumer = res.AMQP
	} else {
		logger.WarnContext(context.Background(), "AMQP not available, relying on periodic sync only",
			"interval", cfg.SyncInterval.String())
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := res.Close(); err != nil {
			logger.ErrorContext(ctx, "Backend cleanup failed", applog.FieldError, err)
		}
	})

	if err := syncWorker.Run(ctx, consumer, cfg.SyncInterval); err != nil {
		logger.ErrorContext(ctx, "Sync worker stopped", applog.FieldError, err)
		_ = res.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
