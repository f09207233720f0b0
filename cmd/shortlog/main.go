package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"shortlog/internal/cli"
	apphttp "shortlog/internal/http"
	applog "shortlog/internal/log"
	"shortlog/internal/services"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(slog.LevelInfo)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.SlogLevel())

	res := cli.InitBackend(context.Background(), logger, cfg)

	ledgerSvc := services.NewLedgerService(res.Store, res.Bus())
	reportSvc := cli.NewReportService(res)

	deps := apphttp.Deps{
		Ledger:             ledgerSvc,
		Reports:            reportSvc,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}
	if p, ok := res.Store.(pinger); ok {
		deps.Ready = p.Ping
	}
	srv := apphttp.NewServer(net.JoinHostPort("", cfg.Port), deps)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.ErrorContext(ctx, "Server shutdown failed", applog.FieldError, err)
		}
		if err := res.Close(); err != nil {
			logger.ErrorContext(ctx, "Backend cleanup failed", applog.FieldError, err)
		}
	})

	go func() {
		logger.InfoContext(ctx, "Starting shortlog server",
			"addr", srv.Addr,
			"backend", cfg.DataBackend,
			"amqp_enabled", res.AMQP != nil,
			"sheets_enabled", res.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "Server failed", applog.FieldError, err)
			_ = res.Close()
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
