package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"shortlog/internal/cli"
	"shortlog/internal/config"
	applog "shortlog/internal/log"
	"shortlog/internal/report"
)

func main() {
	now := time.Now()
	year := flag.Int("year", now.Year(), "report year")
	month := flag.Int("month", int(now.Month()), "report month (1-12)")
	format := flag.String("format", string(report.FormatXLSX), "output format: xlsx or csv")
	outDir := flag.String("out", "", "output directory (default EXPORT_DIR)")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(slog.LevelInfo)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.SlogLevel())

	if *outDir == "" {
		*outDir = cfg.ExportDir
	}

	path, err := run(context.Background(), logger, cfg, *year, time.Month(*month), *format, *outDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "shortlog-export:", err)
		os.Exit(1)
	}
	fmt.Println(path)
}

func run(ctx context.Context, logger *applog.Logger, cfg *config.Config, year int, month time.Month, format, outDir string) (string, error) {
	f, err := report.ParseFormat(format)
	if err != nil {
		return "", err
	}

	res := cli.InitBackend(ctx, logger, cfg)
	defer res.Close()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	reports := cli.NewReportService(res)
	path := filepath.Join(outDir, reports.FileName(f, year, month))
	tmp, err := os.CreateTemp(outDir, ".shortlog-export-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := reports.Export(ctx, tmp, f, year, month); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	logger.InfoContext(ctx, "Report exported",
		applog.FieldYear, year,
		applog.FieldMonth, int(month),
		applog.FieldFormat, string(f),
		"path", path)
	return path, nil
}
