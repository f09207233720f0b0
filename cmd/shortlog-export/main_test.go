package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shortlog/internal/config"
	applog "shortlog/internal/log"
)

func TestRun_WritesNamedFile(t *testing.T) {
	logger := applog.New(applog.Config{Output: io.Discard})
	cfg := &config.Config{DataBackend: config.BackendFile, DataDir: t.TempDir()}
	out := filepath.Join(t.TempDir(), "reports")

	for _, tc := range []struct{ format, want string }{
		{"xlsx", "Short_Report_3_2024.xlsx"},
		{"csv", "Short_Report_3_2024.csv"},
	} {
		path, err := run(context.Background(), logger, cfg, 2024, time.March, tc.format, out)
		if err != nil {
			t.Fatalf("%s: %v", tc.format, err)
		}
		if filepath.Base(path) != tc.want {
			t.Fatalf("path = %s, want %s", path, tc.want)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Fatalf("%s not written: %v", path, err)
		}
	}

	entries, _ := os.ReadDir(out)
	if len(entries) != 2 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestRun_RejectsBadInput(t *testing.T) {
	logger := applog.New(applog.Config{Output: io.Discard})
	cfg := &config.Config{DataBackend: config.BackendMemory}
	out := t.TempDir()

	if _, err := run(context.Background(), logger, cfg, 2024, time.March, "pdf", out); err == nil {
		t.Fatalf("expected unknown format error")
	}
	if _, err := run(context.Background(), logger, cfg, 2024, 13, "csv", out); err == nil {
		t.Fatalf("expected invalid period error")
	}
}
