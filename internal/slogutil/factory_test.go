package slogutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jslice/internal/config"
)

func TestLoggerFactory_EffectiveLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "debug"

	f := NewLoggerFactory("", cfg, slog.LevelWarn, false)
	if got := f.effectiveLevel(); got != slog.LevelDebug {
		t.Errorf("effectiveLevel() = %v, want debug from config", got)
	}

	f = NewLoggerFactory("", cfg, slog.LevelWarn, true)
	if got := f.effectiveLevel(); got != slog.LevelWarn {
		t.Errorf("effectiveLevel() = %v, want warn from CLI", got)
	}

	f = NewLoggerFactory("", nil, 0, false)
	if got := f.effectiveLevel(); got != slog.LevelInfo {
		t.Errorf("effectiveLevel() = %v, want info default", got)
	}
}

func TestLoggerFactory_CLILoggerWithFile(t *testing.T) {
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Logging.File = "run.log"

	f := NewLoggerFactory(root, cfg, LevelFromVerbosity(0, true), true)
	logger := f.CLILogger()
	logger.Info("slice written", "files", 3)
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, ".jslice", "run.log"))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "slice written") {
		t.Errorf("log file missing record: %s", data)
	}
}

func TestLoggerFactory_WatchLogger(t *testing.T) {
	root := t.TempDir()
	f := NewLoggerFactory(root, nil, slog.LevelInfo, true)
	defer f.Close()

	f.WatchLogger().Info("change detected")

	if _, err := os.Stat(filepath.Join(root, ".jslice", "logs", "watch.log")); err != nil {
		t.Errorf("watch log should exist: %v", err)
	}
}
