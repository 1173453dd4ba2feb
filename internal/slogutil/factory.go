package slogutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"jslice/internal/config"
	"jslice/internal/paths"
)

// LoggerFactory builds the loggers used by the CLI. It respects the
// precedence CLI flags > config > default.
type LoggerFactory struct {
	root     string
	config   *config.Config
	cliLevel slog.Level
	cliSet   bool
	closers  []io.Closer
}

// NewLoggerFactory creates a new logger factory. cliSet reports whether
// cliLevel came from an explicit -v/--quiet flag.
func NewLoggerFactory(root string, cfg *config.Config, cliLevel slog.Level, cliSet bool) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LoggerFactory{
		root:     root,
		config:   cfg,
		cliLevel: cliLevel,
		cliSet:   cliSet,
	}
}

// CLILogger writes to stderr, and additionally to logging.file when set.
func (f *LoggerFactory) CLILogger() *slog.Logger {
	level := f.effectiveLevel()
	console := NewLineHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	if f.config.Logging.File == "" {
		return slog.New(console)
	}

	path := f.config.Logging.File
	if !filepath.IsAbs(path) && f.root != "" {
		path = filepath.Join(paths.DataDir(f.root), path)
	}
	// The file always records at least info so -q runs stay auditable.
	fileLevel := level
	if fileLevel > slog.LevelInfo {
		fileLevel = slog.LevelInfo
	}
	fileLogger, closer, err := f.createFileLogger(path, fileLevel)
	if err != nil {
		l := slog.New(console)
		l.Warn("Cannot open log file, logging to stderr only", "path", path, "error", err.Error())
		return l
	}
	f.closers = append(f.closers, closer)
	return Multi(console, fileLogger.Handler())
}

// WatchLogger writes watch-mode events to <root>/.jslice/logs/watch.log.
func (f *LoggerFactory) WatchLogger() *slog.Logger {
	if f.root == "" {
		return NewDiscardLogger()
	}
	logger, closer, err := f.createFileLogger(paths.LogPath(f.root, "watch"), f.effectiveLevel())
	if err != nil {
		return NewDiscardLogger()
	}
	f.closers = append(f.closers, closer)
	return logger
}

// createFileLogger opens path with the configured rotation.
func (f *LoggerFactory) createFileLogger(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	lf, err := OpenLogFile(path, ParseSize(f.config.Logging.MaxSize), f.config.Logging.MaxBackups)
	if err != nil {
		return nil, nil, err
	}
	return NewLogger(lf, level), lf, nil
}

// effectiveLevel returns the level after applying precedence.
func (f *LoggerFactory) effectiveLevel() slog.Level {
	if f.cliSet {
		return f.cliLevel
	}
	if f.config.Logging.Level != "" {
		return LevelFromString(f.config.Logging.Level)
	}
	return slog.LevelInfo
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
