package slogutil

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"testing"
)

func TestLineHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, slog.LevelInfo).Info("Slice written", "files", 3, "out", "/tmp/out")

	line := strings.TrimSuffix(buf.String(), "\n")
	re := regexp.MustCompile(`^\d{4}-\d\d-\d\dT\d\d:\d\d:\d\dZ \[info\] Slice written \| files=3 out=/tmp/out$`)
	if !re.MatchString(line) {
		t.Errorf("unexpected line: %q", line)
	}
}

func TestLineHandler_NoAttrs(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, slog.LevelInfo).Warn("Type checker not found")
	if strings.Contains(buf.String(), "|") {
		t.Errorf("separator without attributes: %q", buf.String())
	}
}

func TestLineHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)
	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e")

	got := buf.String()
	for _, want := range []string{"[warn] w", "[error] e"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
	for _, unwanted := range []string{"[debug]", "[info]"} {
		if strings.Contains(got, unwanted) {
			t.Errorf("%q should be filtered: %q", unwanted, got)
		}
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"plain", slog.String("stage", "oracle"), "stage=oracle"},
		{"signature", slog.String("target", "com.example.Foo#bar(int, String)"), `target="com.example.Foo#bar(int, String)"`},
		{"empty", slog.String("javac", ""), `javac=""`},
		{"error", slog.Any("error", errors.New("javac: not found")), `error="javac: not found"`},
		{"targets", slog.Any("targets", []string{"A#f()", "B#g()"}), `targets="[A#f(), B#g()]"`},
		{"int", slog.Int("kept", 42), "kept=42"},
		{"bool", slog.Bool("synthetic", true), "synthetic=true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewLogger(&buf, slog.LevelInfo).LogAttrs(context.Background(), slog.LevelInfo, "m", tt.attr)
			if !strings.HasSuffix(strings.TrimSuffix(buf.String(), "\n"), "| "+tt.want) {
				t.Errorf("got %q, want suffix %q", buf.String(), "| "+tt.want)
			}
		})
	}
}

func TestLineHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo).With("run", "3f2a").WithGroup("oracle")
	logger.Info("Iteration", "n", 2, slog.Group("diag", "found", "int", "required", "String"))

	got := buf.String()
	for _, want := range []string{"run=3f2a", "oracle.n=2", "oracle.diag.found=int", "oracle.diag.required=String"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestLevelFromString(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"TRACE":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" Error ": slog.LevelError,
		"off":     LevelSilent,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := LevelFromString(in); got != want {
			t.Errorf("LevelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		quiet     bool
		want      slog.Level
	}{
		{0, false, slog.LevelWarn},
		{1, false, slog.LevelInfo},
		{2, false, slog.LevelDebug},
		{7, false, slog.LevelDebug},
		{2, true, LevelSilent},
	}
	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.verbosity, tt.quiet); got != tt.want {
			t.Errorf("LevelFromVerbosity(%d, %v) = %v, want %v", tt.verbosity, tt.quiet, got, tt.want)
		}
	}
}

func TestDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("discard logger should be disabled at every level")
	}
	logger.Error("dropped", "k", "v")
}

func TestMulti(t *testing.T) {
	var console, file bytes.Buffer
	logger := Multi(
		NewLineHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}),
		NewLineHandler(&file, &slog.HandlerOptions{Level: slog.LevelInfo}),
	).With("run", "r1")

	logger.Info("Stage finished", "stage", "load")
	logger.Warn("Oracle ended early")

	if strings.Contains(console.String(), "Stage finished") {
		t.Errorf("console should drop info: %q", console.String())
	}
	if !strings.Contains(console.String(), "Oracle ended early | run=r1") {
		t.Errorf("console missing warn: %q", console.String())
	}
	if !strings.Contains(file.String(), "Stage finished | run=r1 stage=load") {
		t.Errorf("file missing info: %q", file.String())
	}
	if strings.Count(file.String(), "\n") != 2 {
		t.Errorf("file should hold both records: %q", file.String())
	}
}
