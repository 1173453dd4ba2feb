package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      string
	}{
		{EventCreate, "create"},
		{EventModify, "modify"},
		{EventDelete, "delete"},
		{EventRename, "rename"},
		{EventType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.eventType.String()
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Debounce != 500*time.Millisecond {
		t.Errorf("Debounce = %v, want 500ms", config.Debounce)
	}
	if len(config.Extensions) != 1 || config.Extensions[0] != ".java" {
		t.Errorf("Extensions = %v, want [.java]", config.Extensions)
	}
}

func TestWatcherIsIgnored(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "slice-out")
	w, err := New(root, Config{IgnoreDirs: []string{out}}, testLogger(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.fsw.Close()

	tests := []struct {
		path    string
		ignored bool
	}{
		{filepath.Join(root, "com", "example", "Main.java"), false},
		{filepath.Join(root, "Main.java"), false},
		{filepath.Join(out, "com", "example", "Main.java"), true},
		{filepath.Join(root, ".git", "Main.java"), true},
		{filepath.Join(root, "build", "gen", "Main.java"), true},
		{filepath.Join(filepath.Dir(root), "Elsewhere.java"), true},
	}
	for _, tt := range tests {
		if got := w.IsIgnored(tt.path); got != tt.ignored {
			t.Errorf("IsIgnored(%s) = %v, want %v", tt.path, got, tt.ignored)
		}
	}
}

func TestWatcherRelevant(t *testing.T) {
	root := t.TempDir()
	manifest := filepath.Join(root, "targets.yaml")
	w, err := New(root, Config{ExtraFiles: []string{manifest}}, testLogger(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.fsw.Close()

	if !w.relevant(filepath.Join(root, "a", "B.java")) {
		t.Error("Java source should be relevant")
	}
	if w.relevant(filepath.Join(root, "a", "notes.txt")) {
		t.Error("Text file should not be relevant")
	}
	if !w.relevant(manifest) {
		t.Error("Extra file should be relevant")
	}
}

func TestWatcherRun_ReportsSourceChanges(t *testing.T) {
	root := t.TempDir()
	pkg := filepath.Join(root, "com", "example")
	if err := os.MkdirAll(pkg, 0o755); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(root, "slice-out")
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var batches [][]Event
	got := make(chan struct{}, 8)
	handler := func(_ string, events []Event) {
		mu.Lock()
		batches = append(batches, events)
		mu.Unlock()
		got <- struct{}{}
	}

	w, err := New(root, Config{Debounce: 50 * time.Millisecond, IgnoreDirs: []string{out}}, testLogger(), handler)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	deadline := time.Now().Add(2 * time.Second)
	for w.WatchedDirs() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if err := os.WriteFile(filepath.Join(out, "Ignored.java"), []byte("class Ignored {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pkg, "Main.java"), []byte("class Main {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-got:
	case <-time.After(3 * time.Second):
		t.Fatal("No change batch reported")
	}

	mu.Lock()
	defer mu.Unlock()
	for _, ev := range batches[0] {
		if filepath.Base(ev.Path) == "Ignored.java" {
			t.Errorf("Change inside the ignored directory was reported: %s", ev.Path)
		}
	}
	found := false
	for _, ev := range batches[0] {
		if filepath.Base(ev.Path) == "Main.java" {
			found = true
		}
	}
	if !found {
		t.Errorf("Main.java change missing from %v", batches[0])
	}
}

func TestBatchDebouncerAdd(t *testing.T) {
	var received []Event
	var mu sync.Mutex

	emit := func(events []Event) {
		mu.Lock()
		received = events
		mu.Unlock()
	}

	b := NewBatchDebouncer(50*time.Millisecond, emit)

	b.Add(Event{Type: EventCreate, Path: "A.java"})
	b.Add(Event{Type: EventModify, Path: "B.java"})
	b.Add(Event{Type: EventDelete, Path: "C.java"})

	if b.EventCount() != 3 {
		t.Errorf("EventCount() = %d, want 3", b.EventCount())
	}

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	if len(received) != 3 {
		t.Errorf("Should have received 3 events, got %d", len(received))
	}
	mu.Unlock()
}

func TestBatchDebouncerCollapsesPaths(t *testing.T) {
	var received []Event
	b := NewBatchDebouncer(time.Hour, func(events []Event) { received = events })

	b.Add(Event{Type: EventCreate, Path: "A.java"})
	b.Add(Event{Type: EventModify, Path: "B.java"})
	b.Add(Event{Type: EventModify, Path: "A.java"})
	b.Flush()

	if len(received) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(received))
	}
	if received[0].Path != "A.java" || received[0].Type != EventModify {
		t.Errorf("Expected latest event for A.java first, got %+v", received[0])
	}
}

func TestBatchDebouncerCancel(t *testing.T) {
	var called bool
	var mu sync.Mutex

	emit := func(events []Event) {
		mu.Lock()
		called = true
		mu.Unlock()
	}

	b := NewBatchDebouncer(50*time.Millisecond, emit)
	b.Add(Event{Type: EventCreate, Path: "A.java"})
	b.Cancel()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	if called {
		t.Error("Emit should not be called after cancel")
	}
	mu.Unlock()

	if b.EventCount() != 0 {
		t.Errorf("EventCount() = %d, want 0 after cancel", b.EventCount())
	}
}

func TestBatchDebouncerNoEmitWithNoEvents(t *testing.T) {
	called := false
	b := NewBatchDebouncer(10*time.Millisecond, func([]Event) { called = true })
	b.Flush()
	if called {
		t.Error("Emit should not be called without events")
	}
}
