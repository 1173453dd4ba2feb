// Package watcher watches a Java source tree and reports batches of
// source changes, so a slice can be recomputed when its inputs move.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"jslice/internal/paths"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

// Event represents a file system event
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// ChangeHandler is called with each debounced batch of changes
type ChangeHandler func(root string, events []Event)

// Config contains watcher configuration
type Config struct {
	Debounce time.Duration
	// Extensions are the file suffixes that count as changes
	Extensions []string
	// IgnoreDirs are absolute directories never watched, such as the
	// slice output directory
	IgnoreDirs []string
	// ExtraFiles are watched in addition to sources, such as a targets
	// manifest
	ExtraFiles []string
}

// DefaultConfig returns the default watcher configuration
func DefaultConfig() Config {
	return Config{
		Debounce:   500 * time.Millisecond,
		Extensions: []string{paths.JavaExt},
	}
}

// Watcher watches one source root
type Watcher struct {
	root    string
	config  Config
	logger  *slog.Logger
	handler ChangeHandler

	fsw     *fsnotify.Watcher
	batcher *BatchDebouncer

	mu    sync.Mutex
	dirs  map[string]bool
	extra map[string]bool
}

// New creates a watcher for root; nothing is watched until Run
func New(root string, config Config, logger *slog.Logger, handler ChangeHandler) (*Watcher, error) {
	if config.Debounce <= 0 {
		config.Debounce = DefaultConfig().Debounce
	}
	if len(config.Extensions) == 0 {
		config.Extensions = DefaultConfig().Extensions
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		root:    filepath.Clean(root),
		config:  config,
		logger:  logger,
		handler: handler,
		fsw:     fsw,
		dirs:    make(map[string]bool),
		extra:   make(map[string]bool),
	}
	for _, f := range config.ExtraFiles {
		w.extra[filepath.Clean(f)] = true
	}
	w.batcher = NewBatchDebouncer(config.Debounce, func(events []Event) {
		w.logger.Debug("Source changes detected", "root", w.root, "eventCount", len(events))
		if w.handler != nil {
			w.handler(w.root, events)
		}
	})
	return w, nil
}

// Run watches until ctx is done. Pending changes are dropped on exit.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	defer w.batcher.Cancel()

	if err := w.addTree(w.root); err != nil {
		return err
	}
	for f := range w.extra {
		if err := w.addDir(filepath.Dir(f)); err != nil {
			w.logger.Warn("Cannot watch file", "path", f, "error", err.Error())
		}
	}
	w.logger.Info("Watching source tree", "root", w.root, "dirs", w.WatchedDirs(), "debounce", w.config.Debounce)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("File watcher stopped", "root", w.root)
			return nil
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", "error", err.Error())
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		}
	}
}

// handle turns one fsnotify event into zero or one batched Event
func (w *Watcher) handle(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	if ev.Has(fsnotify.Create) && w.isDir(path) {
		if err := w.addTree(path); err != nil {
			w.logger.Warn("Cannot watch new directory", "path", path, "error", err.Error())
		}
		return
	}
	if !w.relevant(path) {
		return
	}
	w.batcher.Add(Event{Type: eventType(ev.Op), Path: path, Timestamp: time.Now()})
}

func eventType(op fsnotify.Op) EventType {
	switch {
	case op.Has(fsnotify.Create):
		return EventCreate
	case op.Has(fsnotify.Remove):
		return EventDelete
	case op.Has(fsnotify.Rename):
		return EventRename
	}
	return EventModify
}

// relevant reports paths whose change should trigger a batch
func (w *Watcher) relevant(path string) bool {
	if w.extra[path] {
		return true
	}
	if w.IsIgnored(path) {
		return false
	}
	for _, ext := range w.config.Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// IsIgnored reports files inside an ignored directory or a hidden or
// build directory below the root
func (w *Watcher) IsIgnored(path string) bool {
	return w.ignoredDir(filepath.Dir(path))
}

func (w *Watcher) ignoredDir(dir string) bool {
	for _, ig := range w.config.IgnoreDirs {
		ig = filepath.Clean(ig)
		if dir == ig || strings.HasPrefix(dir, ig+string(filepath.Separator)) {
			return true
		}
	}
	rel, err := filepath.Rel(w.root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if paths.IsHiddenOrBuildDir(part) {
			return true
		}
	}
	return false
}

// addTree watches dir and every directory below it that is not ignored
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignoredDir(path) {
			return filepath.SkipDir
		}
		return w.addDir(path)
	})
}

func (w *Watcher) addDir(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dirs[dir] {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.dirs[dir] = true
	return nil
}

func (w *Watcher) isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// WatchedDirs returns the number of watched directories
func (w *Watcher) WatchedDirs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.dirs)
}
