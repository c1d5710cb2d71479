// Package watcher reports changes to Go sources with debouncing.
package watcher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors package directories and signals when Go sources change.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	dirs       []string
	debounce   time.Duration
	outputFile string
	skipDir    func(name string) bool
	logger     *slog.Logger
	onChange   chan struct{}
	done       chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	// Dirs are watched non-recursively. New subdirectories are added as
	// they appear.
	Dirs []string

	DebounceDur time.Duration

	// OutputFile is ignored so writing generated code does not retrigger
	OutputFile string

	// SkipDir reports directories that should not be added when created
	SkipDir func(name string) bool

	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(dirs []string, outputFile string) Config {
	return Config{
		Dirs:        dirs,
		DebounceDur: 500 * time.Millisecond,
		OutputFile:  outputFile,
	}
}

// New creates a new source watcher.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	skipDir := cfg.SkipDir
	if skipDir == nil {
		skipDir = func(string) bool { return false }
	}

	return &Watcher{
		fsWatcher:  fsw,
		dirs:       cfg.Dirs,
		debounce:   cfg.DebounceDur,
		outputFile: cfg.OutputFile,
		skipDir:    skipDir,
		logger:     logger,
		onChange:   make(chan struct{}, 1),
		done:       make(chan struct{}),
	}, nil
}

// Start begins watching the configured directories.
// Returns a channel that receives a signal when a source changes.
func (w *Watcher) Start() (<-chan struct{}, error) {
	for _, dir := range w.dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return nil, fmt.Errorf("watching directory %s: %w", dir, err)
		}
	}

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			// A new directory may already hold sources.
			newDir := event.Has(fsnotify.Create) && w.addIfDirectory(event.Name)
			if !newDir && !w.isRelevantEvent(event) {
				continue
			}
			w.logger.Debug("source changed", "path", event.Name, "op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = true

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				// Non-blocking send - drop if a run is already queued
				select {
				case w.onChange <- struct{}{}:
				default:
				}
				pending = false
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) addIfDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.skipDir(info.Name()) {
		return false
	}
	if err := w.fsWatcher.Add(path); err != nil {
		w.logger.Warn("cannot watch new directory", "path", path, "error", err)
		return false
	}
	w.logger.Debug("watching new directory", "path", path)
	return true
}

// isRelevantEvent checks if the event should trigger a run.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return IsSourceFile(filepath.Base(event.Name), w.outputFile)
}

// IsSourceFile reports whether name is a Go source that generation reads
func IsSourceFile(name, outputFile string) bool {
	return strings.HasSuffix(name, ".go") &&
		!strings.HasSuffix(name, "_test.go") &&
		name != outputFile
}
