// Package watch re-runs a callback when a file changes on disk. Rapid saves
// are debounced into one call.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long a file must be quiet before onChange fires.
const DefaultDebounce = 200 * time.Millisecond

// tick is how often settled events are checked.
const tick = 50 * time.Millisecond

// Stats tracks watcher activity.
type Stats struct {
	Events        int
	Triggers      int
	Errors        int
	LastEventTime time.Time
	LastEventType string
}

// FileWatcher watches a single file. It watches the parent directory so
// editors that save by rename-and-replace are still seen.
type FileWatcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	path        string
	dir         string
	onChange    func(ctx context.Context)
	logger      *zap.Logger
	debounceDur time.Duration
	pending     time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	closed      bool

	stats Stats
}

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithDebounce sets the quiet period before onChange fires.
func WithDebounce(d time.Duration) Option {
	return func(fw *FileWatcher) {
		if d > 0 {
			fw.debounceDur = d
		}
	}
}

// WithLogger sets the logger; the default discards.
func WithLogger(l *zap.Logger) Option {
	return func(fw *FileWatcher) {
		if l != nil {
			fw.logger = l
		}
	}
}

// New creates a watcher for path. onChange runs on the watcher goroutine, so
// calls never overlap and Stop waits for a running call to return.
func New(path string, onChange func(ctx context.Context), opts ...Option) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher:     watcher,
		path:        abs,
		dir:         filepath.Dir(abs),
		onChange:    onChange,
		logger:      zap.NewNop(),
		debounceDur: DefaultDebounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(fw)
	}
	return fw, nil
}

// Start begins watching. It is non-blocking; events are handled on a
// goroutine until ctx is done or Stop is called.
func (fw *FileWatcher) Start(ctx context.Context) error {
	fw.mu.Lock()
	if fw.closed {
		fw.mu.Unlock()
		return fmt.Errorf("watcher for %s is stopped", fw.path)
	}
	if fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = true
	fw.mu.Unlock()

	if _, err := os.Stat(fw.dir); err != nil {
		fw.markStopped()
		return fmt.Errorf("cannot watch %s: %w", fw.path, err)
	}
	if err := fw.watcher.Add(fw.dir); err != nil {
		fw.markStopped()
		return fmt.Errorf("cannot watch %s: %w", fw.dir, err)
	}
	fw.logger.Info("Watching file", zap.String("path", fw.path), zap.Duration("debounce", fw.debounceDur))

	go fw.run(ctx)
	return nil
}

func (fw *FileWatcher) markStopped() {
	fw.mu.Lock()
	fw.running = false
	fw.mu.Unlock()
}

// Stop stops the watcher and waits for the event loop to exit. It is safe to
// call more than once and without Start.
func (fw *FileWatcher) Stop() {
	fw.mu.Lock()
	if fw.closed {
		fw.mu.Unlock()
		return
	}
	fw.closed = true
	wasRunning := fw.running
	fw.running = false
	fw.mu.Unlock()

	if wasRunning {
		close(fw.stopCh)
		<-fw.doneCh
	}

	if err := fw.watcher.Close(); err != nil {
		fw.logger.Error("Error closing watcher", zap.Error(err))
	}
	fw.logger.Debug("Watcher stopped", zap.String("path", fw.path))
}

// Wait blocks until the event loop of a started watcher exits.
func (fw *FileWatcher) Wait() {
	<-fw.doneCh
}

func (fw *FileWatcher) run(ctx context.Context) {
	defer close(fw.doneCh)
	defer fw.markStopped()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fw.logger.Debug("Watcher context cancelled")
			return

		case <-fw.stopCh:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("Watcher error", zap.Error(err))
			fw.mu.Lock()
			fw.stats.Errors++
			fw.mu.Unlock()

		case <-ticker.C:
			fw.fireIfSettled(ctx)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != fw.path {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	default:
		return
	}
	fw.logger.Debug("File event", zap.String("type", eventType), zap.String("path", event.Name))

	fw.mu.Lock()
	now := time.Now()
	fw.stats.Events++
	fw.stats.LastEventTime = now
	fw.stats.LastEventType = eventType
	fw.pending = now
	fw.mu.Unlock()
}

func (fw *FileWatcher) fireIfSettled(ctx context.Context) {
	fw.mu.Lock()
	if fw.pending.IsZero() || time.Since(fw.pending) < fw.debounceDur {
		fw.mu.Unlock()
		return
	}
	fw.pending = time.Time{}
	fw.mu.Unlock()

	// Deleted or mid-rename: wait for the file to come back.
	if _, err := os.Stat(fw.path); err != nil {
		fw.logger.Debug("Changed file is missing, skipping", zap.String("path", fw.path))
		return
	}

	fw.mu.Lock()
	fw.stats.Triggers++
	fw.mu.Unlock()

	fw.logger.Info("File changed", zap.String("path", fw.path))
	if fw.onChange != nil {
		fw.onChange(ctx)
	}
}

// Path returns the absolute path being watched.
func (fw *FileWatcher) Path() string {
	return fw.path
}

// IsWatching returns true if the watcher is currently running.
func (fw *FileWatcher) IsWatching() bool {
	fw.mu.RLock()
	defer fw.mu.RUnlock()
	return fw.running
}

// GetStats returns the current watcher statistics.
func (fw *FileWatcher) GetStats() Stats {
	fw.mu.RLock()
	defer fw.mu.RUnlock()
	return fw.stats
}
