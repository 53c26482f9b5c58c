// Package watcher rebuilds the content module when markdown files change
// during development.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-devblog/internal/logging"
	"github.com/goliatone/go-devblog/pkg/interfaces"
)

const defaultDebounce = 250 * time.Millisecond

var ErrRebuildRequired = errors.New("watcher: rebuild function is required")

// Swapper is an http.Handler that delegates to the most recently stored
// handler. Requests in flight keep the handler they started with.
type Swapper struct {
	current atomic.Pointer[holder]
}

type holder struct {
	handler http.Handler
}

// NewSwapper returns a swapper serving initial.
func NewSwapper(initial http.Handler) *Swapper {
	s := &Swapper{}
	s.Swap(initial)
	return s
}

// Swap replaces the served handler.
func (s *Swapper) Swap(handler http.Handler) {
	s.current.Store(&holder{handler: handler})
}

func (s *Swapper) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h := s.current.Load()
	if h == nil || h.handler == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	h.handler.ServeHTTP(w, r)
}

// Watcher observes a content directory and its category sub-directories.
type Watcher struct {
	dir      string
	rebuild  func(context.Context) error
	debounce time.Duration
	logger   interfaces.Logger
	ready    chan struct{}
	once     sync.Once
}

// Option customises a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period collected before a rebuild.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger used for change and rebuild diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New constructs a watcher over dir. rebuild runs after each burst of
// markdown changes; a failing rebuild is logged and the next change retries.
func New(dir string, rebuild func(context.Context) error, opts ...Option) (*Watcher, error) {
	if rebuild == nil {
		return nil, ErrRebuildRequired
	}
	w := &Watcher{
		dir:      dir,
		rebuild:  rebuild,
		debounce: defaultDebounce,
		logger:   logging.NoOp(),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Ready is closed once the initial directories are being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	for _, dir := range w.dirs() {
		if err := fsw.Add(dir); err != nil {
			w.logger.Warn("watcher.add.failed", "dir", dir, "error", err)
		}
	}
	w.once.Do(func() { close(w.ready) })
	w.logger.Info("watcher.started", "dir", w.dir)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	pending := 0

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := fsw.Add(event.Name); err != nil {
					w.logger.Warn("watcher.add.failed", "dir", event.Name, "error", err)
				}
				continue
			}
			if !Relevant(event) {
				continue
			}
			pending++
			timer.Reset(w.debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher.error", "error", err)
		case <-timer.C:
			changes := pending
			pending = 0
			if err := w.rebuild(ctx); err != nil {
				w.logger.Error("watcher.rebuild.failed", "changes", changes, "error", err)
				continue
			}
			w.logger.Info("watcher.rebuild.completed", "changes", changes)
		}
	}
}

// Relevant reports whether event touches a markdown file in a way that can
// change the published content.
func Relevant(event fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(event.Name), ".md") {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// dirs lists the content root and its immediate sub-directories. Category
// files are never nested deeper.
func (w *Watcher) dirs() []string {
	dirs := []string{w.dir}
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return dirs
	}
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			dirs = append(dirs, filepath.Join(w.dir, entry.Name()))
		}
	}
	return dirs
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
