package pdf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/paperchat/internal/core/domain"
	"github.com/custodia-labs/paperchat/internal/core/ports/driven"
	"github.com/custodia-labs/paperchat/internal/logger"
)

// Verify interface compliance.
var _ driven.PaperWatcher = (*Watcher)(nil)

// ErrWatcherClosed is returned by Watch after Close.
var ErrWatcherClosed = errors.New("watcher closed")

// Watcher reports PDF and sidecar changes using fsnotify.
type Watcher struct {
	mu       sync.Mutex
	closed   bool
	watchers []*fsnotify.Watcher
}

// NewWatcher creates a paper watcher.
func NewWatcher() *Watcher {
	return &Watcher{}
}

// Watch watches dir recursively. Directories created later are added as
// they appear; hidden files and directories are ignored.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan domain.PaperChange, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrWatcherClosed
	}

	st, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("papers directory: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("papers directory %s is not a directory: %w", dir, domain.ErrInvalidInput)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := addTree(fw, dir); err != nil {
		fw.Close()
		return nil, err
	}
	w.watchers = append(w.watchers, fw)

	changes := make(chan domain.PaperChange, 16)
	go w.run(ctx, fw, changes)
	return changes, nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, changes chan<- domain.PaperChange) {
	defer close(changes)
	defer fw.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) && isVisibleDir(event.Name) {
				if err := addTree(fw, event.Name); err != nil {
					logger.Warn("watching %s: %v", event.Name, err)
				}
				continue
			}

			change := handleEvent(event)
			if change == nil {
				continue
			}
			select {
			case changes <- *change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

// Close stops every active watch.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	for _, fw := range w.watchers {
		if err := fw.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	w.watchers = nil
	return errors.Join(errs...)
}

// handleEvent maps an fsnotify event to a paper change.
// Returns nil for events that don't affect the corpus.
func handleEvent(event fsnotify.Event) *domain.PaperChange {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !isCorpusFile(name) {
		return nil
	}

	var kind domain.ChangeType
	switch {
	case event.Has(fsnotify.Create):
		kind = domain.ChangeCreated
	case event.Has(fsnotify.Write):
		kind = domain.ChangeUpdated
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		kind = domain.ChangeDeleted
	default:
		return nil
	}

	if kind != domain.ChangeDeleted {
		if st, err := os.Stat(event.Name); err == nil && st.IsDir() {
			return nil
		}
	}
	return &domain.PaperChange{Path: event.Name, Type: kind}
}

func isCorpusFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".pdf" || slices.Contains(sidecarExtensions, ext)
}

func isVisibleDir(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

// addTree adds dir and every visible subdirectory to fw.
func addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
