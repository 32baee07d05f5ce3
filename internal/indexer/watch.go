package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/repository"
)

// DefaultDebounce is the quiet period Watch waits for before re-ingesting
const DefaultDebounce = 250 * time.Millisecond

// ChangeFunc receives the result of every ingestion triggered by Watch
type ChangeFunc func(repo *repository.Repository, stats *Statistics)

// Watch re-ingests root whenever its content changes, once events have been
// quiet for config.Debounce. It blocks until ctx is cancelled.
func (idx *Indexer) Watch(ctx context.Context, root string, config *Config, onChange ChangeFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := addRecursive(watcher, root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	delay := DefaultDebounce
	if config != nil && config.Debounce > 0 {
		delay = config.Debounce
	}

	trigger := make(chan struct{}, 1)
	d := newDebouncer(delay, func() {
		select {
		case trigger <- struct{}{}:
		default: // a run is already pending
		}
	})
	defer d.stop()

	idx.logger.Info("watching source tree", "root", root, "debounce", delay)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ignoreEvent(root, event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(watcher, event.Name); err != nil {
						idx.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			idx.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			d.touch()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			idx.logger.Error("fsnotify error", "error", err)

		case <-trigger:
			repo, stats, err := idx.IndexTree(ctx, root, config)
			switch {
			case errors.Is(err, ErrIndexingInProgress):
				d.touch() // retry once the running ingestion is done
			case err != nil:
				if ctx.Err() != nil {
					return nil
				}
				idx.logger.Error("re-ingestion failed", "root", root, "error", err)
			case onChange != nil:
				onChange(repo, stats)
			}
		}
	}
}

// addRecursive watches dir and every non-hidden directory below it
func addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}

// ignoreEvent filters attribute-only changes and hidden paths
func ignoreEvent(root string, event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return true
	}
	rel, err := filepath.Rel(root, event.Name)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}

// debouncer runs fn once no touch happened for delay
type debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	fn    func()
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

func (d *debouncer) touch() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
