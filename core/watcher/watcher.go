package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/max-scopp/ts-flattered/core/cache"
	"github.com/max-scopp/ts-flattered/core/logger"
	"github.com/max-scopp/ts-flattered/core/registry"
	"github.com/max-scopp/ts-flattered/core/walker"
)

const DefaultDebounce = 500 * time.Millisecond

// Change is one source file that was written, created or removed since the
// last flush.
type Change struct {
	RelPath string
	Removed bool
}

type FileWatcher struct {
	Watcher    *fsnotify.Watcher
	RootDir    string
	Exclude    []string
	Extensions []string
	Debounce   time.Duration

	OnStart  func() error
	OnChange func(changes []Change) error
	OnClose  func() error

	mutex   sync.Mutex
	timer   *time.Timer
	pending map[string]bool
	// running serializes OnChange calls from overlapping timers, and OnClose
	// with the last of them.
	running sync.Mutex
	closed  bool
}

func NewFileWatcher(rootDir string, w *walker.Walker) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &FileWatcher{
		Watcher:    watcher,
		RootDir:    rootDir,
		Exclude:    w.Exclude,
		Extensions: w.Extensions,
		Debounce:   DefaultDebounce,
		OnStart:    func() error { return nil },
		OnChange:   func([]Change) error { return fmt.Errorf("OnChange not set") },
		OnClose:    func() error { return nil },
		pending:    make(map[string]bool),
	}, nil
}

// Watch blocks until ctx is done or the underlying watcher fails.
func (fw *FileWatcher) Watch(ctx context.Context) error {
	if err := fw.addWatchersRecursively(fw.RootDir); err != nil {
		return fmt.Errorf("failed to add watchers: %w", err)
	}

	if err := fw.OnStart(); err != nil {
		logger.Error("Watcher.OnStart failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			fw.handle(event)

		case err, ok := <-fw.Watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

func (fw *FileWatcher) handle(event fsnotify.Event) {
	rel, ok := fw.relPath(event.Name)
	if !ok || walker.Excluded(rel, fw.Exclude) {
		return
	}
	logger.Debug("File event: %s %s", event.Op, event.Name)

	if event.Has(fsnotify.Create) {
		if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
			logger.Debug("Adding watcher for new directory: %s", event.Name)
			if err := fw.addWatchersRecursively(event.Name); err != nil {
				logger.Error("Watcher: %v", err)
			}
			return
		}
	}
	if !fw.isSource(rel) {
		return
	}

	removed := event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
	if !removed && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	fw.record(rel, removed)
}

func (fw *FileWatcher) relPath(name string) (string, bool) {
	rel, err := filepath.Rel(fw.RootDir, name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (fw *FileWatcher) isSource(rel string) bool {
	if strings.HasSuffix(rel, ".d.ts") {
		return false
	}
	for _, ext := range fw.Extensions {
		if strings.HasSuffix(rel, ext) {
			return true
		}
	}
	return false
}

// record queues a change and restarts the debounce timer. The latest event
// for a path wins.
func (fw *FileWatcher) record(rel string, removed bool) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()

	if fw.closed {
		return
	}
	fw.pending[rel] = removed
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.Debounce, fw.flush)
}

func (fw *FileWatcher) drain() []Change {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()

	if fw.closed {
		return nil
	}
	changes := make([]Change, 0, len(fw.pending))
	for rel, removed := range fw.pending {
		changes = append(changes, Change{RelPath: rel, Removed: removed})
	}
	fw.pending = make(map[string]bool)
	sort.Slice(changes, func(i, j int) bool { return changes[i].RelPath < changes[j].RelPath })
	return changes
}

func (fw *FileWatcher) flush() {
	fw.running.Lock()
	defer fw.running.Unlock()

	changes := fw.drain()
	if len(changes) == 0 {
		return
	}
	logger.Debug("File changes detected, syncing %d files...", len(changes))
	if err := fw.OnChange(changes); err != nil {
		logger.Error("Watcher.OnChange failed: %v", err)
	}
}

// Close stops pending flushes and waits for a running OnChange before calling
// OnClose. Calling it again is a no-op.
func (fw *FileWatcher) Close() error {
	fw.mutex.Lock()
	if fw.closed {
		fw.mutex.Unlock()
		return nil
	}
	fw.closed = true
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.pending = make(map[string]bool)
	fw.mutex.Unlock()

	fw.running.Lock()
	defer fw.running.Unlock()
	if err := fw.OnClose(); err != nil {
		logger.Error("Watcher.OnClose failed: %v", err)
	}

	return fw.Watcher.Close()
}

func (fw *FileWatcher) addWatchersRecursively(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			return nil
		}

		if rel, ok := fw.relPath(path); ok && walker.Excluded(rel, fw.Exclude) {
			logger.Debug("Excluding directory: %s", path)
			return filepath.SkipDir
		}

		logger.Debug("Adding watcher for: %s", path)
		if err := fw.Watcher.Add(path); err != nil {
			return fmt.Errorf("failed to add watcher for %s: %w", path, err)
		}

		return nil
	})
}

// SyncRegistry returns an OnChange handler that re-registers changed files
// and unregisters removed ones.
func SyncRegistry(ctx context.Context, root string, reg *registry.Registry, parses *cache.ParseCache) func([]Change) error {
	return func(changes []Change) error {
		var failed []string
		for _, c := range changes {
			if c.Removed {
				if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(c.RelPath))); err == nil {
					// Editors often save by rename; the file is back.
					c.Removed = false
				}
			}
			if c.Removed {
				if reg.Unregister(c.RelPath) {
					logger.Info("Unregistered %s", c.RelPath)
				}
				continue
			}
			if err := walker.LoadFile(ctx, root, c.RelPath, reg, parses); err != nil {
				logger.Warn("Failed to reload %s: %v", c.RelPath, err)
				failed = append(failed, c.RelPath)
				continue
			}
			logger.Info("Reloaded %s", c.RelPath)
		}
		if len(failed) > 0 {
			return fmt.Errorf("failed to reload %d files: %s", len(failed), strings.Join(failed, ", "))
		}
		return nil
	}
}
