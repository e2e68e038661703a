package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"braingraph/domain/layout"
)

const presetDebounce = 200 * time.Millisecond

// PresetWatcher keeps a layout registry in sync with a presets file. The
// built-in presets are always present; the file adds or overrides entries.
type PresetWatcher struct {
	path   string
	base   *layout.Registry
	loader *Loader
	logger *zap.Logger

	mu        sync.RWMutex
	current   *layout.Registry
	callbacks []func(*layout.Registry)

	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewPresetWatcher loads path once and starts watching it. An empty path
// yields a static registry of built-ins.
func NewPresetWatcher(path string, logger *zap.Logger) (*PresetWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &PresetWatcher{
		path:   path,
		base:   layout.NewRegistry(),
		loader: NewLoader(),
		logger: logger,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	w.current = w.base

	if path == "" {
		close(w.done)
		return w, nil
	}
	if err := w.reload(); err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// editors replace files on save, so the directory is watched
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	w.watcher = fsWatcher
	go w.watchLoop()

	logger.Info("layout preset hot reloading enabled", zap.String("path", path))
	return w, nil
}

// Registry returns the current preset registry
func (w *PresetWatcher) Registry() *layout.Registry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback run after every successful reload
func (w *PresetWatcher) OnChange(fn func(*layout.Registry)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Close stops watching
func (w *PresetWatcher) Close() error {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.done
	return nil
}

func (w *PresetWatcher) watchLoop() {
	defer close(w.done)
	defer w.watcher.Close()

	var debounceTimer *time.Timer
	target := filepath.Clean(w.path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("presets file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(presetDebounce, func() {
				if err := w.reload(); err != nil {
					w.logger.Error("failed to reload presets, keeping previous set", zap.Error(err))
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("preset watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}

func (w *PresetWatcher) reload() error {
	presets, err := w.loader.LoadPresets(w.path)
	if err != nil {
		return err
	}
	next := w.base.Merge(presets...)

	w.mu.Lock()
	w.current = next
	callbacks := append([]func(*layout.Registry){}, w.callbacks...)
	w.mu.Unlock()

	w.logger.Info("layout presets loaded",
		zap.String("path", w.path),
		zap.Int("custom", len(presets)),
	)
	for _, fn := range callbacks {
		fn(next)
	}
	return nil
}
