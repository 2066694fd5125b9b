package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/aalemi-dev/oboe/logger"
	"github.com/aalemi-dev/oboe/settings"
)

// Watcher re-applies the settings section of a config file to a running
// Settings whenever the file changes. The other sections need a restart.
//
// The directory is watched rather than the file, so editors that replace
// the file on save are handled.
type Watcher struct {
	path     string
	settings *settings.Settings
	log      logger.Logger

	watcher *fsnotify.Watcher
	reloads atomic.Uint64

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewWatcher prepares a watcher of path. Call Start to begin watching.
func NewWatcher(path string, s *settings.Settings, log logger.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &Watcher{
		path:     abs,
		settings: s,
		log:      log,
		watcher:  fw,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start watches the file in the background until ctx is done or Close is
// called. The watch is registered before Start returns.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	go w.run(ctx)
	return nil
}

// Close stops the watcher and waits for it to exit. It is safe to call
// more than once, and before Start.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.watcher.Close()
	})
	return err
}

// Done is closed when the watch loop has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

// Reloads returns how many times the settings were re-applied.
func (w *Watcher) Reloads() uint64 {
	return w.reloads.Load()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	w.info("config watcher started", nil)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			w.reload(ev.Op)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.error("config watcher error", err)
		}
	}
}

// reload applies the settings section. Invalid files are logged and leave
// the running settings unchanged. An empty file is seen between the
// truncate and the write of a save and is skipped.
func (w *Watcher) reload(op fsnotify.Op) {
	if fi, err := os.Stat(w.path); err != nil || fi.Size() == 0 {
		return
	}
	cfg, err := Load(w.path)
	if err != nil {
		w.error("config reload failed", err)
		return
	}
	if err := w.settings.Apply(cfg.Settings); err != nil {
		w.error("config reload rejected", err)
		return
	}
	w.reloads.Add(1)
	w.info("settings reloaded", map[string]interface{}{
		"op":          op.String(),
		"trace_mode":  w.settings.TraceMode().String(),
		"sample_rate": w.settings.EffectiveSampleRate(),
	})
}

func (w *Watcher) info(msg string, fields map[string]interface{}) {
	if w.log == nil {
		return
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["path"] = w.path
	w.log.Info(msg, nil, fields)
}

func (w *Watcher) error(msg string, err error) {
	if w.log != nil {
		w.log.Error(msg, err, map[string]interface{}{"path": w.path})
	}
}

// Watch creates and starts a Watcher of path.
func Watch(ctx context.Context, path string, s *settings.Settings, log logger.Logger) (*Watcher, error) {
	w, err := NewWatcher(path, s, log)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}
