package shader

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/quadgl/internal/engine/gpu"
	"github.com/Faultbox/quadgl/internal/logger"
)

// Watcher reports edits to shader source files.
//
// Events are read on a background goroutine and forwarded as file paths; nothing in
// the watcher touches the GPU. The render thread calls Poll once per frame.
type Watcher struct {
	fs      *fsnotify.Watcher
	files   map[string]bool
	changes chan string
	done    chan struct{}
	log     *zap.Logger
}

// NewWatcher watches the given files. Parent directories are watched rather than the
// files themselves so that editors which save by rename are still seen.
func NewWatcher(paths ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		fs:      fw,
		files:   make(map[string]bool),
		changes: make(chan string, 16),
		done:    make(chan struct{}),
		log:     logger.Named("shader.watch"),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !w.files[abs] {
				continue
			}
			select {
			case w.changes <- abs:
			default:
				// A rebuild is already pending.
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

// Changes delivers the path of each modified file.
func (w *Watcher) Changes() <-chan string { return w.changes }

// Poll drains pending changes without blocking and reports whether any arrived.
func (w *Watcher) Poll() bool {
	changed := false
	for {
		select {
		case path := <-w.changes:
			w.log.Info("shader source changed", zap.String("path", path))
			changed = true
		default:
			return changed
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}

// Rebuild builds a fresh program from old's sources. When the new program is valid,
// old is released and the new one returned; otherwise the failed build is discarded
// and old is returned unchanged.
func Rebuild(dev gpu.Device, old *Program) (*Program, error) {
	next, err := New(dev, old.Source())
	if err != nil {
		next.Release()
		return old, err
	}
	old.Release()
	return next, nil
}
