package assets

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads resources whose files change on disk. It only works for
// loaders reading from the OS file system under Options.Root.
type Watcher struct {
	res      *Resources
	root     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	log      *zap.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	wg     sync.WaitGroup
}

// Watch starts watching the directories of every source in res. Stop it
// with Close or by cancelling ctx.
func Watch(ctx context.Context, res *Resources, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch resources: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		res:      res,
		root:     res.loader.opts.Root,
		debounce: debounce,
		fsw:      fsw,
		log:      res.log,
		timers:   make(map[string]*time.Timer),
	}

	dirs := make(map[string]bool)
	for _, src := range res.Sources() {
		dir := filepath.Dir(w.osPath(src.Path))
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.wg.Add(1)
	go w.run(ctx)
	w.log.Debug("Watching resources", zap.Int("directories", len(dirs)))
	return w, nil
}

func (w *Watcher) osPath(p string) string {
	return filepath.Clean(filepath.Join(w.root, filepath.FromSlash(p)))
}

func (w *Watcher) sourceFor(osPath string) (Source, bool) {
	rel, err := filepath.Rel(filepath.Clean(w.root), filepath.Clean(osPath))
	if err != nil {
		return Source{}, false
	}
	return w.res.SourceForPath(filepath.ToSlash(rel))
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			w.fsw.Close()
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if src, ok := w.sourceFor(ev.Name); ok {
				w.schedule(ctx, src.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("File watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) schedule(ctx context.Context, name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[name]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[name] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, name)
		w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		_ = w.res.Reload(ctx, name)
	})
}

// Close stops watching. Reloads already scheduled are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for name, t := range w.timers {
		t.Stop()
		delete(w.timers, name)
	}
	w.mu.Unlock()
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
