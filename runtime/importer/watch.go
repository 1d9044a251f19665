package importer

import (
	"sync"

	"github.com/cascadelang/cascade/core/ast"
	"github.com/cascadelang/cascade/core/types"
	"github.com/fsnotify/fsnotify"
)

// WatchingResolver wraps a Resolver with an fsnotify watch over every path
// it has ever resolved, so a long-lived host (an editor integration, a
// dev-mode rebuild loop) can keep the de-dup cache honest across edits
// without re-reading every partial on every parse. The core parser never
// constructs one of these itself — Parse stays synchronous; only a host
// that wants watch-invalidated re-imports opts in.
type WatchingResolver struct {
	*Resolver
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	watched map[string]bool
	closed  chan struct{}
}

// NewWatchingResolver constructs a WatchingResolver. Call Close when the
// host is done with it to stop the background watch goroutine.
func NewWatchingResolver(opts ...Option) (*WatchingResolver, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &WatchingResolver{
		Resolver: NewResolver(opts...),
		watcher:  watcher,
		watched:  make(map[string]bool),
		closed:   make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *WatchingResolver) run() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.Resolver.cache.invalidate(ev.Name)
				w.Resolver.logger.Debug("import cache invalidated", "path", ev.Name, "op", ev.Op.String())
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.Resolver.logger.Warn("import watch error", "error", err)
		case <-w.closed:
			return
		}
	}
}

// Resolve delegates to the wrapped Resolver, then begins watching any
// resolved path not already under watch.
func (w *WatchingResolver) Resolve(importURL, importingPath string, sourceRange types.SourceRange) ([]ast.ImportStub, bool) {
	stubs, handled := w.Resolver.Resolve(importURL, importingPath, sourceRange)
	if !handled {
		return stubs, handled
	}
	for _, stub := range stubs {
		w.watchOnce(stub.ResolvedPath)
	}
	return stubs, handled
}

func (w *WatchingResolver) watchOnce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watched[path] {
		return
	}
	if err := w.watcher.Add(path); err != nil {
		w.Resolver.logger.Warn("import watch add failed", "path", path, "error", err)
		return
	}
	w.watched[path] = true
}

// Close stops the watch goroutine and releases the underlying fsnotify
// watcher. Safe to call once; further Resolve calls still work but stop
// invalidating the cache.
func (w *WatchingResolver) Close() error {
	close(w.closed)
	return w.watcher.Close()
}
