package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/tutorbase/faqsearch/internal/debug"
)

// DefaultWatchDebounce batches rapid filesystem events (editors write
// corpus files in several bursts) into a single reload.
const DefaultWatchDebounce = 200 * time.Millisecond

// Watcher monitors corpus files matching a glob pattern and reloads the
// merged document when they change. Reload results are delivered through
// the OnReload callback, errors included, so the caller decides whether
// a broken corpus replaces a working one.
type Watcher struct {
	pattern  string
	debounce time.Duration
	onReload func(*Document, error)

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
}

// NewWatcher builds a watcher for the corpus pattern. A non-positive
// debounce falls back to DefaultWatchDebounce.
func NewWatcher(pattern string, debounce time.Duration, onReload func(*Document, error)) (*Watcher, error) {
	if onReload == nil {
		return nil, fmt.Errorf("watcher needs a reload callback")
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		pattern:  pattern,
		debounce: debounce,
		onReload: onReload,
		watcher:  fsw,
		ctx:      ctx,
		cancel:   cancel,
		pending:  make(map[string]struct{}),
	}, nil
}

// Start adds watches for every directory holding a matching file and
// begins processing events.
func (w *Watcher) Start() error {
	if err := w.addWatches(); err != nil {
		return err
	}
	w.wg.Add(1)
	go w.processEvents()
	debug.LogIndex("corpus watcher started for pattern %q\n", w.pattern)
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit. A
// flush pending at shutdown is dropped; the corpus is being torn down
// anyway.
func (w *Watcher) Stop() {
	w.cancel()
	w.watcher.Close()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	w.wg.Wait()
}

// addWatches registers the directories of all current matches plus the
// pattern's static base, so newly created corpus files are seen too.
func (w *Watcher) addWatches() error {
	base, _ := doublestar.SplitPattern(filepath.ToSlash(w.pattern))
	dirs := map[string]bool{}
	if info, err := os.Stat(filepath.FromSlash(base)); err == nil && info.IsDir() {
		dirs[filepath.FromSlash(base)] = true
	}

	matches, err := doublestar.FilepathGlob(w.pattern)
	if err != nil {
		return fmt.Errorf("bad corpus pattern %q: %w", w.pattern, err)
	}
	for _, m := range matches {
		dirs[filepath.Dir(m)] = true
	}
	if len(dirs) == 0 {
		return fmt.Errorf("nothing to watch for pattern %q", w.pattern)
	}

	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	return nil
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			debug.LogIndex("corpus watcher error: %v\n", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if !w.matches(event.Name) {
		return
	}
	debug.LogIndex("corpus watcher: %v %s\n", event.Op, event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[event.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) matches(path string) bool {
	if ok, err := doublestar.Match(filepath.ToSlash(w.pattern), filepath.ToSlash(path)); err == nil && ok {
		return true
	}
	// Relative events from some platforms still need to match
	// absolute-style patterns.
	if abs, err := filepath.Abs(path); err == nil {
		if ok, _ := doublestar.Match(filepath.ToSlash(w.pattern), filepath.ToSlash(abs)); ok {
			return true
		}
	}
	return false
}

// flush reloads the entire pattern rather than the changed files: a
// corpus is small and merge semantics (first ID wins) depend on the
// whole match set.
func (w *Watcher) flush() {
	w.mu.Lock()
	changed := len(w.pending)
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if changed == 0 || w.ctx.Err() != nil {
		return
	}
	debug.LogIndex("corpus watcher: reloading after %d changed files\n", changed)

	doc, err := LoadGlob(w.ctx, w.pattern)
	w.onReload(doc, err)
}
