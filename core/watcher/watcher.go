package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// =============================================================================
// Config
// =============================================================================

// Config configures a Watcher.
type Config struct {
	// Debounce is the quiet window before a batch is emitted. Events
	// arriving during the window extend it. Default is DefaultDebounce.
	Debounce time.Duration

	// ExcludePatterns are glob patterns for paths whose events are ignored,
	// matched against the event path and its base name.
	ExcludePatterns []string
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() Config {
	return Config{Debounce: DefaultDebounce}
}

// applyDefaults fills unset fields.
func (c *Config) applyDefaults() {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
}

// =============================================================================
// Watcher
// =============================================================================

// Watcher monitors one root directory tree and delivers debounced batches
// of changed paths through a callback. Batches are delivered one at a
// time: the callback for a batch returns before the next batch is
// delivered. All callbacks run on a single delivery goroutine owned by
// the Watcher.
type Watcher struct {
	config   Config
	excludes []glob.Glob

	mu      sync.Mutex
	state   State
	root    string
	fsw     *fsnotify.Watcher
	pending Batch
	timer   *time.Timer

	batchCh chan Batch
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates a Watcher in the idle state.
func New(config Config) (*Watcher, error) {
	config.applyDefaults()

	excludes, err := compileExcludePatterns(config.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	return &Watcher{
		config:   config,
		excludes: excludes,
		state:    StateIdle,
	}, nil
}

// compileExcludePatterns compiles glob patterns for exclusion matching.
func compileExcludePatterns(patterns []string) ([]glob.Glob, error) {
	excludes := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, &SetupError{Err: ErrInvalidPattern}
		}
		excludes = append(excludes, g)
	}
	return excludes, nil
}

// State returns the watcher's current lifecycle state.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// =============================================================================
// Start
// =============================================================================

// Start begins watching rootPath and delivering batches to onBatch.
// It returns a *SetupError when the root is missing, not a directory, or
// the OS watch resource cannot be allocated; the watcher is then in the
// failed state and only a fresh Start leaves it.
func (w *Watcher) Start(rootPath string, onBatch func(Batch)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateWatching {
		return ErrAlreadyWatching
	}

	if err := validateRoot(rootPath); err != nil {
		w.state = StateFailed
		return &SetupError{Path: rootPath, Err: err}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.state = StateFailed
		return &SetupError{Path: rootPath, Err: err}
	}

	if err := addDirectoryRecursive(fsw, rootPath, w.excludes); err != nil {
		fsw.Close()
		w.state = StateFailed
		return &SetupError{Path: rootPath, Err: err}
	}

	w.root = filepath.Clean(rootPath)
	w.fsw = fsw
	w.pending = make(Batch)
	w.batchCh = make(chan Batch, 16)
	w.stopCh = make(chan struct{})
	w.state = StateWatching

	w.wg.Add(2)
	go w.readLoop(fsw)
	go w.deliverLoop(onBatch)

	return nil
}

// validateRoot checks that the watch root exists and is a directory.
func validateRoot(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrPathNotExist
		}
		return err
	}
	if !info.IsDir() {
		return ErrPathNotDirectory
	}
	return nil
}

// addDirectoryRecursive registers root and every subdirectory under it.
// Unreadable subdirectories are skipped rather than failing the watch.
func addDirectoryRecursive(fsw *fsnotify.Watcher, root string, excludes []glob.Glob) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if isExcluded(path, excludes) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

// isExcluded checks a path against the exclusion globs.
func isExcluded(path string, excludes []glob.Glob) bool {
	for _, pattern := range excludes {
		if pattern.Match(path) || pattern.Match(filepath.Base(path)) {
			return true
		}
	}
	return false
}

// =============================================================================
// Event Collection
// =============================================================================

// readLoop drains fsnotify events into the pending batch until the
// watcher is stopped or the fsnotify channels close.
func (w *Watcher) readLoop(fsw *fsnotify.Watcher) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(fsw, event)
		case _, ok := <-fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// handleEvent folds one raw fsnotify event into the pending batch.
func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, event fsnotify.Event) {
	if isExcluded(event.Name, w.excludes) {
		return
	}

	// New directories must be added so the recursive watch stays complete.
	if event.Has(fsnotify.Create) {
		w.watchIfNewDirectory(fsw, event.Name)
	}

	w.record(w.reduceToDirectory(event.Name))
}

// watchIfNewDirectory registers a freshly created directory subtree.
func (w *Watcher) watchIfNewDirectory(fsw *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	_ = addDirectoryRecursive(fsw, path, w.excludes)
}

// reduceToDirectory maps a raw event path to the directory whose listing
// it affects. Events on the root itself stay on the root; everything else
// reports the containing directory, which is the granularity the tree
// rescans at.
func (w *Watcher) reduceToDirectory(path string) string {
	clean := filepath.Clean(path)
	if clean == w.root {
		return clean
	}
	return filepath.Dir(clean)
}

// record adds a path to the pending batch and (re)arms the debounce timer.
func (w *Watcher) record(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateWatching {
		return
	}

	w.pending[path] = struct{}{}

	if w.timer == nil {
		w.timer = time.AfterFunc(w.config.Debounce, w.flush)
		return
	}
	w.timer.Reset(w.config.Debounce)
}

// flush hands the pending batch to the delivery goroutine.
func (w *Watcher) flush() {
	w.mu.Lock()
	if w.state != StateWatching || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := w.pending
	w.pending = make(Batch)
	w.timer = nil
	stopCh := w.stopCh
	batchCh := w.batchCh
	w.mu.Unlock()

	select {
	case batchCh <- batch:
	case <-stopCh:
	}
}

// =============================================================================
// Delivery
// =============================================================================

// deliverLoop invokes the batch callback serially: a batch is fully
// processed before the next one is taken.
func (w *Watcher) deliverLoop(onBatch func(Batch)) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			return
		case batch := <-w.batchCh:
			onBatch(batch)
		}
	}
}

// =============================================================================
// Stop
// =============================================================================

// Stop ends the watch and joins the delivery goroutine; after Stop
// returns, no further callbacks fire. Stopping an idle or failed watcher
// is a no-op.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.state != StateWatching {
		w.mu.Unlock()
		return
	}

	w.state = StateIdle
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = nil
	close(w.stopCh)
	w.fsw.Close()
	w.fsw = nil
	w.mu.Unlock()

	w.wg.Wait()
}
