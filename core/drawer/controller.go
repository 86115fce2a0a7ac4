// Package drawer implements the controller behind a side-panel file
// browser: it owns the live tree for one watched root, keeps it in sync
// with the file system through the watcher, and answers the display
// layer's row and action queries.
package drawer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/adalundhe/drawer/core/config"
	"github.com/adalundhe/drawer/core/scanner"
	"github.com/adalundhe/drawer/core/tree"
	"github.com/adalundhe/drawer/core/watcher"
)

// =============================================================================
// Errors
// =============================================================================

// errNotDirectory indicates a root path that exists but is not a directory.
var errNotDirectory = errors.New("not a directory")

// InvalidRootError records a root path that could not be browsed. The
// controller absorbs it into its error state; it is never raised to the
// display layer.
type InvalidRootError struct {
	// Path is the rejected root.
	Path string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *InvalidRootError) Error() string {
	return fmt.Sprintf("invalid drawer root: %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *InvalidRootError) Unwrap() error { return e.Err }

// =============================================================================
// Options
// =============================================================================

// Options configures a Controller.
type Options struct {
	// Config supplies scan, watch, and drawer settings. Nil uses defaults.
	Config *config.Config

	// Logger receives structured diagnostics. Nil uses slog.Default.
	Logger *slog.Logger
}

// =============================================================================
// Controller
// =============================================================================

// Controller orchestrates one drawer instance. A single mutex serializes
// every tree mutation and every display query, so rescans never race a
// row lookup. Watch callbacks are tagged with a generation; teardown bumps
// the generation before the tree is discarded, so an in-flight batch can
// never mutate a stale tree.
type Controller struct {
	config  *config.Config
	logger  *slog.Logger
	scanner *scanner.Scanner

	mu       sync.Mutex
	root     *tree.Item
	rootErr  error
	open     bool
	selected *tree.Item
	expanded map[string]bool

	watcher  *watcher.Watcher
	watchGen uint64
	watchErr error

	// expansionMemory remembers expansion state per root path, so
	// returning to a previously browsed root restores the open folders.
	expansionMemory *lru.Cache[string, []string]

	listeners *listenerRegistry
}

// New creates a Controller with no root set.
func New(opts Options) (*Controller, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sc, err := scanner.New(scanner.Config{
		ShowHidden:      cfg.Scan.ShowHidden,
		ExcludePatterns: cfg.Scan.ExcludePatterns,
	})
	if err != nil {
		return nil, err
	}

	memorySize := cfg.Drawer.ExpansionMemorySize
	if memorySize <= 0 {
		memorySize = 16
	}
	memory, err := lru.New[string, []string](memorySize)
	if err != nil {
		return nil, err
	}

	return &Controller{
		config:          cfg,
		logger:          logger,
		scanner:         sc,
		expanded:        make(map[string]bool),
		expansionMemory: memory,
		listeners:       newListenerRegistry(),
	}, nil
}

// =============================================================================
// Root Lifecycle
// =============================================================================

// SetRootPath points the drawer at a new root directory. The previous
// watch is torn down and the previous tree discarded. An invalid path
// leaves the controller in a defined error state with an empty tree; it
// never fails hard.
func (c *Controller) SetRootPath(path string) {
	c.mu.Lock()
	detached := c.detachWatcherLocked()
	c.rememberExpansionLocked()
	c.discardTreeLocked()

	abs, err := validateRootPath(path)
	if err != nil {
		c.rootErr = &InvalidRootError{Path: path, Err: err}
		c.logger.Warn("invalid drawer root", "path", path, "error", err)
	} else {
		c.root = tree.NewRoot(abs, c.scanner)
		c.restoreExpansionLocked(abs)
	}
	reopen := c.open && c.root != nil
	c.mu.Unlock()

	if detached != nil {
		detached.Stop()
	}
	if reopen {
		c.WatchRoot()
	}
	c.listeners.notifyTreeChanged()
}

// validateRootPath normalizes the root and checks it is an existing
// directory.
func validateRootPath(path string) (string, error) {
	if path == "" {
		return "", os.ErrNotExist
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", errNotDirectory
	}
	return filepath.Clean(abs), nil
}

// discardTreeLocked drops the tree and all per-tree state.
func (c *Controller) discardTreeLocked() {
	c.root = nil
	c.rootErr = nil
	c.selected = nil
	c.expanded = make(map[string]bool)
}

// Root returns the current root item, or nil when no valid root is set.
func (c *Controller) Root() *tree.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.root
}

// RootErr returns the error state left by the last SetRootPath, or nil.
func (c *Controller) RootErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rootErr
}

// =============================================================================
// Open / Close
// =============================================================================

// Open makes the drawer visible and starts watching the root. Idempotent.
func (c *Controller) Open() {
	c.mu.Lock()
	if c.open {
		c.mu.Unlock()
		return
	}
	c.open = true
	c.mu.Unlock()

	c.WatchRoot()
	c.listeners.notifyTreeChanged()
}

// Close hides the drawer, remembers the expansion state, and stops the
// watch. Idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return
	}
	c.open = false
	c.rememberExpansionLocked()
	detached := c.detachWatcherLocked()
	c.mu.Unlock()

	if detached != nil {
		detached.Stop()
	}
}

// IsOpen reports whether the drawer is currently open.
func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// =============================================================================
// Watch Lifecycle
// =============================================================================

// WatchRoot (re)establishes the change watch on the current root. A setup
// failure leaves the drawer functional but stale: LiveUpdates reports
// false and browsing continues without notifications.
func (c *Controller) WatchRoot() {
	c.mu.Lock()
	detached := c.detachWatcherLocked()
	if !c.open || c.root == nil {
		c.mu.Unlock()
		if detached != nil {
			detached.Stop()
		}
		return
	}
	rootPath := c.root.Path()
	gen := c.watchGen
	c.mu.Unlock()

	if detached != nil {
		detached.Stop()
	}

	w, err := watcher.New(watcher.Config{
		Debounce:        c.config.Watch.DebounceDuration(),
		ExcludePatterns: c.config.Watch.ExcludePatterns,
	})
	if err == nil {
		err = w.Start(rootPath, func(batch watcher.Batch) {
			c.handleBatch(gen, batch)
		})
	}

	c.mu.Lock()
	if gen != c.watchGen {
		// Root changed while we were starting; this watch is obsolete.
		c.mu.Unlock()
		if err == nil {
			w.Stop()
		}
		return
	}

	if err != nil {
		c.watchErr = err
		c.mu.Unlock()
		c.logger.Warn("live updates unavailable", "root", rootPath, "error", err)
		return
	}

	c.watcher = w
	c.watchErr = nil
	c.mu.Unlock()
	c.logger.Debug("watching drawer root", "root", rootPath)
}

// detachWatcherLocked removes the active watcher from the controller and
// bumps the generation so its remaining callbacks are discarded. The
// caller stops the returned watcher outside the lock; stopping joins the
// delivery goroutine, which may itself be waiting on the lock.
func (c *Controller) detachWatcherLocked() *watcher.Watcher {
	detached := c.watcher
	c.watcher = nil
	c.watchGen++
	c.watchErr = nil
	return detached
}

// LiveUpdates reports whether change notifications are currently active.
// False while closed or after a watch setup failure (stale mode).
func (c *Controller) LiveUpdates() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.watcher != nil && c.watchErr == nil
}

// =============================================================================
// Change Propagation
// =============================================================================

// handleBatch applies one watcher batch to the tree. Batches from a
// detached watcher fail the generation check and are dropped.
func (c *Controller) handleBatch(gen uint64, batch watcher.Batch) {
	c.mu.Lock()
	if gen != c.watchGen || c.root == nil {
		c.mu.Unlock()
		return
	}

	seen := make(map[*tree.Item]struct{}, len(batch))
	var invalidated []*tree.Item
	for path := range batch {
		item := c.invalidateAtLocked(path)
		if item == nil {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		invalidated = append(invalidated, item)
	}
	c.mu.Unlock()

	for _, item := range invalidated {
		c.listeners.notifySubtreeChanged(item)
	}
}

// ChangeOccurredAt processes a single changed path: it invalidates the
// deepest already-loaded item covering the path and signals the display
// layer. Paths outside the current tree are discarded.
func (c *Controller) ChangeOccurredAt(path string) {
	c.mu.Lock()
	item := c.invalidateAtLocked(path)
	c.mu.Unlock()

	if item == nil {
		c.logger.Debug("change outside drawer tree discarded", "path", path)
		return
	}
	c.listeners.notifySubtreeChanged(item)
}

// invalidateAtLocked walks from the root toward path along loaded items
// and invalidates the deepest directory whose path is an ancestor-or-equal
// of the changed path. Only that subtree rescans; sibling rows stay
// stable. Returns nil when the path lies outside the tree.
func (c *Controller) invalidateAtLocked(path string) *tree.Item {
	if c.root == nil {
		return nil
	}

	clean := filepath.Clean(path)
	if !isAncestorOrEqual(c.root.Path(), clean) {
		return nil
	}

	item := c.root
	for item.Path() != clean {
		next := loadedChildOnPath(item, clean)
		if next == nil {
			break
		}
		item = next
	}

	if !item.IsDir() {
		item = item.Parent()
		if item == nil {
			return nil
		}
	}

	item.Invalidate()
	return item
}

// loadedChildOnPath finds the already-loaded child of dir that covers
// target, without triggering a scan.
func loadedChildOnPath(dir *tree.Item, target string) *tree.Item {
	for _, child := range dir.LoadedChildren() {
		if isAncestorOrEqual(child.Path(), target) {
			return child
		}
	}
	return nil
}

// isAncestorOrEqual reports whether path equals ancestor or lies under it.
func isAncestorOrEqual(ancestor, path string) bool {
	if ancestor == path {
		return true
	}
	return strings.HasPrefix(path, ancestor+string(filepath.Separator))
}

// =============================================================================
// Rows
// =============================================================================

// rowsLocked recomputes the display-order rows from the tree and the
// expansion state. Never cached; see tree.Flatten.
func (c *Controller) rowsLocked() []*tree.Item {
	return tree.Flatten(c.root, func(item *tree.Item) bool {
		return c.expanded[item.Path()]
	})
}

// itemAtRowLocked resolves a row index, nil when out of range.
func (c *Controller) itemAtRowLocked(row int) *tree.Item {
	rows := c.rowsLocked()
	if row < 0 || row >= len(rows) {
		return nil
	}
	return rows[row]
}

// RowCount returns the number of display rows for the current tree and
// expansion state.
func (c *Controller) RowCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rowsLocked())
}

// ItemAtRow maps a display row to its item, nil for out-of-range rows.
func (c *Controller) ItemAtRow(row int) *tree.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemAtRowLocked(row)
}

// =============================================================================
// Expansion
// =============================================================================

// ExpandRow marks the directory at row as expanded. No-op for files,
// symlinked directories, and out-of-range rows.
func (c *Controller) ExpandRow(row int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := c.itemAtRowLocked(row)
	if item == nil || !item.IsDir() || item.IsSymlink() {
		return
	}
	c.expanded[item.Path()] = true
}

// CollapseRow collapses the directory at row. A selection hidden by the
// collapse is cleared.
func (c *Controller) CollapseRow(row int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := c.itemAtRowLocked(row)
	if item == nil {
		return
	}
	delete(c.expanded, item.Path())

	if c.selected != nil && c.selected != item && isAncestorOrEqual(item.Path(), c.selected.Path()) {
		c.selected = nil
	}
}

// IsExpanded reports whether the item at row is currently expanded.
func (c *Controller) IsExpanded(row int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := c.itemAtRowLocked(row)
	return item != nil && c.expanded[item.Path()]
}

// rememberExpansionLocked saves the current expansion set for the root.
func (c *Controller) rememberExpansionLocked() {
	if c.root == nil || len(c.expanded) == 0 {
		return
	}
	paths := make([]string, 0, len(c.expanded))
	for path := range c.expanded {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	c.expansionMemory.Add(c.root.Path(), paths)
}

// restoreExpansionLocked restores a remembered expansion set, if any.
func (c *Controller) restoreExpansionLocked(rootPath string) {
	paths, ok := c.expansionMemory.Get(rootPath)
	if !ok {
		return
	}
	for _, path := range paths {
		c.expanded[path] = true
	}
}

// =============================================================================
// Selection
// =============================================================================

// Select sets the selection to the item at row; out-of-range rows clear
// the selection.
func (c *Controller) Select(row int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = c.itemAtRowLocked(row)
}

// SelectItem sets the selection to an item the display layer already
// holds.
func (c *Controller) SelectItem(item *tree.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = item
}

// SelectedItem returns the selected item, or nil. A selection whose item
// dropped out of the tree after a rescan is cleared here rather than
// handed back stale.
func (c *Controller) SelectedItem() *tree.Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected == nil {
		return nil
	}
	if !c.isAttachedLocked(c.selected) {
		c.selected = nil
		return nil
	}
	return c.selected
}

// isAttachedLocked reports whether item is still reachable from the
// current root by identity, walking the parent chain against each
// parent's loaded children.
func (c *Controller) isAttachedLocked(item *tree.Item) bool {
	node := item
	for node.Parent() != nil {
		if !containsLoadedChild(node.Parent(), node) {
			return false
		}
		node = node.Parent()
	}
	return node == c.root
}

// containsLoadedChild checks child membership by pointer identity.
func containsLoadedChild(parent, child *tree.Item) bool {
	for _, c := range parent.LoadedChildren() {
		if c == child {
			return true
		}
	}
	return false
}

// =============================================================================
// Listeners
// =============================================================================

// AddListener registers a refresh listener and returns its removal handle.
func (c *Controller) AddListener(listener RefreshListener) string {
	return c.listeners.add(listener)
}

// RemoveListener unregisters a previously added listener.
func (c *Controller) RemoveListener(id string) {
	c.listeners.remove(id)
}
