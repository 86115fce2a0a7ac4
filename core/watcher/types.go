// Package watcher wraps fsnotify to deliver debounced, directory-granular
// batches of changed paths for a watched root tree.
package watcher

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// Constants
// =============================================================================

// DefaultDebounce is the default quiet window before a batch is emitted.
const DefaultDebounce = 100 * time.Millisecond

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrAlreadyWatching indicates Start was called while a watch is active.
	ErrAlreadyWatching = errors.New("watcher is already watching")

	// ErrPathNotExist indicates the watch root does not exist.
	ErrPathNotExist = errors.New("watch root does not exist")

	// ErrPathNotDirectory indicates the watch root is not a directory.
	ErrPathNotDirectory = errors.New("watch root is not a directory")

	// ErrInvalidPattern indicates an exclude pattern could not be compiled.
	ErrInvalidPattern = errors.New("invalid exclude pattern")
)

// SetupError reports that a watch could not be established, either because
// the root path is invalid or because the OS watch resource could not be
// allocated.
type SetupError struct {
	// Path is the root that failed to watch.
	Path string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *SetupError) Error() string {
	return fmt.Sprintf("watch setup failed for %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *SetupError) Unwrap() error { return e.Err }

// =============================================================================
// State
// =============================================================================

// State is the watcher lifecycle state.
type State int

const (
	// StateIdle means no watch is active.
	StateIdle State = iota

	// StateWatching means events are being collected and delivered.
	StateWatching

	// StateFailed means the last Start could not establish a watch.
	// Only a fresh Start leaves this state.
	StateFailed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWatching:
		return "watching"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// =============================================================================
// Batch
// =============================================================================

// Batch is a coalesced set of changed absolute paths at directory
// granularity. There is no ordering among the paths of one batch; the
// recipient rescans at or above each path.
type Batch map[string]struct{}

// Paths returns the batch contents as a slice, in no particular order.
func (b Batch) Paths() []string {
	paths := make([]string, 0, len(b))
	for path := range b {
		paths = append(paths, path)
	}
	return paths
}
