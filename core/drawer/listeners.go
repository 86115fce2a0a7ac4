package drawer

import (
	"sync"

	"github.com/google/uuid"

	"github.com/adalundhe/drawer/core/tree"
)

// =============================================================================
// RefreshListener
// =============================================================================

// RefreshListener receives the drawer's outbound display signals.
// Callbacks run on the controller's delivery path after the tree mutation
// completed; the tree is safe to query from them.
type RefreshListener interface {
	// TreeChanged signals that the whole tree was replaced (root change,
	// open) and every row must be re-read.
	TreeChanged()

	// SubtreeChanged signals that the rows under item went stale after a
	// change batch; rows outside the subtree are untouched.
	SubtreeChanged(item *tree.Item)
}

// ListenerFuncs adapts plain functions to RefreshListener. Nil fields are
// no-ops.
type ListenerFuncs struct {
	OnTreeChanged    func()
	OnSubtreeChanged func(item *tree.Item)
}

// TreeChanged implements RefreshListener.
func (l ListenerFuncs) TreeChanged() {
	if l.OnTreeChanged != nil {
		l.OnTreeChanged()
	}
}

// SubtreeChanged implements RefreshListener.
func (l ListenerFuncs) SubtreeChanged(item *tree.Item) {
	if l.OnSubtreeChanged != nil {
		l.OnSubtreeChanged(item)
	}
}

// =============================================================================
// Registry
// =============================================================================

// listenerRegistry holds refresh listeners keyed by registration ID.
// It has its own lock so notifications never run under the tree mutex.
type listenerRegistry struct {
	mu        sync.RWMutex
	listeners map[string]RefreshListener
}

func newListenerRegistry() *listenerRegistry {
	return &listenerRegistry{listeners: make(map[string]RefreshListener)}
}

// add registers a listener and returns its removal handle.
func (r *listenerRegistry) add(listener RefreshListener) string {
	id := uuid.NewString()

	r.mu.Lock()
	r.listeners[id] = listener
	r.mu.Unlock()

	return id
}

// remove unregisters the listener with the given handle.
func (r *listenerRegistry) remove(id string) {
	r.mu.Lock()
	delete(r.listeners, id)
	r.mu.Unlock()
}

// snapshot returns the current listeners for iteration outside the lock.
func (r *listenerRegistry) snapshot() []RefreshListener {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listeners := make([]RefreshListener, 0, len(r.listeners))
	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}
	return listeners
}

func (r *listenerRegistry) notifyTreeChanged() {
	for _, l := range r.snapshot() {
		l.TreeChanged()
	}
}

func (r *listenerRegistry) notifySubtreeChanged(item *tree.Item) {
	for _, l := range r.snapshot() {
		l.SubtreeChanged(item)
	}
}
