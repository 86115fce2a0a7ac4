package drawer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/drawer/core/tree"
)

func TestListenerRegistry_AddRemove(t *testing.T) {
	t.Parallel()

	registry := newListenerRegistry()

	var calls int
	id := registry.add(ListenerFuncs{OnTreeChanged: func() { calls++ }})
	require.NotEmpty(t, id)

	registry.notifyTreeChanged()
	assert.Equal(t, 1, calls)

	registry.remove(id)
	registry.notifyTreeChanged()
	assert.Equal(t, 1, calls, "removed listener no longer notified")
}

func TestListenerRegistry_UniqueHandles(t *testing.T) {
	t.Parallel()

	registry := newListenerRegistry()
	first := registry.add(ListenerFuncs{})
	second := registry.add(ListenerFuncs{})

	assert.NotEqual(t, first, second)
}

func TestListenerFuncs_NilFieldsAreNoOps(t *testing.T) {
	t.Parallel()

	var l ListenerFuncs
	assert.NotPanics(t, func() {
		l.TreeChanged()
		l.SubtreeChanged(&tree.Item{})
	})
}

func TestListenerRegistry_SubtreeNotification(t *testing.T) {
	t.Parallel()

	registry := newListenerRegistry()

	var got *tree.Item
	registry.add(ListenerFuncs{OnSubtreeChanged: func(item *tree.Item) { got = item }})

	item := &tree.Item{}
	registry.notifySubtreeChanged(item)
	assert.Same(t, item, got)
}
