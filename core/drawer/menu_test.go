package drawer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/drawer/core/tree"
)

// =============================================================================
// Fixture Tree
// =============================================================================

// menuLister serves a fixed listing so menu rules can be exercised for
// every kind, including inaccessible entries that are awkward to produce
// on a real filesystem.
type menuLister struct{}

func (menuLister) List(path string) ([]tree.Entry, error) {
	switch path {
	case "/proj":
		return []tree.Entry{
			{Name: "locked", Path: "/proj/locked", Kind: tree.KindDirectory},
			{Name: "sub", Path: "/proj/sub", Kind: tree.KindDirectory},
			{Name: "a.txt", Path: "/proj/a.txt", Kind: tree.KindFile},
			{Name: "ghost", Path: "/proj/ghost", Kind: tree.KindInaccessible},
			{Name: "link", Path: "/proj/link", Kind: tree.KindDirectory, Symlink: true},
		}, nil
	case "/proj/locked":
		return nil, errors.New("permission denied")
	default:
		return nil, nil
	}
}

func menuFixture(t *testing.T) map[string]*tree.Item {
	t.Helper()

	root := tree.NewRoot("/proj", menuLister{})
	items := make(map[string]*tree.Item)
	for _, child := range root.Children() {
		items[child.Name()] = child
	}
	require.Len(t, items, 5)
	return items
}

// =============================================================================
// Menu Rules
// =============================================================================

func TestMenuForItem_RegularFile(t *testing.T) {
	t.Parallel()

	items := menuFixture(t)
	actions := menuForItem(items["a.txt"])

	assert.Equal(t, []Action{ActionOpen, ActionReveal}, actions)
	assert.NotContains(t, actions, ActionExplore, "files get no directory-only actions")
	assert.NotContains(t, actions, ActionRefresh)
}

func TestMenuForItem_Directory(t *testing.T) {
	t.Parallel()

	items := menuFixture(t)
	actions := menuForItem(items["sub"])

	assert.Equal(t, []Action{ActionExplore, ActionRefresh, ActionReveal}, actions)
	assert.NotContains(t, actions, ActionOpen)
}

func TestMenuForItem_InaccessibleEntry(t *testing.T) {
	t.Parallel()

	items := menuFixture(t)
	actions := menuForItem(items["ghost"])

	assert.Equal(t, []Action{ActionReveal}, actions)
}

func TestMenuForItem_UnreadableDirectory(t *testing.T) {
	t.Parallel()

	items := menuFixture(t)
	locked := items["locked"]
	locked.Children() // scan fails, access error recorded

	actions := menuForItem(locked)
	assert.Equal(t, []Action{ActionReveal}, actions,
		"unreadable directory loses open and explore actions")
}

func TestMenuForItem_SymlinkedDirectory(t *testing.T) {
	t.Parallel()

	items := menuFixture(t)
	actions := menuForItem(items["link"])

	assert.Equal(t, []Action{ActionOpen, ActionReveal}, actions,
		"symlinked directories are never explored in place")
}

// =============================================================================
// MenuForRow
// =============================================================================

func TestMenuForRow(t *testing.T) {
	t.Parallel()

	dir := makeProject(t)
	c := newTestController(t)
	c.SetRootPath(dir)

	assert.Equal(t, []Action{ActionExplore, ActionRefresh, ActionReveal}, c.MenuForRow(0))
	assert.Equal(t, []Action{ActionOpen, ActionReveal}, c.MenuForRow(1))
	assert.Nil(t, c.MenuForRow(99), "out-of-range row has no menu")
	assert.Nil(t, c.MenuForRow(-1))
}

func TestActionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "open", ActionOpen.String())
	assert.Equal(t, "explore", ActionExplore.String())
	assert.Equal(t, "refresh", ActionRefresh.String())
	assert.Equal(t, "reveal", ActionReveal.String())
}
