package drawer

import "github.com/adalundhe/drawer/core/tree"

// =============================================================================
// Action
// =============================================================================

// Action identifies one context-menu entry for a drawer row. The host maps
// actions to its own commands (opening files, revealing in the system file
// manager); the drawer only decides which actions apply.
type Action int

const (
	// ActionOpen opens a file in the host editor.
	ActionOpen Action = iota

	// ActionExplore reveals a directory's contents (expand in place).
	ActionExplore

	// ActionRefresh forces a rescan of a directory.
	ActionRefresh

	// ActionReveal shows the entry in the system file manager.
	ActionReveal
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionOpen:
		return "open"
	case ActionExplore:
		return "explore"
	case ActionRefresh:
		return "refresh"
	case ActionReveal:
		return "reveal"
	default:
		return "unknown"
	}
}

// =============================================================================
// Menu Construction
// =============================================================================

// menuForItem returns the actions applicable to an item. Inaccessible
// entries keep only ActionReveal; directories get directory actions and
// never ActionOpen; everything else (files, symlinked directories, which
// are never enumerated) gets file actions.
func menuForItem(item *tree.Item) []Action {
	if !item.IsReadable() {
		return []Action{ActionReveal}
	}
	if item.IsDir() && !item.IsSymlink() {
		return []Action{ActionExplore, ActionRefresh, ActionReveal}
	}
	return []Action{ActionOpen, ActionReveal}
}

// MenuForRow returns the context-menu actions for the item at the given
// display row, or nil for out-of-range rows.
func (c *Controller) MenuForRow(row int) []Action {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := c.itemAtRowLocked(row)
	if item == nil {
		return nil
	}
	return menuForItem(item)
}
