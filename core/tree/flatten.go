package tree

// =============================================================================
// Row Flattening
// =============================================================================

// ExpandedFunc reports whether a directory item is currently expanded in
// the display.
type ExpandedFunc func(*Item) bool

// Flatten produces the display-order row list for the tree: a depth-first
// walk of the root's children that descends only into expanded directories.
// The root itself is not a row.
//
// Flatten is a pure function of the tree and the expansion state and is
// recomputed on demand; callers must not cache the result across
// invalidations.
func Flatten(root *Item, expanded ExpandedFunc) []*Item {
	if root == nil {
		return nil
	}
	var rows []*Item
	appendRows(&rows, root, expanded)
	return rows
}

// appendRows appends dir's children in display order, recursing into
// expanded directories. Expansion triggers the lazy scan for directories
// whose children were not yet loaded.
func appendRows(rows *[]*Item, dir *Item, expanded ExpandedFunc) {
	for _, child := range dir.Children() {
		*rows = append(*rows, child)
		if child.expandable() && expanded(child) {
			appendRows(rows, child, expanded)
		}
	}
}
