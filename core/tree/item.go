// Package tree implements the in-memory file-system tree that backs the
// drawer's outline display. Items load their children lazily through a
// Lister and keep them cached until invalidated, so the display layer can
// index rows without touching the disk on every redraw.
package tree

import "path/filepath"

// =============================================================================
// Kind
// =============================================================================

// Kind classifies a file-system entry.
type Kind int

const (
	// KindDirectory is a directory entry.
	KindDirectory Kind = iota

	// KindFile is a regular file.
	KindFile

	// KindSymlink is a symbolic link whose target cannot be resolved.
	// Links with a resolvable target take the target's kind instead.
	KindSymlink

	// KindInaccessible is an entry that could not be classified.
	KindInaccessible
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	case KindSymlink:
		return "symlink"
	case KindInaccessible:
		return "inaccessible"
	default:
		return "unknown"
	}
}

// =============================================================================
// Entry
// =============================================================================

// Entry is one directory-listing result produced by a Lister.
type Entry struct {
	// Name is the entry's base name.
	Name string

	// Path is the absolute path to the entry.
	Path string

	// Kind is the entry's classification. Symlinks carry their target's kind.
	Kind Kind

	// Symlink marks entries reached through a symbolic link.
	Symlink bool
}

// =============================================================================
// Lister
// =============================================================================

// Lister enumerates the immediate children of a directory in a
// deterministic order. Implemented by the scanner package.
type Lister interface {
	// List returns the ordered entries of the directory at path.
	List(path string) ([]Entry, error)
}

// =============================================================================
// Item
// =============================================================================

// Item is one node of the drawer tree. A directory Item owns its children
// exclusively; the parent pointer is a non-owning back-reference used for
// ancestor walks.
type Item struct {
	path    string
	name    string
	kind    Kind
	symlink bool

	parent   *Item
	children []*Item

	// loaded distinguishes "scanned and empty" from "never scanned".
	loaded    bool
	accessErr error

	lister Lister
}

// NewRoot creates the root item for a drawer rooted at path.
// The path must already be validated as an absolute directory path.
func NewRoot(path string, lister Lister) *Item {
	clean := filepath.Clean(path)
	return &Item{
		path:   clean,
		name:   filepath.Base(clean),
		kind:   KindDirectory,
		lister: lister,
	}
}

// newChild creates a child item from a listing entry.
func newChild(parent *Item, entry Entry) *Item {
	return &Item{
		path:    entry.Path,
		name:    entry.Name,
		kind:    entry.Kind,
		symlink: entry.Symlink,
		parent:  parent,
		lister:  parent.lister,
	}
}

// =============================================================================
// Accessors
// =============================================================================

// Path returns the item's absolute path.
func (it *Item) Path() string { return it.path }

// Name returns the item's display name.
func (it *Item) Name() string { return it.name }

// Kind returns the item's classification.
func (it *Item) Kind() Kind { return it.kind }

// IsDir reports whether the item is a directory.
func (it *Item) IsDir() bool { return it.kind == KindDirectory }

// IsSymlink reports whether the item was reached through a symbolic link.
func (it *Item) IsSymlink() bool { return it.symlink }

// IsReadable reports the last-known accessibility of the item. It reflects
// the most recent scan and never re-stats the entry.
func (it *Item) IsReadable() bool {
	return it.kind != KindInaccessible && it.accessErr == nil
}

// AccessErr returns the error recorded by the last failed scan, or nil.
func (it *Item) AccessErr() error { return it.accessErr }

// Parent returns the item's parent, or nil for the root.
func (it *Item) Parent() *Item { return it.parent }

// Root walks the parent chain to the tree's root item.
func (it *Item) Root() *Item {
	root := it
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// Depth returns the number of ancestors between the item and the root.
// The root's immediate children are at depth 0.
func (it *Item) Depth() int {
	depth := -1
	for node := it; node.parent != nil; node = node.parent {
		depth++
	}
	return depth
}

// RelativePath returns the item's path relative to the tree root,
// reconstructed from the parent chain.
func (it *Item) RelativePath() string {
	if it.parent == nil {
		return "."
	}
	rel, err := filepath.Rel(it.Root().path, it.path)
	if err != nil {
		return it.name
	}
	return rel
}

// Loaded reports whether the item's children are currently cached.
func (it *Item) Loaded() bool { return it.loaded }

// =============================================================================
// Children
// =============================================================================

// expandable reports whether the item's children may be enumerated.
// Symlinked directories are displayed but never descended into, which
// keeps symlink cycles out of the tree without cycle bookkeeping.
func (it *Item) expandable() bool {
	return it.kind == KindDirectory && !it.symlink
}

// Children returns the item's ordered children, scanning the directory on
// first access. Non-directories and symlinked directories have no children.
// A failed scan is absorbed into the item's access-error marker; the caller
// always gets a valid (possibly empty) slice.
func (it *Item) Children() []*Item {
	if !it.expandable() {
		return nil
	}
	if !it.loaded {
		it.load()
	}
	return it.children
}

// LoadedChildren returns the cached children without triggering a scan.
// Used by ancestor walks that must not cause I/O.
func (it *Item) LoadedChildren() []*Item {
	if !it.loaded {
		return nil
	}
	return it.children
}

// Invalidate marks the item's children stale. The next Children call
// rescans and merges, so untouched child items keep their identity.
func (it *Item) Invalidate() {
	it.loaded = false
}

// load scans the directory and merges the result over the previous children.
func (it *Item) load() {
	entries, err := it.lister.List(it.path)
	if err != nil {
		it.children = nil
		it.loaded = true
		it.accessErr = err
		return
	}

	it.children = it.merge(entries)
	it.loaded = true
	it.accessErr = nil
}

// merge builds the new child slice from a fresh listing, reusing existing
// child items whose name and kind survived. Reused items keep their loaded
// subtrees and their object identity, which is what keeps rows for
// unmodified siblings stable across a rescan.
func (it *Item) merge(entries []Entry) []*Item {
	previous := make(map[string]*Item, len(it.children))
	for _, child := range it.children {
		previous[child.name] = child
	}

	next := make([]*Item, 0, len(entries))
	for _, entry := range entries {
		if old, ok := previous[entry.Name]; ok && old.kind == entry.Kind && old.symlink == entry.Symlink {
			next = append(next, old)
			continue
		}
		next = append(next, newChild(it, entry))
	}
	return next
}
