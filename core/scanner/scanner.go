// Package scanner reads single directory levels and produces the ordered
// entries the tree package builds its items from. Scans are synchronous,
// non-recursive, and deterministic: the same on-disk state always yields
// the same ordered result.
package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/adalundhe/drawer/core/tree"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrInvalidPattern indicates an exclude pattern could not be compiled.
	ErrInvalidPattern = errors.New("invalid exclude pattern")
)

// AccessError reports a directory that could not be read, either because
// of permissions or because it vanished before enumeration.
type AccessError struct {
	// Path is the directory that failed to enumerate.
	Path string

	// Err is the underlying OS error.
	Err error
}

// Error implements the error interface.
func (e *AccessError) Error() string {
	return fmt.Sprintf("directory not accessible: %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying OS error.
func (e *AccessError) Unwrap() error { return e.Err }

// =============================================================================
// Config
// =============================================================================

// Config configures a Scanner.
type Config struct {
	// ShowHidden includes dot-prefixed entries in scan results.
	ShowHidden bool

	// ExcludePatterns are glob patterns for entries to omit, matched
	// against the entry name and the full path.
	ExcludePatterns []string
}

// =============================================================================
// Scanner
// =============================================================================

// Scanner enumerates the immediate children of directories. It implements
// tree.Lister.
type Scanner struct {
	showHidden bool
	excludes   []glob.Glob
}

// New creates a Scanner, compiling the configured exclude patterns.
func New(config Config) (*Scanner, error) {
	excludes, err := compileExcludePatterns(config.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	return &Scanner{
		showHidden: config.ShowHidden,
		excludes:   excludes,
	}, nil
}

// compileExcludePatterns compiles glob patterns for exclusion matching.
func compileExcludePatterns(patterns []string) ([]glob.Glob, error) {
	excludes := make([]glob.Glob, 0, len(patterns))

	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.Join(ErrInvalidPattern, err)
		}
		excludes = append(excludes, g)
	}

	return excludes, nil
}

// =============================================================================
// Listing
// =============================================================================

// List returns the ordered entries of the directory at path. The error is
// always an *AccessError when the directory cannot be read.
func (s *Scanner) List(path string) ([]tree.Entry, error) {
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, &AccessError{Path: path, Err: err}
	}

	entries := make([]tree.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if s.skip(name, filepath.Join(path, name)) {
			continue
		}
		entries = append(entries, classify(path, de))
	}

	sortEntries(entries)
	return entries, nil
}

// skip reports whether an entry is filtered out of the listing.
func (s *Scanner) skip(name, path string) bool {
	if !s.showHidden && strings.HasPrefix(name, ".") {
		return true
	}
	return s.isExcluded(name, path)
}

// isExcluded checks the entry name and full path against the exclude globs.
func (s *Scanner) isExcluded(name, path string) bool {
	for _, pattern := range s.excludes {
		if pattern.Match(name) || pattern.Match(path) {
			return true
		}
	}
	return false
}

// =============================================================================
// Classification
// =============================================================================

// classify builds the tree entry for one directory entry. Symlinks are
// classified by their target's kind via a single stat, never followed
// further; a link with an unresolvable target stays KindSymlink.
func classify(dir string, de os.DirEntry) tree.Entry {
	entry := tree.Entry{
		Name: de.Name(),
		Path: filepath.Join(dir, de.Name()),
	}

	if de.Type()&os.ModeSymlink != 0 {
		entry.Symlink = true
		entry.Kind = resolveSymlinkKind(entry.Path)
		return entry
	}

	if de.IsDir() {
		entry.Kind = tree.KindDirectory
		return entry
	}

	entry.Kind = tree.KindFile
	return entry
}

// resolveSymlinkKind stats the link target once to determine its kind.
func resolveSymlinkKind(path string) tree.Kind {
	info, err := os.Stat(path)
	if err != nil {
		return tree.KindSymlink
	}
	if info.IsDir() {
		return tree.KindDirectory
	}
	return tree.KindFile
}

// =============================================================================
// Ordering
// =============================================================================

// sortEntries applies the drawer's directory-order policy: directories
// before files, then case-insensitive lexicographic, with a case-sensitive
// tiebreak so the order is total and repeatable.
func sortEntries(entries []tree.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entryLess(entries[i], entries[j])
	})
}

// entryLess is the comparison backing sortEntries.
func entryLess(a, b tree.Entry) bool {
	aDir := a.Kind == tree.KindDirectory
	bDir := b.Kind == tree.KindDirectory
	if aDir != bDir {
		return aDir
	}

	aLower := strings.ToLower(a.Name)
	bLower := strings.ToLower(b.Name)
	if aLower != bLower {
		return aLower < bLower
	}
	return a.Name < b.Name
}
