// Package source wraps the real directory holding the backing files. All
// access to backing files goes through it: it owns the mapping between
// file identities (paths relative to the source root) and absolute paths,
// and enforces that nothing escapes the root.
package source

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tagsfs/tagsfs/data"
)

// Filter decides whether a backing file takes part in the namespace. The
// argument is the file's identity, its slash-separated path relative to
// the source root.
type Filter func(fileID string) bool

// Tree is the source directory. Safe for concurrent use; it carries no
// mutable state.
type Tree struct {
	root    string
	filters []Filter
}

// NewTree validates and wraps a source root. The root must exist and be a
// directory; a relative root is resolved against the working directory.
func NewTree(root string, filters ...Filter) (*Tree, error) {
	absolute, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absolute)
	if err != nil {
		return nil, fmt.Errorf("%w: source root %q", data.ErrNotExist, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: source root %q", data.ErrNotDirectory, root)
	}

	return &Tree{
		root:    absolute,
		filters: filters,
	}, nil
}

// Root returns the absolute source root.
func (st *Tree) Root() string {
	return st.root
}

// Absolute maps a file identity to its absolute path.
func (st *Tree) Absolute(fileID string) string {
	return filepath.Join(st.root, filepath.FromSlash(fileID))
}

// Relative maps an absolute path back to a file identity. Paths outside
// the root are rejected.
func (st *Tree) Relative(absolute string) (string, error) {
	rel, err := filepath.Rel(st.root, absolute)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q is outside the source root", data.ErrInvalidPath, absolute)
	}
	return filepath.ToSlash(rel), nil
}

// Accepts reports whether a file identity passes all filters.
func (st *Tree) Accepts(fileID string) bool {
	for _, filter := range st.filters {
		if !filter(fileID) {
			return false
		}
	}
	return true
}

// Walk visits every regular file under the root that passes the filters.
// Unreadable directories are skipped, not fatal; symlinks are not
// followed.
func (st *Tree) Walk(visit func(fileID string, info fs.FileInfo) error) error {
	return filepath.WalkDir(st.root, func(absolute string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		fileID, err := st.Relative(absolute)
		if err != nil {
			return nil
		}
		if !st.Accepts(fileID) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		return visit(fileID, info)
	})
}

// Stat returns file info for a backing file.
func (st *Tree) Stat(fileID string) (fs.FileInfo, error) {
	info, err := os.Stat(st.Absolute(fileID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", data.ErrNotExist, fileID)
		}
		return nil, err
	}
	return info, nil
}

// Open opens a backing file with the given flag (os.O_RDONLY etc).
func (st *Tree) Open(fileID string, flag int) (*os.File, error) {
	file, err := os.OpenFile(st.Absolute(fileID), flag, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", data.ErrNotExist, fileID)
		}
		return nil, err
	}
	return file, nil
}

// Remove deletes a backing file.
func (st *Tree) Remove(fileID string) error {
	if err := os.Remove(st.Absolute(fileID)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", data.ErrNotExist, fileID)
		}
		return err
	}
	return nil
}

// ExtensionFilter accepts files whose extension (without the dot,
// case-insensitive) is in the allow list.
func ExtensionFilter(extensions ...string) Filter {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}

	return func(fileID string) bool {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileID), "."))
		_, ok := allowed[ext]
		return ok
	}
}

// GlobFilter accepts files whose base name matches any of the patterns.
func GlobFilter(patterns ...string) Filter {
	return func(fileID string) bool {
		base := path.Base(fileID)
		for _, pattern := range patterns {
			if matched, err := path.Match(pattern, base); err == nil && matched {
				return true
			}
		}
		return false
	}
}

// RegexFilter accepts files whose identity matches the expression.
func RegexFilter(expr string) (Filter, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: filter %q: %v", data.ErrInvalid, expr, err)
	}

	return func(fileID string) bool {
		return re.MatchString(fileID)
	}, nil
}

// ExcludeFilter inverts another filter.
func ExcludeFilter(filter Filter) Filter {
	return func(fileID string) bool {
		return !filter(fileID)
	}
}
