package data

import (
	"fmt"
	"strings"
)

// VirtualPath is an ordered sequence of path segments, one per pattern
// component. The root is the empty sequence.
type VirtualPath []string

// SplitPath parses an absolute slash-separated path into a VirtualPath.
// The path must start with a slash and must not contain empty segments.
func SplitPath(path string) (VirtualPath, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("%w: %q must start with a slash", ErrInvalidPath, path)
	}
	if path == "/" {
		return VirtualPath{}, nil
	}
	if strings.HasSuffix(path, "/") {
		return nil, fmt.Errorf("%w: %q must not end with a slash", ErrInvalidPath, path)
	}

	segments := strings.Split(path[1:], "/")
	for _, segment := range segments {
		if segment == "" {
			return nil, fmt.Errorf("%w: %q contains an empty segment", ErrInvalidPath, path)
		}
	}

	return VirtualPath(segments), nil
}

// String joins the segments back into an absolute path.
func (vp VirtualPath) String() string {
	return "/" + strings.Join(vp, "/")
}

// IsRoot reports whether the path has no segments.
func (vp VirtualPath) IsRoot() bool {
	return len(vp) == 0
}

// Parent returns the path without its final segment.
func (vp VirtualPath) Parent() VirtualPath {
	if len(vp) == 0 {
		return vp
	}
	return vp[:len(vp)-1]
}

// Leaf returns the final segment, or "" for the root.
func (vp VirtualPath) Leaf() string {
	if len(vp) == 0 {
		return ""
	}
	return vp[len(vp)-1]
}

// Child returns the path extended by one segment.
func (vp VirtualPath) Child(segment string) VirtualPath {
	child := make(VirtualPath, len(vp)+1)
	copy(child, vp)
	child[len(vp)] = segment
	return child
}

// Equal reports whether both paths hold the same segments.
func (vp VirtualPath) Equal(other VirtualPath) bool {
	if len(vp) != len(other) {
		return false
	}
	for i := range vp {
		if vp[i] != other[i] {
			return false
		}
	}
	return true
}

// ToRelativePath removes the prefix from path.
// Returns the relative path after the prefix with leading slashes trimmed.
func ToRelativePath(path, prefix string) string {
	if prefix == "" {
		return path
	}

	if path == prefix {
		return ""
	}

	relPath := strings.TrimPrefix(path, prefix)
	return strings.TrimPrefix(relPath, "/")
}
