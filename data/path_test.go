package data

import (
	"errors"
	"testing"
)

// TestSplitPath verifies parsing of absolute virtual paths.
func TestSplitPath(t *testing.T) {
	path, err := SplitPath("/Rock/The Vines/03 - Autumn Shade.mp3")
	if err != nil {
		t.Fatalf("SplitPath failed: %v", err)
	}
	if len(path) != 3 || path[1] != "The Vines" {
		t.Fatalf("segments mismatch: %v", path)
	}
	if path.String() != "/Rock/The Vines/03 - Autumn Shade.mp3" {
		t.Fatalf("String mismatch: %q", path.String())
	}

	root, err := SplitPath("/")
	if err != nil || !root.IsRoot() {
		t.Fatalf("root parse mismatch: %v %v", root, err)
	}

	for _, bad := range []string{"", "relative/path", "/a//b", "/a/"} {
		if _, err := SplitPath(bad); !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("SplitPath(%q) should fail with ErrInvalidPath, got %v", bad, err)
		}
	}
}

// TestVirtualPath_Navigation verifies Parent, Leaf and Child.
func TestVirtualPath_Navigation(t *testing.T) {
	path := VirtualPath{"Rock", "The Vines"}

	if path.Parent().String() != "/Rock" {
		t.Fatalf("Parent mismatch: %q", path.Parent().String())
	}
	if path.Leaf() != "The Vines" {
		t.Fatalf("Leaf mismatch: %q", path.Leaf())
	}

	child := path.Child("Highly Evolved")
	if child.String() != "/Rock/The Vines/Highly Evolved" {
		t.Fatalf("Child mismatch: %q", child.String())
	}
	if len(path) != 2 {
		t.Fatal("Child should not mutate the receiver")
	}
}
