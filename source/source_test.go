package source

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/tagsfs/tagsfs/data"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	absolute := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(absolute), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(absolute, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

// TestTree_Validation verifies root checks.
func TestTree_Validation(t *testing.T) {
	if _, err := NewTree(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, data.ErrNotExist) {
		t.Fatalf("missing root: expected ErrNotExist, got %v", err)
	}

	root := t.TempDir()
	writeFile(t, root, "file.mp3")
	if _, err := NewTree(filepath.Join(root, "file.mp3")); !errors.Is(err, data.ErrNotDirectory) {
		t.Fatalf("file root: expected ErrNotDirectory, got %v", err)
	}
}

// TestTree_Mapping verifies identity round trips and escape rejection.
func TestTree_Mapping(t *testing.T) {
	root := t.TempDir()
	st, err := NewTree(root)
	if err != nil {
		t.Fatalf("NewTree failed: %v", err)
	}

	absolute := st.Absolute("a/b.mp3")
	fileID, err := st.Relative(absolute)
	if err != nil {
		t.Fatalf("Relative failed: %v", err)
	}
	if fileID != "a/b.mp3" {
		t.Fatalf("identity mismatch: %q", fileID)
	}

	if _, err := st.Relative(filepath.Dir(st.Root())); !errors.Is(err, data.ErrInvalidPath) {
		t.Fatalf("escape should be rejected, got %v", err)
	}
}

// TestTree_WalkWithFilters verifies walking and filter composition.
func TestTree_WalkWithFilters(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/song.mp3")
	writeFile(t, root, "a/cover.jpg")
	writeFile(t, root, "b/tune.ogg")

	st, err := NewTree(root, ExtensionFilter("mp3", ".ogg"))
	if err != nil {
		t.Fatalf("NewTree failed: %v", err)
	}

	var seen []string
	err = st.Walk(func(fileID string, info fs.FileInfo) error {
		seen = append(seen, fileID)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("filtered walk mismatch: %v", seen)
	}
	for _, fileID := range seen {
		if fileID == "a/cover.jpg" {
			t.Fatal("jpg should be filtered out")
		}
	}

	if !st.Accepts("x/y.MP3") {
		t.Fatal("extension filter should be case-insensitive")
	}
	if st.Accepts("x/y.flac") {
		t.Fatal("flac should be rejected")
	}

	exclude := ExcludeFilter(GlobFilter("*.jpg"))
	if !exclude("a/song.mp3") || exclude("a/cover.jpg") {
		t.Fatal("ExcludeFilter(GlobFilter) misbehaves")
	}
}

// TestTree_FileOperations verifies Stat, Open and Remove through
// identities.
func TestTree_FileOperations(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/song.mp3")

	st, _ := NewTree(root)

	info, err := st.Stat("a/song.mp3")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 1 {
		t.Fatalf("size mismatch: %d", info.Size())
	}

	file, err := st.Open("a/song.mp3", os.O_RDONLY)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	file.Close()

	if err := st.Remove("a/song.mp3"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := st.Stat("a/song.mp3"); !errors.Is(err, data.ErrNotExist) {
		t.Fatalf("expected ErrNotExist after remove, got %v", err)
	}
}

func TestRegexFilter(t *testing.T) {
	filter, err := RegexFilter(`^albums/.*\.mp3$`)
	if err != nil {
		t.Fatalf("RegexFilter failed: %v", err)
	}

	if !filter("albums/a/song.mp3") {
		t.Fatal("matching identity rejected")
	}
	if filter("singles/song.mp3") {
		t.Fatal("non-matching identity accepted")
	}

	if _, err := RegexFilter(`(`); !errors.Is(err, data.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for bad expression, got %v", err)
	}
}
