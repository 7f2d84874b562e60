package tree

import (
	"errors"
	"testing"

	"github.com/tagsfs/tagsfs/data"
)

func path(t *testing.T, raw string) data.VirtualPath {
	t.Helper()
	p, err := data.SplitPath(raw)
	if err != nil {
		t.Fatalf("SplitPath(%q) failed: %v", raw, err)
	}
	return p
}

// TestTree_InsertAndLookup verifies that inserting a file creates its
// intermediate directories.
func TestTree_InsertAndLookup(t *testing.T) {
	tr := New(nil)

	actual, err := tr.InsertFile(path(t, "/Rock/The Vines/song.mp3"), "a/song.mp3")
	if err != nil {
		t.Fatalf("InsertFile failed: %v", err)
	}
	if actual.String() != "/Rock/The Vines/song.mp3" {
		t.Fatalf("actual path mismatch: %q", actual.String())
	}

	entry, err := tr.Lookup(path(t, "/Rock/The Vines"))
	if err != nil {
		t.Fatalf("Lookup of implicit dir failed: %v", err)
	}
	if !entry.IsDir {
		t.Fatal("intermediate entry should be a directory")
	}

	entry, err = tr.Lookup(actual)
	if err != nil {
		t.Fatalf("Lookup of leaf failed: %v", err)
	}
	if entry.IsDir || entry.FileID != "a/song.mp3" {
		t.Fatalf("leaf mismatch: %+v", entry)
	}

	if _, err := tr.Lookup(path(t, "/Jazz")); !errors.Is(err, data.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

// TestTree_List verifies sorted directory listings.
func TestTree_List(t *testing.T) {
	tr := New(nil)
	tr.InsertFile(path(t, "/Rock/b.mp3"), "1")
	tr.InsertFile(path(t, "/Rock/a.mp3"), "2")
	tr.InsertFile(path(t, "/Jazz/c.mp3"), "3")

	entries, err := tr.List(data.VirtualPath{})
	if err != nil {
		t.Fatalf("List root failed: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "Jazz" || entries[1].Name != "Rock" {
		t.Fatalf("root listing mismatch: %v", entries)
	}

	entries, err = tr.List(path(t, "/Rock"))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "a.mp3" || entries[1].Name != "b.mp3" {
		t.Fatalf("listing mismatch: %v", entries)
	}

	if _, err := tr.List(path(t, "/Rock/a.mp3")); !errors.Is(err, data.ErrNotDirectory) {
		t.Fatalf("expected ErrNotDirectory, got %v", err)
	}
}

// TestTree_Collisions verifies suffix assignment, promotion on removal and
// idempotent re-resolution.
func TestTree_Collisions(t *testing.T) {
	tr := New(nil)

	first, _ := tr.InsertFile(path(t, "/Rock/song.mp3"), "a")
	second, _ := tr.InsertFile(path(t, "/Rock/song.mp3"), "b")
	third, _ := tr.InsertFile(path(t, "/Rock/song.mp3"), "c")

	if first.Leaf() != "song.mp3" {
		t.Fatalf("primary should keep the clean name, got %q", first.Leaf())
	}
	if second.Leaf() != "song (2).mp3" || third.Leaf() != "song (3).mp3" {
		t.Fatalf("suffix mismatch: %q, %q", second.Leaf(), third.Leaf())
	}

	// The tie breaker ranks "a" first, so later inserts never displace it.
	got, _ := tr.PathOf("a")
	if got.Leaf() != "song.mp3" {
		t.Fatalf("primary displaced: %q", got.Leaf())
	}

	// Removing the primary promotes the survivors.
	if err := tr.RemoveFile("a"); err != nil {
		t.Fatalf("RemoveFile failed: %v", err)
	}
	got, _ = tr.PathOf("b")
	if got.Leaf() != "song.mp3" {
		t.Fatalf("survivor should take the clean name, got %q", got.Leaf())
	}
	got, _ = tr.PathOf("c")
	if got.Leaf() != "song (2).mp3" {
		t.Fatalf("survivor suffix mismatch: %q", got.Leaf())
	}
}

// TestTree_CollisionWithDirectory verifies that a directory occupying the
// desired name pushes all files to suffixes.
func TestTree_CollisionWithDirectory(t *testing.T) {
	tr := New(nil)
	if err := tr.MkDir(path(t, "/Rock"), nil); err != nil {
		t.Fatalf("MkDir failed: %v", err)
	}
	if err := tr.MkDir(path(t, "/Rock/song.mp3"), nil); err != nil {
		t.Fatalf("MkDir failed: %v", err)
	}

	actual, err := tr.InsertFile(path(t, "/Rock/song.mp3"), "a")
	if err != nil {
		t.Fatalf("InsertFile failed: %v", err)
	}
	if actual.Leaf() != "song (2).mp3" {
		t.Fatalf("file should yield to directory, got %q", actual.Leaf())
	}
}

// TestTree_Pruning verifies that implicit directories vanish with their
// last child while explicit ones persist.
func TestTree_Pruning(t *testing.T) {
	tr := New(nil)

	tr.InsertFile(path(t, "/Rock/The Vines/song.mp3"), "a")
	if err := tr.RemoveFile("a"); err != nil {
		t.Fatalf("RemoveFile failed: %v", err)
	}
	if _, err := tr.Lookup(path(t, "/Rock")); !errors.Is(err, data.ErrNotExist) {
		t.Fatalf("implicit dir should be pruned, got %v", err)
	}

	if err := tr.MkDir(path(t, "/Jazz"), nil); err != nil {
		t.Fatalf("MkDir failed: %v", err)
	}
	tr.InsertFile(path(t, "/Jazz/tune.mp3"), "b")
	tr.RemoveFile("b")
	if _, err := tr.Lookup(path(t, "/Jazz")); err != nil {
		t.Fatalf("explicit dir should survive pruning: %v", err)
	}
}

// TestTree_MoveFile verifies relocation with generation bumps.
func TestTree_MoveFile(t *testing.T) {
	tr := New(nil)
	tr.InsertFile(path(t, "/Rock/song.mp3"), "a")

	before, _ := tr.Generation("a")

	actual, err := tr.MoveFile("a", path(t, "/Jazz/song.mp3"))
	if err != nil {
		t.Fatalf("MoveFile failed: %v", err)
	}
	if actual.String() != "/Jazz/song.mp3" {
		t.Fatalf("move target mismatch: %q", actual.String())
	}

	after, _ := tr.Generation("a")
	if after == before {
		t.Fatal("move should bump the entry generation")
	}

	if _, err := tr.Lookup(path(t, "/Rock")); !errors.Is(err, data.ErrNotExist) {
		t.Fatalf("old dir should be pruned, got %v", err)
	}
}

// TestTree_MkDirRmDir verifies explicit directory lifecycle and the
// pre-seeded values carried for later moves.
func TestTree_MkDirRmDir(t *testing.T) {
	tr := New(nil)

	values := data.TagSet{"genre": {"Jazz"}}
	if err := tr.MkDir(path(t, "/Jazz"), values); err != nil {
		t.Fatalf("MkDir failed: %v", err)
	}
	if err := tr.MkDir(path(t, "/Jazz"), values); !errors.Is(err, data.ErrExist) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
	if err := tr.MkDir(path(t, "/Blues/Delta"), nil); !errors.Is(err, data.ErrNotExist) {
		t.Fatalf("mkdir without parent should fail, got %v", err)
	}

	seeded, err := tr.DirValues(path(t, "/Jazz"))
	if err != nil {
		t.Fatalf("DirValues failed: %v", err)
	}
	if value, _ := seeded.First("genre"); value != "Jazz" {
		t.Fatalf("seeded values mismatch: %v", seeded)
	}

	tr.InsertFile(path(t, "/Jazz/tune.mp3"), "a")
	if err := tr.RmDir(path(t, "/Jazz")); !errors.Is(err, data.ErrDirectoryNotEmpty) {
		t.Fatalf("expected ErrDirectoryNotEmpty, got %v", err)
	}
	tr.RemoveFile("a")
	if err := tr.RmDir(path(t, "/Jazz")); err != nil {
		t.Fatalf("RmDir failed: %v", err)
	}
	if _, err := tr.Lookup(path(t, "/Jazz")); !errors.Is(err, data.ErrNotExist) {
		t.Fatalf("directory should be gone, got %v", err)
	}
}

// TestTree_Pins verifies pin counting.
func TestTree_Pins(t *testing.T) {
	tr := New(nil)
	tr.InsertFile(path(t, "/Rock/song.mp3"), "a")

	if tr.Pinned("a") {
		t.Fatal("fresh entry should not be pinned")
	}
	tr.Pin("a")
	tr.Pin("a")
	tr.Unpin("a")
	if !tr.Pinned("a") {
		t.Fatal("entry should stay pinned until the last unpin")
	}
	tr.Unpin("a")
	if tr.Pinned("a") {
		t.Fatal("entry should be unpinned")
	}
}
