package s3

import (
	"errors"
	"testing"

	"github.com/tagsfs/tagsfs/data"
)

// TestFlatten_JoinsMultiValues verifies the flat representation written
// as object tags.
func TestFlatten_JoinsMultiValues(t *testing.T) {
	merged := data.TagSet{
		"genre":  {"Rock", "Blues"},
		"artist": {"The Vines"},
	}

	flat, writeErr := flatten("a.mp3", merged, data.TagUpdateSet{"genre": {"Rock", "Blues"}})
	if writeErr != nil {
		t.Fatalf("flatten failed: %v", writeErr)
	}
	if flat["genre"] != "Rock+Blues" {
		t.Fatalf("join mismatch: %q", flat["genre"])
	}
	if flat["artist"] != "The Vines" {
		t.Fatalf("single value mismatch: %q", flat["artist"])
	}
}

// TestFlatten_RejectsSeparatorInValue verifies that a value containing
// the join separator is rejected before anything is written, since it
// would read back split into pieces.
func TestFlatten_RejectsSeparatorInValue(t *testing.T) {
	update := data.TagUpdateSet{"title": {"1+1"}}
	merged := data.TagSet{}.Apply(update)

	_, writeErr := flatten("a.mp3", merged, update)
	if writeErr == nil {
		t.Fatal("value containing the separator should be rejected")
	}
	if !errors.Is(writeErr, data.ErrPartialWrite) {
		t.Fatalf("expected ErrPartialWrite, got %v", writeErr)
	}
	if len(writeErr.Rejected) != 1 || writeErr.Rejected[0] != "title" {
		t.Fatalf("rejected tags mismatch: %v", writeErr.Rejected)
	}
}

// TestFlatten_RejectsIllegalText verifies the S3 character set and size
// limits.
func TestFlatten_RejectsIllegalText(t *testing.T) {
	update := data.TagUpdateSet{"title": {"Sinnerman?"}}
	merged := data.TagSet{}.Apply(update)

	if _, writeErr := flatten("a.mp3", merged, update); writeErr == nil {
		t.Fatal("character outside the S3 set should be rejected")
	}

	wide := data.TagUpdateSet{}
	for _, name := range []string{
		"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k",
	} {
		wide[name] = []string{"v"}
	}
	if _, writeErr := flatten("a.mp3", data.TagSet{}.Apply(wide), wide); writeErr == nil {
		t.Fatal("more than ten tags should be rejected")
	}
}
