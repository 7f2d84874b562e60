package data

import "testing"

// TestTagSet_ApplyAndDiff verifies that Apply and DiffTags are inverses:
// applying the diff of two sets transforms one into the other.
func TestTagSet_ApplyAndDiff(t *testing.T) {
	old := TagSet{
		"artist": {"Low"},
		"genre":  {"Slowcore", "Indie"},
		"title":  {"Words"},
	}
	new := TagSet{
		"artist": {"Low"},
		"genre":  {"Slowcore"},
		"album":  {"I Could Live in Hope"},
	}

	update := DiffTags(old, new)

	if _, touched := update["artist"]; touched {
		t.Fatalf("unchanged tag should not appear in diff: %v", update)
	}
	if values := update["genre"]; len(values) != 1 || values[0] != "Slowcore" {
		t.Fatalf("genre diff mismatch: %v", update)
	}
	if values, touched := update["title"]; !touched || len(values) != 0 {
		t.Fatalf("removed tag should map to empty: %v", update)
	}

	if !old.Apply(update).Equal(new) {
		t.Fatalf("Apply(Diff) mismatch: got %v", old.Apply(update))
	}
}

// TestTagSet_CloneIsolation verifies that clones do not share value slices.
func TestTagSet_CloneIsolation(t *testing.T) {
	original := TagSet{"genre": {"Rock"}}
	clone := original.Clone()
	clone["genre"][0] = "Jazz"

	if original["genre"][0] != "Rock" {
		t.Fatal("Clone should not share backing arrays")
	}
}

// TestTagUpdateSet_String verifies the logging form.
func TestTagUpdateSet_String(t *testing.T) {
	update := TagUpdateSet{
		"genre": {"Rock", "Blues"},
		"album": nil,
	}

	if s := update.String(); s != "album=- genre=Rock,Blues" {
		t.Fatalf("String mismatch: got %q", s)
	}
}
