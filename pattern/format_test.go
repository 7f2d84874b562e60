package pattern

import (
	"testing"

	"github.com/tagsfs/tagsfs/data"
)

func mustCompile(t *testing.T, template string, opts ...Option) *Pattern {
	t.Helper()
	p, err := Compile(template, opts...)
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v", template, err)
	}
	return p
}

// TestFormat_Basic verifies the forward direction on a fully tagged file.
func TestFormat_Basic(t *testing.T) {
	p := mustCompile(t, "%g/%a/%l/%02n - %t.%e")

	tags := data.TagSet{
		"genre":       {"Rock"},
		"artist":      {"The Vines"},
		"album":       {"Highly Evolved"},
		"tracknumber": {"3"},
		"title":       {"Autumn Shade"},
		"extension":   {"mp3"},
	}

	path := p.Format(tags)
	expected := "/Rock/The Vines/Highly Evolved/03 - Autumn Shade.mp3"
	if path.String() != expected {
		t.Fatalf("Format mismatch: expected %q, got %q", expected, path.String())
	}
}

// TestFormat_MissingTags verifies fallback substitution and empty-component
// elision.
func TestFormat_MissingTags(t *testing.T) {
	tags := data.TagSet{
		"artist": {"Nina Simone"},
		"title":  {"Sinnerman"},
	}

	p := mustCompile(t, "%g/%a - %t")
	path := p.Format(tags)
	if path.String() != "/?/Nina Simone - Sinnerman" {
		t.Fatalf("fallback mismatch: got %q", path.String())
	}

	p = mustCompile(t, "%g/%a - %t", WithFallback("Unknown"))
	path = p.Format(tags)
	if path[0] != "Unknown" {
		t.Fatalf("custom fallback mismatch: got %q", path[0])
	}

	p = mustCompile(t, "%?%g%?/%a - %t", WithElideEmpty())
	path = p.Format(tags)
	if len(path) != 1 || path[0] != "Nina Simone - Sinnerman" {
		t.Fatalf("elision mismatch: got %q", path.String())
	}
}

// TestFormat_Sections verifies conditional rendering with and without an
// else branch.
func TestFormat_Sections(t *testing.T) {
	p := mustCompile(t, "%a/%?%02n - %?%t")

	withTrack := data.TagSet{
		"artist":      {"Can"},
		"tracknumber": {"1"},
		"title":       {"Halleluhwah"},
	}
	path := p.Format(withTrack)
	if path[1] != "01 - Halleluhwah" {
		t.Fatalf("section render mismatch: got %q", path[1])
	}

	withoutTrack := data.TagSet{
		"artist": {"Can"},
		"title":  {"Halleluhwah"},
	}
	path = p.Format(withoutTrack)
	if path[1] != "Halleluhwah" {
		t.Fatalf("absent section mismatch: got %q", path[1])
	}

	p = mustCompile(t, "%?%y%:unknown year%?/%t")
	path = p.Format(data.TagSet{"title": {"x"}})
	if path[0] != "unknown year" {
		t.Fatalf("else branch mismatch: got %q", path[0])
	}
}

// TestFormat_Transforms verifies case folds, padding, date extraction and
// multi-value joins.
func TestFormat_Transforms(t *testing.T) {
	tags := data.TagSet{
		"artist": {"the white stripes"},
		"genre":  {"Rock", "Blues"},
		"date":   {"2003-04-01"},
		"title":  {"SEVEN NATION ARMY"},
	}

	p := mustCompile(t, "%^a/%!{title}/%Yd/%{genre&, &}")
	path := p.Format(tags)

	if path[0] != "THE WHITE STRIPES" {
		t.Fatalf("upper fold mismatch: got %q", path[0])
	}
	if path[1] != "Seven Nation Army" {
		t.Fatalf("title fold mismatch: got %q", path[1])
	}
	if path[2] != "2003" {
		t.Fatalf("year extraction mismatch: got %q", path[2])
	}
	if path[3] != "Rock, Blues" {
		t.Fatalf("join mismatch: got %q", path[3])
	}
}

// TestFormat_Escaping verifies that structural path characters inside tag
// values are replaced with safe lookalikes.
func TestFormat_Escaping(t *testing.T) {
	p := mustCompile(t, "%a/%t")

	tags := data.TagSet{
		"artist": {"AC/DC"},
		"title":  {".hidden"},
	}
	path := p.Format(tags)

	if path[0] != "AC∕DC" {
		t.Fatalf("slash escape mismatch: got %q", path[0])
	}
	if path[1] != "․hidden" {
		t.Fatalf("dot escape mismatch: got %q", path[1])
	}

	// A dot after a literal prefix is not segment-leading and stays.
	p = mustCompile(t, "x-%t")
	path = p.Format(data.TagSet{"title": {".hidden"}})
	if path[0] != "x-.hidden" {
		t.Fatalf("mid-segment dot mismatch: got %q", path[0])
	}
}
