package pattern

import (
	"errors"
	"testing"
)

// TestCompile_Shape verifies that templates split into the expected
// components and placeholder bindings.
func TestCompile_Shape(t *testing.T) {
	p, err := Compile("/%g/%a/%l/%02n - %t.%e")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if p.Depth() != 4 {
		t.Fatalf("Depth mismatch: expected 4, got %d", p.Depth())
	}

	leaf := p.Components[3]
	tags := leaf.Tags()
	expected := []string{"tracknumber", "title", "extension"}
	if len(tags) != len(expected) {
		t.Fatalf("Tags mismatch: expected %v, got %v", expected, tags)
	}
	for i := range expected {
		if tags[i] != expected[i] {
			t.Fatalf("Tags mismatch: expected %v, got %v", expected, tags)
		}
	}

	if leaf.Writable() {
		t.Fatal("leaf containing the extension alias should not be fully writable")
	}
	if !p.Components[0].Writable() {
		t.Fatal("genre component should be writable")
	}

	placeholders := leaf.placeholders()
	if placeholders[0].Pad != 2 {
		t.Fatalf("Pad mismatch: expected 2, got %d", placeholders[0].Pad)
	}
	if !placeholders[2].ReadOnly {
		t.Fatal("extension placeholder should be read-only")
	}
}

// TestCompile_LongForm verifies the brace syntax with modifiers and join
// separators.
func TestCompile_LongForm(t *testing.T) {
	p, err := Compile("%_{artist}/%{genre&, &} - %{title}")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	artist := p.Components[0].placeholders()[0]
	if artist.Tag != "artist" || artist.Case != CaseLower {
		t.Fatalf("unexpected artist placeholder: %+v", artist)
	}

	genre := p.Components[1].placeholders()[0]
	if genre.Join != ", " {
		t.Fatalf("Join mismatch: expected %q, got %q", ", ", genre.Join)
	}
}

// TestCompile_DateModifier verifies that date extraction makes a
// placeholder read-only.
func TestCompile_DateModifier(t *testing.T) {
	p, err := Compile("%Yd/%t")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	year := p.Components[0].placeholders()[0]
	if year.Tag != "date" || year.Date != DateYear {
		t.Fatalf("unexpected year placeholder: %+v", year)
	}
	if !year.ReadOnly {
		t.Fatal("date-extracting placeholder should be read-only")
	}
}

// TestCompile_Sections verifies conditional section parsing.
func TestCompile_Sections(t *testing.T) {
	p, err := Compile("%a/%?%02n - %?%t")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	leaf := p.Components[1]
	section, ok := leaf.Tokens[0].(Section)
	if !ok {
		t.Fatalf("expected leading section, got %T", leaf.Tokens[0])
	}
	if section.HasElse {
		t.Fatal("section should not carry an else branch")
	}
	if len(leaf.expanded) != 2 {
		t.Fatalf("expansion count mismatch: expected 2, got %d", len(leaf.expanded))
	}

	p, err = Compile("%?%y%:unknown%?/%t")
	if err != nil {
		t.Fatalf("Compile with else failed: %v", err)
	}
	section = p.Components[0].Tokens[0].(Section)
	if !section.HasElse {
		t.Fatal("section should carry an else branch")
	}
}

// TestCompile_Errors verifies that malformed templates are rejected with
// the right syntax kind.
func TestCompile_Errors(t *testing.T) {
	cases := map[string]struct {
		template string
		kind     SyntaxKind
	}{
		"empty":                  {"", KindEmptyComponent},
		"empty component":        {"%a//%t", KindEmptyComponent},
		"trailing separator":     {"%a/%t/", KindEmptyComponent},
		"adjacent placeholders":  {"%a%t", KindAdjacentPlaceholders},
		"adjacent via section":   {"%a%?%t x%?y", KindAdjacentPlaceholders},
		"adjacent when absent":   {"%a%?-%?%t", KindAdjacentPlaceholders},
		"duplicate tag":          {"%t - %t", KindDuplicateTag},
		"unknown alias":          {"%q", KindUnknownAlias},
		"unknown modifier":       {"%*{title}", KindUnknownModifier},
		"bad tag name":           {"%{ti tle}", KindUnknownName},
		"unterminated brace":     {"%{title", KindUnterminated},
		"unterminated section":   {"%?%t", KindUnterminated},
		"section crossing slash": {"%?%a/%t%?", KindUnterminated},
		"dangling percent":       {"abc%", KindUnterminated},
		"stray else marker":      {"ab%:cd", KindStrayMarker},
		"pad without width":      {"%0{title}", KindBadPadWidth},
	}

	for name, tc := range cases {
		t.Run(name, func(tst *testing.T) {
			_, err := Compile(tc.template)
			if err == nil {
				tst.Fatalf("Compile(%q) should have failed", tc.template)
			}

			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				tst.Fatalf("expected SyntaxError, got %T: %v", err, err)
			}
			if syntaxErr.Kind != tc.kind {
				tst.Fatalf("kind mismatch: expected %v, got %v", tc.kind, syntaxErr.Kind)
			}
		})
	}
}

// TestCompile_EscapedPercent verifies that %% renders as a literal.
func TestCompile_EscapedPercent(t *testing.T) {
	p, err := Compile("100%% %t")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	literal, ok := p.Components[0].Tokens[0].(Literal)
	if !ok || literal.Text != "100% " {
		t.Fatalf("unexpected literal: %+v", p.Components[0].Tokens[0])
	}
}
