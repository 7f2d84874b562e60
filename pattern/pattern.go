// Package pattern implements the bidirectional path template engine.
//
// A template string such as
//
//	%g/%a/%l/%02n - %t.%e
//
// compiles into an immutable Pattern of slash-separated components. The
// forward direction (Format) renders a tag set into a virtual path; the
// inverse direction (Parse) recovers a tag update set from an edited
// virtual path. Invertibility is decided structurally at compile time:
// ambiguous constructs (two placeholders with no literal between them) are
// rejected instead of resolved by runtime backtracking, and lossy
// transforms mark their placeholder read-only.
package pattern

// Pattern is a compiled path template. It is immutable after Compile and
// safe to share across goroutines without locking.
type Pattern struct {
	Template   string
	Components []*Component

	opts options
}

// Component is one path level of the template: an ordered token sequence
// of literals, placeholders and optional sections.
type Component struct {
	Tokens []Token

	raw string

	// expanded holds every concrete rendering of the component with
	// conditional sections resolved, precomputed for parsing.
	expanded [][]Token
}

// Token is one element of a component. Implementations are Literal,
// Placeholder and Section.
type Token interface {
	isToken()
}

// Literal is verbatim template text.
type Literal struct {
	Text string
}

// Placeholder binds a position in the path to one tag.
type Placeholder struct {
	// Tag is the canonical tag name the placeholder reads and writes.
	Tag string

	// Alias is the single-letter short form used in the template,
	// 0 if the long form %{name} was written.
	Alias byte

	Case CaseFold
	Pad  int
	Date DatePart

	// Join is the separator used to join and split multi-valued tags.
	// Empty means only the first value is used.
	Join string

	// ReadOnly marks placeholders whose transform is not invertible or
	// whose tag is derived from the backing path. Edits to read-only
	// placeholders are rejected during Parse.
	ReadOnly bool
}

// Section is a conditional part of a component: %?...%? renders its
// content only when every enclosed tag is set, %?A%:B%? falls back to the
// alternative branch.
type Section struct {
	Then []Token
	Else []Token

	HasElse bool
}

func (Literal) isToken()     {}
func (Placeholder) isToken() {}
func (Section) isToken()     {}

// Depth returns the number of path components.
func (p *Pattern) Depth() int {
	return len(p.Components)
}

// Fallback returns the token substituted for absent tags.
func (p *Pattern) Fallback() string {
	return p.opts.fallback
}

// ElidesEmpty reports whether empty components are dropped from
// generated paths.
func (p *Pattern) ElidesEmpty() bool {
	return p.opts.elideEmpty
}

// Tags returns the canonical names of all tags the component reads,
// in template order, without duplicates.
func (c *Component) Tags() []string {
	var names []string
	seen := make(map[string]struct{})

	var walk func(tokens []Token)
	walk = func(tokens []Token) {
		for _, token := range tokens {
			switch t := token.(type) {
			case Placeholder:
				if _, dup := seen[t.Tag]; !dup {
					seen[t.Tag] = struct{}{}
					names = append(names, t.Tag)
				}
			case Section:
				walk(t.Then)
				walk(t.Else)
			}
		}
	}
	walk(c.Tokens)

	return names
}

// Writable reports whether every placeholder in the component accepts
// edits. Components with no placeholders are writable (and renaming them
// is a pure literal match).
func (c *Component) Writable() bool {
	writable := true

	var walk func(tokens []Token)
	walk = func(tokens []Token) {
		for _, token := range tokens {
			switch t := token.(type) {
			case Placeholder:
				if t.ReadOnly {
					writable = false
				}
			case Section:
				walk(t.Then)
				walk(t.Else)
			}
		}
	}
	walk(c.Tokens)

	return writable
}

// elidable reports whether some rendering of the component is empty.
// With WithElideEmpty such components may be absent from generated
// paths entirely.
func (c *Component) elidable() bool {
	for _, flat := range c.expanded {
		if len(flat) == 0 {
			return true
		}
	}
	return false
}

// placeholders returns all placeholders in token order, descending into
// sections.
func (c *Component) placeholders() []Placeholder {
	var result []Placeholder

	var walk func(tokens []Token)
	walk = func(tokens []Token) {
		for _, token := range tokens {
			switch t := token.(type) {
			case Placeholder:
				result = append(result, t)
			case Section:
				walk(t.Then)
				walk(t.Else)
			}
		}
	}
	walk(c.Tokens)

	return result
}

// DefaultAliases is the built-in short-alias table. The filename,
// extension and parent aliases resolve to path-derived tags that can be
// formatted but never written.
var DefaultAliases = map[byte]string{
	'a': "artist",
	'l': "album",
	't': "title",
	'n': "tracknumber",
	'g': "genre",
	'y': "year",
	'd': "date",
	'c': "composer",
	'f': "filename",
	'e': "extension",
	'p': "parent",
}

// PathTags are tag names derived from the backing file's real path rather
// than stored metadata. They are always read-only.
var PathTags = map[string]struct{}{
	"filename":  {},
	"extension": {},
	"parent":    {},
}

type options struct {
	aliases    map[byte]string
	readOnly   map[string]struct{}
	fallback   string
	elideEmpty bool
}

// Option configures compilation.
type Option func(*options)

func newDefaultOptions() *options {
	readOnly := make(map[string]struct{}, len(PathTags))
	for name := range PathTags {
		readOnly[name] = struct{}{}
	}

	return &options{
		aliases:  DefaultAliases,
		readOnly: readOnly,
		fallback: "?",
	}
}

// WithAliases replaces the short-alias table.
func WithAliases(aliases map[byte]string) Option {
	return func(o *options) {
		o.aliases = aliases
	}
}

// WithFallback sets the token substituted for absent tags.
func WithFallback(token string) Option {
	return func(o *options) {
		o.fallback = token
	}
}

// WithElideEmpty drops components that render empty instead of
// substituting the fallback token.
func WithElideEmpty() Option {
	return func(o *options) {
		o.elideEmpty = true
	}
}

// WithReadOnlyTags marks additional tag names as read-only.
func WithReadOnlyTags(names ...string) Option {
	return func(o *options) {
		for _, name := range names {
			o.readOnly[name] = struct{}{}
		}
	}
}
