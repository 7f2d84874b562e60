package pattern

import (
	"fmt"
	"strings"

	"github.com/tagsfs/tagsfs/data"
)

// Format renders the tag set into a virtual path. Formatting never fails:
// tags absent from the set render as the fallback token, and a component
// that renders empty either becomes the fallback token or, with
// WithElideEmpty, is dropped from the path.
func (p *Pattern) Format(tags data.TagSet) data.VirtualPath {
	path := make(data.VirtualPath, 0, len(p.Components))

	for _, component := range p.Components {
		segment := p.FormatComponent(component, tags)
		if segment == "" {
			if p.opts.elideEmpty {
				continue
			}
			segment = p.opts.fallback
		}
		path = append(path, segment)
	}

	return path
}

// FormatComponent renders a single component. The result may be empty.
func (p *Pattern) FormatComponent(component *Component, tags data.TagSet) string {
	var sb strings.Builder
	p.formatTokens(&sb, 0, component.Tokens, tags, true)
	return sb.String()
}

// missingTagError aborts the rendering of a conditional section branch.
type missingTagError struct {
	tag string
}

func (e *missingTagError) Error() string {
	return fmt.Sprintf("tag %q is not set", e.tag)
}

// formatTokens renders tokens into sb. base is the number of characters
// already emitted before sb by an enclosing render, used to decide whether
// a value sits at the very start of the segment. At the top level missing
// tags render as the fallback token; inside a section they abort the
// branch instead.
func (p *Pattern) formatTokens(sb *strings.Builder, base int, tokens []Token, tags data.TagSet, topLevel bool) error {
	for _, token := range tokens {
		switch t := token.(type) {
		case Literal:
			sb.WriteString(t.Text)

		case Placeholder:
			values := tags[t.Tag]
			if len(values) == 0 {
				if !topLevel {
					return &missingTagError{tag: t.Tag}
				}
				sb.WriteString(p.opts.fallback)
				continue
			}
			rendered := renderValues(t, values)
			sb.WriteString(escapeValue(rendered, base+sb.Len() == 0))

		case Section:
			var inner strings.Builder
			err := p.formatTokens(&inner, base+sb.Len(), t.Then, tags, false)
			if err != nil && t.HasElse {
				inner.Reset()
				err = p.formatTokens(&inner, base+sb.Len(), t.Else, tags, false)
			}
			if err == nil {
				sb.WriteString(inner.String())
			}
		}
	}

	return nil
}

// renderValues applies the placeholder's transforms. Multi-valued tags are
// joined with the placeholder's separator; without one only the first
// value is rendered.
func renderValues(placeholder Placeholder, values []string) string {
	if placeholder.Join == "" {
		return renderValue(placeholder, values[0])
	}

	rendered := make([]string, len(values))
	for i, value := range values {
		rendered[i] = renderValue(placeholder, value)
	}
	return strings.Join(rendered, placeholder.Join)
}

func renderValue(placeholder Placeholder, value string) string {
	value = placeholder.Date.Extract(value)
	if placeholder.Pad > 0 {
		value = padValue(value, placeholder.Pad)
	}
	return placeholder.Case.Apply(value)
}
