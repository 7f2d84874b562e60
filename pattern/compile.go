package pattern

import (
	"slices"
	"strings"
)

// Compile parses a path template into a Pattern. The template is split on
// slashes into components; within a component %x and %{name} are
// placeholders, %?...%? and %?A%:B%? are conditional sections and %% is a
// literal percent sign. A leading slash is accepted and ignored.
func Compile(template string, opts ...Option) (*Pattern, error) {
	o := newDefaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	c := &compiler{template: template, opts: o}
	if strings.HasPrefix(template, "/") {
		c.pos = 1
	}
	if c.pos >= len(template) {
		return nil, c.errorf(0, KindEmptyComponent, "template is empty")
	}

	var components []*Component
	for {
		component, err := c.component()
		if err != nil {
			return nil, err
		}
		components = append(components, component)

		if c.pos >= len(c.template) {
			break
		}
		c.pos++
		if c.pos >= len(c.template) {
			return nil, c.errorf(c.pos, KindEmptyComponent, "trailing separator")
		}
	}

	pattern := &Pattern{
		Template:   template,
		Components: components,
		opts:       *o,
	}
	if err := c.validate(pattern); err != nil {
		return nil, err
	}

	return pattern, nil
}

type compiler struct {
	template string
	pos      int
	opts     *options
}

func (c *compiler) errorf(offset int, kind SyntaxKind, detail string) error {
	return &SyntaxError{
		Template: c.template,
		Offset:   offset,
		Kind:     kind,
		Detail:   detail,
	}
}

func (c *compiler) component() (*Component, error) {
	start := c.pos

	tokens, err := c.tokens(false)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, c.errorf(start, KindEmptyComponent, "")
	}

	component := &Component{
		Tokens: tokens,
		raw:    c.template[start:c.pos],
	}
	component.expanded = expandSections(tokens)

	return component, nil
}

// tokens scans until the end of the current component. Inside a section it
// stops, without consuming, at the %? and %: markers so the section parser
// can take over.
func (c *compiler) tokens(inSection bool) ([]Token, error) {
	var result []Token
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			result = append(result, Literal{Text: literal.String()})
			literal.Reset()
		}
	}

	for c.pos < len(c.template) {
		ch := c.template[c.pos]

		if ch == '/' {
			if inSection {
				return nil, c.errorf(c.pos, KindUnterminated, "conditional section crosses path separator")
			}
			break
		}
		if ch != '%' {
			literal.WriteByte(ch)
			c.pos++
			continue
		}

		if c.pos+1 >= len(c.template) {
			return nil, c.errorf(c.pos, KindUnterminated, "dangling percent")
		}

		switch c.template[c.pos+1] {
		case '%':
			literal.WriteByte('%')
			c.pos += 2

		case '?':
			if inSection {
				flush()
				return result, nil
			}
			flush()
			section, err := c.section()
			if err != nil {
				return nil, err
			}
			result = append(result, section)

		case ':':
			if !inSection {
				return nil, c.errorf(c.pos, KindStrayMarker, "")
			}
			flush()
			return result, nil

		default:
			flush()
			placeholder, err := c.placeholder()
			if err != nil {
				return nil, err
			}
			result = append(result, placeholder)
		}
	}

	flush()
	return result, nil
}

func (c *compiler) section() (Section, error) {
	start := c.pos
	c.pos += 2

	then, err := c.tokens(true)
	if err != nil {
		return Section{}, err
	}
	section := Section{Then: then}

	atMarker := func(marker byte) bool {
		return c.pos+1 < len(c.template) &&
			c.template[c.pos] == '%' &&
			c.template[c.pos+1] == marker
	}

	if atMarker(':') {
		c.pos += 2
		section.HasElse = true
		section.Else, err = c.tokens(true)
		if err != nil {
			return Section{}, err
		}
	}
	if !atMarker('?') {
		return Section{}, c.errorf(start, KindUnterminated, "conditional section not closed")
	}
	c.pos += 2

	return section, nil
}

func (c *compiler) placeholder() (Placeholder, error) {
	start := c.pos
	c.pos++

	var placeholder Placeholder

	modifiers := true
	for modifiers && c.pos < len(c.template) {
		switch c.template[c.pos] {
		case '_':
			placeholder.Case = CaseLower
			c.pos++
		case '^':
			placeholder.Case = CaseUpper
			c.pos++
		case '!':
			placeholder.Case = CaseTitle
			c.pos++
		case '0':
			c.pos++
			width := 0
			for c.pos < len(c.template) && isDigit(c.template[c.pos]) {
				width = width*10 + int(c.template[c.pos]-'0')
				c.pos++
			}
			if width < 1 {
				return placeholder, c.errorf(start, KindBadPadWidth, "pad modifier needs a width")
			}
			placeholder.Pad = width
		case 'Y':
			placeholder.Date = DateYear
			c.pos++
		case 'M':
			placeholder.Date = DateMonth
			c.pos++
		case 'D':
			placeholder.Date = DateDay
			c.pos++
		default:
			modifiers = false
		}
	}

	if c.pos >= len(c.template) {
		return placeholder, c.errorf(start, KindUnterminated, "placeholder missing tag name")
	}

	switch ch := c.template[c.pos]; {
	case ch == '{':
		c.pos++
		end := strings.IndexByte(c.template[c.pos:], '}')
		if end < 0 {
			return placeholder, c.errorf(start, KindUnterminated, "missing closing brace")
		}
		body := c.template[c.pos : c.pos+end]
		c.pos += end + 1

		name := body
		if i := strings.IndexByte(body, '&'); i >= 0 {
			separator := body[i+1:]
			if len(separator) < 2 || !strings.HasSuffix(separator, "&") {
				return placeholder, c.errorf(start, KindUnknownName, "join separator must be written as &sep&")
			}
			placeholder.Join = separator[:len(separator)-1]
			name = body[:i]
		}
		if !validTagName(name) {
			return placeholder, c.errorf(start, KindUnknownName, name)
		}
		placeholder.Tag = name

	case ch >= 'a' && ch <= 'z':
		name, known := c.opts.aliases[ch]
		if !known {
			return placeholder, c.errorf(c.pos, KindUnknownAlias, string(ch))
		}
		placeholder.Alias = ch
		placeholder.Tag = name
		c.pos++

	default:
		return placeholder, c.errorf(c.pos, KindUnknownModifier, string(ch))
	}

	if _, readonly := c.opts.readOnly[placeholder.Tag]; readonly {
		placeholder.ReadOnly = true
	}
	if placeholder.Date != DateNone {
		// Extracting one date field discards the rest of the value.
		placeholder.ReadOnly = true
	}

	return placeholder, nil
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func validTagName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case ch >= 'a' && ch <= 'z':
		case ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9':
		case ch == '_':
		default:
			return false
		}
	}
	return true
}

// validate enforces the structural rules that keep parsing deterministic:
// no two placeholders may meet without a literal between them in any
// rendering of a component, and no tag may appear twice in one component.
func (c *compiler) validate(p *Pattern) error {
	for _, component := range p.Components {
		for _, flat := range component.expanded {
			previousPlaceholder := false
			for _, token := range flat {
				_, isPlaceholder := token.(Placeholder)
				if isPlaceholder && previousPlaceholder {
					return c.errorf(0, KindAdjacentPlaceholders, component.raw)
				}
				previousPlaceholder = isPlaceholder
			}
		}

		seen := make(map[string]struct{})
		for _, placeholder := range component.placeholders() {
			if _, dup := seen[placeholder.Tag]; dup {
				return c.errorf(0, KindDuplicateTag, placeholder.Tag)
			}
			seen[placeholder.Tag] = struct{}{}
		}
	}
	return nil
}

// expandSections flattens a token sequence into every concrete rendering:
// each section contributes its then branch, its else branch and, when no
// else branch exists, the empty rendering. Parsing tries the expansions in
// this order, so a present section wins over an absent one.
func expandSections(tokens []Token) [][]Token {
	result := [][]Token{{}}

	for _, token := range tokens {
		section, isSection := token.(Section)
		if !isSection {
			for i := range result {
				result[i] = append(result[i], token)
			}
			continue
		}

		branches := expandSections(section.Then)
		if section.HasElse {
			branches = append(branches, expandSections(section.Else)...)
		} else {
			branches = append(branches, []Token{})
		}

		var next [][]Token
		for _, prefix := range result {
			for _, branch := range branches {
				combined := slices.Clone(prefix)
				combined = append(combined, branch...)
				next = append(next, combined)
			}
		}
		result = next
	}

	return result
}
