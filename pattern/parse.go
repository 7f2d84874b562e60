package pattern

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/tagsfs/tagsfs/data"
)

// Parse inverts Format: given an edited virtual path and the file's
// current tag snapshot it recovers the tag update that makes Format
// produce the edited path. Segments that the pattern cannot produce yield
// a NoMatchError; edits that would change a read-only placeholder yield a
// ReadOnlyFieldError. Unedited placeholders never appear in the update.
//
// With WithElideEmpty the path may be shorter than the component count:
// missing segments are aligned against components whose rendering can be
// empty, the same components Format drops.
func (p *Pattern) Parse(path data.VirtualPath, snapshot data.TagSet) (data.TagUpdateSet, error) {
	if len(path) > len(p.Components) ||
		(len(path) < len(p.Components) && !p.opts.elideEmpty) {
		return nil, &NoMatchError{Segment: path.String(), Component: p.Template}
	}

	return p.parseFrom(0, 0, path, snapshot.Clone())
}

// parseFrom aligns path[pi:] against Components[ci:]. A component is
// skipped only when it is elidable and the remaining path is shorter than
// the remaining components, so full-length paths parse positionally.
func (p *Pattern) parseFrom(ci, pi int, path data.VirtualPath, working data.TagSet) (data.TagUpdateSet, error) {
	if ci == len(p.Components) {
		if pi == len(path) {
			return make(data.TagUpdateSet), nil
		}
		return nil, &NoMatchError{Segment: path[pi], Component: p.Template}
	}

	var firstErr error

	if pi < len(path) {
		partial, err := p.ParseComponent(ci, path[pi], working)
		if err == nil {
			rest, restErr := p.parseFrom(ci+1, pi+1, path, working.Apply(partial))
			if restErr == nil {
				for tag, values := range rest {
					partial[tag] = values
				}
				return partial, nil
			}
			firstErr = restErr
		} else {
			firstErr = err
		}
	}

	if p.opts.elideEmpty && p.Components[ci].elidable() &&
		len(path)-pi < len(p.Components)-ci {
		update, err := p.parseFrom(ci+1, pi, path, working)
		if err == nil {
			return update, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr == nil {
		firstErr = &NoMatchError{Segment: path.String(), Component: p.Template}
	}
	return nil, firstErr
}

// ParseComponent inverts a single component against one path segment.
// Renames only re-parse the segments that actually changed, so this is the
// primitive the dispatcher builds on.
func (p *Pattern) ParseComponent(index int, segment string, snapshot data.TagSet) (data.TagUpdateSet, error) {
	if index < 0 || index >= len(p.Components) {
		return nil, &NoMatchError{Segment: segment, Component: p.Template}
	}
	component := p.Components[index]

	// A later expansion may still match cleanly after an earlier one hits
	// a read-only edit, so remember the violation and keep trying.
	var readOnlyErr error

	for _, flat := range component.expanded {
		captured := make(map[string]string)
		if !matchFlat(flat, segment, captured) {
			continue
		}

		update, err := p.recoverUpdate(flat, captured, segment, snapshot)
		if err != nil {
			if readOnlyErr == nil {
				readOnlyErr = err
			}
			continue
		}
		return update, nil
	}

	if readOnlyErr != nil {
		return nil, readOnlyErr
	}
	return nil, &NoMatchError{Segment: segment, Component: component.raw}
}

// matchFlat matches a flattened token sequence against a segment with
// lazy placeholder captures: each placeholder takes the shortest run of
// runes that lets the remaining tokens match.
func matchFlat(tokens []Token, segment string, captured map[string]string) bool {
	if len(tokens) == 0 {
		return segment == ""
	}

	switch t := tokens[0].(type) {
	case Literal:
		if !strings.HasPrefix(segment, t.Text) {
			return false
		}
		return matchFlat(tokens[1:], segment[len(t.Text):], captured)

	case Placeholder:
		cut := 0
		for {
			if matchFlat(tokens[1:], segment[cut:], captured) {
				captured[t.Tag] = segment[:cut]
				return true
			}
			if cut >= len(segment) {
				return false
			}
			_, size := utf8.DecodeRuneInString(segment[cut:])
			cut += size
		}
	}

	return false
}

// recoverUpdate turns raw captures into a tag update, inverting the
// placeholder transforms and dropping captures that reproduce the
// snapshot unchanged.
func (p *Pattern) recoverUpdate(flat []Token, captured map[string]string, segment string, snapshot data.TagSet) (data.TagUpdateSet, error) {
	update := make(data.TagUpdateSet)

	for _, token := range flat {
		placeholder, isPlaceholder := token.(Placeholder)
		if !isPlaceholder {
			continue
		}

		value := unescapeValue(captured[placeholder.Tag])
		old := snapshot[placeholder.Tag]

		if placeholder.ReadOnly {
			expected := p.opts.fallback
			if len(old) > 0 {
				expected = renderValues(placeholder, old)
			}
			if value != expected {
				return nil, &ReadOnlyFieldError{Tag: placeholder.Tag, Segment: segment}
			}
			continue
		}

		// An untouched fallback token is not an edit.
		if value == p.opts.fallback && len(old) == 0 {
			continue
		}

		recovered := recoverValues(placeholder, value, old)
		if !slices.Equal(recovered, old) {
			update[placeholder.Tag] = recovered
		}
	}

	return update, nil
}

// recoverValues inverts a placeholder's transforms for one captured value.
// Parts that render identically to the snapshot keep their snapshot
// spelling, which makes lossy case folds round-trip. A placeholder without
// a join separator only ever rendered the first value, so the remaining
// snapshot values are preserved.
func recoverValues(placeholder Placeholder, value string, old []string) []string {
	parts := []string{value}
	if placeholder.Join != "" {
		parts = strings.Split(value, placeholder.Join)
	}

	values := make([]string, len(parts))
	for i, part := range parts {
		if i < len(old) && renderValue(placeholder, old[i]) == part {
			values[i] = old[i]
			continue
		}
		recovered := part
		if placeholder.Pad > 0 {
			recovered = unpadValue(recovered)
		}
		values[i] = recovered
	}

	if placeholder.Join == "" && len(old) > 1 {
		values = append(values, old[1:]...)
	}

	return values
}
