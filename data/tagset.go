package data

import (
	"slices"
	"strings"
)

// TagSet maps a canonical tag name to its ordered list of values.
// Multi-valued tags keep their values in file order. An absent key means
// the tag is unset; an empty string value is a set-but-empty tag. The two
// must never be conflated.
type TagSet map[string][]string

// TagUpdateSet is the delta form of a TagSet. A key mapped to a non-empty
// slice replaces the tag's values; a key mapped to nil or an empty slice
// removes the tag.
type TagUpdateSet map[string][]string

// First returns the first value of the tag, or "" and false if unset.
func (ts TagSet) First(name string) (string, bool) {
	values, exists := ts[name]
	if !exists || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Set replaces all values of the tag.
func (ts TagSet) Set(name string, values ...string) {
	ts[name] = slices.Clone(values)
}

// Clone returns a deep copy of the tag set.
func (ts TagSet) Clone() TagSet {
	clone := make(TagSet, len(ts))
	for name, values := range ts {
		clone[name] = slices.Clone(values)
	}
	return clone
}

// Equal reports whether both tag sets hold the same tags with the same
// values in the same order.
func (ts TagSet) Equal(other TagSet) bool {
	if len(ts) != len(other) {
		return false
	}
	for name, values := range ts {
		otherValues, exists := other[name]
		if !exists || !slices.Equal(values, otherValues) {
			return false
		}
	}
	return true
}

// Apply returns a copy of the tag set with the update applied.
// Keys mapped to empty slices are removed.
func (ts TagSet) Apply(update TagUpdateSet) TagSet {
	result := ts.Clone()
	for name, values := range update {
		if len(values) == 0 {
			delete(result, name)
			continue
		}
		result[name] = slices.Clone(values)
	}
	return result
}

// DiffTags computes the update set that transforms old into new: tags whose
// values changed or were added appear with their new values, tags present in
// old but missing from new appear with an empty slice (removal).
func DiffTags(old, new TagSet) TagUpdateSet {
	update := make(TagUpdateSet)
	for name, newValues := range new {
		oldValues, exists := old[name]
		if !exists || !slices.Equal(oldValues, newValues) {
			update[name] = slices.Clone(newValues)
		}
	}
	for name := range old {
		if _, exists := new[name]; !exists {
			update[name] = nil
		}
	}
	return update
}

// IsEmpty reports whether the update carries no changes.
func (tu TagUpdateSet) IsEmpty() bool {
	return len(tu) == 0
}

// Names returns the sorted tag names touched by the update.
func (tu TagUpdateSet) Names() []string {
	names := make([]string, 0, len(tu))
	for name := range tu {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// String renders the update in "name=a,b name2=-" form for logging.
func (tu TagUpdateSet) String() string {
	var sb strings.Builder
	for i, name := range tu.Names() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(name)
		sb.WriteByte('=')
		if len(tu[name]) == 0 {
			sb.WriteByte('-')
		} else {
			sb.WriteString(strings.Join(tu[name], ","))
		}
	}
	return sb.String()
}
