package pattern

import "strings"

// Tag values may contain characters that are structural in paths. A slash
// inside a value would split the segment, and a leading dot would hide the
// entry or collide with "." and "..". Both are mapped to visually close
// unicode lookalikes on the way out and restored on the way in.
const (
	escapedSlash = "∕" // DIVISION SLASH
	escapedDot   = "․" // ONE DOT LEADER
)

// escapeValue makes a tag value safe to embed in a path segment.
// atSegmentStart marks values rendered at the very start of a segment,
// where a leading dot would change meaning.
func escapeValue(value string, atSegmentStart bool) string {
	escaped := strings.ReplaceAll(value, "/", escapedSlash)
	if atSegmentStart && strings.HasPrefix(escaped, ".") {
		escaped = escapedDot + escaped[1:]
	}
	return escaped
}

// unescapeValue reverses escapeValue.
func unescapeValue(value string) string {
	unescaped := strings.ReplaceAll(value, escapedSlash, "/")
	if strings.HasPrefix(unescaped, escapedDot) {
		unescaped = "." + unescaped[len(escapedDot):]
	}
	return unescaped
}
