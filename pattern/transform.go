package pattern

import (
	"strings"
	"unicode"
)

// CaseFold is the case modifier of a placeholder.
type CaseFold int

const (
	CaseNone CaseFold = iota
	CaseLower
	CaseUpper
	CaseTitle
)

// Apply folds the value. Folding loses the original casing, so Parse
// compares against the folded snapshot instead of inverting it.
func (cf CaseFold) Apply(value string) string {
	switch cf {
	case CaseLower:
		return strings.ToLower(value)
	case CaseUpper:
		return strings.ToUpper(value)
	case CaseTitle:
		return titleCase(value)
	default:
		return value
	}
}

func titleCase(value string) string {
	var sb strings.Builder
	sb.Grow(len(value))

	startOfWord := true
	for _, r := range value {
		if unicode.IsSpace(r) {
			startOfWord = true
			sb.WriteRune(r)
			continue
		}
		if startOfWord {
			sb.WriteRune(unicode.ToUpper(r))
			startOfWord = false
			continue
		}
		sb.WriteRune(unicode.ToLower(r))
	}

	return sb.String()
}

// DatePart selects one field of a date-valued tag. Extraction discards
// the rest of the value, so date placeholders are read-only.
type DatePart int

const (
	DateNone DatePart = iota
	DateYear
	DateMonth
	DateDay
)

// Extract pulls the selected field from values shaped like "YYYY",
// "YYYY-MM" or "YYYY-MM-DD". Missing fields come back empty.
func (dp DatePart) Extract(value string) string {
	if dp == DateNone {
		return value
	}

	parts := strings.SplitN(value, "-", 3)
	index := int(dp) - 1
	if index >= len(parts) {
		return ""
	}
	return parts[index]
}

// padValue left-pads a numeric value with zeros to the given width.
// Values already at least width runes long pass through unchanged.
func padValue(value string, width int) string {
	length := len([]rune(value))
	if length >= width {
		return value
	}
	return strings.Repeat("0", width-length) + value
}

// unpadValue strips leading zeros, keeping at least one character so "00"
// round-trips to "0".
func unpadValue(value string) string {
	trimmed := strings.TrimLeft(value, "0")
	if trimmed == "" && value != "" {
		return "0"
	}
	return trimmed
}
