package pattern

import (
	"fmt"

	"github.com/tagsfs/tagsfs/data"
)

// SyntaxKind classifies a template syntax error.
type SyntaxKind int

const (
	KindEmptyComponent SyntaxKind = iota
	KindUnknownAlias
	KindUnknownModifier
	KindUnknownName
	KindUnterminated
	KindAdjacentPlaceholders
	KindDuplicateTag
	KindBadPadWidth
	KindStrayMarker
)

func (sk SyntaxKind) String() string {
	switch sk {
	case KindEmptyComponent:
		return "empty path component"
	case KindUnknownAlias:
		return "unknown short alias"
	case KindUnknownModifier:
		return "unknown modifier"
	case KindUnknownName:
		return "bad tag name"
	case KindUnterminated:
		return "unterminated construct"
	case KindAdjacentPlaceholders:
		return "adjacent placeholders without separating literal"
	case KindDuplicateTag:
		return "tag used twice in one component"
	case KindBadPadWidth:
		return "bad pad width"
	case KindStrayMarker:
		return "marker outside conditional section"
	default:
		return "syntax error"
	}
}

// SyntaxError reports where and why a template failed to compile.
type SyntaxError struct {
	Template string
	Offset   int
	Kind     SyntaxKind
	Detail   string
}

func (e *SyntaxError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("pattern %q: offset %d: %s: %s", e.Template, e.Offset, e.Kind, e.Detail)
	}
	return fmt.Sprintf("pattern %q: offset %d: %s", e.Template, e.Offset, e.Kind)
}

func (e *SyntaxError) Is(target error) bool {
	return target == data.ErrInvalid
}

// NoMatchError reports a path segment that the component cannot produce.
type NoMatchError struct {
	Segment   string
	Component string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("segment %q does not match component %q", e.Segment, e.Component)
}

func (e *NoMatchError) Unwrap() error {
	return data.ErrNoMatch
}

// ReadOnlyFieldError reports an edit that would have to change a
// placeholder that cannot be written back.
type ReadOnlyFieldError struct {
	Tag     string
	Segment string
}

func (e *ReadOnlyFieldError) Error() string {
	return fmt.Sprintf("segment %q edits read-only tag %q", e.Segment, e.Tag)
}

func (e *ReadOnlyFieldError) Unwrap() error {
	return data.ErrReadOnlyField
}
