// Package gateway defines the metadata gateway: the boundary through
// which tag sets are read from and written to their backing store.
// Implementations cover in-memory state, embedded SQLite, PostgreSQL,
// Consul KV and S3 object tagging.
package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/tagsfs/tagsfs/data"
)

// Gateway reads and writes the tag sets of backing files. Files are
// identified by their path relative to the source root, which stays
// stable across remounts.
type Gateway interface {
	// Name returns the identifier name defined for this gateway.
	Name() string
	// Open is part of the lifecycle behaviour and gets called when
	// opening this gateway.
	Open(ctx context.Context) error
	// Close is part of the lifecycle behaviour and gets called when
	// closing this gateway.
	Close(ctx context.Context) error

	// ReadTags returns the full tag set of a file. Unknown files yield
	// an empty set, not an error: a file without stored tags is simply
	// untagged.
	ReadTags(ctx context.Context, fileID string) (data.TagSet, error)

	// WriteTags applies a tag update atomically: either every change in
	// the update lands or none do. Rejections are reported as a
	// WriteError.
	WriteTags(ctx context.Context, fileID string, update data.TagUpdateSet) error

	// DeleteTags removes all stored tags of a file.
	DeleteTags(ctx context.Context, fileID string) error

	// ListIDs returns the identities of all files with stored tags.
	ListIDs(ctx context.Context) ([]string, error)
}

// WriteError reports a tag write that could not be applied as requested.
// Applied lists tag names that landed before the failure (empty for
// gateways that validate up front), Rejected the names that were refused.
type WriteError struct {
	FileID   string
	Applied  []string
	Rejected []string
	Reason   error
}

func (e *WriteError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "write to %q failed", e.FileID)
	if len(e.Rejected) > 0 {
		fmt.Fprintf(&sb, ": rejected %s", strings.Join(e.Rejected, ", "))
	}
	if len(e.Applied) > 0 {
		fmt.Fprintf(&sb, " (already applied: %s)", strings.Join(e.Applied, ", "))
	}
	if e.Reason != nil {
		fmt.Fprintf(&sb, ": %v", e.Reason)
	}
	return sb.String()
}

func (e *WriteError) Unwrap() error {
	return data.ErrPartialWrite
}
