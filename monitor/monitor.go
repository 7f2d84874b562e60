// Package monitor watches the source tree for out-of-band changes to
// backing files so the virtual namespace can follow edits made behind the
// mount's back.
package monitor

import (
	"context"

	"github.com/tagsfs/tagsfs/data"
)

// Monitor emits change events for backing files. Paths in events are
// absolute source paths; the dispatcher maps them back to file
// identities. Duplicate and spurious events are acceptable because
// namespace rebuilds are idempotent.
type Monitor interface {
	// Name returns the identifier name defined for this monitor.
	Name() string

	// Start begins watching and returns the event stream. The stream
	// closes when the monitor stops or the context is cancelled.
	Start(ctx context.Context) (<-chan data.ChangeEvent, error)

	// Stop ends watching and closes the event stream.
	Stop() error

	// AddWatch starts watching a directory. Monitors that always scan
	// the whole source tree may ignore it.
	AddWatch(path string) error

	// RemoveWatch stops watching a directory.
	RemoveWatch(path string) error
}
