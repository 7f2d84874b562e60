// Package poll provides a change monitor that periodically rescans the
// source tree, for filesystems where native notification is unavailable
// (network mounts, FUSE sources).
package poll

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/tagsfs/tagsfs/data"
)

type PollMonitor struct {
	mu      sync.Mutex
	root    string
	every   time.Duration
	events  chan data.ChangeEvent
	done    chan struct{}
	started bool

	// known maps each seen file to its last modification time.
	known map[string]time.Time
}

func NewPollMonitor(root string, every time.Duration) *PollMonitor {
	if every <= 0 {
		every = 30 * time.Second
	}

	return &PollMonitor{
		root:   root,
		every:  every,
		events: make(chan data.ChangeEvent, 256),
		done:   make(chan struct{}),
		known:  make(map[string]time.Time),
	}
}

// Returns the identifier name defined for this monitor
func (*PollMonitor) Name() string {
	return "poll"
}

func (pm *PollMonitor) Start(ctx context.Context) (<-chan data.ChangeEvent, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.started {
		return nil, data.ErrExist
	}
	pm.started = true

	// Prime the known set so the first tick only reports real changes.
	pm.scan(nil)

	go pm.run(ctx)
	return pm.events, nil
}

func (pm *PollMonitor) run(ctx context.Context) {
	defer close(pm.events)

	ticker := time.NewTicker(pm.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pm.done:
			return
		case <-ticker.C:
		}

		var changes []data.ChangeEvent
		pm.mu.Lock()
		pm.scan(&changes)
		pm.mu.Unlock()

		for _, change := range changes {
			select {
			case pm.events <- change:
			case <-ctx.Done():
				return
			case <-pm.done:
				return
			}
		}
	}
}

// scan walks the root and diffs against the known set. Caller holds the
// lock; changes is nil on the priming scan.
func (pm *PollMonitor) scan(changes *[]data.ChangeEvent) {
	seen := make(map[string]time.Time, len(pm.known))

	filepath.WalkDir(pm.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		seen[path] = info.ModTime()
		return nil
	})

	if changes != nil {
		for path, modTime := range seen {
			previous, existed := pm.known[path]
			switch {
			case !existed:
				*changes = append(*changes, data.ChangeEvent{Path: path, Kind: data.ChangeCreated})
			case !modTime.Equal(previous):
				*changes = append(*changes, data.ChangeEvent{Path: path, Kind: data.ChangeModified})
			}
		}
		for path := range pm.known {
			if _, still := seen[path]; !still {
				*changes = append(*changes, data.ChangeEvent{Path: path, Kind: data.ChangeRemoved})
			}
		}
	}

	pm.known = seen
}

func (pm *PollMonitor) Stop() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	select {
	case <-pm.done:
		return data.ErrClosed
	default:
		close(pm.done)
	}
	return nil
}

// AddWatch is a no-op: the poll monitor always scans the whole root.
func (pm *PollMonitor) AddWatch(path string) error {
	return nil
}

// RemoveWatch is a no-op.
func (pm *PollMonitor) RemoveWatch(path string) error {
	return nil
}
