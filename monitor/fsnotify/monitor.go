// Package fsnotify provides a change monitor backed by the operating
// system's file notification facility (inotify, kqueue, ReadDirectoryChangesW).
package fsnotify

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/tagsfs/tagsfs/data"
)

type FsnotifyMonitor struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	events  chan data.ChangeEvent
	done    chan struct{}
	started bool
}

func NewFsnotifyMonitor() (*FsnotifyMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &FsnotifyMonitor{
		watcher: watcher,
		events:  make(chan data.ChangeEvent, 256),
		done:    make(chan struct{}),
	}, nil
}

// Returns the identifier name defined for this monitor
func (*FsnotifyMonitor) Name() string {
	return "fsnotify"
}

func (fm *FsnotifyMonitor) Start(ctx context.Context) (<-chan data.ChangeEvent, error) {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	if fm.started {
		return nil, data.ErrExist
	}
	fm.started = true

	go fm.run(ctx)
	return fm.events, nil
}

func (fm *FsnotifyMonitor) run(ctx context.Context) {
	defer close(fm.events)

	for {
		select {
		case <-ctx.Done():
			return
		case <-fm.done:
			return

		case event, ok := <-fm.watcher.Events:
			if !ok {
				return
			}
			change, relevant := translate(event)
			if !relevant {
				continue
			}
			select {
			case fm.events <- change:
			case <-ctx.Done():
				return
			case <-fm.done:
				return
			}

		case _, ok := <-fm.watcher.Errors:
			// Watcher errors are transient on overflow; the next poll of
			// the affected directory reconciles the namespace.
			if !ok {
				return
			}
		}
	}
}

// translate maps an fsnotify event to a change event. Chmod-only events
// carry no tag-relevant information and are dropped.
func translate(event fsnotify.Event) (data.ChangeEvent, bool) {
	switch {
	case event.Has(fsnotify.Create):
		return data.ChangeEvent{Path: event.Name, Kind: data.ChangeCreated}, true
	case event.Has(fsnotify.Write):
		return data.ChangeEvent{Path: event.Name, Kind: data.ChangeModified}, true
	case event.Has(fsnotify.Remove):
		return data.ChangeEvent{Path: event.Name, Kind: data.ChangeRemoved}, true
	case event.Has(fsnotify.Rename):
		return data.ChangeEvent{Path: event.Name, Kind: data.ChangeRenamed}, true
	default:
		return data.ChangeEvent{}, false
	}
}

func (fm *FsnotifyMonitor) Stop() error {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	select {
	case <-fm.done:
		return data.ErrClosed
	default:
		close(fm.done)
	}

	return fm.watcher.Close()
}

func (fm *FsnotifyMonitor) AddWatch(path string) error {
	return fm.watcher.Add(path)
}

func (fm *FsnotifyMonitor) RemoveWatch(path string) error {
	return fm.watcher.Remove(path)
}
