package tagsfs

import (
	"context"
	"errors"

	"github.com/tagsfs/tagsfs/data"
)

// startMonitor registers watches, starts the monitor and runs the event
// pump until shutdown.
func (fs *TagFileSystem) startMonitor(ctx context.Context) error {
	fs.monLog = fs.log.Named("monitor")

	if err := fs.watchSourceDirs(); err != nil {
		return err
	}

	ctx, fs.cancel = context.WithCancel(ctx)
	events, err := fs.opts.Monitor.Start(ctx)
	if err != nil {
		return err
	}
	fs.monLog.Info("monitoring %s via %s", fs.source.Root(), fs.opts.Monitor.Name())

	fs.wg.Add(1)
	go fs.pump(ctx, events)
	return nil
}

// pump moves monitor events through the coalescing queue into the
// namespace. Bursts from the channel are slurped before processing so
// runs of identical events collapse to one rebuild.
func (fs *TagFileSystem) pump(ctx context.Context, events <-chan data.ChangeEvent) {
	defer fs.wg.Done()

	for event := range events {
		fs.queue.Push(event)

	slurp:
		for {
			select {
			case more, ok := <-events:
				if !ok {
					break slurp
				}
				fs.queue.Push(more)
			default:
				break slurp
			}
		}

		for {
			queued, ok := fs.queue.Pop()
			if !ok {
				break
			}
			fs.applyChange(ctx, queued)
		}
	}
}

// applyChange reconciles the namespace with one source tree change.
// Rebuilds are idempotent, so duplicated or stale events are harmless.
func (fs *TagFileSystem) applyChange(ctx context.Context, event data.ChangeEvent) {
	fileID, err := fs.source.Relative(event.Path)
	if err != nil {
		return
	}

	switch event.Kind {
	case data.ChangeCreated, data.ChangeModified:
		info, statErr := fs.source.Stat(fileID)
		if statErr != nil {
			// Gone again already; treat as removal.
			fs.forget(fileID)
			return
		}
		if info.IsDir() {
			if event.Kind == data.ChangeCreated {
				if err := fs.opts.Monitor.AddWatch(event.Path); err != nil {
					fs.monLog.Warn("watch %s: %v", event.Path, err)
				}
			}
			return
		}
		if !fs.source.Accepts(fileID) {
			return
		}
		if err := fs.place(ctx, fileID); err != nil {
			fs.monLog.Warn("reconcile %s: %v", fileID, err)
		}

	case data.ChangeRemoved, data.ChangeRenamed:
		fs.forget(fileID)
	}
}

// forget drops a vanished file from the namespace. Its stored tags stay
// in the gateway so the file keeps its place if it comes back.
func (fs *TagFileSystem) forget(fileID string) {
	if err := fs.tree.RemoveFile(fileID); err != nil {
		if !errors.Is(err, data.ErrNotExist) {
			fs.monLog.Warn("forget %s: %v", fileID, err)
		}
		return
	}
	fs.dropSnapshot(fileID)
	fs.monLog.Debug("forgot %s", fileID)
}
