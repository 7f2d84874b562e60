package tagsfs

import (
	"context"
	"fmt"
	iofs "io/fs"
	"path/filepath"

	"github.com/tagsfs/tagsfs/data"
)

// Populate opens the gateway, scans the source tree and builds the
// virtual namespace, then starts the change monitor if one is configured.
func (fs *TagFileSystem) Populate(ctx context.Context) error {
	if err := fs.gateway.Open(ctx); err != nil {
		return fmt.Errorf("gateway %s: %w", fs.gateway.Name(), err)
	}

	count := 0
	err := fs.source.Walk(func(fileID string, _ iofs.FileInfo) error {
		if err := fs.place(ctx, fileID); err != nil {
			fs.log.Warn("skipping %s: %v", fileID, err)
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		return err
	}
	fs.log.Info("populated %d files from %s", count, fs.source.Root())

	if fs.opts.Monitor != nil {
		if err := fs.startMonitor(ctx); err != nil {
			return err
		}
	}

	return nil
}

// place reads a file's tags and inserts (or re-inserts) it at the path
// they format to. Files already present move; pinned files keep their
// frozen path until released.
func (fs *TagFileSystem) place(ctx context.Context, fileID string) error {
	tags, err := fs.loadSnapshot(ctx, fileID)
	if err != nil {
		return err
	}
	fs.setSnapshot(fileID, tags)

	if fs.tree.Pinned(fileID) {
		return nil
	}

	desired := fs.pattern.Format(tags)
	actual, err := fs.tree.InsertFile(desired, fileID)
	if err != nil {
		return err
	}

	fs.log.Debug("placed %s at %s", fileID, actual.String())
	return nil
}

// Shutdown stops the monitor, releases open handles and closes the
// gateway.
func (fs *TagFileSystem) Shutdown(ctx context.Context) error {
	errs := &data.Errors{}

	if fs.cancel != nil {
		fs.cancel()
	}
	if fs.opts.Monitor != nil {
		errs.Add(fs.opts.Monitor.Stop())
	}
	fs.wg.Wait()

	fs.snapMu.Lock()
	for token, h := range fs.handles {
		errs.Add(h.file.Close())
		delete(fs.handles, token)
	}
	fs.snapMu.Unlock()

	errs.Add(fs.gateway.Close(ctx))
	return errs.Errors()
}

// Stat describes the entry at a virtual path.
func (fs *TagFileSystem) Stat(path string) (data.Attr, error) {
	vp, err := data.SplitPath(path)
	if err != nil {
		return data.Attr{}, err
	}

	entry, err := fs.tree.Lookup(vp)
	if err != nil {
		return data.Attr{}, err
	}
	if entry.IsDir {
		return data.Attr{IsDir: true, Mode: 0o755}, nil
	}

	info, err := fs.source.Stat(entry.FileID)
	if err != nil {
		return data.Attr{}, err
	}

	return data.Attr{
		Size:    info.Size(),
		Mode:    uint32(info.Mode().Perm()),
		ModTime: info.ModTime(),
		FileID:  entry.FileID,
	}, nil
}

// ReadDir lists a virtual directory in sorted order.
func (fs *TagFileSystem) ReadDir(path string) ([]data.Dirent, error) {
	vp, err := data.SplitPath(path)
	if err != nil {
		return nil, err
	}
	return fs.tree.List(vp)
}

// Resolve maps a virtual file path to the absolute path of its backing
// file.
func (fs *TagFileSystem) Resolve(path string) (string, error) {
	vp, err := data.SplitPath(path)
	if err != nil {
		return "", err
	}

	entry, err := fs.tree.Lookup(vp)
	if err != nil {
		return "", err
	}
	if entry.IsDir {
		return "", fmt.Errorf("%w: %q", data.ErrIsDirectory, path)
	}

	return fs.source.Absolute(entry.FileID), nil
}

// Tags returns the stored tag set of the file at a virtual path.
func (fs *TagFileSystem) Tags(path string) (data.TagSet, error) {
	vp, err := data.SplitPath(path)
	if err != nil {
		return nil, err
	}

	entry, err := fs.tree.Lookup(vp)
	if err != nil {
		return nil, err
	}
	if entry.IsDir {
		return nil, fmt.Errorf("%w: %q", data.ErrIsDirectory, path)
	}

	snapshot := fs.snapshot(entry.FileID)
	if snapshot == nil {
		return data.TagSet{}, nil
	}
	return snapshot.Clone(), nil
}

// MkDir creates a directory. Under the strict policy the name must parse
// cleanly against the pattern component at its depth and must not touch
// read-only placeholders; the parsed values are pre-seeded so files moved
// into the directory inherit them.
func (fs *TagFileSystem) MkDir(path string) error {
	vp, err := data.SplitPath(path)
	if err != nil {
		return err
	}
	if vp.IsRoot() {
		return fmt.Errorf("%w: %q", data.ErrExist, path)
	}
	if len(vp) >= fs.pattern.Depth() {
		return fmt.Errorf("%w: only files exist at depth %d", data.ErrUnsupported, len(vp))
	}

	if fs.opts.Mkdir == MkdirPermissive {
		return fs.tree.MkDir(vp, nil)
	}

	index := len(vp) - 1
	component := fs.pattern.Components[index]
	if !component.Writable() {
		return fmt.Errorf("%w: component %d is not writable", data.ErrReadOnlyField, index)
	}

	parentValues, err := fs.tree.DirValues(vp.Parent())
	if err != nil {
		return err
	}

	update, err := fs.pattern.ParseComponent(index, vp.Leaf(), parentValues)
	if err != nil {
		return err
	}

	return fs.tree.MkDir(vp, parentValues.Apply(update))
}

// RmDir removes an empty directory.
func (fs *TagFileSystem) RmDir(path string) error {
	vp, err := data.SplitPath(path)
	if err != nil {
		return err
	}
	return fs.tree.RmDir(vp)
}

// Unlink removes a virtual file: the backing file is deleted and its
// stored tags dropped.
func (fs *TagFileSystem) Unlink(ctx context.Context, path string) error {
	vp, err := data.SplitPath(path)
	if err != nil {
		return err
	}

	entry, err := fs.tree.Lookup(vp)
	if err != nil {
		return err
	}
	if entry.IsDir {
		return fmt.Errorf("%w: %q", data.ErrIsDirectory, path)
	}

	if err := fs.source.Remove(entry.FileID); err != nil {
		return err
	}
	if err := fs.gateway.DeleteTags(ctx, entry.FileID); err != nil {
		fs.log.Error("tags of removed %s not deleted: %v", entry.FileID, err)
	}
	if err := fs.tree.RemoveFile(entry.FileID); err != nil {
		return err
	}
	fs.dropSnapshot(entry.FileID)

	fs.log.Info("unlinked %s (%s)", path, entry.FileID)
	return nil
}

// watchSourceDirs registers every directory under the source root with
// the monitor.
func (fs *TagFileSystem) watchSourceDirs() error {
	return filepath.WalkDir(fs.source.Root(), func(path string, d iofs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if err := fs.opts.Monitor.AddWatch(path); err != nil {
			fs.monLog.Warn("watch %s: %v", path, err)
		}
		return nil
	})
}
