package tagsfs

import (
	"context"
	"errors"
	"fmt"

	"github.com/tagsfs/tagsfs/data"
)

// Rename edits tags by moving entries inside the virtual namespace.
// Renaming a file parses the changed path segments into a tag update and
// writes it through the gateway before the namespace moves; a failed
// write leaves both tags and namespace untouched. Renaming a directory
// applies the corresponding update to every file underneath it, one file
// at a time.
func (fs *TagFileSystem) Rename(ctx context.Context, oldPath, newPath string) error {
	oldVP, err := data.SplitPath(oldPath)
	if err != nil {
		return err
	}
	newVP, err := data.SplitPath(newPath)
	if err != nil {
		return err
	}

	entry, err := fs.tree.Lookup(oldVP)
	if err != nil {
		return err
	}

	if entry.IsDir {
		return fs.renameDir(ctx, oldVP, newVP)
	}
	return fs.renameFile(ctx, entry.FileID, oldVP, newVP)
}

// renameFile turns one file move into a tag update.
//
// The gateway write happens without any namespace lock held. The entry's
// generation is sampled first and checked after: if a concurrent change
// moved the entry meanwhile, the caller gets ErrStale and the event
// pipeline has already re-placed the file from its updated tags.
func (fs *TagFileSystem) renameFile(ctx context.Context, fileID string, oldVP, newVP data.VirtualPath) error {
	depth := fs.pattern.Depth()
	if len(newVP) > depth || (len(newVP) < depth && !fs.pattern.ElidesEmpty()) {
		return fmt.Errorf("%w: files live at depth %d", data.ErrNoMatch, depth)
	}

	// No implicit overwrite: a target claimed by another entry rejects
	// the rename instead of suffixing it away.
	if existing, err := fs.tree.Lookup(newVP); err == nil {
		if existing.IsDir || existing.FileID != fileID {
			return fmt.Errorf("%w: %q", data.ErrExist, newVP.String())
		}
	}

	snapshot := fs.snapshot(fileID)
	if snapshot == nil {
		return fmt.Errorf("%w: file %q", data.ErrNotExist, fileID)
	}

	genBefore, err := fs.tree.Generation(fileID)
	if err != nil {
		return err
	}

	var update data.TagUpdateSet
	if len(oldVP) == len(newVP) && len(newVP) == depth {
		update = data.TagUpdateSet{}
		working := snapshot.Clone()
		for i, segment := range newVP {
			if oldVP[i] == segment {
				continue
			}
			partial, err := fs.pattern.ParseComponent(i, segment, working)
			if err != nil {
				return err
			}
			working = working.Apply(partial)
			for tag, values := range partial {
				update[tag] = values
			}
		}
	} else {
		// Elided components make segment positions ambiguous, so the
		// whole path is parsed against the pattern.
		update, err = fs.pattern.Parse(newVP, snapshot)
		if err != nil {
			return err
		}
	}

	if update.IsEmpty() {
		return nil
	}

	if err := fs.gateway.WriteTags(ctx, fileID, update); err != nil {
		return fmt.Errorf("gateway %s: %w", fs.gateway.Name(), err)
	}
	fs.log.Info("rename %s: %s", fileID, update.String())

	tags, err := fs.loadSnapshot(ctx, fileID)
	if err != nil {
		return err
	}
	fs.setSnapshot(fileID, tags)

	genAfter, err := fs.tree.Generation(fileID)
	if err != nil {
		return err
	}
	if genAfter != genBefore {
		return fmt.Errorf("%w: %q moved during rename", data.ErrStale, oldVP.String())
	}

	if fs.tree.Pinned(fileID) {
		// Path frozen by an open handle; the move applies on release.
		return nil
	}

	_, err = fs.tree.MoveFile(fileID, fs.pattern.Format(tags))
	return err
}

// renameDir applies a directory move to every file underneath it. Each
// file is updated atomically; on failure, files already moved stay moved
// and the error names the file that stopped the walk.
func (fs *TagFileSystem) renameDir(ctx context.Context, oldVP, newVP data.VirtualPath) error {
	if len(newVP) != len(oldVP) {
		return fmt.Errorf("%w: directory must stay at depth %d", data.ErrUnsupported, len(oldVP))
	}
	if len(newVP) >= fs.pattern.Depth() {
		return fmt.Errorf("%w: only files exist at depth %d", data.ErrUnsupported, len(newVP))
	}

	fileIDs, err := fs.tree.FilesUnder(oldVP)
	if err != nil {
		return err
	}

	// An empty explicit directory renames as a relabel with fresh seeded
	// values, validated like MkDir.
	if len(fileIDs) == 0 {
		if err := fs.MkDir(newVP.String()); err != nil {
			return err
		}
		return fs.tree.RmDir(oldVP)
	}

	changed := make([]bool, len(newVP))
	for i := range newVP {
		changed[i] = oldVP[i] != newVP[i]
	}

	for _, fileID := range fileIDs {
		current, err := fs.tree.PathOf(fileID)
		if err != nil {
			return err
		}

		target := make(data.VirtualPath, len(current))
		copy(target, current)
		for i, isChanged := range changed {
			if isChanged && i < len(target) {
				target[i] = newVP[i]
			}
		}

		if err := fs.renameFile(ctx, fileID, current, target); err != nil {
			return fmt.Errorf("renaming %s under %s: %w", fileID, oldVP.String(), err)
		}
	}

	// The old directory prunes itself once emptied; an explicit one may
	// remain and is removed if it is now empty.
	if err := fs.tree.RmDir(oldVP); err != nil && !errors.Is(err, data.ErrNotExist) {
		fs.log.Debug("old directory %s kept: %v", oldVP.String(), err)
	}

	return nil
}
