package tagsfs

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/tagsfs/tagsfs/data"
)

// handle is one open file. While any handle on a file exists, its entry
// is pinned: the virtual path stays frozen even if tags change, and the
// deferred move happens on the last release.
type handle struct {
	fileID   string
	file     *os.File
	writable bool
}

// Open opens the backing file behind a virtual path and returns an opaque
// handle token.
func (fs *TagFileSystem) Open(path string, writable bool) (string, error) {
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

	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR
	}
	file, err := fs.source.Open(entry.FileID, flag)
	if err != nil {
		return "", err
	}

	if err := fs.tree.Pin(entry.FileID); err != nil {
		file.Close()
		return "", err
	}

	token := uuid.NewString()
	fs.snapMu.Lock()
	fs.handles[token] = &handle{
		fileID:   entry.FileID,
		file:     file,
		writable: writable,
	}
	fs.snapMu.Unlock()

	return token, nil
}

func (fs *TagFileSystem) lookupHandle(token string) (*handle, error) {
	fs.snapMu.RLock()
	defer fs.snapMu.RUnlock()

	h, exists := fs.handles[token]
	if !exists {
		return nil, fmt.Errorf("%w: unknown handle", data.ErrClosed)
	}
	return h, nil
}

// ReadAt reads from an open handle at the given offset.
func (fs *TagFileSystem) ReadAt(token string, buffer []byte, offset int64) (int, error) {
	h, err := fs.lookupHandle(token)
	if err != nil {
		return 0, err
	}
	return h.file.ReadAt(buffer, offset)
}

// WriteAt writes through an open handle at the given offset.
func (fs *TagFileSystem) WriteAt(token string, buffer []byte, offset int64) (int, error) {
	h, err := fs.lookupHandle(token)
	if err != nil {
		return 0, err
	}
	if !h.writable {
		return 0, data.ErrReadOnly
	}

	return h.file.WriteAt(buffer, offset)
}

// Release closes a handle. Dropping the last pin applies any move that
// was deferred while the path was frozen.
func (fs *TagFileSystem) Release(token string) error {
	fs.snapMu.Lock()
	h, exists := fs.handles[token]
	if exists {
		delete(fs.handles, token)
	}
	fs.snapMu.Unlock()

	if !exists {
		return fmt.Errorf("%w: unknown handle", data.ErrClosed)
	}

	closeErr := h.file.Close()
	fs.tree.Unpin(h.fileID)

	if !fs.tree.Pinned(h.fileID) {
		if snapshot := fs.snapshot(h.fileID); snapshot != nil {
			desired := fs.pattern.Format(snapshot)
			if actual, err := fs.tree.MoveFile(h.fileID, desired); err == nil {
				fs.log.Debug("released %s at %s", h.fileID, actual.String())
			}
		}
	}

	return closeErr
}
