package data

import "time"

// ChangeKind classifies an out-of-band change to a backing file.
type ChangeKind int

const (
	ChangeCreated ChangeKind = iota
	ChangeModified
	ChangeRemoved
	ChangeRenamed
)

func (ck ChangeKind) String() string {
	switch ck {
	case ChangeCreated:
		return "created"
	case ChangeModified:
		return "modified"
	case ChangeRemoved:
		return "removed"
	case ChangeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// ChangeEvent reports one change to a backing file, identified by its
// path relative to the source root. Delivery order per path is preserved
// by monitors; duplicates are tolerated because rebuilds are idempotent.
type ChangeEvent struct {
	Path string
	Kind ChangeKind
}

// Attr describes one namespace entry to the transport layer.
type Attr struct {
	IsDir   bool
	Size    int64
	Mode    uint32
	ModTime time.Time

	// FileID is the backing file identity for leaves, "" for directories.
	FileID string
}

// Dirent is one row of a ReadDir result.
type Dirent struct {
	Name  string
	IsDir bool
}
