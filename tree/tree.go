// Package tree holds the in-memory virtual namespace: a directory
// hierarchy derived from formatting every backing file's tags through the
// path pattern. Directories exist implicitly while they have children and
// are pruned when their last child disappears; directories created
// explicitly survive until removed. Name collisions between files that
// format to the same path are resolved with numeric suffixes, the primary
// of each group keeping the clean name.
package tree

import (
	"fmt"
	"sync"

	"github.com/tidwall/btree"

	"github.com/tagsfs/tagsfs/data"
)

const rootID = 0

type node struct {
	id     int
	parent int
	name   string

	isDir    bool
	explicit bool
	children *btree.Map[string, int]

	// values holds the tag values an explicit directory was created
	// with, pre-seeded from parsing its segment.
	values data.TagSet

	// desired is the collision-free name the file's tags format to.
	// name carries the disambiguating suffix when a group collides.
	desired string
	fileID  string

	generation uint64
	pins       int
}

// Entry is a read-only view of one namespace entry.
type Entry struct {
	Name   string
	IsDir  bool
	FileID string

	// Generation changes whenever the entry's path changes. Callers
	// compare generations across unlocked sections to detect that a
	// concurrent change invalidated the entry they resolved.
	Generation uint64
}

// Tree is the virtual namespace. All methods are safe for concurrent use.
type Tree struct {
	mu sync.RWMutex

	arena  []*node
	free   []int
	byFile map[string]int

	generation uint64
	tieBreak   TieBreaker
}

// New returns an empty tree. The tie breaker orders members of a name
// collision group; nil falls back to ordering by file identity.
func New(tieBreak TieBreaker) *Tree {
	if tieBreak == nil {
		tieBreak = func(a, b string) bool { return a < b }
	}

	t := &Tree{
		byFile:   make(map[string]int),
		tieBreak: tieBreak,
	}
	t.arena = append(t.arena, &node{
		id:       rootID,
		parent:   -1,
		isDir:    true,
		explicit: true,
		children: btree.NewMap[string, int](0),
	})

	return t
}

func (t *Tree) alloc(n *node) int {
	if len(t.free) > 0 {
		id := t.free[len(t.free)-1]
		t.free = t.free[:len(t.free)-1]
		n.id = id
		t.arena[id] = n
		return id
	}

	n.id = len(t.arena)
	t.arena = append(t.arena, n)
	return n.id
}

func (t *Tree) release(id int) {
	t.arena[id] = nil
	t.free = append(t.free, id)
}

func (t *Tree) bump(n *node) {
	t.generation++
	n.generation = t.generation
}

// resolve walks the path to its node. Caller holds the lock.
func (t *Tree) resolve(path data.VirtualPath) (*node, error) {
	current := t.arena[rootID]

	for _, segment := range path {
		if !current.isDir {
			return nil, fmt.Errorf("%w: %q", data.ErrNotDirectory, path.String())
		}
		childID, exists := current.children.Get(segment)
		if !exists {
			return nil, fmt.Errorf("%w: %q", data.ErrNotExist, path.String())
		}
		current = t.arena[childID]
	}

	return current, nil
}

func (t *Tree) pathOf(n *node) data.VirtualPath {
	var segments []string
	for n.id != rootID {
		segments = append(segments, n.name)
		n = t.arena[n.parent]
	}

	path := make(data.VirtualPath, len(segments))
	for i, segment := range segments {
		path[len(segments)-1-i] = segment
	}
	return path
}

// Lookup resolves a path to its entry.
func (t *Tree) Lookup(path data.VirtualPath) (Entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, err := t.resolve(path)
	if err != nil {
		return Entry{}, err
	}
	return t.view(n), nil
}

func (t *Tree) view(n *node) Entry {
	return Entry{
		Name:       n.name,
		IsDir:      n.isDir,
		FileID:     n.fileID,
		Generation: n.generation,
	}
}

// List returns the sorted children of a directory.
func (t *Tree) List(path data.VirtualPath) ([]data.Dirent, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, err := t.resolve(path)
	if err != nil {
		return nil, err
	}
	if !n.isDir {
		return nil, fmt.Errorf("%w: %q", data.ErrNotDirectory, path.String())
	}

	entries := make([]data.Dirent, 0, n.children.Len())
	n.children.Scan(func(name string, childID int) bool {
		entries = append(entries, data.Dirent{
			Name:  name,
			IsDir: t.arena[childID].isDir,
		})
		return true
	})

	return entries, nil
}

// PathOf returns the current virtual path of a backing file.
func (t *Tree) PathOf(fileID string) (data.VirtualPath, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	id, exists := t.byFile[fileID]
	if !exists {
		return nil, fmt.Errorf("%w: file %q", data.ErrNotExist, fileID)
	}
	return t.pathOf(t.arena[id]), nil
}

// Generation returns the current generation of a backing file's entry.
func (t *Tree) Generation(fileID string) (uint64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	id, exists := t.byFile[fileID]
	if !exists {
		return 0, fmt.Errorf("%w: file %q", data.ErrNotExist, fileID)
	}
	return t.arena[id].generation, nil
}

// Files returns the identities of all files in the tree.
func (t *Tree) Files() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	files := make([]string, 0, len(t.byFile))
	for fileID := range t.byFile {
		files = append(files, fileID)
	}
	return files
}

// FilesUnder returns the identities of all files in the subtree at path,
// in listing order.
func (t *Tree) FilesUnder(path data.VirtualPath) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, err := t.resolve(path)
	if err != nil {
		return nil, err
	}

	var files []string
	var collect func(n *node)
	collect = func(n *node) {
		if !n.isDir {
			files = append(files, n.fileID)
			return
		}
		n.children.Scan(func(_ string, childID int) bool {
			collect(t.arena[childID])
			return true
		})
	}
	collect(n)

	return files, nil
}

// InsertFile places a backing file at the path its tags format to,
// creating intermediate directories as needed and resolving name
// collisions. It returns the actual path, which may carry a
// disambiguating suffix. Inserting an already-present file moves it.
func (t *Tree) InsertFile(path data.VirtualPath, fileID string) (data.VirtualPath, error) {
	if path.IsRoot() {
		return nil, fmt.Errorf("%w: cannot place file at the root", data.ErrInvalidPath)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, present := t.byFile[fileID]; present {
		return t.moveLocked(fileID, path)
	}
	return t.insertLocked(path, fileID)
}

func (t *Tree) insertLocked(path data.VirtualPath, fileID string) (data.VirtualPath, error) {
	parent, err := t.ensureDirs(path.Parent())
	if err != nil {
		return nil, err
	}

	desired := path.Leaf()
	leaf := &node{
		parent:  parent.id,
		isDir:   false,
		desired: desired,
		fileID:  fileID,
	}
	t.alloc(leaf)
	t.bump(leaf)
	t.byFile[fileID] = leaf.id

	t.joinGroup(parent, leaf)

	return t.pathOf(leaf), nil
}

// MoveFile relocates a file to the path its updated tags format to and
// returns the actual path after conflict resolution.
func (t *Tree) MoveFile(fileID string, path data.VirtualPath) (data.VirtualPath, error) {
	if path.IsRoot() {
		return nil, fmt.Errorf("%w: cannot place file at the root", data.ErrInvalidPath)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.moveLocked(fileID, path)
}

func (t *Tree) moveLocked(fileID string, path data.VirtualPath) (data.VirtualPath, error) {
	id, exists := t.byFile[fileID]
	if !exists {
		return nil, fmt.Errorf("%w: file %q", data.ErrNotExist, fileID)
	}
	n := t.arena[id]

	current := t.pathOf(n)
	if current.Equal(path) {
		return current, nil
	}

	oldParent := t.arena[n.parent]
	t.leaveGroup(oldParent, n)

	newParent, err := t.ensureDirs(path.Parent())
	if err != nil {
		// Put the file back where it was.
		t.joinGroup(oldParent, n)
		return nil, err
	}

	n.parent = newParent.id
	n.desired = path.Leaf()
	t.bump(n)
	t.joinGroup(newParent, n)
	t.prune(oldParent)

	return t.pathOf(n), nil
}

// RemoveFile drops a backing file from the tree and prunes directories
// left empty.
func (t *Tree) RemoveFile(fileID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, exists := t.byFile[fileID]
	if !exists {
		return fmt.Errorf("%w: file %q", data.ErrNotExist, fileID)
	}
	n := t.arena[id]

	parent := t.arena[n.parent]
	t.leaveGroup(parent, n)
	delete(t.byFile, fileID)
	t.release(n.id)

	t.prune(parent)
	return nil
}

// ensureDirs walks the directory path, creating missing levels as
// implicit directories. Caller holds the lock.
func (t *Tree) ensureDirs(path data.VirtualPath) (*node, error) {
	current := t.arena[rootID]

	for _, segment := range path {
		childID, exists := current.children.Get(segment)
		if exists {
			child := t.arena[childID]
			if !child.isDir {
				return nil, fmt.Errorf("%w: %q", data.ErrNotDirectory, segment)
			}
			current = child
			continue
		}

		dir := &node{
			parent:   current.id,
			name:     segment,
			isDir:    true,
			children: btree.NewMap[string, int](0),
		}
		t.alloc(dir)
		t.bump(dir)
		current.children.Set(segment, dir.id)
		current = dir
	}

	return current, nil
}

// prune removes empty implicit directories walking up from dir.
// Caller holds the lock.
func (t *Tree) prune(dir *node) {
	for dir.id != rootID && !dir.explicit && dir.children.Len() == 0 {
		parent := t.arena[dir.parent]
		parent.children.Delete(dir.name)
		t.release(dir.id)
		dir = parent
	}
}

// MkDir creates an explicit directory. values carries the tag values its
// segment parsed to, applied later to files moved into it.
func (t *Tree) MkDir(path data.VirtualPath, values data.TagSet) error {
	if path.IsRoot() {
		return fmt.Errorf("%w: root always exists", data.ErrExist)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	parent, err := t.resolve(path.Parent())
	if err != nil {
		return err
	}
	if !parent.isDir {
		return fmt.Errorf("%w: %q", data.ErrNotDirectory, path.Parent().String())
	}
	if _, exists := parent.children.Get(path.Leaf()); exists {
		return fmt.Errorf("%w: %q", data.ErrExist, path.String())
	}

	dir := &node{
		parent:   parent.id,
		name:     path.Leaf(),
		isDir:    true,
		explicit: true,
		children: btree.NewMap[string, int](0),
		values:   values.Clone(),
	}
	t.alloc(dir)
	t.bump(dir)
	parent.children.Set(dir.name, dir.id)

	return nil
}

// RmDir removes an empty directory.
func (t *Tree) RmDir(path data.VirtualPath) error {
	if path.IsRoot() {
		return fmt.Errorf("%w: cannot remove the root", data.ErrUnsupported)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.resolve(path)
	if err != nil {
		return err
	}
	if !n.isDir {
		return fmt.Errorf("%w: %q", data.ErrNotDirectory, path.String())
	}
	if n.children.Len() > 0 {
		return fmt.Errorf("%w: %q", data.ErrDirectoryNotEmpty, path.String())
	}

	parent := t.arena[n.parent]
	parent.children.Delete(n.name)
	t.release(n.id)
	t.prune(parent)

	return nil
}

// DirValues returns the tag values a directory path implies: the merged
// pre-seeded values of every explicit directory along the path.
func (t *Tree) DirValues(path data.VirtualPath) (data.TagSet, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	values := make(data.TagSet)
	current := t.arena[rootID]

	for _, segment := range path {
		if !current.isDir {
			return nil, fmt.Errorf("%w: %q", data.ErrNotDirectory, path.String())
		}
		childID, exists := current.children.Get(segment)
		if !exists {
			return nil, fmt.Errorf("%w: %q", data.ErrNotExist, path.String())
		}
		current = t.arena[childID]
		for name, vals := range current.values {
			values.Set(name, vals...)
		}
	}

	return values, nil
}

// Pin marks a file's entry as held open. Pinned entries report their pin
// count so the dispatcher can freeze their paths during writes.
func (t *Tree) Pin(fileID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, exists := t.byFile[fileID]
	if !exists {
		return fmt.Errorf("%w: file %q", data.ErrNotExist, fileID)
	}
	t.arena[id].pins++
	return nil
}

// Unpin releases one pin.
func (t *Tree) Unpin(fileID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, exists := t.byFile[fileID]
	if !exists {
		return fmt.Errorf("%w: file %q", data.ErrNotExist, fileID)
	}
	n := t.arena[id]
	if n.pins > 0 {
		n.pins--
	}
	return nil
}

// Pinned reports whether a file's entry is held open.
func (t *Tree) Pinned(fileID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	id, exists := t.byFile[fileID]
	if !exists {
		return false
	}
	return t.arena[id].pins > 0
}
