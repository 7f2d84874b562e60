package tree

import (
	"fmt"
	"slices"
	"strings"
)

// TieBreaker orders the members of a name collision group by file
// identity. The first member keeps the clean name; later members receive
// numeric suffixes.
type TieBreaker func(a, b string) bool

// groupMembers collects the leaves under parent whose tags format to the
// same desired name. Caller holds the lock.
func (t *Tree) groupMembers(parent *node, desired string) []*node {
	var members []*node
	parent.children.Scan(func(_ string, childID int) bool {
		child := t.arena[childID]
		if !child.isDir && child.desired == desired {
			members = append(members, child)
		}
		return true
	})
	return members
}

// joinGroup adds a leaf to its collision group and re-resolves the group's
// names. Caller holds the lock.
func (t *Tree) joinGroup(parent *node, leaf *node) {
	members := t.groupMembers(parent, leaf.desired)
	members = append(members, leaf)
	t.resolveGroup(parent, leaf.desired, members)
}

// leaveGroup removes a leaf from its collision group and re-resolves the
// remaining members, promoting them to cleaner names where possible.
// Caller holds the lock.
func (t *Tree) leaveGroup(parent *node, leaf *node) {
	if id, exists := parent.children.Get(leaf.name); exists && id == leaf.id {
		parent.children.Delete(leaf.name)
	}
	members := t.groupMembers(parent, leaf.desired)
	t.resolveGroup(parent, leaf.desired, members)
}

// resolveGroup assigns actual names to a collision group: members are
// ordered by the tie breaker, the first takes the desired name and the
// rest take numbered suffixes, skipping names occupied by entries outside
// the group. Resolution is deterministic in the group's membership, so
// re-running it is idempotent.
func (t *Tree) resolveGroup(parent *node, desired string, members []*node) {
	if len(members) == 0 {
		return
	}

	slices.SortStableFunc(members, func(a, b *node) int {
		switch {
		case t.tieBreak(a.fileID, b.fileID):
			return -1
		case t.tieBreak(b.fileID, a.fileID):
			return 1
		default:
			return 0
		}
	})

	for _, member := range members {
		if id, exists := parent.children.Get(member.name); exists && id == member.id {
			parent.children.Delete(member.name)
		}
	}

	occupied := func(name string) bool {
		_, exists := parent.children.Get(name)
		return exists
	}

	next := 1
	for _, member := range members {
		var name string
		for {
			if next == 1 {
				name = desired
			} else {
				name = suffixName(desired, next)
			}
			next++
			if !occupied(name) {
				break
			}
		}

		if member.name != name {
			member.name = name
			t.bump(member)
		}
		parent.children.Set(name, member.id)
	}
}

// suffixName inserts the disambiguating counter before the extension:
// "03 - Song.mp3" becomes "03 - Song (2).mp3".
func suffixName(desired string, n int) string {
	base, ext := desired, ""
	if i := strings.LastIndexByte(desired, '.'); i > 0 {
		base, ext = desired[:i], desired[i:]
	}
	return fmt.Sprintf("%s (%d)%s", base, n, ext)
}
