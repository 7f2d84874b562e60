// Package memory provides an in-memory gateway, primarily for tests and
// for sources whose tags are scanned at mount time and never persisted.
package memory

import (
	"context"
	"sync"

	"github.com/tidwall/btree"

	"github.com/tagsfs/tagsfs/data"
)

type MemoryGateway struct {
	mu   sync.RWMutex
	tags *btree.Map[string, data.TagSet]
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		tags: btree.NewMap[string, data.TagSet](0),
	}
}

// Returns the identifier name defined for this gateway
func (*MemoryGateway) Name() string {
	return "memory"
}

func (mg *MemoryGateway) Open(ctx context.Context) error {
	return nil
}

func (mg *MemoryGateway) Close(ctx context.Context) error {
	mg.mu.Lock()
	defer mg.mu.Unlock()

	mg.tags.Clear()
	return nil
}

func (mg *MemoryGateway) ReadTags(ctx context.Context, fileID string) (data.TagSet, error) {
	mg.mu.RLock()
	defer mg.mu.RUnlock()

	tags, exists := mg.tags.Get(fileID)
	if !exists {
		return data.TagSet{}, nil
	}
	return tags.Clone(), nil
}

func (mg *MemoryGateway) WriteTags(ctx context.Context, fileID string, update data.TagUpdateSet) error {
	mg.mu.Lock()
	defer mg.mu.Unlock()

	current, exists := mg.tags.Get(fileID)
	if !exists {
		current = data.TagSet{}
	}
	mg.tags.Set(fileID, current.Apply(update))
	return nil
}

func (mg *MemoryGateway) DeleteTags(ctx context.Context, fileID string) error {
	mg.mu.Lock()
	defer mg.mu.Unlock()

	mg.tags.Delete(fileID)
	return nil
}

func (mg *MemoryGateway) ListIDs(ctx context.Context) ([]string, error) {
	mg.mu.RLock()
	defer mg.mu.RUnlock()

	ids := make([]string, 0, mg.tags.Len())
	mg.tags.Scan(func(fileID string, _ data.TagSet) bool {
		ids = append(ids, fileID)
		return true
	})
	return ids, nil
}
