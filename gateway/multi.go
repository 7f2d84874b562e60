package gateway

import (
	"context"

	"github.com/tagsfs/tagsfs/data"
)

// Multi layers a fast primary gateway over one or more replicas. Reads
// ask the primary first and fall through the replicas in order until one
// has tags for the file; writes land on the primary first and are then
// mirrored to the replicas. A replica failure does not undo the primary
// write, it surfaces as an error so the caller can alert.
type Multi struct {
	primary  Gateway
	replicas []Gateway
}

// NewMulti wires a primary gateway to its replicas.
func NewMulti(primary Gateway, replicas ...Gateway) *Multi {
	return &Multi{
		primary:  primary,
		replicas: replicas,
	}
}

// Returns the identifier name defined for this gateway
func (m *Multi) Name() string {
	return "multi(" + m.primary.Name() + ")"
}

func (m *Multi) Open(ctx context.Context) error {
	if err := m.primary.Open(ctx); err != nil {
		return err
	}
	for _, replica := range m.replicas {
		if err := replica.Open(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (m *Multi) Close(ctx context.Context) error {
	errs := &data.Errors{}
	errs.Add(m.primary.Close(ctx))
	for _, replica := range m.replicas {
		errs.Add(replica.Close(ctx))
	}
	return errs.Errors()
}

func (m *Multi) ReadTags(ctx context.Context, fileID string) (data.TagSet, error) {
	tags, err := m.primary.ReadTags(ctx, fileID)
	if err != nil || len(tags) > 0 {
		return tags, err
	}

	// An empty set means the primary has nothing stored for the file;
	// a replica that was attached earlier may still hold its tags.
	for _, replica := range m.replicas {
		tags, err = replica.ReadTags(ctx, fileID)
		if err != nil || len(tags) > 0 {
			return tags, err
		}
	}

	return data.TagSet{}, nil
}

func (m *Multi) WriteTags(ctx context.Context, fileID string, update data.TagUpdateSet) error {
	if err := m.primary.WriteTags(ctx, fileID, update); err != nil {
		return err
	}

	errs := &data.Errors{}
	for _, replica := range m.replicas {
		errs.Add(replica.WriteTags(ctx, fileID, update))
	}
	return errs.Errors()
}

func (m *Multi) DeleteTags(ctx context.Context, fileID string) error {
	if err := m.primary.DeleteTags(ctx, fileID); err != nil {
		return err
	}

	errs := &data.Errors{}
	for _, replica := range m.replicas {
		errs.Add(replica.DeleteTags(ctx, fileID))
	}
	return errs.Errors()
}

func (m *Multi) ListIDs(ctx context.Context) ([]string, error) {
	return m.primary.ListIDs(ctx)
}
