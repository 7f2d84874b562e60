package monitor

import (
	"testing"

	"github.com/tagsfs/tagsfs/data"
)

// TestQueue_CoalescesRuns verifies that repeated identical events for the
// same path collapse while distinct events are kept in order.
func TestQueue_CoalescesRuns(t *testing.T) {
	q := NewQueue()

	q.Push(data.ChangeEvent{Path: "/a", Kind: data.ChangeModified})
	q.Push(data.ChangeEvent{Path: "/a", Kind: data.ChangeModified})
	q.Push(data.ChangeEvent{Path: "/a", Kind: data.ChangeModified})
	q.Push(data.ChangeEvent{Path: "/b", Kind: data.ChangeCreated})
	q.Push(data.ChangeEvent{Path: "/a", Kind: data.ChangeRemoved})

	if q.Len() != 3 {
		t.Fatalf("Len mismatch: expected 3, got %d", q.Len())
	}

	expected := []data.ChangeEvent{
		{Path: "/a", Kind: data.ChangeModified},
		{Path: "/b", Kind: data.ChangeCreated},
		{Path: "/a", Kind: data.ChangeRemoved},
	}
	for i, want := range expected {
		got, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop %d failed", i)
		}
		if got != want {
			t.Fatalf("event %d mismatch: expected %v, got %v", i, want, got)
		}
	}

	if _, ok := q.Pop(); ok {
		t.Fatal("queue should be empty")
	}
}

// TestQueue_ReusesPathAfterDrain verifies that coalescing state resets
// once a path's events are drained.
func TestQueue_ReusesPathAfterDrain(t *testing.T) {
	q := NewQueue()

	q.Push(data.ChangeEvent{Path: "/a", Kind: data.ChangeModified})
	q.Pop()
	q.Push(data.ChangeEvent{Path: "/a", Kind: data.ChangeModified})

	if q.Len() != 1 {
		t.Fatalf("drained path should accept new events, Len = %d", q.Len())
	}
}
