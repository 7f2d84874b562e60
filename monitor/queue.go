package monitor

import (
	"sync"

	"github.com/tagsfs/tagsfs/data"
)

// Queue buffers change events in arrival order and coalesces runs of
// identical events: pushing an event whose path and kind match the most
// recently queued event for that path is a no-op. Editors that fire many
// write events while saving a file collapse to a single rebuild.
type Queue struct {
	mu sync.Mutex

	events   []data.ChangeEvent
	pending  map[string]int
	lastKind map[string]data.ChangeKind
}

func NewQueue() *Queue {
	return &Queue{
		pending:  make(map[string]int),
		lastKind: make(map[string]data.ChangeKind),
	}
}

// Push enqueues an event unless it duplicates the last queued event for
// the same path.
func (q *Queue) Push(event data.ChangeEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pending[event.Path] > 0 && q.lastKind[event.Path] == event.Kind {
		return
	}

	q.events = append(q.events, event)
	q.pending[event.Path]++
	q.lastKind[event.Path] = event.Kind
}

// Pop dequeues the oldest event.
func (q *Queue) Pop() (data.ChangeEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return data.ChangeEvent{}, false
	}

	event := q.events[0]
	q.events = q.events[1:]

	q.pending[event.Path]--
	if q.pending[event.Path] == 0 {
		delete(q.pending, event.Path)
		delete(q.lastKind, event.Path)
	}

	return event, true
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.events)
}
