package aggregation

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryQueue is an in-process PendingQueue. Pending windows are lost on restart.
type MemoryQueue struct {
	mu      sync.Mutex
	pending map[string]PendingWindow
}

var _ PendingQueue = (*MemoryQueue)(nil)

// NewMemoryQueue creates an empty queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{pending: make(map[string]PendingWindow)}
}

func (q *MemoryQueue) Enqueue(_ context.Context, pw PendingWindow) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := pw.Window.String()
	if cur, exists := q.pending[key]; exists {
		q.pending[key] = cur.merge(pw)
		return nil
	}
	pw.Version = 1
	q.pending[key] = pw
	return nil
}

func (q *MemoryQueue) Due(_ context.Context, now time.Time, limit int) ([]PendingWindow, error) {
	q.mu.Lock()
	var due []PendingWindow
	for _, pw := range q.pending {
		if !pw.NextAttemptAt.After(now) {
			due = append(due, pw)
		}
	}
	q.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if !due[i].NextAttemptAt.Equal(due[j].NextAttemptAt) {
			return due[i].NextAttemptAt.Before(due[j].NextAttemptAt)
		}
		return due[i].Window.String() < due[j].Window.String()
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (q *MemoryQueue) Lookup(_ context.Context, windows []Window) ([]PendingWindow, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []PendingWindow
	for _, w := range windows {
		if pw, ok := q.pending[w.String()]; ok {
			out = append(out, pw)
		}
	}
	return out, nil
}

func (q *MemoryQueue) Reschedule(_ context.Context, pw PendingWindow) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := pw.Window.String()
	if cur, ok := q.pending[key]; ok && cur.Version == pw.Version {
		q.pending[key] = pw
	}
	return nil
}

func (q *MemoryQueue) Remove(_ context.Context, pw PendingWindow) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := pw.Window.String()
	if cur, ok := q.pending[key]; ok && cur.Version == pw.Version {
		delete(q.pending, key)
	}
	return nil
}

func (q *MemoryQueue) Len(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending), nil
}
