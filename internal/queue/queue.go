package queue

import (
	"context"
	"sync"
	"time"
)

// entry is either a real item or the stop marker.
type entry[T any] struct {
	value T
	stop  bool
}

// Queue is an unbounded FIFO safe for concurrent producers and a single
// blocking consumer. It also accepts a stop marker that wakes the consumer
// without carrying an item.
type Queue[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond

	items []entry[T]

	// unfinished counts real items that were put but not yet marked Done.
	unfinished int
	idle       chan struct{}

	stats Stats
}

// Stats tracks queue activity.
type Stats struct {
	TotalEnqueued int64
	TotalDequeued int64
	TotalCleared  int64
	PeakSize      int
	CurrentSize   int
	LastEnqueue   time.Time
	LastDequeue   time.Time
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{
		idle: make(chan struct{}),
	}
	close(q.idle)
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Put appends an item at the tail.
func (q *Queue[T]) Put(v T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, entry[T]{value: v})
	if q.unfinished == 0 {
		q.idle = make(chan struct{})
	}
	q.unfinished++

	q.stats.TotalEnqueued++
	q.stats.LastEnqueue = time.Now()
	if size := q.lenLocked(); size > q.stats.PeakSize {
		q.stats.PeakSize = size
	}

	q.notEmpty.Signal()
}

// PutStop inserts a stop marker at the head so the consumer sees it before
// any item still waiting. Markers do not count as unfinished work.
func (q *Queue[T]) PutStop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append([]entry[T]{{stop: true}}, q.items...)
	q.notEmpty.Signal()
}

// Get blocks until an entry is available and removes it. ok is false when
// the entry was a stop marker.
func (q *Queue[T]) Get() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		q.notEmpty.Wait()
	}

	e := q.items[0]
	var zero entry[T]
	q.items[0] = zero
	q.items = q.items[1:]

	if e.stop {
		return v, false
	}

	q.stats.TotalDequeued++
	q.stats.LastDequeue = time.Now()
	return e.value, true
}

// Done acknowledges one item returned by Get. Calling it more often than
// items were put panics, as with a negative sync.WaitGroup.
func (q *Queue[T]) Done() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.unfinished <= 0 {
		panic("queue: Done called more times than items were put")
	}
	q.unfinished--
	if q.unfinished == 0 {
		close(q.idle)
	}
}

// Join blocks until every item put so far has been acknowledged with Done
// or removed by Clear, or until ctx is done.
func (q *Queue[T]) Join(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len returns the number of items waiting, excluding stop markers.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked()
}

func (q *Queue[T]) lenLocked() int {
	n := 0
	for _, e := range q.items {
		if !e.stop {
			n++
		}
	}
	return n
}

// Unfinished returns the number of items put but not yet acknowledged.
func (q *Queue[T]) Unfinished() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.unfinished
}

// Clear drops every waiting item and returns how many were dropped. Stop
// markers are kept.
func (q *Queue[T]) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.items[:0]
	dropped := 0
	for _, e := range q.items {
		if e.stop {
			kept = append(kept, e)
			continue
		}
		dropped++
	}
	for i := len(kept); i < len(q.items); i++ {
		q.items[i] = entry[T]{}
	}
	q.items = kept

	if dropped > 0 {
		q.unfinished -= dropped
		if q.unfinished == 0 {
			close(q.idle)
		}
		q.stats.TotalCleared += int64(dropped)
	}
	return dropped
}

// GetStats returns a snapshot of queue statistics.
func (q *Queue[T]) GetStats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	stats := q.stats
	stats.CurrentSize = q.lenLocked()
	return stats
}
