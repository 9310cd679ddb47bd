// Package queue provides an unbounded FIFO used to hand work from I/O
// goroutines to a single consumer goroutine.
//
// Producers never block: the ring doubles once it is 70% full. This keeps
// feed readers from stalling behind a slow consumer while preserving
// per-producer order.
package queue

import "sync"

// growThreshold is the fill percentage that triggers a doubling.
const growThreshold = 70

// Queue is a goroutine-safe growable ring buffer.
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	ring   []T
	head   int // next read
	size   int
	closed bool

	pushed    int64
	popped    int64
	grows     int
	highWater int
}

// Stats describes queue activity.
type Stats struct {
	Len       int
	Cap       int
	Pushed    int64
	Popped    int64
	Grows     int
	HighWater int
}

// New creates a queue with the given initial capacity.
func New[T any](capacity int) *Queue[T] {
	if capacity < 2 {
		capacity = 2
	}
	q := &Queue[T]{ring: make([]T, capacity)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends v. It returns false once the queue is closed.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	if (q.size+1)*100 >= len(q.ring)*growThreshold {
		q.resize(len(q.ring) * 2)
	}

	q.ring[(q.head+q.size)%len(q.ring)] = v
	q.size++
	q.pushed++
	if q.size > q.highWater {
		q.highWater = q.size
	}

	q.cond.Signal()
	return true
}

// Pop blocks until an item is available. It returns false when the queue
// is closed and drained.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size == 0 && !q.closed {
		q.cond.Wait()
	}
	return q.take()
}

// TryPop returns the next item without blocking.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.take()
}

// Drain removes up to max items (all when max <= 0) without blocking.
func (q *Queue[T]) Drain(max int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.size
	if max > 0 && max < n {
		n = max
	}
	if n == 0 {
		return nil
	}

	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v, _ := q.take()
		out = append(out, v)
	}
	return out
}

// Close stops further pushes and wakes blocked consumers. Items already
// queued can still be popped.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Stats returns a snapshot of queue counters.
func (q *Queue[T]) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Len:       q.size,
		Cap:       len(q.ring),
		Pushed:    q.pushed,
		Popped:    q.popped,
		Grows:     q.grows,
		HighWater: q.highWater,
	}
}

// take pops the head item. Must be called with mu held.
func (q *Queue[T]) take() (T, bool) {
	var zero T
	if q.size == 0 {
		return zero, false
	}

	v := q.ring[q.head]
	q.ring[q.head] = zero // release for GC
	q.head = (q.head + 1) % len(q.ring)
	q.size--
	q.popped++
	return v, true
}

// resize reallocates the ring, unwrapping it to start at index 0.
// Must be called with mu held.
func (q *Queue[T]) resize(capacity int) {
	next := make([]T, capacity)
	for i := 0; i < q.size; i++ {
		next[i] = q.ring[(q.head+i)%len(q.ring)]
	}
	q.ring = next
	q.head = 0
	q.grows++
}
