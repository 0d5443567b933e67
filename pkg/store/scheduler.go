package store

import "sync"

// Scheduler delivers re-renders to consumers.
//
// Schedule is called with a binding ID and the function that re-renders
// it. A scheduler may run fn immediately or later; fn is safe to run after
// the binding was torn down (it does nothing then).
type Scheduler interface {
	Schedule(id uint64, fn func())
}

// Immediate runs every re-render synchronously inside the Set call that
// caused it.
var Immediate Scheduler = immediate{}

type immediate struct{}

func (immediate) Schedule(_ uint64, fn func()) {
	fn()
}

// Queue defers re-renders until Flush, the way a UI event loop defers
// component updates to the end of the current turn. Scheduling the same
// binding twice before a flush runs it once.
type Queue struct {
	mu      sync.Mutex
	order   []uint64
	pending map[uint64]func()
	wake    chan struct{}
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{
		pending: make(map[uint64]func()),
		wake:    make(chan struct{}, 1),
	}
}

// Schedule queues fn for the next Flush.
func (q *Queue) Schedule(id uint64, fn func()) {
	q.mu.Lock()
	if _, ok := q.pending[id]; !ok {
		q.order = append(q.order, id)
	}
	q.pending[id] = fn
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued re-renders.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

// Wake returns a channel that receives after Schedule queues work.
// A host loop can select on it and call Flush.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

// Flush runs the re-renders queued so far, in scheduling order, and
// returns how many ran. Re-renders scheduled while flushing wait for the
// next Flush.
func (q *Queue) Flush() int {
	q.mu.Lock()
	order := q.order
	pending := q.pending
	q.order = nil
	q.pending = make(map[uint64]func())
	q.mu.Unlock()

	for _, id := range order {
		pending[id]()
	}
	return len(order)
}

// Drain flushes until nothing is pending or maxRounds flushes ran.
// It returns the total number of re-renders run.
func (q *Queue) Drain(maxRounds int) int {
	total := 0
	for i := 0; i < maxRounds; i++ {
		n := q.Flush()
		if n == 0 {
			break
		}
		total += n
	}
	return total
}
