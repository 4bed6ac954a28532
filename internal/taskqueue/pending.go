package taskqueue

import (
	"sync"

	"github.com/cklxx/scoutqueue/internal/task"
)

// pendingQueue is the dispatcher's admission FIFO: Add pushes without
// blocking the caller (spec.md §4.3, "add is fire-and-forget"); the
// dispatcher goroutine blocks in pop until work arrives or the queue is
// closed.
type pendingQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []task.Task
	closed bool
}

func newPendingQueue() *pendingQueue {
	pq := &pendingQueue{}
	pq.cond = sync.NewCond(&pq.mu)
	return pq
}

func (q *pendingQueue) push(t task.Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, t)
	q.cond.Signal()
}

// pop blocks until an item is available or the queue is closed and
// drained, in which case ok is false.
func (q *pendingQueue) pop() (t task.Task, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	t = q.items[0]
	q.items = q.items[1:]
	return t, true
}

// clear discards every queued-but-not-yet-dispatched item, used by
// Abort so no further task starts after the cancellation signal fires
// (spec.md §4.3, "Abort").
func (q *pendingQueue) clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}

func (q *pendingQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// close stops the dispatcher loop once the queue drains; wakes any
// blocked pop.
func (q *pendingQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
