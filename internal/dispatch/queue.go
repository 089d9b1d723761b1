package dispatch

import "sync"

// Queue is the unbounded FIFO channel between the render loop and the
// dispatcher. Enqueue never blocks; ordering of enqueue equals ordering of
// dequeue. One producer, one consumer.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Command
	closed bool
}

// NewQueue creates an empty open queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends a command. It never blocks; buffering is bounded only by
// memory. Enqueueing on a closed queue drops the command.
func (q *Queue) Enqueue(cmd Command) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, cmd)
	q.cond.Signal()
}

// Dequeue blocks until a command is available or the queue is closed. The
// second return is false once the queue is closed and drained.
func (q *Queue) Dequeue() (Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	cmd := q.items[0]
	q.items = q.items[1:]
	return cmd, true
}

// Close wakes the consumer; queued commands are still delivered before
// Dequeue reports closed.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

// Len reports how many commands are waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
