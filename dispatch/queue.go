// Package dispatch provides the execution contexts consumers receive their
// notifications on. A Queue decouples the backend's notifying goroutine from
// consumer callbacks: enqueueing never blocks, and everything enqueued on one
// queue runs serially in enqueue order.
package dispatch

import "sync"

// Queue schedules a function for asynchronous execution. Implementations must
// not run fn on the calling goroutine and must preserve enqueue order for
// functions dispatched to the same queue.
type Queue interface {
	Dispatch(fn func())
}

// SerialQueue runs dispatched functions one at a time on a dedicated
// goroutine, in FIFO order. The pending list is unbounded so Dispatch never
// blocks the caller, which keeps backend notification paths wait-free even
// when a consumer callback is slow.
type SerialQueue struct {
	mu      sync.Mutex
	pending []func()
	closed  bool

	wake chan struct{}
	done chan struct{}
}

// NewSerialQueue creates a queue and starts its worker goroutine.
func NewSerialQueue() *SerialQueue {
	q := &SerialQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

// Dispatch enqueues fn for execution. Functions dispatched after Close are
// silently dropped; detach-style teardown makes that window unavoidable and
// droppable by contract.
func (q *SerialQueue) Dispatch(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Close stops the queue after draining functions already enqueued, then
// blocks until the worker goroutine has exited. Idempotent.
func (q *SerialQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	<-q.done
}

func (q *SerialQueue) run() {
	defer close(q.done)

	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			if q.closed {
				q.mu.Unlock()
				return
			}
			q.mu.Unlock()
			<-q.wake
			continue
		}
		batch := q.pending
		q.pending = nil
		q.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
	}
}

// QueueLength returns the number of functions waiting to run.
func (q *SerialQueue) QueueLength() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
