package task

import (
	"sync"
	"time"

	"github.com/eapache/queue"
)

// Queue is the result channel between one worker and one caller: an
// unbounded FIFO where Put never blocks and Get blocks while empty.
// Values are observed in placement order.
type Queue[T any] struct {
	mu   sync.Mutex
	cond *sync.Cond
	buf  *queue.Queue
}

func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{buf: queue.New()}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Put appends a value. It never blocks.
func (q *Queue[T]) Put(v T) {
	q.mu.Lock()
	q.buf.Add(v)
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Get removes and returns the oldest value, blocking until one is
// available.
func (q *Queue[T]) Get() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.buf.Length() == 0 {
		q.cond.Wait()
	}
	return q.buf.Remove().(T)
}

// TryGet removes and returns the oldest value without blocking.
func (q *Queue[T]) TryGet() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.buf.Length() == 0 {
		var zero T
		return zero, false
	}
	return q.buf.Remove().(T), true
}

// GetTimeout waits up to d for a value.
func (q *Queue[T]) GetTimeout(d time.Duration) (T, bool) {
	deadline := time.Now().Add(d)
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.buf.Length() == 0 {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			var zero T
			return zero, false
		}
		wakeup := time.AfterFunc(remaining, q.cond.Broadcast)
		q.cond.Wait()
		wakeup.Stop()
	}
	return q.buf.Remove().(T), true
}

// Len returns the number of buffered values.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.Length()
}
