package task

import (
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewID generates a new ULID string for use as a handle identifier.
func NewID() string {
	return ulid.Make().String()
}

// Handle identifies a running execution context. It stays valid after the
// context terminates; Alive transitions from true to false exactly once,
// when the work completes.
type Handle struct {
	id   string
	name string
	pid  int

	done chan struct{}
	once sync.Once
}

// NewHandle creates a handle for a freshly started execution context.
// pid is 0 for in-process launches.
func NewHandle(name string, pid int) *Handle {
	return &Handle{
		id:   NewID(),
		name: name,
		pid:  pid,
		done: make(chan struct{}),
	}
}

func (h *Handle) ID() string   { return h.id }
func (h *Handle) Name() string { return h.name }

// Pid returns the worker process id, or 0 for goroutine launches.
func (h *Handle) Pid() int { return h.pid }

// Alive reports whether the execution context is still running.
func (h *Handle) Alive() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Join blocks until the execution context terminates.
func (h *Handle) Join() {
	<-h.done
}

// JoinTimeout waits up to d for termination and reports whether the
// context finished in time.
func (h *Handle) JoinTimeout(d time.Duration) bool {
	select {
	case <-h.done:
		return true
	case <-time.After(d):
		return false
	}
}

// Done returns a channel closed when the execution context terminates.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Finish marks the execution context terminated. Backends call it once
// the underlying goroutine returns or the worker process exits; it is
// idempotent.
func (h *Handle) Finish() {
	h.once.Do(func() { close(h.done) })
}

// Launch is what a backend returns from Start: the handle, plus the raw
// result stream for isolated-process launches that produce results.
type Launch struct {
	Handle  *Handle
	Results io.ReadCloser
}
