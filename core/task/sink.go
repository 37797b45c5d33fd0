package task

// EmitFunc appends one value to a worker's result stream.
type EmitFunc func(v any) error

// Sink is the typed result channel handed to a process-mode worker. It is
// the worker-side counterpart of the Queue the launcher returns to the
// caller.
type Sink[R any] struct {
	emit EmitFunc
}

func NewSink[R any](emit EmitFunc) *Sink[R] {
	return &Sink[R]{emit: emit}
}

// Put sends one result to the caller.
func (s *Sink[R]) Put(v R) error {
	return s.emit(v)
}
