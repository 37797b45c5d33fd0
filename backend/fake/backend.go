// Package fake provides a configurable fake backend for contract tests.
package fake

import (
	"io"
	"sync"

	"offload/backend"
	"offload/core/task"
)

type Backend struct {
	StartErr error
	// Finished makes handles come back already terminated.
	Finished bool
	// Results, when set, is handed back as the launch's result stream.
	Results io.ReadCloser

	mu      sync.Mutex
	started []task.Spec
}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Name() string { return "fake" }

func (b *Backend) Start(spec task.Spec) (*task.Launch, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if b.StartErr != nil {
		return nil, b.StartErr
	}

	b.mu.Lock()
	b.started = append(b.started, spec)
	b.mu.Unlock()

	h := task.NewHandle(spec.Name, 4242)
	if b.Finished {
		h.Finish()
	}
	return &task.Launch{Handle: h, Results: b.Results}, nil
}

// Started returns the specs this backend has launched.
func (b *Backend) Started() []task.Spec {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]task.Spec, len(b.started))
	copy(out, b.started)
	return out
}

var _ backend.Backend = (*Backend)(nil)
