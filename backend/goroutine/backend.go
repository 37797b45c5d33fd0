// Package goroutine implements the shared-memory execution mode: one new
// goroutine per launch, full access to process state, no isolation.
package goroutine

import (
	"context"
	"log/slog"
	"runtime/pprof"

	"offload/backend"
	"offload/core/metrics"
	"offload/core/task"
)

type Backend struct {
	Log *slog.Logger
}

func New(log *slog.Logger) *Backend {
	return &Backend{Log: log}
}

func (b *Backend) Name() string { return "goroutine" }

func (b *Backend) Start(spec task.Spec) (*task.Launch, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.Run == nil {
		return nil, task.ErrNoWork
	}

	h := task.NewHandle(spec.Name, 0)
	metrics.TasksActive.WithLabelValues(string(task.ModeGoroutine)).Inc()

	go func() {
		defer func() {
			// A panic dies with its task, as a thread-local fault would on
			// the underlying primitive. It is logged and counted, never
			// re-raised into the caller.
			if r := recover(); r != nil {
				b.log().Error("task panicked",
					"task", spec.Name,
					"id", h.ID(),
					"panic", r,
				)
				metrics.TaskFailuresTotal.WithLabelValues(string(task.ModeGoroutine)).Inc()
			}
			metrics.TasksActive.WithLabelValues(string(task.ModeGoroutine)).Dec()
			h.Finish()
		}()
		b.run(spec)
	}()

	return &task.Launch{Handle: h}, nil
}

// run executes the work body, forwarding attrs and name as pprof labels.
func (b *Backend) run(spec task.Spec) {
	if len(spec.Attrs) == 0 && spec.Name == "" {
		spec.Run()
		return
	}
	kv := make([]string, 0, 2*len(spec.Attrs)+2)
	if spec.Name != "" {
		kv = append(kv, "task", spec.Name)
	}
	for k, v := range spec.Attrs {
		kv = append(kv, k, v)
	}
	pprof.Do(context.Background(), pprof.Labels(kv...), func(context.Context) {
		spec.Run()
	})
}

func (b *Backend) log() *slog.Logger {
	if b.Log != nil {
		return b.Log
	}
	return slog.Default()
}

var _ backend.Backend = (*Backend)(nil)
