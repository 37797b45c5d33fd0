// Package offload launches units of work on new execution contexts instead
// of running them synchronously. Two execution modes — a goroutine sharing
// the caller's memory, or an isolated child process — combine with three
// delivery modes: fire-and-forget, queued-result, and blocking.
//
// Shared-memory launches take ordinary closures. Isolated-process launches
// run registered worker functions in a re-execution of the current binary,
// so main must call Main first:
//
//	func main() {
//		offload.RegisterWorker[Args, int]("add", add)
//		offload.Main()
//		// ...
//		sum, err := offload.SpawnBlocking[int]("add", Args{A: 4, B: 5}, nil)
//	}
//
// Every launch creates exactly one new execution context, unconditionally:
// there is no pooling, no retry, no cancellation. A worker failure dies
// with its own context and is logged, never propagated to the caller.
package offload

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"offload/backend"
	"offload/backend/goroutine"
	"offload/backend/process"
	"offload/core/metrics"
	"offload/core/task"
	"offload/registry"
	"offload/wire"
)

// Launcher routes launch requests to execution backends. The zero policy —
// one fresh context per call — lives in the backends; substituting a
// pooled or rate-limited backend here changes policy without touching
// call sites.
type Launcher struct {
	Log *slog.Logger

	backends *registry.Registry[backend.Backend]
	wg       sync.WaitGroup
}

func NewLauncher() *Launcher {
	l := &Launcher{backends: registry.New[backend.Backend]()}
	l.backends.Register(string(task.ModeGoroutine), goroutine.New(nil))
	l.backends.Register(string(task.ModeProcess), process.New(nil))
	return l
}

// Default backs the package-level launch functions.
var Default = NewLauncher()

// RegisterBackend replaces the backend serving a mode.
func (l *Launcher) RegisterBackend(mode task.Mode, b backend.Backend) {
	l.backends.Register(string(mode), b)
}

// Launch starts one execution context for the spec. Usage errors surface
// here, before any context is created.
func (l *Launcher) Launch(spec task.Spec) (*task.Launch, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	b, err := l.backends.Get(string(spec.Mode))
	if err != nil {
		return nil, fmt.Errorf("backend %s", err)
	}
	lo, err := b.Start(spec)
	if err != nil {
		return nil, err
	}
	metrics.LaunchesTotal.WithLabelValues(string(spec.Mode), string(spec.Delivery)).Inc()
	if !spec.Daemon {
		l.wg.Add(1)
		go func() {
			lo.Handle.Join()
			l.wg.Done()
		}()
	}
	return lo, nil
}

// Wait blocks until every non-daemon task launched so far has finished.
// Call it before main returns, the way the underlying runtime would join
// non-daemon threads at exit.
func (l *Launcher) Wait() {
	l.wg.Wait()
}

func (l *Launcher) log() *slog.Logger {
	if l.Log != nil {
		return l.Log
	}
	return slog.Default()
}

// Defaults returns the baseline launch options: unnamed, daemonized.
func Defaults() task.Options {
	return task.Defaults()
}

// Go launches fn on a new goroutine, fire-and-forget: the call returns a
// handle immediately and any result of the work is discarded.
func Go(fn func(), opts *task.Options) (*task.Handle, error) {
	return GoOn(Default, fn, opts)
}

func GoOn(l *Launcher, fn func(), opts *task.Options) (*task.Handle, error) {
	o := options(opts)
	lo, err := l.Launch(task.Spec{
		Mode:     task.ModeGoroutine,
		Delivery: task.DeliveryFire,
		Name:     o.Name,
		Daemon:   o.Daemon,
		Attrs:    o.Attrs,
		Run:      fn,
	})
	if err != nil {
		return nil, err
	}
	return lo.Handle, nil
}

// GoQueued launches fn on a new goroutine with a fresh result queue as its
// explicit first parameter. The caller polls the handle and reads the
// queue; reading an empty queue blocks.
func GoQueued[T any](fn func(q *task.Queue[T]), opts *task.Options) (*task.Handle, *task.Queue[T], error) {
	return GoQueuedOn(Default, fn, opts)
}

func GoQueuedOn[T any](l *Launcher, fn func(q *task.Queue[T]), opts *task.Options) (*task.Handle, *task.Queue[T], error) {
	o := options(opts)
	q := task.NewQueue[T]()
	lo, err := l.Launch(task.Spec{
		Mode:     task.ModeGoroutine,
		Delivery: task.DeliveryQueued,
		Name:     o.Name,
		Daemon:   o.Daemon,
		Attrs:    o.Attrs,
		Run:      func() { fn(q) },
	})
	if err != nil {
		return nil, nil, err
	}
	return lo.Handle, q, nil
}

// GoBlocking launches fn on a new goroutine and blocks the caller until
// the worker puts its first value, which becomes the call's result. If the
// worker never puts a value the caller blocks indefinitely.
func GoBlocking[T any](fn func(q *task.Queue[T]), opts *task.Options) (T, error) {
	return GoBlockingOn(Default, fn, opts)
}

func GoBlockingOn[T any](l *Launcher, fn func(q *task.Queue[T]), opts *task.Options) (T, error) {
	o := options(opts)
	q := task.NewQueue[T]()
	_, err := l.Launch(task.Spec{
		Mode:     task.ModeGoroutine,
		Delivery: task.DeliveryBlocking,
		Name:     o.Name,
		Daemon:   o.Daemon,
		Attrs:    o.Attrs,
		Run:      func() { fn(q) },
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return q.Get(), nil
}

// Spawn launches a registered worker in a new OS process, fire-and-forget.
// The argument must be JSON-marshalable.
func Spawn(worker string, arg any, opts *task.Options) (*task.Handle, error) {
	return SpawnOn(Default, worker, arg, opts)
}

func SpawnOn(l *Launcher, worker string, arg any, opts *task.Options) (*task.Handle, error) {
	o := options(opts)
	payload, err := encodeArg(arg)
	if err != nil {
		return nil, err
	}
	lo, err := l.Launch(task.Spec{
		Mode:     task.ModeProcess,
		Delivery: task.DeliveryFire,
		Name:     o.Name,
		Daemon:   o.Daemon,
		Attrs:    o.Attrs,
		Worker:   worker,
		Payload:  payload,
	})
	if err != nil {
		return nil, err
	}
	return lo.Handle, nil
}

// SpawnQueued launches a registered result-bearing worker in a new OS
// process and returns its handle plus the queue its results arrive on.
func SpawnQueued[T any](worker string, arg any, opts *task.Options) (*task.Handle, *task.Queue[T], error) {
	return SpawnQueuedOn[T](Default, worker, arg, opts)
}

func SpawnQueuedOn[T any](l *Launcher, worker string, arg any, opts *task.Options) (*task.Handle, *task.Queue[T], error) {
	o := options(opts)
	payload, err := encodeArg(arg)
	if err != nil {
		return nil, nil, err
	}
	lo, err := l.Launch(task.Spec{
		Mode:     task.ModeProcess,
		Delivery: task.DeliveryQueued,
		Name:     o.Name,
		Daemon:   o.Daemon,
		Attrs:    o.Attrs,
		Worker:   worker,
		Payload:  payload,
		Results:  true,
	})
	if err != nil {
		return nil, nil, err
	}
	q := task.NewQueue[T]()
	if lo.Results != nil {
		go drain(l, q, lo.Results, worker)
	}
	return lo.Handle, q, nil
}

// SpawnBlocking launches a registered worker in a new OS process and
// blocks until its first result arrives, returning it directly.
func SpawnBlocking[T any](worker string, arg any, opts *task.Options) (T, error) {
	return SpawnBlockingOn[T](Default, worker, arg, opts)
}

func SpawnBlockingOn[T any](l *Launcher, worker string, arg any, opts *task.Options) (T, error) {
	o := options(opts)
	payload, err := encodeArg(arg)
	if err != nil {
		var zero T
		return zero, err
	}
	lo, err := l.Launch(task.Spec{
		Mode:     task.ModeProcess,
		Delivery: task.DeliveryBlocking,
		Name:     o.Name,
		Daemon:   o.Daemon,
		Attrs:    o.Attrs,
		Worker:   worker,
		Payload:  payload,
		Results:  true,
	})
	if err != nil {
		var zero T
		return zero, err
	}
	q := task.NewQueue[T]()
	if lo.Results != nil {
		go drain(l, q, lo.Results, worker)
	}
	return q.Get(), nil
}

// drain copies the child's result stream into the caller-side queue,
// preserving placement order.
func drain[T any](l *Launcher, q *task.Queue[T], r io.ReadCloser, worker string) {
	defer r.Close()
	dec := wire.NewDecoder(r)
	for {
		var v T
		if err := dec.Next(&v); err != nil {
			if err != io.EOF {
				l.log().Error("result stream", "worker", worker, "err", err)
			}
			return
		}
		q.Put(v)
	}
}

// RegisterTask registers a fire-and-forget process-mode worker under name.
func RegisterTask[A any](name string, fn func(arg A)) {
	process.RegisterTask(name, fn)
}

// RegisterWorker registers a result-bearing process-mode worker under
// name. The sink is the worker's explicit result channel.
func RegisterWorker[A, R any](name string, fn func(out *task.Sink[R], arg A)) {
	process.RegisterWorker(name, fn)
}

// Main hands control to a worker function when the process was started as
// an isolated-process child. It must run before any other work in main,
// after all workers are registered. In the parent it is a no-op.
func Main() {
	if name, ok := process.Invoked(); ok {
		os.Exit(process.RunWorker(name))
	}
}

func options(opts *task.Options) task.Options {
	if opts == nil {
		return task.Defaults()
	}
	return *opts
}

func encodeArg(arg any) ([]byte, error) {
	if arg == nil {
		return nil, nil
	}
	payload, err := json.Marshal(arg)
	if err != nil {
		return nil, fmt.Errorf("encode argument: %w", err)
	}
	return payload, nil
}
