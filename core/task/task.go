// Package task defines the work item, handle, and result channel types
// shared by all execution backends.
package task

import (
	"errors"
	"fmt"
)

// Mode selects the isolation level of a launch.
type Mode string

const (
	// ModeGoroutine runs the work in a new goroutine sharing all process
	// memory with the caller.
	ModeGoroutine Mode = "goroutine"
	// ModeProcess runs the work in a new OS process; the result stream is
	// the only communication path.
	ModeProcess Mode = "process"
)

// Delivery selects how a result reaches the caller.
type Delivery string

const (
	DeliveryFire     Delivery = "fire"
	DeliveryQueued   Delivery = "queued"
	DeliveryBlocking Delivery = "blocking"
)

// Environment keys owned by the launcher. Supplying any of them through
// Options.Attrs is a usage error.
const (
	EnvWorker   = "OFFLOAD_WORKER"
	EnvPayload  = "OFFLOAD_PAYLOAD"
	EnvResults  = "OFFLOAD_RESULTS"
	EnvTaskName = "OFFLOAD_TASK_NAME"
)

var (
	// ErrReservedAttr reports an attribute key the launcher fills in itself.
	ErrReservedAttr = errors.New("reserved attribute key")
	// ErrNoWork reports a spec with nothing to run.
	ErrNoWork = errors.New("no work provided")
)

// Reserved reports whether key is owned by the launcher.
func Reserved(key string) bool {
	switch key {
	case EnvWorker, EnvPayload, EnvResults, EnvTaskName:
		return true
	}
	return false
}

// Options is the caller-supplied launch configuration. Attrs are forwarded
// verbatim to the execution primitive: environment variables for worker
// processes, pprof labels for goroutines.
type Options struct {
	// Name is a human-readable task name.
	Name string
	// Daemon tasks do not hold up Launcher.Wait; daemon worker processes
	// are additionally killed when the parent dies (Linux).
	Daemon bool
	Attrs  map[string]string
}

// Defaults returns the baseline configuration: unnamed, daemonized.
func Defaults() Options {
	return Options{Daemon: true}
}

// Validate ensures the options are usable.
func (o Options) Validate() error {
	for key := range o.Attrs {
		if Reserved(key) {
			return fmt.Errorf("%w: %s", ErrReservedAttr, key)
		}
	}
	return nil
}

// Spec describes a single launch request. It is captured at call time and
// immutable afterwards; exactly one execution context runs it, exactly once.
type Spec struct {
	Mode     Mode
	Delivery Delivery
	Name     string
	Daemon   bool
	Attrs    map[string]string

	// Run is the work body for goroutine-mode launches. The launcher binds
	// the result channel into the closure before start.
	Run func()

	// Worker and Payload describe process-mode work: the name of a
	// registered worker function and its JSON-encoded argument.
	Worker  string
	Payload []byte

	// Results asks the process backend to open a result stream back to the
	// launcher. Set by the launcher for queued and blocking deliveries.
	Results bool
}

// Validate rejects malformed specs before any execution context is created.
func (s Spec) Validate() error {
	switch s.Mode {
	case ModeGoroutine, ModeProcess:
	default:
		return fmt.Errorf("unknown execution mode %q", s.Mode)
	}
	for key := range s.Attrs {
		if Reserved(key) {
			return fmt.Errorf("%w: %s", ErrReservedAttr, key)
		}
	}
	return nil
}
