package process

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"offload/core/task"
	"offload/registry"
	"offload/wire"
)

// entry is a registered worker in one of its two calling conventions:
// fire-and-forget (no result stream) or result-bearing (explicit sink).
type entry struct {
	fire   func(payload []byte) error
	result func(payload []byte, emit task.EmitFunc) error
}

var workers = registry.New[entry]()

// RegisterTask registers a fire-and-forget worker. The argument must be
// JSON-marshalable; any return value of the work is discarded by design.
func RegisterTask[A any](name string, fn func(arg A)) {
	workers.Register(name, entry{
		fire: func(payload []byte) error {
			arg, err := decodeArg[A](payload)
			if err != nil {
				return err
			}
			fn(arg)
			return nil
		},
	})
}

// RegisterWorker registers a result-bearing worker. The sink is the
// worker's explicit result channel; everything it puts is delivered to the
// caller's queue in placement order.
func RegisterWorker[A, R any](name string, fn func(out *task.Sink[R], arg A)) {
	workers.Register(name, entry{
		result: func(payload []byte, emit task.EmitFunc) error {
			arg, err := decodeArg[A](payload)
			if err != nil {
				return err
			}
			fn(task.NewSink[R](emit), arg)
			return nil
		},
	})
}

func decodeArg[A any](payload []byte) (A, error) {
	var arg A
	if len(payload) == 0 {
		return arg, nil
	}
	if err := json.Unmarshal(payload, &arg); err != nil {
		return arg, fmt.Errorf("decode argument: %w", err)
	}
	return arg, nil
}

// Invoked reports whether this process was started as a worker child, and
// for which worker.
func Invoked() (string, bool) {
	name := os.Getenv(task.EnvWorker)
	return name, name != ""
}

// RunWorker executes the named worker in a child process and returns the
// process exit code. It reads the argument payload from stdin and, for
// result-bearing workers, streams results on fd 3.
func RunWorker(name string) int {
	ent, err := workers.Get(name)
	if err != nil {
		slog.Error("offload worker", "err", err)
		return 2
	}

	payload, err := io.ReadAll(os.Stdin)
	if err != nil {
		slog.Error("offload worker: read payload", "worker", name, "err", err)
		return 2
	}

	if os.Getenv(task.EnvResults) == "1" {
		if ent.result == nil {
			slog.Error("offload worker: registered fire-and-forget, launched with a result stream", "worker", name)
			return 2
		}
		out := os.NewFile(3, "results")
		if out == nil {
			slog.Error("offload worker: result stream missing", "worker", name)
			return 2
		}
		enc := wire.NewEncoder(out)
		runErr := ent.result(payload, enc.Emit)
		out.Close()
		if runErr != nil {
			slog.Error("offload worker failed", "worker", name, "err", runErr)
			return 1
		}
		return 0
	}

	if ent.fire == nil {
		slog.Error("offload worker: registered with results, launched fire-and-forget", "worker", name)
		return 2
	}
	if runErr := ent.fire(payload); runErr != nil {
		slog.Error("offload worker failed", "worker", name, "err", runErr)
		return 1
	}
	return 0
}
