// Package process implements the isolated-process execution mode: each
// launch re-executes the current binary as a child process running a
// registered worker function. The child shares no memory with the caller;
// the result stream on fd 3 is the only communication path.
package process

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"

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

func (b *Backend) Name() string { return "process" }

func (b *Backend) Start(spec task.Spec) (*task.Launch, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.Worker == "" {
		return nil, task.ErrNoWork
	}
	// Parent and child run the same binary, so the registry lookup here
	// catches unknown workers before a process is created.
	if _, err := workers.Get(spec.Worker); err != nil {
		return nil, fmt.Errorf("worker %s", err)
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}

	cmd := exec.Command(exe)
	cmd.Stdin = bytes.NewReader(spec.Payload)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	env := append(baseEnv(), task.EnvWorker+"="+spec.Worker)
	if spec.Name != "" {
		env = append(env, task.EnvTaskName+"="+spec.Name)
	}
	for k, v := range spec.Attrs {
		env = append(env, k+"="+v)
	}

	var results *os.File
	if spec.Results {
		pr, pw, pipeErr := os.Pipe()
		if pipeErr != nil {
			return nil, fmt.Errorf("result pipe: %w", pipeErr)
		}
		cmd.ExtraFiles = []*os.File{pw} // fd 3 in the child
		env = append(env, task.EnvResults+"=1")
		results = pr
		defer pw.Close()
	}
	cmd.Env = env

	if spec.Daemon {
		// Daemon workers must not outlive the caller.
		setDeathSignal(cmd)
	}

	if err := cmd.Start(); err != nil {
		if results != nil {
			results.Close()
		}
		return nil, fmt.Errorf("start worker process: %w", err)
	}

	h := task.NewHandle(spec.Name, cmd.Process.Pid)
	metrics.TasksActive.WithLabelValues(string(task.ModeProcess)).Inc()

	go func() {
		waitErr := cmd.Wait()
		if waitErr != nil {
			// The failure stays in the child; it is logged, never
			// propagated to the caller.
			b.log().Error("worker process failed",
				"worker", spec.Worker,
				"pid", h.Pid(),
				"exit_code", exitCodeForError(waitErr),
				"err", waitErr,
			)
			metrics.TaskFailuresTotal.WithLabelValues(string(task.ModeProcess)).Inc()
		}
		metrics.TasksActive.WithLabelValues(string(task.ModeProcess)).Dec()
		h.Finish()
	}()

	launch := &task.Launch{Handle: h}
	if results != nil {
		launch.Results = results
	}
	return launch, nil
}

func (b *Backend) log() *slog.Logger {
	if b.Log != nil {
		return b.Log
	}
	return slog.Default()
}

// baseEnv is the caller's environment minus launcher-owned keys, so a
// worker that itself spawns workers cannot leak its own launch settings
// into grandchildren.
func baseEnv() []string {
	env := os.Environ()
	out := make([]string, 0, len(env))
	for _, kv := range env {
		if i := strings.IndexByte(kv, '='); i > 0 && task.Reserved(kv[:i]) {
			continue
		}
		out = append(out, kv)
	}
	return out
}

func exitCodeForError(err error) int {
	if exitErr, ok := err.(*exec.ExitError); ok {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			return exitCodeFromStatus(status)
		}
	}
	return 1
}

func exitCodeFromStatus(status syscall.WaitStatus) int {
	if status.Exited() {
		return status.ExitStatus()
	}
	if status.Signaled() {
		return 128 + int(status.Signal())
	}
	return 1
}

var _ backend.Backend = (*Backend)(nil)
