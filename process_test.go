package offload

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"offload/core/task"
)

type addArgs struct {
	A int `json:"a"`
	B int `json:"b"`
}

// TestMain doubles as the worker entrypoint: spawned children re-execute
// this test binary, register the same workers, and are claimed by Main.
func TestMain(m *testing.M) {
	RegisterWorker[addArgs, int]("add", func(out *task.Sink[int], a addArgs) {
		out.Put(a.A + a.B)
	})
	RegisterWorker[int, int]("seq", func(out *task.Sink[int], n int) {
		for i := 0; i < n; i++ {
			out.Put(i)
		}
	})
	RegisterWorker[[]int, []int]("extend", func(out *task.Sink[[]int], vs []int) {
		out.Put(append(vs, 99))
	})
	RegisterTask[string]("touch", func(path string) {
		os.WriteFile(path, []byte("done"), 0644)
	})
	Main()
	os.Exit(m.Run())
}

func TestSpawnQueuedAdd(t *testing.T) {
	h, q, err := SpawnQueued[int]("add", addArgs{A: 2, B: 3}, nil)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if !h.JoinTimeout(10 * time.Second) {
		t.Fatal("worker process never exited")
	}
	if h.Pid() == 0 {
		t.Fatal("process handle should carry the child pid")
	}
	if got := q.Get(); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
}

func TestSpawnBlockingAdd(t *testing.T) {
	got, err := SpawnBlocking[int]("add", addArgs{A: 4, B: 5}, nil)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if got != 9 {
		t.Fatalf("expected 9, got %d", got)
	}
}

func TestSpawnFireAndForget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marker")
	h, err := Spawn("touch", path, nil)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if !h.JoinTimeout(10 * time.Second) {
		t.Fatal("worker process never exited")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("worker side effect missing: %v", err)
	}
}

func TestSpawnResultsArriveInOrder(t *testing.T) {
	const n = 5
	h, q, err := SpawnQueued[int]("seq", n, nil)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	for i := 0; i < n; i++ {
		got, ok := q.GetTimeout(10 * time.Second)
		if !ok {
			t.Fatalf("timed out waiting for value %d", i)
		}
		if got != i {
			t.Fatalf("out of order: expected %d, got %d", i, got)
		}
	}
	if !h.JoinTimeout(10 * time.Second) {
		t.Fatal("worker process never exited")
	}
}

func TestSpawnIsolatesCallerMemory(t *testing.T) {
	local := []int{1, 2, 3}
	h, q, err := SpawnQueued[[]int]("extend", local, nil)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if !h.JoinTimeout(10 * time.Second) {
		t.Fatal("worker process never exited")
	}

	got, ok := q.GetTimeout(10 * time.Second)
	if !ok {
		t.Fatal("no result from worker")
	}
	if len(got) != 4 || got[3] != 99 {
		t.Fatalf("unexpected worker result: %v", got)
	}
	// The child extended its own copy; the caller's slice is untouched.
	if len(local) != 3 {
		t.Fatalf("caller memory mutated across the process boundary: %v", local)
	}
}

func TestSpawnUnregisteredWorker(t *testing.T) {
	if _, err := Spawn("no-such-worker", nil, nil); err == nil {
		t.Fatal("expected launch-time error for unregistered worker")
	}
}
