// Command offload-demo walks through all six launch variants: two
// execution modes by three delivery modes.
package main

import (
	"fmt"
	"os"

	"offload"
	"offload/core/task"
)

type addArgs struct {
	A int `json:"a"`
	B int `json:"b"`
}

func main() {
	offload.RegisterWorker[addArgs, int]("add", func(out *task.Sink[int], a addArgs) {
		out.Put(a.A + a.B)
	})
	offload.RegisterTask[string]("announce", func(msg string) {
		fmt.Println("worker process says:", msg)
	})
	offload.Main()

	// Goroutine, fire-and-forget.
	h1, err := offload.Go(func() { fmt.Println("goroutine says: hello") }, nil)
	check(err)
	h1.Join()

	// Goroutine, queued-result.
	h2, q2, err := offload.GoQueued(func(q *task.Queue[int]) { q.Put(2 + 3) }, nil)
	check(err)
	h2.Join()
	fmt.Println("goroutine queued:", q2.Get())

	// Goroutine, blocking.
	v, err := offload.GoBlocking(func(q *task.Queue[int]) { q.Put(6 * 7) }, nil)
	check(err)
	fmt.Println("goroutine blocking:", v)

	// Process, fire-and-forget.
	h3, err := offload.Spawn("announce", "hello", nil)
	check(err)
	h3.Join()

	// Process, queued-result.
	h4, q4, err := offload.SpawnQueued[int]("add", addArgs{A: 2, B: 3}, nil)
	check(err)
	h4.Join()
	fmt.Printf("process queued (pid %d): %d\n", h4.Pid(), q4.Get())

	// Process, blocking.
	sum, err := offload.SpawnBlocking[int]("add", addArgs{A: 4, B: 5}, nil)
	check(err)
	fmt.Println("process blocking:", sum)

	offload.Default.Wait()
}

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "offload-demo:", err)
		os.Exit(1)
	}
}
