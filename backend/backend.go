// Package backend defines the contract execution adapters implement. It is
// intentionally minimal so a Launcher can swap isolation substrates without
// touching call sites.
package backend

import "offload/core/task"

type Backend interface {
	Name() string
	// Start creates exactly one new execution context for the spec and
	// returns immediately. The work runs to completion unsupervised; the
	// backend finishes the handle when the context terminates and never
	// retries.
	Start(spec task.Spec) (*task.Launch, error)
}
