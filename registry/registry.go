package registry

import (
	"fmt"
	"sync"
)

// Registry maps names to values of type T. It backs both the worker
// function registry used by isolated-process launches and the backend
// table inside a Launcher.
type Registry[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
}

func New[T any]() *Registry[T] {
	return &Registry[T]{entries: map[string]T{}}
}

// Register adds or replaces an entry under a given name.
func (r *Registry[T]) Register(name string, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = v
}

// Get returns an entry by name or an error if missing.
func (r *Registry[T]) Get(name string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.entries[name]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("%q not registered", name)
}

// Names returns the registered names.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for name := range r.entries {
		out = append(out, name)
	}
	return out
}
