package registry

import (
	"sort"
	"testing"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	r := New[int]()
	r.Register("one", 1)

	got, err := r.Get("one")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != 1 {
		t.Fatalf("unexpected value: %d", got)
	}
	if _, err := r.Get("missing"); err == nil {
		t.Fatal("expected error for missing entry")
	}
}

func TestRegistryReplaceAndNames(t *testing.T) {
	r := New[string]()
	r.Register("a", "first")
	r.Register("a", "second")
	r.Register("b", "other")

	got, err := r.Get("a")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != "second" {
		t.Fatalf("expected replacement to win, got %q", got)
	}

	names := r.Names()
	sort.Strings(names)
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("unexpected names: %v", names)
	}
}
