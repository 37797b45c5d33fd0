package wire

import (
	"bytes"
	"io"
	"testing"
)

type sample struct {
	A int    `json:"a"`
	B string `json:"b"`
}

func TestStreamRoundTripInOrder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for i := 0; i < 3; i++ {
		if err := enc.Emit(sample{A: i, B: "v"}); err != nil {
			t.Fatalf("emit: %v", err)
		}
	}

	dec := NewDecoder(&buf)
	for i := 0; i < 3; i++ {
		var got sample
		if err := dec.Next(&got); err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if got.A != i || got.B != "v" {
			t.Fatalf("out of order or corrupt: %+v at %d", got, i)
		}
	}

	var extra sample
	if err := dec.Next(&extra); err != io.EOF {
		t.Fatalf("expected EOF at end of stream, got %v", err)
	}
}
