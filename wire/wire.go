// Package wire carries result values from a worker process back to its
// launcher as a stream of JSON-encoded lines. Arguments and results that
// cross the process boundary must be JSON-marshalable.
package wire

import (
	"encoding/json"
	"fmt"
	"io"
)

// Encoder writes values to the worker side of the result stream.
type Encoder struct {
	enc *json.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: json.NewEncoder(w)}
}

// Emit appends one value to the stream.
func (e *Encoder) Emit(v any) error {
	if err := e.enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// Decoder reads values from the launcher side of the result stream.
type Decoder struct {
	dec *json.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(r)}
}

// Next decodes the next value into dst. It returns io.EOF once the worker
// has closed its end of the stream.
func (d *Decoder) Next(dst any) error {
	if err := d.dec.Decode(dst); err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}
