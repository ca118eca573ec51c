// Package tl implements the TL (Type Language) binary encoding used by the
// lite-server protocol: little-endian integers, raw 256-bit values, boxed
// values with a 4-byte constructor id, length-prefixed byte strings padded to
// 4-byte alignment, and vectors with a 32-bit count.
package tl

import (
	"errors"
)

var (
	// ErrUnknownConstructor is returned when a boxed value carries a
	// constructor id the decoder does not recognize.
	ErrUnknownConstructor = errors.New("unknown constructor")

	// ErrInvalidData is returned when a value declares more content than the
	// remaining input holds, or is otherwise malformed.
	ErrInvalidData = errors.New("invalid data")

	// ErrTrailingBytes is returned when input remains after a complete value
	// has been decoded.
	ErrTrailingBytes = errors.New("trailing bytes")
)

// Marshaler is implemented by types that can write themselves to a Writer.
// Writes are infallible for well-typed values.
type Marshaler interface {
	MarshalTL(w *Writer)
}

// Unmarshaler is implemented by types that can read themselves from a Reader.
type Unmarshaler interface {
	UnmarshalTL(r *Reader) error
}

// Serialize encodes a value to its canonical byte form.
func Serialize(m Marshaler) []byte {
	var w Writer
	m.MarshalTL(&w)
	return w.Bytes()
}

// Deserialize decodes a value from data and requires the whole input to be
// consumed.
func Deserialize(data []byte, u Unmarshaler) error {
	r := NewReader(data)
	if err := u.UnmarshalTL(r); err != nil {
		return err
	}
	return r.Finish()
}
