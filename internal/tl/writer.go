package tl

import "encoding/binary"

// Writer accumulates the canonical byte form of a TL value. The zero value is
// ready for use.
type Writer struct {
	buf []byte
}

// Bytes returns the accumulated output.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// WriteRaw appends b verbatim.
func (w *Writer) WriteRaw(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteUint32 appends a 32-bit little-endian integer.
func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteInt32 appends a 32-bit little-endian integer.
func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteUint64 appends a 64-bit little-endian integer.
func (w *Writer) WriteUint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// WriteInt64 appends a 64-bit little-endian integer.
func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

// Boxed Bool constructor ids.
const (
	idBoolTrue  uint32 = 0x997275b5
	idBoolFalse uint32 = 0xbc799737
)

// WriteBool appends a boxed Bool.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint32(idBoolTrue)
	} else {
		w.WriteUint32(idBoolFalse)
	}
}

// WriteConstructor appends a 4-byte constructor id.
func (w *Writer) WriteConstructor(id uint32) {
	w.WriteUint32(id)
}

// WriteBytes appends a TL byte string: a 1-byte length for strings shorter
// than 254 bytes, otherwise 0xFE followed by a 3-byte little-endian length;
// then the payload and zero padding so the total (prefix included) is a
// multiple of 4.
func (w *Writer) WriteBytes(b []byte) {
	n := len(b)
	var written int
	if n < 254 {
		w.buf = append(w.buf, byte(n))
		written = 1 + n
	} else {
		w.buf = append(w.buf, 0xFE, byte(n), byte(n>>8), byte(n>>16))
		written = 4 + n
	}
	w.buf = append(w.buf, b...)
	for written%4 != 0 {
		w.buf = append(w.buf, 0)
		written++
	}
}

// WriteString appends a TL string, which shares the byte-string layout.
func (w *Writer) WriteString(s string) {
	w.WriteBytes([]byte(s))
}

// WriteNested serializes m independently and appends the result as a TL byte
// string. This is the "struct as bytes" layout used by query envelopes.
func (w *Writer) WriteNested(m Marshaler) {
	w.WriteBytes(Serialize(m))
}

// WriteVectorLen appends the 32-bit element count that precedes vector
// elements.
func (w *Writer) WriteVectorLen(n int) {
	w.WriteUint32(uint32(n))
}
