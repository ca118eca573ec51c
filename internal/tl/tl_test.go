package tl

import (
	"bytes"
	"errors"
	"testing"
)

func TestWriteBytesLayout(t *testing.T) {
	tests := []struct {
		name    string
		payload int
		total   int
	}{
		{"empty", 0, 4},
		{"one byte", 1, 4},
		{"three bytes", 3, 4},
		{"four bytes", 4, 8},
		{"short max", 253, 256},
		{"long min", 254, 260},
		{"long", 300, 304},
		{"long unaligned", 301, 308},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			payload := make([]byte, tc.payload)
			for i := range payload {
				payload[i] = byte(i + 1)
			}

			var w Writer
			w.WriteBytes(payload)
			out := w.Bytes()

			if len(out) != tc.total {
				t.Fatalf("encoded length = %d, want %d", len(out), tc.total)
			}
			if len(out)%4 != 0 {
				t.Fatalf("encoded length %d is not 4-byte aligned", len(out))
			}

			if tc.payload < 254 {
				if out[0] != byte(tc.payload) {
					t.Errorf("short prefix = %d, want %d", out[0], tc.payload)
				}
			} else {
				if out[0] != 0xFE {
					t.Errorf("long prefix marker = 0x%02x, want 0xFE", out[0])
				}
				got := int(out[1]) | int(out[2])<<8 | int(out[3])<<16
				if got != tc.payload {
					t.Errorf("long prefix length = %d, want %d", got, tc.payload)
				}
			}

			r := NewReader(out)
			decoded, err := r.ReadBytes()
			if err != nil {
				t.Fatalf("ReadBytes: %v", err)
			}
			if !bytes.Equal(decoded, payload) {
				t.Errorf("round-trip mismatch")
			}
			if err := r.Finish(); err != nil {
				t.Errorf("Finish: %v", err)
			}
		})
	}
}

func TestReadBytesRejectsNonzeroPadding(t *testing.T) {
	var w Writer
	w.WriteBytes([]byte{0xAA})
	out := w.Bytes()
	out[3] = 0x01 // corrupt a padding byte

	_, err := NewReader(out).ReadBytes()
	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("err = %v, want ErrInvalidData", err)
	}
}

func TestIntegerRoundTrip(t *testing.T) {
	var w Writer
	w.WriteUint32(0xdeadbeef)
	w.WriteInt32(-7)
	w.WriteUint64(0x1122334455667788)
	w.WriteInt64(-1)

	out := w.Bytes()
	// Little-endian layout of the first value.
	if !bytes.Equal(out[:4], []byte{0xef, 0xbe, 0xad, 0xde}) {
		t.Fatalf("uint32 layout = %x", out[:4])
	}

	r := NewReader(out)
	if v, _ := r.ReadUint32(); v != 0xdeadbeef {
		t.Errorf("ReadUint32 = %x", v)
	}
	if v, _ := r.ReadInt32(); v != -7 {
		t.Errorf("ReadInt32 = %d", v)
	}
	if v, _ := r.ReadUint64(); v != 0x1122334455667788 {
		t.Errorf("ReadUint64 = %x", v)
	}
	if v, _ := r.ReadInt64(); v != -1 {
		t.Errorf("ReadInt64 = %d", v)
	}
	if err := r.Finish(); err != nil {
		t.Errorf("Finish: %v", err)
	}
}

func TestBoolRoundTrip(t *testing.T) {
	var w Writer
	w.WriteBool(true)
	w.WriteBool(false)
	out := w.Bytes()

	if !bytes.Equal(out[:4], []byte{0xb5, 0x75, 0x72, 0x99}) {
		t.Errorf("boolTrue layout = %x", out[:4])
	}
	if !bytes.Equal(out[4:], []byte{0x37, 0x97, 0x79, 0xbc}) {
		t.Errorf("boolFalse layout = %x", out[4:])
	}

	r := NewReader(out)
	if v, err := r.ReadBool(); err != nil || !v {
		t.Errorf("first ReadBool = %v, %v", v, err)
	}
	if v, err := r.ReadBool(); err != nil || v {
		t.Errorf("second ReadBool = %v, %v", v, err)
	}

	if _, err := NewReader([]byte{1, 2, 3, 4}).ReadBool(); !errors.Is(err, ErrUnknownConstructor) {
		t.Errorf("garbage bool err = %v, want ErrUnknownConstructor", err)
	}
}

func TestExpectConstructor(t *testing.T) {
	var w Writer
	w.WriteConstructor(0x16ad5a34)

	if err := NewReader(w.Bytes()).ExpectConstructor(0x16ad5a34); err != nil {
		t.Errorf("matching constructor: %v", err)
	}
	if err := NewReader(w.Bytes()).ExpectConstructor(0x232b940b); !errors.Is(err, ErrUnknownConstructor) {
		t.Errorf("mismatched constructor err = %v, want ErrUnknownConstructor", err)
	}
}

func TestReadVectorLenBound(t *testing.T) {
	var w Writer
	w.WriteUint32(1 << 30) // count far beyond the buffer

	_, err := NewReader(w.Bytes()).ReadVectorLen()
	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("err = %v, want ErrInvalidData", err)
	}
}

func TestTruncatedInput(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	if _, err := r.ReadUint32(); !errors.Is(err, ErrInvalidData) {
		t.Errorf("truncated uint32 err = %v, want ErrInvalidData", err)
	}
}

type pair struct {
	A uint32
	B uint64
}

func (p pair) MarshalTL(w *Writer) {
	w.WriteUint32(p.A)
	w.WriteUint64(p.B)
}

func (p *pair) UnmarshalTL(r *Reader) error {
	var err error
	if p.A, err = r.ReadUint32(); err != nil {
		return err
	}
	p.B, err = r.ReadUint64()
	return err
}

func TestSerializeDeserialize(t *testing.T) {
	in := pair{A: 42, B: 1 << 40}
	data := Serialize(in)

	var out pair
	if err := Deserialize(data, &out); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if out != in {
		t.Errorf("round-trip mismatch: %+v != %+v", out, in)
	}

	if err := Deserialize(append(data, 0), &out); !errors.Is(err, ErrTrailingBytes) {
		t.Errorf("trailing input err = %v, want ErrTrailingBytes", err)
	}
}

func TestNestedRoundTrip(t *testing.T) {
	in := pair{A: 7, B: 9}
	var w Writer
	w.WriteNested(in)

	r := NewReader(w.Bytes())
	var out pair
	if err := r.ReadNested(&out); err != nil {
		t.Fatalf("ReadNested: %v", err)
	}
	if out != in {
		t.Errorf("round-trip mismatch: %+v != %+v", out, in)
	}
	if err := r.Finish(); err != nil {
		t.Errorf("Finish: %v", err)
	}
}

func TestReadOptionalRewindsOnFailure(t *testing.T) {
	// Buffer holds only a pair; attempting a larger read must rewind.
	data := Serialize(pair{A: 1, B: 2})
	r := NewReader(data)

	probe := optionalProbe{}
	if r.ReadOptional(&probe) {
		t.Fatalf("probe unexpectedly succeeded")
	}
	if r.Offset() != 0 {
		t.Fatalf("offset after failed optional = %d, want 0", r.Offset())
	}

	var out pair
	if err := out.UnmarshalTL(r); err != nil {
		t.Fatalf("value after rewind: %v", err)
	}
	if err := r.Finish(); err != nil {
		t.Errorf("Finish: %v", err)
	}
}

// optionalProbe consumes part of the input and then fails, exercising the
// rewind path.
type optionalProbe struct{}

func (optionalProbe) MarshalTL(*Writer) {}

func (*optionalProbe) UnmarshalTL(r *Reader) error {
	if _, err := r.ReadUint64(); err != nil {
		return err
	}
	if _, err := r.ReadRaw(32); err != nil {
		return err
	}
	return nil
}
