package adnl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// duplex builds a client-oriented sender/receiver pair against a
// server-oriented pair over the same params, mirroring the two ends of an
// established session.
func duplex(t *testing.T) (clientTx *Sender, clientRx *Receiver, serverTx *Sender, serverRx *Receiver) {
	t.Helper()
	p := fixedParams()
	var err error
	if clientTx, err = NewSender(p); err != nil {
		t.Fatal(err)
	}
	if clientRx, err = NewReceiver(p); err != nil {
		t.Fatal(err)
	}
	if serverTx, err = NewServerSender(p); err != nil {
		t.Fatal(err)
	}
	if serverRx, err = NewServerReceiver(p); err != nil {
		t.Fatal(err)
	}
	return
}

func TestFramerRoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		{},
		{0x42},
		bytes.Repeat([]byte{0xAB}, 3),
		bytes.Repeat([]byte{0xCD}, 1000),
		make([]byte, 65536),
	}

	clientTx, _, _, serverRx := duplex(t)

	for i, payload := range payloads {
		var wire bytes.Buffer
		if err := clientTx.Send(&wire, payload); err != nil {
			t.Fatalf("payload %d: Send: %v", i, err)
		}
		if wire.Len() != len(payload)+68 {
			t.Fatalf("payload %d: wire length = %d, want %d", i, wire.Len(), len(payload)+68)
		}

		got, err := serverRx.Receive(&wire)
		if err != nil {
			t.Fatalf("payload %d: Receive: %v", i, err)
		}
		if !bytes.Equal(got, payload) && !(len(got) == 0 && len(payload) == 0) {
			t.Fatalf("payload %d: round-trip mismatch", i)
		}
		if wire.Len() != 0 {
			t.Fatalf("payload %d: %d bytes left on the wire", i, wire.Len())
		}
	}
}

func TestFramerBothDirections(t *testing.T) {
	clientTx, clientRx, serverTx, serverRx := duplex(t)

	var toServer bytes.Buffer
	if err := clientTx.Send(&toServer, []byte("query")); err != nil {
		t.Fatal(err)
	}
	got, err := serverRx.Receive(&toServer)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "query" {
		t.Fatalf("server received %q", got)
	}

	var toClient bytes.Buffer
	if err := serverTx.Send(&toClient, []byte("answer")); err != nil {
		t.Fatal(err)
	}
	got, err = clientRx.Receive(&toClient)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "answer" {
		t.Fatalf("client received %q", got)
	}
}

func TestFramerSequentialStreams(t *testing.T) {
	// Several packets in a row must decode in order: the keystreams are
	// strictly sequential on both sides.
	clientTx, _, _, serverRx := duplex(t)

	var wire bytes.Buffer
	for i := 0; i < 10; i++ {
		if err := clientTx.Send(&wire, []byte{byte(i)}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 10; i++ {
		got, err := serverRx.Receive(&wire)
		if err != nil {
			t.Fatalf("packet %d: %v", i, err)
		}
		if len(got) != 1 || got[0] != byte(i) {
			t.Fatalf("packet %d: got %x", i, got)
		}
	}
}

func TestReceiveIntegrityError(t *testing.T) {
	clientTx, _, _, serverRx := duplex(t)

	var wire bytes.Buffer
	if err := clientTx.Send(&wire, []byte("payload")); err != nil {
		t.Fatal(err)
	}
	raw := wire.Bytes()
	raw[20] ^= 0x01 // flip one bit inside the nonce

	_, err := serverRx.Receive(bytes.NewReader(raw))
	if !errors.Is(err, ErrIntegrity) {
		t.Fatalf("err = %v, want ErrIntegrity", err)
	}
}

func TestReceiveTooShortPacket(t *testing.T) {
	p := fixedParams()
	receiver, err := NewReceiver(p)
	if err != nil {
		t.Fatal(err)
	}

	// Encrypt a declared length of 63 with the matching keystream, one
	// below the fixed nonce+hash overhead.
	stream, err := newCTR(p.rxKey(), p.rxNonce())
	if err != nil {
		t.Fatal(err)
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], 63)
	stream.XORKeyStream(lenBuf[:], lenBuf[:])

	_, err = receiver.Receive(bytes.NewReader(lenBuf[:]))
	if !errors.Is(err, ErrTooShortPacket) {
		t.Fatalf("err = %v, want ErrTooShortPacket", err)
	}
}

func TestReceiveTruncatedBody(t *testing.T) {
	clientTx, _, _, serverRx := duplex(t)

	var wire bytes.Buffer
	if err := clientTx.Send(&wire, []byte("payload")); err != nil {
		t.Fatal(err)
	}
	truncated := wire.Bytes()[:wire.Len()-5]

	if _, err := serverRx.Receive(bytes.NewReader(truncated)); err == nil {
		t.Fatal("expected error for truncated packet")
	}
}
