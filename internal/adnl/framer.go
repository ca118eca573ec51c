package adnl

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"io"
)

// Packet layout, before the sender's CTR stream is applied:
//
//	length  [4 bytes]  - little-endian, counts nonce + payload + hash
//	nonce   [32 bytes] - fresh random bytes per packet
//	payload [N bytes]
//	hash    [32 bytes] - SHA-256(nonce || payload)
//
// The whole concatenation, length included, is XORed through the sending
// direction's keystream. Both directions are strictly sequential: a single
// lost or corrupted byte desynchronizes the stream permanently.
const (
	packetOverhead   = 64
	maxPayloadSize   = 1<<32 - 1 - packetOverhead
	lenPrefixSize    = 4
	packetNonceSize  = 32
	packetDigestSize = 32
)

// Sender encrypts and frames outgoing packets. It owns the transmit keystream
// and must not be shared between tasks without external ordering.
type Sender struct {
	stream cipher.Stream
}

// NewSender builds the client-side transmit half from agreed session params.
func NewSender(p *SessionParams) (*Sender, error) {
	stream, err := newCTR(p.txKey(), p.txNonce())
	if err != nil {
		return nil, err
	}
	return &Sender{stream: stream}, nil
}

// NewServerSender builds the server-side transmit half: the server sends on
// the client's receive keys.
func NewServerSender(p *SessionParams) (*Sender, error) {
	stream, err := newCTR(p.rxKey(), p.rxNonce())
	if err != nil {
		return nil, err
	}
	return &Sender{stream: stream}, nil
}

// Send frames payload with a fresh random nonce and writes the encrypted
// packet to w. An empty payload is legal and serves as the post-handshake
// confirmation and as a keep-alive.
func (s *Sender) Send(w io.Writer, payload []byte) error {
	var nonce [packetNonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("generate packet nonce: %w", err)
	}
	return s.send(w, nonce, payload)
}

func (s *Sender) send(w io.Writer, nonce [packetNonceSize]byte, payload []byte) error {
	if len(payload) > maxPayloadSize {
		return ErrPacketTooLarge
	}

	packet := make([]byte, lenPrefixSize+packetNonceSize+len(payload)+packetDigestSize)
	binary.LittleEndian.PutUint32(packet[0:], uint32(len(payload)+packetOverhead))
	copy(packet[lenPrefixSize:], nonce[:])
	copy(packet[lenPrefixSize+packetNonceSize:], payload)

	h := sha256.New()
	h.Write(nonce[:])
	h.Write(payload)
	h.Sum(packet[:len(packet)-packetDigestSize])

	s.stream.XORKeyStream(packet, packet)
	if _, err := w.Write(packet); err != nil {
		return fmt.Errorf("write packet: %w", err)
	}
	return nil
}

// Receiver decrypts and verifies incoming packets. It owns the receive
// keystream.
type Receiver struct {
	stream cipher.Stream
}

// NewReceiver builds the client-side receive half from agreed session params.
func NewReceiver(p *SessionParams) (*Receiver, error) {
	stream, err := newCTR(p.rxKey(), p.rxNonce())
	if err != nil {
		return nil, err
	}
	return &Receiver{stream: stream}, nil
}

// NewServerReceiver builds the server-side receive half: the server receives
// on the client's transmit keys.
func NewServerReceiver(p *SessionParams) (*Receiver, error) {
	stream, err := newCTR(p.txKey(), p.txNonce())
	if err != nil {
		return nil, err
	}
	return &Receiver{stream: stream}, nil
}

// Receive reads one packet from rd, decrypts it and verifies its integrity,
// returning the payload. A zero-length payload is a valid result. Any error
// is fatal for the connection.
func (r *Receiver) Receive(rd io.Reader) ([]byte, error) {
	var lenBuf [lenPrefixSize]byte
	if _, err := io.ReadFull(rd, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("read packet length: %w", err)
	}
	r.stream.XORKeyStream(lenBuf[:], lenBuf[:])
	length := binary.LittleEndian.Uint32(lenBuf[:])
	if length < packetOverhead {
		return nil, fmt.Errorf("%w: declared length %d", ErrTooShortPacket, length)
	}

	packet := make([]byte, length)
	if _, err := io.ReadFull(rd, packet); err != nil {
		return nil, fmt.Errorf("read packet body: %w", err)
	}
	r.stream.XORKeyStream(packet, packet)

	nonce := packet[:packetNonceSize]
	payload := packet[packetNonceSize : length-packetDigestSize]
	digest := packet[length-packetDigestSize:]

	h := sha256.New()
	h.Write(nonce)
	h.Write(payload)
	if subtle.ConstantTimeCompare(h.Sum(nil), digest) != 1 {
		return nil, ErrIntegrity
	}

	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}
