package adnl

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
)

// Peer is an established ADNL connection over a byte stream. Sends are
// serialized internally; receives must be driven by a single reader task.
type Peer struct {
	conn     net.Conn
	sender   *Sender
	receiver *Receiver

	sendMu    sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// Dial connects to addr over TCP and performs the client side of the
// handshake against the server's public key, using a fresh ephemeral key and
// fresh session params.
func Dial(ctx context.Context, addr string, serverKey PublicKey) (*Peer, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	peer, err := Client(conn, serverKey)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return peer, nil
}

// Client performs the client side of the handshake on an existing transport:
// it sends the 256-byte handshake packet and waits for the server's empty
// confirmation packet, which proves both sides derived the same keystreams.
func Client(conn net.Conn, serverKey PublicKey) (*Peer, error) {
	local, err := GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	params, err := GenerateSessionParams()
	if err != nil {
		return nil, err
	}
	return clientWith(conn, serverKey, local, params)
}

func clientWith(conn net.Conn, serverKey PublicKey, local *PrivateKey, params *SessionParams) (*Peer, error) {
	secret, err := local.SharedSecret(serverKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	packet, err := BuildHandshake(serverKey.Address(), local.Public(), secret, params)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write(packet[:]); err != nil {
		return nil, fmt.Errorf("send handshake: %w", err)
	}

	sender, err := NewSender(params)
	if err != nil {
		return nil, err
	}
	receiver, err := NewReceiver(params)
	if err != nil {
		return nil, err
	}
	peer := &Peer{conn: conn, sender: sender, receiver: receiver}

	// The first server packet must be an empty confirmation; its integrity
	// check failing means the peers disagree on the session params.
	confirm, err := peer.Receive()
	if err != nil {
		return nil, fmt.Errorf("%w: confirmation not received: %v", ErrHandshake, err)
	}
	if len(confirm) != 0 {
		return nil, fmt.Errorf("%w: unexpected %d-byte payload in confirmation", ErrHandshake, len(confirm))
	}
	return peer, nil
}

// Server performs the server side of the handshake on an accepted transport:
// it reads and verifies the handshake packet against the static private key,
// instantiates the framers with flipped orientation and sends the empty
// confirmation packet.
func Server(conn net.Conn, key *PrivateKey) (*Peer, error) {
	packet := make([]byte, HandshakeSize)
	if _, err := io.ReadFull(conn, packet); err != nil {
		return nil, fmt.Errorf("read handshake: %w", err)
	}
	params, _, err := ParseHandshake(packet, key)
	if err != nil {
		return nil, err
	}

	sender, err := NewServerSender(params)
	if err != nil {
		return nil, err
	}
	receiver, err := NewServerReceiver(params)
	if err != nil {
		return nil, err
	}
	peer := &Peer{conn: conn, sender: sender, receiver: receiver}

	if err := peer.Send(nil); err != nil {
		return nil, fmt.Errorf("send confirmation: %w", err)
	}
	return peer, nil
}

// Send frames and transmits one payload. Safe for concurrent use.
func (p *Peer) Send(payload []byte) error {
	p.sendMu.Lock()
	defer p.sendMu.Unlock()
	return p.sender.Send(p.conn, payload)
}

// Receive blocks until the next packet arrives and returns its payload.
// Must be called from a single reader task.
func (p *Peer) Receive() ([]byte, error) {
	return p.receiver.Receive(p.conn)
}

// RemoteAddr returns the transport's remote address.
func (p *Peer) RemoteAddr() net.Addr {
	return p.conn.RemoteAddr()
}

// Close tears down the transport. The keystreams cannot be reused afterwards.
func (p *Peer) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.conn.Close()
	})
	return p.closeErr
}
