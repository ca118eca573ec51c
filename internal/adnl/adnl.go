// Package adnl implements the TCP variant of the Abstract Datagram Network
// Layer: an X25519-keyed handshake followed by a duplex of AES-256-CTR
// encrypted, integrity-checked, length-prefixed packets.
package adnl

import "errors"

var (
	// ErrHandshake is returned when the handshake participants disagree on
	// the session parameters or the confirmation packet fails its check.
	ErrHandshake = errors.New("handshake failed")

	// ErrIntegrity is returned when the SHA-256 of a received packet's
	// nonce and payload does not match its trailer. The connection cannot
	// be resynchronized afterwards.
	ErrIntegrity = errors.New("packet integrity check failed")

	// ErrTooShortPacket is returned when a received packet declares a
	// length below the fixed nonce and hash overhead.
	ErrTooShortPacket = errors.New("packet too short")

	// ErrPacketTooLarge is returned when a payload cannot be represented in
	// the 32-bit length prefix.
	ErrPacketTooLarge = errors.New("packet payload exceeds maximum size")
)
