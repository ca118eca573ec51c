package adnl

import (
	"crypto/rand"
	"fmt"
)

// ParamsSize is the size of serialized session parameters in bytes.
const ParamsSize = 160

// SessionParams is the shared secret of an established session: two AES-256
// keys, two initial CTR counters and random filler that is covered by the
// handshake hash.
//
// Layout: rx_key(32) | tx_key(32) | rx_nonce(16) | tx_nonce(16) | padding(64),
// always seen from the client's perspective. The server flips orientation
// when it instantiates its framer.
type SessionParams [ParamsSize]byte

// GenerateSessionParams draws fresh random session parameters.
func GenerateSessionParams() (*SessionParams, error) {
	var p SessionParams
	if _, err := rand.Read(p[:]); err != nil {
		return nil, fmt.Errorf("generate session params: %w", err)
	}
	return &p, nil
}

// SessionParamsFromBytes copies a 160-byte buffer into SessionParams.
func SessionParamsFromBytes(b []byte) (*SessionParams, error) {
	if len(b) != ParamsSize {
		return nil, fmt.Errorf("invalid session params length: got %d, want %d", len(b), ParamsSize)
	}
	var p SessionParams
	copy(p[:], b)
	return &p, nil
}

func (p *SessionParams) rxKey() []byte   { return p[0:32] }
func (p *SessionParams) txKey() []byte   { return p[32:64] }
func (p *SessionParams) rxNonce() []byte { return p[64:80] }
func (p *SessionParams) txNonce() []byte { return p[80:96] }

// Bytes returns the serialized form.
func (p *SessionParams) Bytes() []byte {
	return p[:]
}
