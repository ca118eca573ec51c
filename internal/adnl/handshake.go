package adnl

import (
	"crypto/cipher"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
)

// HandshakeSize is the size of the handshake packet in bytes.
const HandshakeSize = 256

// Handshake packet layout:
//
//	receiver address  [32 bytes]
//	sender public key [32 bytes]
//	params hash       [32 bytes] - SHA-256 of the plaintext session params
//	encrypted params  [160 bytes]
//
// The params are encrypted with AES-256-CTR under a key and counter derived
// from the ECDH secret and the params hash.

// handshakeCipher derives the CTR stream that protects the session params:
// key = secret[0:16] || hash[16:32], counter = hash[0:4] || secret[20:32].
func handshakeCipher(secret Secret, hash []byte) (cipher.Stream, error) {
	var key [32]byte
	copy(key[:16], secret[:16])
	copy(key[16:], hash[16:32])
	var iv [16]byte
	copy(iv[:4], hash[:4])
	copy(iv[4:], secret[20:32])
	return newCTR(key[:], iv[:])
}

// BuildHandshake composes the 256-byte handshake packet a client sends first
// on a fresh connection. The caller supplies the precomputed ECDH secret so
// the construction itself is deterministic.
func BuildHandshake(receiver Address, sender PublicKey, secret Secret, params *SessionParams) ([HandshakeSize]byte, error) {
	var packet [HandshakeSize]byte

	raw := make([]byte, ParamsSize)
	copy(raw, params.Bytes())
	hash := sha256.Sum256(raw)

	stream, err := handshakeCipher(secret, hash[:])
	if err != nil {
		return packet, err
	}
	stream.XORKeyStream(raw, raw)

	copy(packet[0:32], receiver.Bytes())
	copy(packet[32:64], sender.Bytes())
	copy(packet[64:96], hash[:])
	copy(packet[96:256], raw)
	return packet, nil
}

// ParseHandshake recovers the session params from a handshake packet using
// the receiver's static private key. It verifies that the packet is addressed
// to this key and that the decrypted params match the transmitted hash; any
// mismatch is fatal for the connection.
func ParseHandshake(packet []byte, key *PrivateKey) (*SessionParams, PublicKey, error) {
	if len(packet) != HandshakeSize {
		return nil, PublicKey{}, fmt.Errorf("%w: handshake packet is %d bytes, want %d", ErrHandshake, len(packet), HandshakeSize)
	}

	localAddr := key.Public().Address()
	if subtle.ConstantTimeCompare(packet[0:32], localAddr.Bytes()) != 1 {
		return nil, PublicKey{}, fmt.Errorf("%w: packet addressed to a different key", ErrHandshake)
	}

	sender, err := PublicKeyFromBytes(packet[32:64])
	if err != nil {
		return nil, PublicKey{}, fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	secret, err := key.SharedSecret(sender)
	if err != nil {
		return nil, PublicKey{}, fmt.Errorf("%w: %v", ErrHandshake, err)
	}

	hash := packet[64:96]
	stream, err := handshakeCipher(secret, hash)
	if err != nil {
		return nil, PublicKey{}, err
	}
	raw := make([]byte, ParamsSize)
	stream.XORKeyStream(raw, packet[96:256])

	check := sha256.Sum256(raw)
	if subtle.ConstantTimeCompare(check[:], hash) != 1 {
		return nil, PublicKey{}, fmt.Errorf("%w: session params hash mismatch", ErrHandshake)
	}

	params, err := SessionParamsFromBytes(raw)
	if err != nil {
		return nil, PublicKey{}, err
	}
	return params, sender, nil
}
