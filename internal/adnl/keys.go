package adnl

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/curve25519"
)

// KeySize is the size of public keys, private key seeds, addresses and ECDH
// secrets in bytes.
const KeySize = 32

// addressTypeID is the key-type tag hashed into an address. Always the
// ed25519 tag; no other key types exist on this wire.
var addressTypeID = [4]byte{0xc6, 0xb4, 0x13, 0x48}

// PublicKey is an Ed25519-encoded public key.
type PublicKey [KeySize]byte

// PublicKeyFromBytes copies b into a PublicKey.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var k PublicKey
	if len(b) != KeySize {
		return k, fmt.Errorf("invalid public key length: got %d, want %d", len(b), KeySize)
	}
	copy(k[:], b)
	return k, nil
}

// ParsePublicKey parses a public key from base64 or hex. A 64-character hex
// string is also valid base64, so the base64 reading only wins when it yields
// exactly 32 bytes.
func ParsePublicKey(s string) (PublicKey, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) == KeySize {
		return PublicKeyFromBytes(b)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return PublicKey{}, fmt.Errorf("public key is neither base64 nor hex: %q", s)
	}
	return PublicKeyFromBytes(b)
}

// Bytes returns the key as a byte slice.
func (k PublicKey) Bytes() []byte {
	return k[:]
}

// String returns the hex representation.
func (k PublicKey) String() string {
	return hex.EncodeToString(k[:])
}

// Address returns the ADNL address derived from the key:
// SHA-256(type_id || key).
func (k PublicKey) Address() Address {
	h := sha256.New()
	h.Write(addressTypeID[:])
	h.Write(k[:])
	var a Address
	h.Sum(a[:0])
	return a
}

// x25519 converts the Edwards-form key to its Montgomery u-coordinate for
// use in ECDH.
func (k PublicKey) x25519() ([]byte, error) {
	p, err := new(edwards25519.Point).SetBytes(k[:])
	if err != nil {
		return nil, fmt.Errorf("public key is not a valid curve point: %w", err)
	}
	return p.BytesMontgomery(), nil
}

// Address is the 32-byte identifier a peer listens under, derived from its
// public key.
type Address [KeySize]byte

// Bytes returns the address as a byte slice.
func (a Address) Bytes() []byte {
	return a[:]
}

// String returns the hex representation.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Secret is the output of the X25519 key exchange. It lives only for the
// duration of a handshake.
type Secret [KeySize]byte

// PrivateKey is an Ed25519 private key together with its X25519 scalar form,
// used both as a server's static identity and as a client's ephemeral key.
type PrivateKey struct {
	public PublicKey
	scalar [KeySize]byte
	seed   [KeySize]byte
}

// GeneratePrivateKey creates a new random private key.
func GeneratePrivateKey() (*PrivateKey, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("generate private key: %w", err)
	}
	return PrivateKeyFromSeed(seed)
}

// PrivateKeyFromSeed derives a private key from a 32-byte Ed25519 seed.
func PrivateKeyFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid private key seed length: got %d, want %d", len(seed), ed25519.SeedSize)
	}
	k := &PrivateKey{}
	copy(k.seed[:], seed)
	pub := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	copy(k.public[:], pub)

	// The X25519 scalar is the clamped head of SHA-512(seed), matching the
	// Ed25519 signing scalar.
	h := sha512.Sum512(seed)
	copy(k.scalar[:], h[:32])
	k.scalar[0] &= 248
	k.scalar[31] &= 127
	k.scalar[31] |= 64
	return k, nil
}

// Public returns the Ed25519 public key.
func (k *PrivateKey) Public() PublicKey {
	return k.public
}

// Seed returns the Ed25519 seed the key was derived from.
func (k *PrivateKey) Seed() []byte {
	out := make([]byte, KeySize)
	copy(out, k.seed[:])
	return out
}

// SharedSecret computes the X25519 shared secret with the remote Ed25519
// public key, converting it to Montgomery form first.
func (k *PrivateKey) SharedSecret(remote PublicKey) (Secret, error) {
	var s Secret
	mont, err := remote.x25519()
	if err != nil {
		return s, err
	}
	raw, err := curve25519.X25519(k.scalar[:], mont)
	if err != nil {
		return s, fmt.Errorf("x25519: %w", err)
	}
	copy(s[:], raw)
	return s, nil
}
