package adnl

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
)

func mustSeed(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad seed hex: %v", err)
	}
	return b
}

func fixedParams() *SessionParams {
	var p SessionParams
	for i := range p {
		p[i] = byte(i * 7)
	}
	return &p
}

func TestAddressDerivation(t *testing.T) {
	key, err := PrivateKeyFromSeed(mustSeed(t, "4a6c4aa5a9d312e3ae3a990f0bb34a6cc4a5a9d312e3ae3a990f0bb34a6cc4a5"))
	if err != nil {
		t.Fatal(err)
	}
	pub := key.Public()

	h := sha256.New()
	h.Write([]byte{0xc6, 0xb4, 0x13, 0x48})
	h.Write(pub.Bytes())
	want := h.Sum(nil)

	if !bytes.Equal(pub.Address().Bytes(), want) {
		t.Errorf("address = %x, want %x", pub.Address().Bytes(), want)
	}
}

func TestSharedSecretSymmetry(t *testing.T) {
	client, err := GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	server, err := GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}

	s1, err := client.SharedSecret(server.Public())
	if err != nil {
		t.Fatal(err)
	}
	s2, err := server.SharedSecret(client.Public())
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 {
		t.Fatalf("shared secrets differ: %x != %x", s1, s2)
	}
	if s1 == (Secret{}) {
		t.Fatal("shared secret is zero")
	}
}

func TestBuildHandshakeLayout(t *testing.T) {
	server, err := GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	client, err := GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	secret, err := client.SharedSecret(server.Public())
	if err != nil {
		t.Fatal(err)
	}
	params := fixedParams()

	packet, err := BuildHandshake(server.Public().Address(), client.Public(), secret, params)
	if err != nil {
		t.Fatal(err)
	}

	// The first 96 bytes are address, sender key and the params hash, all
	// in the clear.
	if !bytes.Equal(packet[0:32], server.Public().Address().Bytes()) {
		t.Errorf("receiver address mismatch")
	}
	if !bytes.Equal(packet[32:64], client.Public().Bytes()) {
		t.Errorf("sender public key mismatch")
	}
	wantHash := sha256.Sum256(params.Bytes())
	if !bytes.Equal(packet[64:96], wantHash[:]) {
		t.Errorf("params hash mismatch")
	}

	// The encrypted tail must not leak the plaintext params, and
	// decrypting with the derived cipher must recover them exactly.
	if bytes.Equal(packet[96:256], params.Bytes()) {
		t.Errorf("params transmitted in the clear")
	}
	stream, err := handshakeCipher(secret, wantHash[:])
	if err != nil {
		t.Fatal(err)
	}
	decrypted := make([]byte, ParamsSize)
	stream.XORKeyStream(decrypted, packet[96:256])
	if !bytes.Equal(decrypted, params.Bytes()) {
		t.Errorf("decrypted params mismatch")
	}
}

func TestParseHandshakeRoundTrip(t *testing.T) {
	server, err := GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	client, err := GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	secret, err := client.SharedSecret(server.Public())
	if err != nil {
		t.Fatal(err)
	}
	params := fixedParams()

	packet, err := BuildHandshake(server.Public().Address(), client.Public(), secret, params)
	if err != nil {
		t.Fatal(err)
	}

	recovered, sender, err := ParseHandshake(packet[:], server)
	if err != nil {
		t.Fatalf("ParseHandshake: %v", err)
	}
	if sender != client.Public() {
		t.Errorf("sender key mismatch")
	}
	if !bytes.Equal(recovered.Bytes(), params.Bytes()) {
		t.Errorf("recovered params mismatch")
	}
}

func TestParseHandshakeRejectsTampering(t *testing.T) {
	server, err := GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	client, err := GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	secret, err := client.SharedSecret(server.Public())
	if err != nil {
		t.Fatal(err)
	}
	params := fixedParams()

	packet, err := BuildHandshake(server.Public().Address(), client.Public(), secret, params)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		bit  int
	}{
		{"flipped hash bit", 64 * 8},
		{"flipped params bit", 96 * 8},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tampered := packet
			tampered[tc.bit/8] ^= 1 << (tc.bit % 8)
			if _, _, err := ParseHandshake(tampered[:], server); !errors.Is(err, ErrHandshake) {
				t.Errorf("err = %v, want ErrHandshake", err)
			}
		})
	}

	t.Run("wrong receiver", func(t *testing.T) {
		other, err := GeneratePrivateKey()
		if err != nil {
			t.Fatal(err)
		}
		if _, _, err := ParseHandshake(packet[:], other); !errors.Is(err, ErrHandshake) {
			t.Errorf("err = %v, want ErrHandshake", err)
		}
	})

	t.Run("wrong size", func(t *testing.T) {
		if _, _, err := ParseHandshake(packet[:255], server); !errors.Is(err, ErrHandshake) {
			t.Errorf("err = %v, want ErrHandshake", err)
		}
	})
}
