package adnl

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// newCTR builds an AES-256-CTR keystream. The 16-byte IV is the initial
// counter value; Go's CTR mode increments it as a 128-bit big-endian integer
// per block, which is exactly the counter layout of this wire.
func newCTR(key, iv []byte) (cipher.Stream, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init aes: %w", err)
	}
	return cipher.NewCTR(block, iv), nil
}
