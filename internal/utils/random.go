package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomToken returns 64 hex characters of crypto randomness.
func RandomToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// RandomKey returns n random bytes, for keys generated at startup when none
// is configured.
func RandomKey(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}
