package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// UserIDPrefix starts every account id; five base36 characters follow.
const UserIDPrefix = "USR00"

const (
	base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	userIDSuffix   = 5
)

// GenerateUserID returns UserIDPrefix plus five random base36 characters.
func GenerateUserID() (string, error) {
	max := big.NewInt(0).Exp(big.NewInt(36), big.NewInt(userIDSuffix), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	suffix := make([]byte, userIDSuffix)
	for i := userIDSuffix - 1; i >= 0; i-- {
		rem := new(big.Int)
		n.DivMod(n, big.NewInt(36), rem)
		suffix[i] = base36Alphabet[rem.Int64()]
	}
	return UserIDPrefix + string(suffix), nil
}

// ValidUserID reports whether id has the shape GenerateUserID produces.
// Seeded ids such as USR00ADMIN also qualify.
func ValidUserID(id string) bool {
	if len(id) != len(UserIDPrefix)+userIDSuffix || !strings.HasPrefix(id, UserIDPrefix) {
		return false
	}
	for _, c := range id[len(UserIDPrefix):] {
		if !strings.ContainsRune(base36Alphabet, c) {
			return false
		}
	}
	return true
}
