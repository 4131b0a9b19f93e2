package common

import (
	"crypto/sha256"
	"encoding/hex"
)

// WipeByteArray zeroes b in place. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// HashToken returns the hex SHA-256 of an opaque token. Only this digest is
// persisted for refresh tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
