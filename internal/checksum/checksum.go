package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Key returns a shortened digest of s, suitable for cache filenames.
// 16 hex chars keep names readable while leaving collisions implausible
// for the handful of icons a project references.
func Key(s string) string {
	return Sum([]byte(s))[:16]
}
