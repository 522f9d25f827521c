package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestToken returns the hex-encoded SHA-256 digest of a confirmation token.
//
// Only the digest is persisted, so a leaked accounts table does not expose
// usable confirmation links. The digest is deterministic, which keeps the
// unique index on the column and the lookup by token working.
//
// Example usage:
//
//	stored := utils.DigestToken(plain)
func DigestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
