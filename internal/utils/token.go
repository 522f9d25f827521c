package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// ConfirmationTokenBytes is the entropy of a confirmation token. Hex encoding
// doubles it, so tokens are 64 characters long.
const ConfirmationTokenBytes = 32

// TokenGenerator produces random confirmation tokens.
type TokenGenerator struct{}

// NewTokenGenerator returns a generator backed by crypto/rand.
func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{}
}

// Generate returns a new 64-character hex token.
func (g *TokenGenerator) Generate() (string, error) {
	return GenerateToken(ConfirmationTokenBytes)
}

// GenerateToken returns n random bytes from crypto/rand encoded as hex.
func GenerateToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("error generating random token: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
