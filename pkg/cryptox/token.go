package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SecretSize is the number of random bytes behind an opaque bearer secret
// (64 hex chars once encoded).
const SecretSize = 32

// GenerateSecret creates a cryptographically secure random secret of the
// given byte length, hex encoded.
func GenerateSecret(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("secret size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random secret: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// IssueOpaqueSecret returns a fresh SecretSize secret. This is the value that
// goes out in invitation links and is never persisted.
func IssueOpaqueSecret() (string, error) {
	return GenerateSecret(SecretSize)
}

// MustIssueOpaqueSecret is like IssueOpaqueSecret but panics on error.
// Use this only during initialization or in tests.
func MustIssueOpaqueSecret() string {
	secret, err := IssueOpaqueSecret()
	if err != nil {
		panic(fmt.Sprintf("cryptox: failed to issue secret: %v", err))
	}
	return secret
}

// Digest returns the deterministic SHA-256 digest of a secret as lowercase
// hex. The digest is what gets stored and looked up; the secret cannot be
// recovered from it.
func Digest(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
