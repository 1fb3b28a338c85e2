package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashContent computes the canonical content hash used by the registry:
// lowercase hex SHA-256 of the raw content bytes.
func HashContent(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}

// VerifyContent reports whether content matches the manifest-declared hash.
// The expected hash may carry a "sha256:" prefix. Comparison is
// case-insensitive. Pure function: no I/O, no side effects.
func VerifyContent(content, expectedHash string) bool {
	expected := strings.TrimPrefix(strings.TrimSpace(expectedHash), "sha256:")
	if expected == "" {
		return false
	}
	return strings.EqualFold(HashContent(content), expected)
}
