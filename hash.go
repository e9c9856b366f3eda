package sitetrans

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
)

// HashText computes the SHA-256 hash of the trimmed text.
func HashText(text string) string {
	trimmed := strings.TrimSpace(text)
	hash := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(hash[:])
}

// HashContent computes the SHA-256 hash of raw page bytes. Unlike HashText
// it does not trim, so whitespace-only edits still mark a page stale.
func HashContent(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashFile reads path and returns its content hash.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from the file selector
	if err != nil {
		return "", &IOError{Op: "read", Path: path, Err: err}
	}
	return HashContent(data), nil
}

// CacheKey generates a cache key from a text hash and target language.
func CacheKey(hash, targetLang string) string {
	return hash + ":" + targetLang
}
