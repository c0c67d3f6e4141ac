package storage

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// API key format: "dwelltime_ak_" + 64 hex chars = 77 total chars.
	apiKeyPrefix    = "dwelltime_ak_"
	randomBytesSize = 32
	apiKeyLength    = len(apiKeyPrefix) + randomBytesSize*2

	maskPrefixLen = 17 // shows "dwelltime_ak_1234"
	maskSuffixLen = 4
)

var (
	// ErrKeyAlreadyExists is returned when attempting to add a key that already exists.
	ErrKeyAlreadyExists = errors.New("API key already exists")
	// ErrKeyNotFound is returned when attempting to operate on a non-existent key.
	ErrKeyNotFound = errors.New("API key not found")
	// ErrKeyNil is returned when a nil API key is provided.
	ErrKeyNil = errors.New("API key cannot be nil")
	// ErrKeyStringEmpty is returned when key string is empty during parsing.
	ErrKeyStringEmpty = errors.New("key string cannot be empty")
	// ErrInvalidKeyFormat is returned when an API key doesn't match the expected format.
	ErrInvalidKeyFormat = errors.New("invalid API key format")
)

// Key represents an issued API key. The raw key value is never stored; only
// its bcrypt hash survives past generation.
type Key struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	KeyHash   string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	Active    bool      `json:"active"`
}

// KeyStore defines the interface for API key storage and lookup.
type KeyStore interface {
	// Authenticate resolves a raw key to its stored Key, verifying the hash.
	Authenticate(rawKey string) (*Key, bool)
	// Add stores a new API key.
	Add(key *Key) error
	// Delete removes an API key.
	Delete(keyID string) error
}

// GenerateAPIKey creates a new secure API key.
func GenerateAPIKey() (string, error) {
	randomBytes := make([]byte, randomBytesSize)

	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("generating random bytes: %w", err)
	}

	return apiKeyPrefix + hex.EncodeToString(randomBytes), nil
}

// ValidFormat reports whether rawKey has the issued-key shape. Used to
// short-circuit before the (expensive) bcrypt comparison.
func ValidFormat(rawKey string) bool {
	if len(rawKey) != apiKeyLength || !strings.HasPrefix(rawKey, apiKeyPrefix) {
		return false
	}

	_, err := hex.DecodeString(rawKey[len(apiKeyPrefix):])

	return err == nil
}

// ParseAPIKey extracts the API key from common header formats:
// "Bearer <key>", "ApiKey <key>", or the bare key.
func ParseAPIKey(headerValue string) (string, error) {
	value := strings.TrimSpace(headerValue)
	if value == "" {
		return "", ErrKeyStringEmpty
	}

	for _, scheme := range []string{"Bearer ", "ApiKey "} {
		if len(value) > len(scheme) && strings.EqualFold(value[:len(scheme)], scheme) {
			value = strings.TrimSpace(value[len(scheme):])

			break
		}
	}

	if !ValidFormat(value) {
		return "", ErrInvalidKeyFormat
	}

	return value, nil
}

// MaskKey masks an API key for logging, showing only a short prefix and suffix.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}

	keyLen := len(key)

	if keyLen == apiKeyLength {
		maskedLen := keyLen - maskPrefixLen - maskSuffixLen

		return key[:maskPrefixLen] + strings.Repeat("*", maskedLen) + key[keyLen-maskSuffixLen:]
	}

	// Non-standard lengths (tests, dev keys) mask completely.
	return strings.Repeat("*", keyLen)
}

// SecureCompare performs constant-time comparison of two strings.
func SecureCompare(a, b string) bool {
	if len(a) != len(b) {
		// Burn the same time on a dummy comparison.
		dummy := make([]byte, len(a))
		subtle.ConstantTimeCompare([]byte(a), dummy)

		return false
	}

	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
