package storage

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost balances verification latency against brute-force resistance.
// The default cost keeps auth under ~100ms on current hardware.
const bcryptCost = bcrypt.DefaultCost

// HashKey produces a bcrypt hash of a raw API key for at-rest storage.
func HashKey(rawKey string) (string, error) {
	if rawKey == "" {
		return "", ErrKeyStringEmpty
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing API key: %w", err)
	}

	return string(hash), nil
}

// VerifyKey reports whether rawKey matches the stored bcrypt hash.
func VerifyKey(hash, rawKey string) bool {
	if hash == "" || rawKey == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawKey)) == nil
}
