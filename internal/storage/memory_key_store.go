package storage

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcferry08/dwelltime/internal/config"
)

// InMemoryKeyStore is a thread-safe KeyStore backed by a map. Suitable for
// single-instance deployments; keys are seeded from the environment at boot.
type InMemoryKeyStore struct {
	mu   sync.RWMutex
	keys map[string]*Key
}

// NewInMemoryKeyStore creates an empty key store.
func NewInMemoryKeyStore() *InMemoryKeyStore {
	return &InMemoryKeyStore{keys: make(map[string]*Key)}
}

// SeedKeyStoreFromEnv loads raw API keys from the DWELLTIME_API_KEYS
// environment variable (comma-separated) and stores their hashes. Malformed
// entries are skipped with a warning so one bad key cannot block startup.
func SeedKeyStoreFromEnv(store *InMemoryKeyStore, logger *slog.Logger) int {
	seeded := 0

	for _, rawKey := range config.ParseCommaSeparatedList(config.GetEnvStr("DWELLTIME_API_KEYS", "")) {
		if !ValidFormat(rawKey) {
			logger.Warn("skipping malformed API key from environment", "key", MaskKey(rawKey))

			continue
		}

		hash, err := HashKey(rawKey)
		if err != nil {
			logger.Warn("skipping unhashable API key from environment", "key", MaskKey(rawKey), "error", err)

			continue
		}

		key := &Key{
			ID:        uuid.NewString(),
			Name:      "env-seeded",
			KeyHash:   hash,
			CreatedAt: time.Now().UTC(),
			Active:    true,
		}

		if err := store.Add(key); err != nil {
			logger.Warn("skipping duplicate API key from environment", "key", MaskKey(rawKey))

			continue
		}

		seeded++
	}

	return seeded
}

// Authenticate resolves a raw key against every stored hash. The store holds
// a handful of operator keys, so the linear bcrypt scan is acceptable.
func (s *InMemoryKeyStore) Authenticate(rawKey string) (*Key, bool) {
	if !ValidFormat(rawKey) {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, key := range s.keys {
		if key.Active && VerifyKey(key.KeyHash, rawKey) {
			copied := *key

			return &copied, true
		}
	}

	return nil, false
}

// Add stores a new API key.
func (s *InMemoryKeyStore) Add(key *Key) error {
	if key == nil {
		return ErrKeyNil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.keys[key.ID]; exists {
		return fmt.Errorf("key %q: %w", key.ID, ErrKeyAlreadyExists)
	}

	copied := *key
	s.keys[key.ID] = &copied

	return nil
}

// Delete removes an API key.
func (s *InMemoryKeyStore) Delete(keyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.keys[keyID]; !exists {
		return fmt.Errorf("key %q: %w", keyID, ErrKeyNotFound)
	}

	delete(s.keys, keyID)

	return nil
}

// Len reports the number of stored keys.
func (s *InMemoryKeyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.keys)
}
