package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIKey(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)

	assert.Len(t, key, apiKeyLength)
	assert.True(t, strings.HasPrefix(key, "dwelltime_ak_"))
	assert.True(t, ValidFormat(key))

	// Two generations never collide.
	other, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestValidFormat(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)

	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"generated key", key, true},
		{"empty", "", false},
		{"wrong prefix", "correlator_ak_" + strings.Repeat("a", 64), false},
		{"too short", "dwelltime_ak_abc", false},
		{"non-hex payload", "dwelltime_ak_" + strings.Repeat("z", 64), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidFormat(tt.key))
		})
	}
}

func TestParseAPIKey(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"bare key", key, key, nil},
		{"bearer scheme", "Bearer " + key, key, nil},
		{"apikey scheme", "ApiKey " + key, key, nil},
		{"case-insensitive scheme", "bearer " + key, key, nil},
		{"padded", "  " + key + "  ", key, nil},
		{"empty", "", "", ErrKeyStringEmpty},
		{"garbage", "Bearer not-a-key", "", ErrInvalidKeyFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAPIKey(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaskKey(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)

	masked := MaskKey(key)
	assert.Len(t, masked, len(key))
	assert.Equal(t, key[:maskPrefixLen], masked[:maskPrefixLen])
	assert.Equal(t, key[len(key)-maskSuffixLen:], masked[len(masked)-maskSuffixLen:])
	assert.Contains(t, masked, strings.Repeat("*", 10))

	// Non-standard lengths mask entirely.
	assert.Equal(t, "******", MaskKey("devkey"))
	assert.Empty(t, MaskKey(""))
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, SecureCompare("same", "same"))
	assert.False(t, SecureCompare("same", "diff"))
	assert.False(t, SecureCompare("same", "longer-value"))
	assert.True(t, SecureCompare("", ""))
}

func TestHashAndVerifyKey(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)

	hash, err := HashKey(key)
	require.NoError(t, err)
	assert.NotEqual(t, key, hash)

	assert.True(t, VerifyKey(hash, key))
	assert.False(t, VerifyKey(hash, key[:len(key)-1]+"0"))
	assert.False(t, VerifyKey("", key))
	assert.False(t, VerifyKey(hash, ""))

	_, err = HashKey("")
	assert.ErrorIs(t, err, ErrKeyStringEmpty)
}

func TestInMemoryKeyStore(t *testing.T) {
	store := NewInMemoryKeyStore()

	rawKey, err := GenerateAPIKey()
	require.NoError(t, err)

	hash, err := HashKey(rawKey)
	require.NoError(t, err)

	key := &Key{ID: "k1", Name: "ops", KeyHash: hash, Active: true}
	require.NoError(t, store.Add(key))
	assert.Equal(t, 1, store.Len())

	t.Run("authenticates valid key", func(t *testing.T) {
		found, ok := store.Authenticate(rawKey)
		require.True(t, ok)
		assert.Equal(t, "k1", found.ID)
	})

	t.Run("rejects unknown key", func(t *testing.T) {
		other, err := GenerateAPIKey()
		require.NoError(t, err)

		_, ok := store.Authenticate(other)
		assert.False(t, ok)
	})

	t.Run("rejects malformed key without hashing", func(t *testing.T) {
		_, ok := store.Authenticate("not-a-key")
		assert.False(t, ok)
	})

	t.Run("rejects inactive key", func(t *testing.T) {
		inactiveRaw, err := GenerateAPIKey()
		require.NoError(t, err)

		inactiveHash, err := HashKey(inactiveRaw)
		require.NoError(t, err)

		require.NoError(t, store.Add(&Key{ID: "k2", KeyHash: inactiveHash, Active: false}))

		_, ok := store.Authenticate(inactiveRaw)
		assert.False(t, ok)
	})

	t.Run("duplicate add fails", func(t *testing.T) {
		err := store.Add(&Key{ID: "k1", KeyHash: hash, Active: true})
		assert.ErrorIs(t, err, ErrKeyAlreadyExists)
	})

	t.Run("nil add fails", func(t *testing.T) {
		assert.ErrorIs(t, store.Add(nil), ErrKeyNil)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete("k1"))
		assert.ErrorIs(t, store.Delete("k1"), ErrKeyNotFound)

		_, ok := store.Authenticate(rawKey)
		assert.False(t, ok)
	})
}

func TestSeedKeyStoreFromEnv(t *testing.T) {
	valid, err := GenerateAPIKey()
	require.NoError(t, err)

	t.Setenv("DWELLTIME_API_KEYS", valid+", not-a-key ,")

	store := NewInMemoryKeyStore()
	seeded := SeedKeyStoreFromEnv(store, testLogger())

	assert.Equal(t, 1, seeded)
	assert.Equal(t, 1, store.Len())

	_, ok := store.Authenticate(valid)
	assert.True(t, ok)
}
