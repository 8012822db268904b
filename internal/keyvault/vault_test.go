package keyvault_test

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clownfish2023/web3fans/internal/keyvault"
)

func newTestVault(t *testing.T) *keyvault.Vault {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	kv, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	masterKey := make([]byte, 32)
	vault, err := keyvault.New(kv, masterKey)
	require.NoError(t, err)
	return vault
}

func TestNew_InvalidMasterKey(t *testing.T) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	kv, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	for _, size := range []int{0, 16, 31, 33} {
		_, err := keyvault.New(kv, make([]byte, size))
		assert.ErrorIs(t, err, keyvault.ErrInvalidMasterKey, "size %d", size)
	}
}

func TestStoreRetrieve(t *testing.T) {
	vault := newTestVault(t)

	keyID := []byte{0xAA, 0xBB, 0xCC}
	material := []byte("the content key")

	require.NoError(t, vault.Store(keyID, material))

	got, err := vault.Retrieve(keyID)
	require.NoError(t, err)
	assert.Equal(t, material, got)
}

func TestRetrieve_NotFound(t *testing.T) {
	vault := newTestVault(t)

	_, err := vault.Retrieve([]byte{0x01, 0x02})
	assert.ErrorIs(t, err, keyvault.ErrKeyNotFound)
}

func TestStore_Overwrite(t *testing.T) {
	vault := newTestVault(t)

	keyID := []byte{0x01}
	require.NoError(t, vault.Store(keyID, []byte("v1")))
	require.NoError(t, vault.Store(keyID, []byte("v2")))

	got, err := vault.Retrieve(keyID)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestDelete(t *testing.T) {
	vault := newTestVault(t)

	keyID := []byte{0x0F}
	require.NoError(t, vault.Store(keyID, []byte("ephemeral")))
	require.NoError(t, vault.Delete(keyID))

	_, err := vault.Retrieve(keyID)
	assert.ErrorIs(t, err, keyvault.ErrKeyNotFound)

	// Deleting again is a no-op
	assert.NoError(t, vault.Delete(keyID))
}

func TestStore_DistinctKeyIDs(t *testing.T) {
	vault := newTestVault(t)

	require.NoError(t, vault.Store([]byte{0x01}, []byte("one")))
	require.NoError(t, vault.Store([]byte{0x02}, []byte("two")))

	one, err := vault.Retrieve([]byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), one)

	two, err := vault.Retrieve([]byte{0x02})
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), two)
}
