// Package keyvault is the reference adapter for the external key-material
// service: an opaque store/retrieve pair keyed by key identifier. Material
// is sealed at rest under a master key; the vault performs no protocol
// checks itself. Callers must already hold a consumed decryption
// capability (or a seal approval) before asking for material.
package keyvault

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/crypto/chacha20poly1305"
)

var (
	ErrKeyNotFound      = errors.New("key material not found")
	ErrInvalidMasterKey = errors.New("master key must be 32 bytes")
)

const keyPrefix = "key/"

// Vault stores sealed key material in badger
type Vault struct {
	db   *badger.DB
	aead cipher.AEAD
}

// New creates a vault sealing with XChaCha20-Poly1305 under masterKey
func New(db *badger.DB, masterKey []byte) (*Vault, error) {
	if len(masterKey) != chacha20poly1305.KeySize {
		return nil, ErrInvalidMasterKey
	}

	aead, err := chacha20poly1305.NewX(masterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}

	return &Vault{db: db, aead: aead}, nil
}

// Store seals the material and persists it under the key identifier.
// The key identifier is bound into the seal as associated data, so a
// sealed record cannot be replayed under a different identifier.
func (v *Vault) Store(keyID, material []byte) error {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := v.aead.Seal(nonce, nonce, material, keyID)

	err := v.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+hex.EncodeToString(keyID)), sealed)
	})
	if err != nil {
		return fmt.Errorf("failed to store key material: %w", err)
	}

	return nil
}

// Delete removes the sealed record stored under the key identifier.
// Deleting an absent identifier is a no-op.
func (v *Vault) Delete(keyID []byte) error {
	err := v.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + hex.EncodeToString(keyID)))
	})
	if err != nil {
		return fmt.Errorf("failed to delete key material: %w", err)
	}

	return nil
}

// Retrieve unseals and returns the material stored under the key
// identifier
func (v *Vault) Retrieve(keyID []byte) ([]byte, error) {
	var sealed []byte

	err := v.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + hex.EncodeToString(keyID)))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}
		sealed, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load key material: %w", err)
	}

	if len(sealed) < v.aead.NonceSize() {
		return nil, fmt.Errorf("sealed record too short for key %s", hex.EncodeToString(keyID))
	}

	nonce, ciphertext := sealed[:v.aead.NonceSize()], sealed[v.aead.NonceSize():]
	material, err := v.aead.Open(nil, nonce, ciphertext, keyID)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal key material: %w", err)
	}

	return material, nil
}
