// Package blobstore is the reference adapter for the external encrypted
// payload store: a content-addressed key-value store. The service only ever
// records the opaque pointer a Put returns; payload bytes are already
// encrypted by the publisher before they arrive here.
package blobstore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

var ErrBlobNotFound = errors.New("blob not found")

const keyPrefix = "blob/"

// Store persists encrypted payloads addressed by their sha-256 digest
type Store struct {
	db *badger.DB
}

// New creates a blob store on top of a shared badger instance
func New(db *badger.DB) *Store {
	return &Store{db: db}
}

// Put stores the payload and returns its content address (hex sha-256).
// Storing the same payload twice is a no-op with the same pointer.
func (s *Store) Put(payload []byte) (string, error) {
	sum := sha256.Sum256(payload)
	pointer := hex.EncodeToString(sum[:])

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+pointer), payload)
	})
	if err != nil {
		return "", fmt.Errorf("failed to store blob: %w", err)
	}

	return pointer, nil
}

// Get returns the payload stored under the given pointer
func (s *Store) Get(pointer string) ([]byte, error) {
	var payload []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + pointer))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrBlobNotFound
			}
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load blob: %w", err)
	}

	return payload, nil
}
