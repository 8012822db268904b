package access

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrCapabilityConsumed is returned when a capability is consumed twice
var ErrCapabilityConsumed = errors.New("decryption capability already consumed")

// DecryptionCapability is the transient artifact a successful access
// check produces: the (report, key identifier) pair to present to the
// external key-release service. It is never persisted or transferred,
// and it can be consumed exactly once.
type DecryptionCapability struct {
	reportID   uuid.UUID
	keyID      []byte
	verifiedAt int64

	mu       sync.Mutex
	consumed bool
}

func newCapability(reportID uuid.UUID, keyID []byte, verifiedAt int64) *DecryptionCapability {
	id := make([]byte, len(keyID))
	copy(id, keyID)
	return &DecryptionCapability{
		reportID:   reportID,
		keyID:      id,
		verifiedAt: verifiedAt,
	}
}

// VerifiedAt returns the instant the access check passed
func (c *DecryptionCapability) VerifiedAt() int64 {
	return c.verifiedAt
}

// Consume extracts the (report, key identifier) pair. A second call
// fails: the capability is single-use.
func (c *DecryptionCapability) Consume() (uuid.UUID, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.consumed {
		return uuid.Nil, nil, ErrCapabilityConsumed
	}
	c.consumed = true

	return c.reportID, c.keyID, nil
}
