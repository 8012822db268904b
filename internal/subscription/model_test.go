package subscription_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/clownfish2023/web3fans/internal/subscription"
)

func TestSubscription_IsValid_ExpiryBoundary(t *testing.T) {
	groupID := uuid.New()
	sub := &subscription.Subscription{
		ID:           uuid.New(),
		GroupID:      groupID,
		Subscriber:   "u1",
		SubscribedAt: 0,
		ExpiresAt:    86_400_000,
	}

	// Expiry is a strict one-way boundary: valid at expires_at, invalid
	// one millisecond later.
	assert.True(t, sub.IsValid(groupID, 0))
	assert.True(t, sub.IsValid(groupID, 86_400_000))
	assert.False(t, sub.IsValid(groupID, 86_400_001))
}

func TestSubscription_IsValid_GroupMismatch(t *testing.T) {
	sub := &subscription.Subscription{
		ID:        uuid.New(),
		GroupID:   uuid.New(),
		ExpiresAt: 1000,
	}

	assert.False(t, sub.IsValid(uuid.New(), 0))
}

func TestAccessKey_IsValid_ExpiryBoundary(t *testing.T) {
	key := &subscription.AccessKey{
		ID:        uuid.New(),
		ExpiresAt: 500,
	}

	assert.True(t, key.IsValid(0))
	assert.True(t, key.IsValid(500))
	assert.False(t, key.IsValid(501))
}
