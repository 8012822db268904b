package subscription

import "github.com/google/uuid"

// Subscription is a time-bounded paid-access record binding a subscriber
// to a group for a fixed validity window. ExpiresAt is fixed at mint time
// (subscribed_at + group period); renewal mints a new record, it never
// mutates an old one.
type Subscription struct {
	ID               uuid.UUID `json:"id"`
	GroupID          uuid.UUID `json:"group_id"`
	Subscriber       string    `json:"subscriber"`
	ExternalIdentity string    `json:"external_identity"`
	SubscribedAt     int64     `json:"subscribed_at"`
	ExpiresAt        int64     `json:"expires_at"`
}

// IsValid reports whether the subscription is usable for the given group
// at the supplied instant. Expiry is never stored; it is always derived
// here, and no other component reimplements this check. The boundary is
// inclusive: a subscription is still valid at exactly ExpiresAt.
func (s *Subscription) IsValid(groupID uuid.UUID, now int64) bool {
	return s.GroupID == groupID && now <= s.ExpiresAt
}

// AccessKey is a bearer credential wrapping a subscription: it carries
// the group's derived namespace and an expiry mirrored from the source
// subscription. Validity is expiry-only; there is deliberately no
// revocation path.
type AccessKey struct {
	ID             uuid.UUID `json:"id"`
	GroupID        uuid.UUID `json:"group_id"`
	SubscriptionID uuid.UUID `json:"subscription_id"`
	Namespace      []byte    `json:"namespace"`
	SecretHash     string    `json:"-"`
	CreatedAt      int64     `json:"created_at"`
	ExpiresAt      int64     `json:"expires_at"`
}

// IsValid reports whether the key is usable at the supplied instant.
// It does not consult the source subscription.
func (k *AccessKey) IsValid(now int64) bool {
	return now <= k.ExpiresAt
}
