package subscription

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// SubscribeRequest represents the request to subscribe to a group.
// Amount is the payment offered in the smallest currency unit; it must
// equal the group's fee exactly.
type SubscribeRequest struct {
	GroupID          uuid.UUID `json:"group_id" validate:"required"`
	Amount           int64     `json:"amount" validate:"gte=0"`
	ExternalIdentity string    `json:"external_identity"`
	WithAccessKey    bool      `json:"with_access_key"`
}

// SubscriptionResponse represents the response for a subscription
type SubscriptionResponse struct {
	ID               uuid.UUID `json:"id"`
	GroupID          uuid.UUID `json:"group_id"`
	Subscriber       string    `json:"subscriber"`
	ExternalIdentity string    `json:"external_identity"`
	SubscribedAt     int64     `json:"subscribed_at"`
	ExpiresAt        int64     `json:"expires_at"`
	Active           bool      `json:"active"`
}

// AccessKeyResponse carries a freshly minted access key. Secret is only
// populated at mint time; it cannot be recovered afterwards.
type AccessKeyResponse struct {
	ID             uuid.UUID `json:"id"`
	GroupID        uuid.UUID `json:"group_id"`
	SubscriptionID uuid.UUID `json:"subscription_id"`
	Namespace      string    `json:"namespace"`
	CreatedAt      int64     `json:"created_at"`
	ExpiresAt      int64     `json:"expires_at"`
	Secret         string    `json:"secret,omitempty"`
}

// SubscribeResponse bundles the subscription with its optional access key
type SubscribeResponse struct {
	Subscription *SubscriptionResponse `json:"subscription"`
	AccessKey    *AccessKeyResponse    `json:"access_key,omitempty"`
}

// ToResponse converts a Subscription model to its DTO, deriving the
// active flag from the supplied instant
func (s *Subscription) ToResponse(now int64) *SubscriptionResponse {
	return &SubscriptionResponse{
		ID:               s.ID,
		GroupID:          s.GroupID,
		Subscriber:       s.Subscriber,
		ExternalIdentity: s.ExternalIdentity,
		SubscribedAt:     s.SubscribedAt,
		ExpiresAt:        s.ExpiresAt,
		Active:           s.IsValid(s.GroupID, now),
	}
}

// ToResponse converts an AccessKey model to its DTO; the namespace is
// rendered as hex
func (k *AccessKey) ToResponse() *AccessKeyResponse {
	return &AccessKeyResponse{
		ID:             k.ID,
		GroupID:        k.GroupID,
		SubscriptionID: k.SubscriptionID,
		Namespace:      hex.EncodeToString(k.Namespace),
		CreatedAt:      k.CreatedAt,
		ExpiresAt:      k.ExpiresAt,
	}
}
