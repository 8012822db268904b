package subscription

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clownfish2023/web3fans/internal/namespace"
)

// Common errors
var (
	ErrGroupNotFound        = errors.New("group not found")
	ErrInvalidFee           = errors.New("payment amount does not match subscription fee")
	ErrGroupFull            = errors.New("group has reached its member limit")
	ErrInsufficientFunds    = errors.New("insufficient wallet balance")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrAccessKeyNotFound    = errors.New("access key not found")
)

// Service is the paid-access ledger: it mints time-bounded subscriptions
// and, on request, wraps them into namespaced access keys in the same
// transaction.
type Service struct {
	repo   *Repository
	logger *zap.Logger
}

// NewService creates a new subscription service
func NewService(repo *Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Subscribe mints a subscription against a group. Preconditions, in
// order: the offered amount equals the group fee exactly (over- and
// underpayment are both rejected), and the group has capacity. On
// success the payment moves in full to the group owner, the member
// count increments, and the subscription window is fixed at
// [now, now+period]. All effects apply in one transaction or not at all.
//
// Nothing prevents a principal from subscribing again before an earlier
// window ends; each call mints an independent record.
//
// With req.WithAccessKey set, an access key is minted alongside, scoped
// to the group's namespace and expiring exactly when the subscription
// does. The key's bearer secret is returned once.
func (s *Service) Subscribe(ctx context.Context, subscriber string, req *SubscribeRequest, now int64) (*Subscription, *AccessKey, string, error) {
	sub := &Subscription{
		ID:               uuid.New(),
		GroupID:          req.GroupID,
		Subscriber:       subscriber,
		ExternalIdentity: req.ExternalIdentity,
		SubscribedAt:     now,
	}

	var (
		key    *AccessKey
		secret string
	)
	if req.WithAccessKey {
		var err error
		secret, err = newSecret()
		if err != nil {
			return nil, nil, "", fmt.Errorf("failed to generate access key secret: %w", err)
		}
		key = &AccessKey{
			ID:             uuid.New(),
			GroupID:        req.GroupID,
			SubscriptionID: sub.ID,
			Namespace:      namespace.Derive(req.GroupID),
			SecretHash:     hashSecret(secret),
			CreatedAt:      now,
		}
	}

	if err := s.repo.Subscribe(ctx, sub, key, req.Amount); err != nil {
		return nil, nil, "", err
	}

	fields := []zap.Field{
		zap.String("subscription_id", sub.ID.String()),
		zap.String("group_id", req.GroupID.String()),
		zap.String("subscriber", subscriber),
		zap.Int64("expires_at", sub.ExpiresAt),
	}
	if key != nil {
		fields = append(fields, zap.String("access_key_id", key.ID.String()))
	}
	s.logger.Info("subscription minted", fields...)

	return sub, key, secret, nil
}

// GetByID retrieves a subscription by its ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Subscription, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubscriptionNotFound
	}
	return sub, nil
}

// AuthenticateAccessKey loads an access key and checks the bearer
// secret. A missing key and a wrong secret are indistinguishable to
// the caller.
func (s *Service) AuthenticateAccessKey(ctx context.Context, id uuid.UUID, secret string) (*AccessKey, error) {
	key, err := s.repo.GetAccessKey(ctx, id)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, ErrAccessKeyNotFound
	}
	if subtle.ConstantTimeCompare([]byte(key.SecretHash), []byte(hashSecret(secret))) != 1 {
		return nil, ErrAccessKeyNotFound
	}
	return key, nil
}

// newSecret returns a fresh 32-byte bearer secret in hex
func newSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// hashSecret returns the hex sha-256 digest stored at rest
func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
