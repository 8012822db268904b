package group

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
)

// Common errors
var (
	ErrGroupNotFound = errors.New("group not found")
	ErrCapNotFound   = errors.New("admin cap not found")
	ErrNotAuthorized = errors.New("admin cap does not match target group")
	ErrNegativeFee   = errors.New("subscription fee must not be negative")
)

// Service handles group lifecycle and administrative authorization
type Service struct {
	repo   *Repository
	logger *zap.Logger
}

// NewService creates a new group service
func NewService(repo *Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create mints a fresh group together with the admin cap bound to it.
// The cap's bearer secret is returned exactly once; only its digest is
// persisted.
func (s *Service) Create(ctx context.Context, owner string, req *CreateGroupRequest, now int64) (*Group, *AdminCap, string, error) {
	if req.SubscriptionFee < 0 {
		return nil, nil, "", ErrNegativeFee
	}

	g := &Group{
		ID:                   uuid.New(),
		Name:                 req.Name,
		Description:          req.Description,
		Owner:                owner,
		SubscriptionFee:      req.SubscriptionFee,
		SubscriptionPeriodMS: req.SubscriptionPeriodMS,
		MaxMembers:           req.MaxMembers,
		CurrentMembers:       0,
		ChatGroupRef:         req.ChatGroupRef,
		InviteRef:            req.InviteRef,
		ReportCount:          0,
		CreatedAt:            now,
	}

	secret, err := newSecret()
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to generate cap secret: %w", err)
	}

	ac := &AdminCap{
		ID:         uuid.New(),
		GroupID:    g.ID,
		SecretHash: hashSecret(secret),
		CreatedAt:  now,
	}

	if err := s.repo.Create(ctx, g, ac); err != nil {
		return nil, nil, "", err
	}

	s.logger.Info("group created",
		zap.String("group_id", g.ID.String()),
		zap.String("owner", owner),
		zap.Int64("fee", g.SubscriptionFee),
		zap.Int64("period_ms", g.SubscriptionPeriodMS))

	return g, ac, secret, nil
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Group, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}
	return g, nil
}

// Authorize verifies that the presented cap exists, that the bearer
// secret matches, and that the cap is bound to the target group.
// Possession plus ID match is the whole authorization model: there are
// no roles or permission lists.
func (s *Service) Authorize(ctx context.Context, capID uuid.UUID, secret string, groupID uuid.UUID) error {
	ac, err := s.repo.GetAdminCap(ctx, capID)
	if err != nil {
		return err
	}
	if ac == nil {
		return ErrCapNotFound
	}
	if subtle.ConstantTimeCompare([]byte(ac.SecretHash), []byte(hashSecret(secret))) != 1 {
		return ErrNotAuthorized
	}
	if ac.GroupID != groupID {
		return ErrNotAuthorized
	}
	return nil
}

// UpdateDescription changes a group's description under admin authorization
func (s *Service) UpdateDescription(ctx context.Context, groupID uuid.UUID, req *UpdateDescriptionRequest) (*Group, error) {
	if err := s.Authorize(ctx, req.AdminCapID, req.AdminCapSecret, groupID); err != nil {
		return nil, err
	}

	g, err := s.repo.UpdateDescription(ctx, groupID, req.Description)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}
	return g, nil
}

// UpdateFee changes a group's subscription fee under admin authorization.
// Subscriptions already minted are unaffected; the new fee applies to
// future subscribe calls only.
func (s *Service) UpdateFee(ctx context.Context, groupID uuid.UUID, req *UpdateFeeRequest) (*Group, error) {
	if req.SubscriptionFee < 0 {
		return nil, ErrNegativeFee
	}
	if err := s.Authorize(ctx, req.AdminCapID, req.AdminCapSecret, groupID); err != nil {
		return nil, err
	}

	g, err := s.repo.UpdateFee(ctx, groupID, req.SubscriptionFee)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}

	s.logger.Info("group fee updated",
		zap.String("group_id", groupID.String()),
		zap.Int64("fee", req.SubscriptionFee))

	return g, nil
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
