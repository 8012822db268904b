package access

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clownfish2023/web3fans/internal/group"
	"github.com/clownfish2023/web3fans/internal/keyvault"
	"github.com/clownfish2023/web3fans/internal/namespace"
	"github.com/clownfish2023/web3fans/internal/report"
	"github.com/clownfish2023/web3fans/internal/subscription"
)

// Common errors
var (
	ErrSubscriptionExpired = errors.New("subscription is expired")
	ErrUnauthorized        = errors.New("credential is not scoped to this group")
	ErrInvalidKeyNamespace = errors.New("key id does not carry the group namespace")
)

// Service is the authorization decision point: given proof of a still
// valid subscription and a report, it decides whether a decryption
// capability may be minted. Two proof modes are supported: a namespaced
// access key, and a bare subscription record (the legacy seal-approve
// path).
type Service struct {
	subs    *subscription.Service
	groups  *group.Service
	reports *report.Service
	vault   *keyvault.Vault
	logger  *zap.Logger
}

// NewService creates a new access service
func NewService(subs *subscription.Service, groups *group.Service, reports *report.Service, vault *keyvault.Vault, logger *zap.Logger) *Service {
	return &Service{
		subs:    subs,
		groups:  groups,
		reports: reports,
		vault:   vault,
		logger:  logger,
	}
}

// RequestReportAccess runs the access-key proof mode. Checks, in order:
// the key has not expired, the key is scoped to the report's group, and
// the report's key id carries the key's namespace as an exact byte
// prefix. On success it mints a single-use decryption capability for
// the report. Pure: no state is read or written beyond the arguments.
func (s *Service) RequestReportAccess(key *subscription.AccessKey, rep *report.Report, grp *group.Group, now int64) (*DecryptionCapability, error) {
	if !key.IsValid(now) {
		return nil, ErrSubscriptionExpired
	}
	if key.GroupID != grp.ID || rep.GroupID != grp.ID {
		return nil, ErrUnauthorized
	}
	if !namespace.HasPrefix(rep.KeyID, key.Namespace) {
		return nil, ErrInvalidKeyNamespace
	}

	return newCapability(rep.ID, rep.KeyID, now), nil
}

// SealApprove runs the subscription proof mode: no capability object is
// produced, the external key service makes its own release decision
// after this passes. Checks the subscription is valid for the group and
// that keyID carries the group's derived namespace.
func (s *Service) SealApprove(keyID []byte, sub *subscription.Subscription, grp *group.Group, now int64) error {
	if !sub.IsValid(grp.ID, now) {
		return ErrSubscriptionExpired
	}
	if !namespace.HasPrefix(keyID, namespace.Derive(grp.ID)) {
		return ErrInvalidKeyNamespace
	}
	return nil
}

// ReportGrant is what an approved access request releases to the caller:
// the key material for the report plus the pointer to its encrypted
// payload.
type ReportGrant struct {
	ReportID       uuid.UUID
	KeyID          []byte
	PayloadPointer string
	KeyMaterial    []byte
	VerifiedAt     int64
}

// OpenReport authenticates the access key, verifies access to the
// report, and immediately consumes the minted capability against the
// key vault. The capability never leaves this call.
func (s *Service) OpenReport(ctx context.Context, accessKeyID uuid.UUID, accessKeySecret string, reportID uuid.UUID, now int64) (*ReportGrant, error) {
	key, err := s.subs.AuthenticateAccessKey(ctx, accessKeyID, accessKeySecret)
	if err != nil {
		return nil, err
	}

	rep, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	grp, err := s.groups.GetByID(ctx, rep.GroupID)
	if err != nil {
		return nil, err
	}

	capability, err := s.RequestReportAccess(key, rep, grp, now)
	if err != nil {
		s.logger.Warn("report access denied",
			zap.String("report_id", reportID.String()),
			zap.String("access_key_id", accessKeyID.String()),
			zap.Error(err))
		return nil, err
	}

	grantedReportID, keyID, err := capability.Consume()
	if err != nil {
		return nil, err
	}

	material, err := s.vault.Retrieve(keyID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("report access granted",
		zap.String("report_id", grantedReportID.String()),
		zap.String("access_key_id", accessKeyID.String()))

	return &ReportGrant{
		ReportID:       grantedReportID,
		KeyID:          keyID,
		PayloadPointer: rep.PayloadPointer,
		KeyMaterial:    material,
		VerifiedAt:     capability.VerifiedAt(),
	}, nil
}

// ApproveSeal loads the subscription and group behind a seal-approve
// request and runs the subscription proof mode. The caller must own the
// subscription; possession cannot be assumed over the wire, so ownership
// is checked against the request principal.
func (s *Service) ApproveSeal(ctx context.Context, keyID []byte, subscriptionID, groupID uuid.UUID, principal string, now int64) error {
	sub, err := s.subs.GetByID(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if sub.Subscriber != principal {
		return ErrUnauthorized
	}

	grp, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}

	if err := s.SealApprove(keyID, sub, grp, now); err != nil {
		s.logger.Warn("seal approval denied",
			zap.String("subscription_id", subscriptionID.String()),
			zap.String("group_id", groupID.String()),
			zap.Error(err))
		return err
	}

	return nil
}
