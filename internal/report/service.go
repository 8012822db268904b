package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/clownfish2023/web3fans/internal/blobstore"
	"github.com/clownfish2023/web3fans/internal/group"
	"github.com/clownfish2023/web3fans/internal/keyvault"
)

// Common errors
var (
	ErrReportNotFound = errors.New("report not found")
	ErrGroupNotFound  = errors.New("group not found")
)

const cacheSize = 1024

// Service handles report publication and lookup. Reports are immutable
// after publish, so lookups go through an LRU cache.
type Service struct {
	repo     *Repository
	groupSvc *group.Service
	blobs    *blobstore.Store
	vault    *keyvault.Vault
	cache    *lru.Cache[uuid.UUID, *Report]
	logger   *zap.Logger
}

// NewService creates a new report service
func NewService(repo *Repository, groupSvc *group.Service, blobs *blobstore.Store, vault *keyvault.Vault, logger *zap.Logger) (*Service, error) {
	cache, err := lru.New[uuid.UUID, *Report](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create report cache: %w", err)
	}

	return &Service{
		repo:     repo,
		groupSvc: groupSvc,
		blobs:    blobs,
		vault:    vault,
		cache:    cache,
		logger:   logger,
	}, nil
}

// Publish stores a new report under admin authorization: the encrypted
// payload goes to the blob store, the key material is sealed into the
// vault, and the metadata row is inserted together with the group's
// report counter increment. The seal happens before the insert so a
// vault failure can never leave a published report whose material was
// lost; the vault write cannot join the SQL transaction, so an insert
// failure removes the sealed material again by hand.
//
// The key id's namespace prefix is deliberately not checked here; the
// check happens at access time.
func (s *Service) Publish(ctx context.Context, publisher string, req *PublishReportRequest, keyID, keyMaterial, payload []byte, now int64) (*Report, error) {
	if err := s.groupSvc.Authorize(ctx, req.AdminCapID, req.AdminCapSecret, req.GroupID); err != nil {
		return nil, err
	}

	pointer, err := s.blobs.Put(payload)
	if err != nil {
		return nil, err
	}

	if err := s.vault.Store(keyID, keyMaterial); err != nil {
		return nil, fmt.Errorf("failed to seal key material: %w", err)
	}

	rep := &Report{
		ID:             uuid.New(),
		GroupID:        req.GroupID,
		Title:          req.Title,
		Summary:        req.Summary,
		PayloadPointer: pointer,
		KeyID:          keyID,
		Publisher:      publisher,
		PublishedAt:    now,
	}

	if err := s.repo.Create(ctx, rep); err != nil {
		if delErr := s.vault.Delete(keyID); delErr != nil {
			s.logger.Error("failed to remove sealed material after publish failure",
				zap.String("group_id", req.GroupID.String()),
				zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("report published",
		zap.String("report_id", rep.ID.String()),
		zap.String("group_id", rep.GroupID.String()),
		zap.String("payload_pointer", pointer))

	return rep, nil
}

// GetByID retrieves a report by its ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	if rep, ok := s.cache.Get(id); ok {
		return rep, nil
	}

	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, ErrReportNotFound
	}

	s.cache.Add(id, rep)
	return rep, nil
}

// ListByGroup retrieves all reports published under a group
func (s *Service) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*Report, error) {
	return s.repo.ListByGroup(ctx, groupID)
}
