package wallet

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrAccountNotFound = errors.New("wallet account not found")
	ErrInvalidAmount   = errors.New("deposit amount must be positive")
)

// Service handles wallet balances. Transfers between accounts happen
// inside the subscription ledger's transaction, not here.
type Service struct {
	repo *Repository
}

// NewService creates a new wallet service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Deposit credits a principal's balance, creating the account if needed
func (s *Service) Deposit(ctx context.Context, principal string, amount, now int64) (*Account, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.repo.Deposit(ctx, principal, amount, now)
}

// GetByPrincipal retrieves an account by principal
func (s *Service) GetByPrincipal(ctx context.Context, principal string) (*Account, error) {
	account, err := s.repo.GetByPrincipal(ctx, principal)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}
