package wallet

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles wallet data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new wallet repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Deposit upserts the account and adds to its balance
func (r *Repository) Deposit(ctx context.Context, principal string, amount, now int64) (*Account, error) {
	query := `
		INSERT INTO wallet_accounts (principal, balance, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (principal) DO UPDATE
		SET balance = wallet_accounts.balance + excluded.balance, updated_at = excluded.updated_at
		RETURNING principal, balance, updated_at
	`

	account := &Account{}
	err := r.db.QueryRowContext(ctx, query, principal, amount, now).Scan(
		&account.Principal,
		&account.Balance,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to deposit: %w", err)
	}

	return account, nil
}

// GetByPrincipal retrieves an account by principal
func (r *Repository) GetByPrincipal(ctx context.Context, principal string) (*Account, error) {
	query := `SELECT principal, balance, updated_at FROM wallet_accounts WHERE principal = $1`

	account := &Account{}
	err := r.db.QueryRowContext(ctx, query, principal).Scan(
		&account.Principal,
		&account.Balance,
		&account.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}
