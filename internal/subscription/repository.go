package subscription

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository handles subscription data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new subscription repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Subscribe executes the whole subscribe state transition in a single
// transaction: fee check, capacity check-and-increment, payment transfer
// to the group owner, subscription insert, and the optional access key
// insert. A failure at any step rolls back every effect.
//
// On success sub.ExpiresAt (and key.ExpiresAt, when a key is requested)
// is filled in from the group's period as read inside the transaction.
func (r *Repository) Subscribe(ctx context.Context, sub *Subscription, key *AccessKey, amount int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		owner    string
		fee      int64
		periodMS int64
	)
	groupQuery := `SELECT owner, subscription_fee, subscription_period_ms FROM groups WHERE id = $1`
	err = tx.QueryRowContext(ctx, groupQuery, sub.GroupID.String()).Scan(&owner, &fee, &periodMS)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to load group: %w", err)
	}

	// Exact match: over- and underpayment are both protocol violations.
	if amount != fee {
		return ErrInvalidFee
	}

	// Check-and-increment is one statement so concurrent subscribers can
	// never both pass a stale capacity check.
	capacityQuery := `
		UPDATE groups
		SET current_members = current_members + 1
		WHERE id = $1 AND (max_members = 0 OR current_members < max_members)
	`
	res, err := tx.ExecContext(ctx, capacityQuery, sub.GroupID.String())
	if err != nil {
		return fmt.Errorf("failed to increment member count: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	} else if n == 0 {
		return ErrGroupFull
	}

	// Forward the payment in full to the group owner; the protocol
	// retains nothing. Zero-fee groups skip settlement entirely, so a
	// subscriber without a wallet account can still join a free group.
	if amount > 0 {
		debitQuery := `
			UPDATE wallet_accounts
			SET balance = balance - $1, updated_at = $2
			WHERE principal = $3 AND balance >= $4
		`
		res, err = tx.ExecContext(ctx, debitQuery, amount, sub.SubscribedAt, sub.Subscriber, amount)
		if err != nil {
			return fmt.Errorf("failed to debit subscriber: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		} else if n == 0 {
			return ErrInsufficientFunds
		}

		creditQuery := `
			INSERT INTO wallet_accounts (principal, balance, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (principal) DO UPDATE
			SET balance = wallet_accounts.balance + excluded.balance, updated_at = excluded.updated_at
		`
		if _, err := tx.ExecContext(ctx, creditQuery, owner, amount, sub.SubscribedAt); err != nil {
			return fmt.Errorf("failed to credit group owner: %w", err)
		}
	}

	sub.ExpiresAt = sub.SubscribedAt + periodMS

	subQuery := `
		INSERT INTO subscriptions (id, group_id, subscriber, external_identity, subscribed_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.ExecContext(ctx, subQuery,
		sub.ID.String(), sub.GroupID.String(), sub.Subscriber, sub.ExternalIdentity,
		sub.SubscribedAt, sub.ExpiresAt,
	); err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	if key != nil {
		// The key's expiry mirrors the subscription's exactly; there is
		// no extension mechanism.
		key.ExpiresAt = sub.ExpiresAt

		keyQuery := `
			INSERT INTO access_keys (id, group_id, subscription_id, namespace, secret_hash, created_at, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		if _, err := tx.ExecContext(ctx, keyQuery,
			key.ID.String(), key.GroupID.String(), key.SubscriptionID.String(), key.Namespace,
			key.SecretHash, key.CreatedAt, key.ExpiresAt,
		); err != nil {
			return fmt.Errorf("failed to create access key: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit subscription: %w", err)
	}

	return nil
}

// GetByID retrieves a subscription by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Subscription, error) {
	query := `
		SELECT id, group_id, subscriber, external_identity, subscribed_at, expires_at
		FROM subscriptions
		WHERE id = $1
	`

	var (
		sub     Subscription
		idStr   string
		groupID string
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&idStr,
		&groupID,
		&sub.Subscriber,
		&sub.ExternalIdentity,
		&sub.SubscribedAt,
		&sub.ExpiresAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	if sub.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("failed to parse subscription id: %w", err)
	}
	if sub.GroupID, err = uuid.Parse(groupID); err != nil {
		return nil, fmt.Errorf("failed to parse subscription group id: %w", err)
	}

	return &sub, nil
}

// GetAccessKey retrieves an access key by its ID
func (r *Repository) GetAccessKey(ctx context.Context, id uuid.UUID) (*AccessKey, error) {
	query := `
		SELECT id, group_id, subscription_id, namespace, secret_hash, created_at, expires_at
		FROM access_keys
		WHERE id = $1
	`

	var (
		key            AccessKey
		idStr          string
		groupID        string
		subscriptionID string
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&idStr,
		&groupID,
		&subscriptionID,
		&key.Namespace,
		&key.SecretHash,
		&key.CreatedAt,
		&key.ExpiresAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get access key: %w", err)
	}

	if key.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("failed to parse access key id: %w", err)
	}
	if key.GroupID, err = uuid.Parse(groupID); err != nil {
		return nil, fmt.Errorf("failed to parse access key group id: %w", err)
	}
	if key.SubscriptionID, err = uuid.Parse(subscriptionID); err != nil {
		return nil, fmt.Errorf("failed to parse access key subscription id: %w", err)
	}

	return &key, nil
}
