package group

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository handles group data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new group repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const groupColumns = `id, name, description, owner, subscription_fee, subscription_period_ms,
		max_members, current_members, chat_group_ref, invite_ref, report_count, created_at`

// Create inserts a group and its admin cap in one transaction
func (r *Repository) Create(ctx context.Context, g *Group, ac *AdminCap) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	groupQuery := `
		INSERT INTO groups (id, name, description, owner, subscription_fee, subscription_period_ms,
			max_members, current_members, chat_group_ref, invite_ref, report_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if _, err := tx.ExecContext(ctx, groupQuery,
		g.ID.String(), g.Name, g.Description, g.Owner, g.SubscriptionFee, g.SubscriptionPeriodMS,
		g.MaxMembers, g.CurrentMembers, g.ChatGroupRef, g.InviteRef, g.ReportCount, g.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	capQuery := `
		INSERT INTO admin_caps (id, group_id, secret_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.ExecContext(ctx, capQuery,
		ac.ID.String(), ac.GroupID.String(), ac.SecretHash, ac.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create admin cap: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit group creation: %w", err)
	}

	return nil
}

// GetByID retrieves a group by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`

	return r.scanGroup(r.db.QueryRowContext(ctx, query, id.String()))
}

// GetAdminCap retrieves an admin cap by its ID
func (r *Repository) GetAdminCap(ctx context.Context, id uuid.UUID) (*AdminCap, error) {
	query := `SELECT id, group_id, secret_hash, created_at FROM admin_caps WHERE id = $1`

	var (
		ac      AdminCap
		idStr   string
		groupID string
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(&idStr, &groupID, &ac.SecretHash, &ac.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get admin cap: %w", err)
	}

	if ac.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("failed to parse admin cap id: %w", err)
	}
	if ac.GroupID, err = uuid.Parse(groupID); err != nil {
		return nil, fmt.Errorf("failed to parse admin cap group id: %w", err)
	}

	return &ac, nil
}

// UpdateDescription modifies a group's description
func (r *Repository) UpdateDescription(ctx context.Context, id uuid.UUID, description string) (*Group, error) {
	query := `UPDATE groups SET description = $1 WHERE id = $2 RETURNING ` + groupColumns

	return r.scanGroup(r.db.QueryRowContext(ctx, query, description, id.String()))
}

// UpdateFee modifies a group's subscription fee
func (r *Repository) UpdateFee(ctx context.Context, id uuid.UUID, fee int64) (*Group, error) {
	query := `UPDATE groups SET subscription_fee = $1 WHERE id = $2 RETURNING ` + groupColumns

	return r.scanGroup(r.db.QueryRowContext(ctx, query, fee, id.String()))
}

func (r *Repository) scanGroup(row *sql.Row) (*Group, error) {
	var (
		g     Group
		idStr string
	)
	err := row.Scan(
		&idStr,
		&g.Name,
		&g.Description,
		&g.Owner,
		&g.SubscriptionFee,
		&g.SubscriptionPeriodMS,
		&g.MaxMembers,
		&g.CurrentMembers,
		&g.ChatGroupRef,
		&g.InviteRef,
		&g.ReportCount,
		&g.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan group: %w", err)
	}

	if g.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("failed to parse group id: %w", err)
	}

	return &g, nil
}
