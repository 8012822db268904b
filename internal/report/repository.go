package report

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository handles report data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new report repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a report and bumps the owning group's report counter in
// one transaction
func (r *Repository) Create(ctx context.Context, rep *Report) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	counterQuery := `UPDATE groups SET report_count = report_count + 1 WHERE id = $1`
	res, err := tx.ExecContext(ctx, counterQuery, rep.GroupID.String())
	if err != nil {
		return fmt.Errorf("failed to increment report count: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	} else if n == 0 {
		return ErrGroupNotFound
	}

	insertQuery := `
		INSERT INTO reports (id, group_id, title, summary, payload_pointer, key_id, publisher, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := tx.ExecContext(ctx, insertQuery,
		rep.ID.String(), rep.GroupID.String(), rep.Title, rep.Summary,
		rep.PayloadPointer, rep.KeyID, rep.Publisher, rep.PublishedAt,
	); err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}

	return nil
}

// GetByID retrieves a report by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	query := `
		SELECT id, group_id, title, summary, payload_pointer, key_id, publisher, published_at
		FROM reports
		WHERE id = $1
	`

	rep, err := scanReport(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return rep, nil
}

// ListByGroup retrieves all reports for a group, newest first
func (r *Repository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*Report, error) {
	query := `
		SELECT id, group_id, title, summary, payload_pointer, key_id, publisher, published_at
		FROM reports
		WHERE group_id = $1
		ORDER BY published_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, groupID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, rep)
	}

	return reports, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (*Report, error) {
	var (
		rep     Report
		idStr   string
		groupID string
	)
	err := row.Scan(
		&idStr,
		&groupID,
		&rep.Title,
		&rep.Summary,
		&rep.PayloadPointer,
		&rep.KeyID,
		&rep.Publisher,
		&rep.PublishedAt,
	)
	if err != nil {
		return nil, err
	}

	if rep.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("failed to parse report id: %w", err)
	}
	if rep.GroupID, err = uuid.Parse(groupID); err != nil {
		return nil, fmt.Errorf("failed to parse report group id: %w", err)
	}

	return &rep, nil
}
