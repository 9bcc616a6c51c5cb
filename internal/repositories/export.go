package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/custctl/internal/models"
	"github.com/desertthunder/custctl/internal/shared"
)

// ExportRepository keeps the local history of exports in the exports table.
type ExportRepository struct {
	db *sql.DB
}

// NewExportRepository creates a new [ExportRepository] with the given database connection
func NewExportRepository(db *sql.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Start inserts a running record with a generated ID.
func (r *ExportRepository) Start(ctx context.Context, kind models.ExportKind, query string, at time.Time) (*models.ExportRecord, error) {
	rec := &models.ExportRecord{
		ID:        shared.GenerateID(),
		Kind:      kind,
		Query:     query,
		Status:    models.ExportRunning,
		StartedAt: at,
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO exports (id, kind, query, status, rows, started_at) VALUES (?, ?, ?, ?, 0, ?)`,
		rec.ID, rec.Kind, rec.Query, rec.Status, rec.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert export: %w", err)
	}
	return rec, nil
}

// Finish stores the final state of rec.
func (r *ExportRepository) Finish(ctx context.Context, rec *models.ExportRecord) error {
	var path, errorMessage any
	if rec.Path != "" {
		path = rec.Path
	}
	if rec.ErrorMessage != "" {
		errorMessage = rec.ErrorMessage
	}

	query := `
		UPDATE exports
		SET status = ?, path = ?, rows = ?, error_message = ?, completed_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, rec.Status, path, rec.Rows, errorMessage, rec.CompletedAt, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update export: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("export not found: %s", rec.ID)
	}
	return nil
}

// Get retrieves an export by ID.
func (r *ExportRepository) Get(ctx context.Context, id string) (*models.ExportRecord, error) {
	row := r.db.QueryRowContext(ctx, selectExports+` WHERE id = ?`, id)
	rec, err := scanExport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("export not found: %s", id)
	}
	return rec, err
}

// List returns the most recent exports first. A limit of 0 or less returns all of them.
func (r *ExportRepository) List(ctx context.Context, limit int) ([]*models.ExportRecord, error) {
	query := selectExports + ` ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	records := []*models.ExportRecord{}
	for rows.Next() {
		rec, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exports: %w", err)
	}
	return records, nil
}

const selectExports = `
	SELECT id, kind, query, status, path, rows, error_message, started_at, completed_at
	FROM exports
`

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(s scanner) (*models.ExportRecord, error) {
	var (
		rec          models.ExportRecord
		path         sql.NullString
		errorMessage sql.NullString
		completedAt  sql.NullTime
	)

	err := s.Scan(&rec.ID, &rec.Kind, &rec.Query, &rec.Status, &path, &rec.Rows, &errorMessage, &rec.StartedAt, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan export: %w", err)
	}

	rec.Path = path.String
	rec.ErrorMessage = errorMessage.String
	if completedAt.Valid {
		t := completedAt.Time
		rec.CompletedAt = &t
	}
	return &rec, nil
}
