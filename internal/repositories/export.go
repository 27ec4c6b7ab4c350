package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/notehub/internal/models"
	"github.com/desertthunder/notehub/internal/shared"
)

// ExportRepository records finished notes exports.
type ExportRepository struct {
	db *sql.DB
}

// NewExportRepository creates a new ExportRepository with the given database connection
func NewExportRepository(db *sql.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Create inserts rec, assigning an ID and creation time when they are unset.
func (r *ExportRepository) Create(ctx context.Context, rec *models.ExportRecord) error {
	if rec.ID == "" {
		rec.ID = shared.GenerateID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.OutputDir == "" {
		return fmt.Errorf("%w: output directory is required", shared.ErrInvalidInput)
	}

	query := `
		INSERT INTO exports (id, format, output_dir, total_notes, succeeded, failed, manifest_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query,
		rec.ID, string(rec.Format), rec.OutputDir, rec.TotalNotes, rec.Succeeded, rec.Failed, rec.ManifestPath, rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert export: %w", err)
	}
	return nil
}

// Get retrieves an export by ID.
func (r *ExportRepository) Get(ctx context.Context, id string) (*models.ExportRecord, error) {
	query := `
		SELECT id, format, output_dir, total_notes, succeeded, failed, manifest_path, created_at
		FROM exports
		WHERE id = ?
	`
	rec, err := scanExport(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("export %s: %w", id, ErrNotFound)
	}
	return rec, err
}

// List returns the most recent exports first. A non-positive limit returns all of them.
func (r *ExportRepository) List(ctx context.Context, limit int) ([]*models.ExportRecord, error) {
	query := `
		SELECT id, format, output_dir, total_notes, succeeded, failed, manifest_path, created_at
		FROM exports
		ORDER BY created_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	var out []*models.ExportRecord
	for rows.Next() {
		rec, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(row scanner) (*models.ExportRecord, error) {
	var (
		rec    models.ExportRecord
		format string
	)
	if err := row.Scan(
		&rec.ID, &format, &rec.OutputDir, &rec.TotalNotes, &rec.Succeeded, &rec.Failed, &rec.ManifestPath, &rec.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan export: %w", err)
	}
	rec.Format = models.ExportFormat(format)
	return &rec, nil
}
