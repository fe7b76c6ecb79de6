package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
)

// ExportRepository implements [models.Repository] for [models.ExportRecord] persistence.
type ExportRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.ExportRecord] = (*ExportRepository)(nil)

// NewExportRepository creates a new [ExportRepository] with the given database connection
func NewExportRepository(db *sql.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Create inserts a new export record with a generated ID
func (r *ExportRepository) Create(rec *models.ExportRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()
	rec.SetID(id)

	query := `
		INSERT INTO snapshot_exports (id, snapshot_id, title, format, path, created_at) VALUES (?, ?, ?, ?, ?, ?)
	`

	if _, err := r.db.Exec(query, id, rec.SnapshotID, rec.Title, rec.Format, rec.Path, rec.CreatedAt()); err != nil {
		return fmt.Errorf("failed to insert export: %w", err)
	}
	return nil
}

// Get retrieves an export record by ID
func (r *ExportRepository) Get(id string) (*models.ExportRecord, error) {
	query := `
		SELECT id, snapshot_id, title, format, path, created_at
		FROM snapshot_exports
		WHERE id = ?
	`

	rec, err := scanExport(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: export %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query export: %w", err)
	}
	return rec, nil
}

// Delete removes an export record by ID. The exported file is left on disk.
func (r *ExportRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM snapshot_exports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}
	return requireAffected(result, "export", id)
}

// List retrieves export records, newest first, optionally filtered by snapshot_id or format.
func (r *ExportRepository) List(criteria map[string]any) ([]*models.ExportRecord, error) {
	query := `
		SELECT id, snapshot_id, title, format, path, created_at
		FROM snapshot_exports
		WHERE 1 = 1
	`

	args := []any{}

	if snapshotID, ok := criteria["snapshot_id"].(string); ok && snapshotID != "" {
		query += " AND snapshot_id = ?"
		args = append(args, snapshotID)
	}

	if format, ok := criteria["format"].(string); ok && format != "" {
		query += " AND format = ?"
		args = append(args, format)
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	var records []*models.ExportRecord
	for rows.Next() {
		rec, err := scanExport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(s scanner) (*models.ExportRecord, error) {
	var (
		id, snapshotID, title, format, path string
		createdAt                           time.Time
	)

	if err := s.Scan(&id, &snapshotID, &title, &format, &path, &createdAt); err != nil {
		return nil, err
	}

	rec := models.NewExportRecord(snapshotID, title, format, path)
	rec.SetID(id)
	rec.SetCreatedAt(createdAt)
	return rec, nil
}
