package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
)

type UploadLogRepository struct {
	db *sql.DB
}

func NewUploadLogRepository(db *sql.DB) *UploadLogRepository {
	return &UploadLogRepository{db: db}
}

func (r *UploadLogRepository) CreateUpload(ctx context.Context, rec *domain.UploadRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO corpus_uploads (id, filename, storage_path, status, row_count, error_message, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, rec.ID, rec.Filename, rec.StoragePath, string(rec.Status), rec.RowCount, rec.Error, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert upload record: %w", err)
	}
	return nil
}

func (r *UploadLogRepository) GetUploadByID(ctx context.Context, id string) (*domain.UploadRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, storage_path, status, row_count, error_message, created_at, updated_at
FROM corpus_uploads
WHERE id = $1
`, id)

	rec, err := scanUpload(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get upload", fmt.Errorf("upload id %s", id))
		}
		return nil, fmt.Errorf("get upload by id: %w", err)
	}
	return rec, nil
}

func (r *UploadLogRepository) UpdateUploadStatus(ctx context.Context, id string, status domain.UploadStatus, rowCount int, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE corpus_uploads
SET status = $2, row_count = $3, error_message = $4, updated_at = $5
WHERE id = $1
`, id, string(status), rowCount, errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update upload status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update upload status rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, "update upload status", fmt.Errorf("upload id %s", id))
	}
	return nil
}

func (r *UploadLogRepository) ListUploads(ctx context.Context, limit int) ([]domain.UploadRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, filename, storage_path, status, row_count, error_message, created_at, updated_at
FROM corpus_uploads
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	out := make([]domain.UploadRecord, 0)
	for rows.Next() {
		rec, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uploads: %w", err)
	}
	return out, nil
}

type uploadScanner interface {
	Scan(dest ...interface{}) error
}

func scanUpload(row uploadScanner) (*domain.UploadRecord, error) {
	var rec domain.UploadRecord
	var status string
	err := row.Scan(
		&rec.ID,
		&rec.Filename,
		&rec.StoragePath,
		&status,
		&rec.RowCount,
		&rec.Error,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Status = domain.UploadStatus(status)
	return &rec, nil
}
