package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"khata/internal/domain"
	"khata/internal/port"
)

type fileMetaRepo struct {
	db *sqlx.DB
}

// NewFileMetaRepo creates a new PostgreSQL-backed FileMetaRepository.
func NewFileMetaRepo(db *sqlx.DB) port.FileMetaRepository {
	return &fileMetaRepo{db: db}
}

func (r *fileMetaRepo) Create(ctx context.Context, meta *domain.FileMeta) error {
	now := time.Now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	query := `INSERT INTO file_metadata
		(id, company_id, uploaded_by, file_name, original_name, file_type, file_size,
		 s3_bucket, s3_key, content_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		meta.ID, meta.CompanyID, meta.UploadedBy, meta.FileName, meta.OriginalName,
		meta.FileType, meta.FileSize, meta.S3Bucket, meta.S3Key, meta.ContentType,
		meta.Status, meta.CreatedAt, meta.UpdatedAt)
	if err != nil {
		return fmt.Errorf("fileMetaRepo.Create: %w", err)
	}
	return nil
}

func (r *fileMetaRepo) GetByID(ctx context.Context, companyID, fileID uuid.UUID) (*domain.FileMeta, error) {
	var meta domain.FileMeta
	err := conn(ctx, r.db).GetContext(ctx, &meta,
		"SELECT * FROM file_metadata WHERE id = $1 AND company_id = $2 AND status != $3",
		fileID, companyID, domain.FileStatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("fileMetaRepo.GetByID: %w", err)
	}
	return &meta, nil
}

func (r *fileMetaRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.FileMeta, int, error) {
	q := conn(ctx, r.db)
	var total int
	err := q.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM file_metadata WHERE company_id = $1 AND status != $2",
		companyID, domain.FileStatusDeleted)
	if err != nil {
		return nil, 0, fmt.Errorf("fileMetaRepo.ListByCompany count: %w", err)
	}

	var files []domain.FileMeta
	err = q.SelectContext(ctx, &files,
		`SELECT * FROM file_metadata
		 WHERE company_id = $1 AND status != $2
		 ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		companyID, domain.FileStatusDeleted, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("fileMetaRepo.ListByCompany: %w", err)
	}
	return files, total, nil
}

func (r *fileMetaRepo) UpdateStatus(ctx context.Context, companyID, fileID uuid.UUID, status domain.FileStatus) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE file_metadata SET status = $1, updated_at = $2 WHERE id = $3 AND company_id = $4",
		status, time.Now().UTC(), fileID, companyID)
	if err != nil {
		return fmt.Errorf("fileMetaRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *fileMetaRepo) Delete(ctx context.Context, companyID, fileID uuid.UUID) error {
	return r.UpdateStatus(ctx, companyID, fileID, domain.FileStatusDeleted)
}
