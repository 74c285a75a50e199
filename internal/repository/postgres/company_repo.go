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

type companyRepo struct {
	db *sqlx.DB
}

// NewCompanyRepo creates a new PostgreSQL-backed CompanyRepository.
func NewCompanyRepo(db *sqlx.DB) port.CompanyRepository {
	return &companyRepo{db: db}
}

func (r *companyRepo) Create(ctx context.Context, company *domain.Company) error {
	company.ID = uuid.New()
	now := time.Now().UTC()
	company.CreatedAt = now
	company.UpdatedAt = now

	query := `INSERT INTO companies (id, name, slug, gst_number, state_code, address, phone, email,
		logo_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		company.ID, company.Name, company.Slug, company.GSTNumber, company.StateCode, company.Address,
		company.Phone, company.Email, company.LogoURL, company.IsActive, company.CreatedAt, company.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "companies_slug_key") {
			return domain.ErrDuplicateSlug
		}
		return fmt.Errorf("companyRepo.Create: %w", err)
	}
	return nil
}

func (r *companyRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	var company domain.Company
	err := conn(ctx, r.db).GetContext(ctx, &company, "SELECT * FROM companies WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("companyRepo.GetByID: %w", err)
	}
	return &company, nil
}

func (r *companyRepo) GetBySlug(ctx context.Context, slug string) (*domain.Company, error) {
	var company domain.Company
	err := conn(ctx, r.db).GetContext(ctx, &company, "SELECT * FROM companies WHERE slug = $1", slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("companyRepo.GetBySlug: %w", err)
	}
	return &company, nil
}

func (r *companyRepo) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := conn(ctx, r.db).SelectContext(ctx, &ids,
		"SELECT id FROM companies WHERE is_active = TRUE ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("companyRepo.ListActiveIDs: %w", err)
	}
	return ids, nil
}

func (r *companyRepo) Update(ctx context.Context, company *domain.Company) error {
	company.UpdatedAt = time.Now().UTC()
	query := `UPDATE companies SET name = $1, gst_number = $2, state_code = $3, address = $4, phone = $5,
		email = $6, logo_url = $7, is_active = $8, updated_at = $9 WHERE id = $10`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		company.Name, company.GSTNumber, company.StateCode, company.Address, company.Phone,
		company.Email, company.LogoURL, company.IsActive, company.UpdatedAt, company.ID)
	if err != nil {
		return fmt.Errorf("companyRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
