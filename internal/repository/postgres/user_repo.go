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

type userRepo struct {
	db *sqlx.DB
}

// NewUserRepo creates a new PostgreSQL-backed UserRepository.
func NewUserRepo(db *sqlx.DB) port.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	user.ID = uuid.New()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `INSERT INTO users (id, company_id, email, password_hash, full_name, role, status,
		invited_by, last_login_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		user.ID, user.CompanyID, user.Email, user.PasswordHash, user.FullName,
		user.Role, user.Status, user.InvitedBy, user.LastLoginAt, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "users_company_email_key") {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("userRepo.Create: %w", err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, companyID, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := conn(ctx, r.db).GetContext(ctx, &user,
		"SELECT * FROM users WHERE id = $1 AND company_id = $2", userID, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("userRepo.GetByID: %w", err)
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, companyID uuid.UUID, email string) (*domain.User, error) {
	var user domain.User
	err := conn(ctx, r.db).GetContext(ctx, &user,
		"SELECT * FROM users WHERE company_id = $1 AND email = $2", companyID, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("userRepo.GetByEmail: %w", err)
	}
	return &user, nil
}

func (r *userRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.User, int, error) {
	q := conn(ctx, r.db)
	var total int
	err := q.GetContext(ctx, &total, "SELECT COUNT(*) FROM users WHERE company_id = $1", companyID)
	if err != nil {
		return nil, 0, fmt.Errorf("userRepo.ListByCompany count: %w", err)
	}

	var users []domain.User
	err = q.SelectContext(ctx, &users,
		"SELECT * FROM users WHERE company_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3",
		companyID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("userRepo.ListByCompany: %w", err)
	}
	return users, total, nil
}

func (r *userRepo) CountActiveByRole(ctx context.Context, companyID uuid.UUID, role domain.UserRole) (int, error) {
	var n int
	err := conn(ctx, r.db).GetContext(ctx, &n,
		"SELECT COUNT(*) FROM users WHERE company_id = $1 AND role = $2 AND status = $3",
		companyID, role, domain.UserStatusActive)
	if err != nil {
		return 0, fmt.Errorf("userRepo.CountActiveByRole: %w", err)
	}
	return n, nil
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	query := `UPDATE users SET email = $1, password_hash = $2, full_name = $3, role = $4, status = $5,
		updated_at = $6 WHERE id = $7 AND company_id = $8`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		user.Email, user.PasswordHash, user.FullName, user.Role, user.Status,
		user.UpdatedAt, user.ID, user.CompanyID)
	if err != nil {
		if isUniqueViolation(err, "users_company_email_key") {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("userRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepo) TouchLastLogin(ctx context.Context, companyID, userID uuid.UUID) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE users SET last_login_at = $1 WHERE id = $2 AND company_id = $3",
		time.Now().UTC(), userID, companyID)
	if err != nil {
		return fmt.Errorf("userRepo.TouchLastLogin: %w", err)
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, companyID, userID uuid.UUID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"DELETE FROM users WHERE id = $1 AND company_id = $2", userID, companyID)
	if err != nil {
		return fmt.Errorf("userRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
