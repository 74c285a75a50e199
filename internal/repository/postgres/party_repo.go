package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"khata/internal/domain"
	"khata/internal/port"
)

var partySortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
	"balance":    "(total_receivable - total_payable)",
}

type partyRepo struct {
	db *sqlx.DB
}

// NewPartyRepo creates a new PostgreSQL-backed PartyRepository.
func NewPartyRepo(db *sqlx.DB) port.PartyRepository {
	return &partyRepo{db: db}
}

func (r *partyRepo) Create(ctx context.Context, party *domain.Party) error {
	party.ID = uuid.New()
	now := time.Now().UTC()
	party.CreatedAt = now
	party.UpdatedAt = now

	query := `INSERT INTO parties (id, company_id, party_type, name, phone, email, gst_number, address,
		state_code, party_group, credit_limit, opening_balance, total_receivable, total_payable,
		created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		party.ID, party.CompanyID, party.PartyType, party.Name, party.Phone, party.Email,
		party.GSTNumber, party.Address, party.StateCode, party.PartyGroup, party.CreditLimit,
		party.OpeningBalance, party.TotalReceivable, party.TotalPayable, party.CreatedAt, party.UpdatedAt)
	if err != nil {
		return fmt.Errorf("partyRepo.Create: %w", err)
	}
	return nil
}

func (r *partyRepo) GetByID(ctx context.Context, companyID, partyID uuid.UUID) (*domain.Party, error) {
	var party domain.Party
	err := conn(ctx, r.db).GetContext(ctx, &party,
		"SELECT * FROM parties WHERE id = $1 AND company_id = $2", partyID, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPartyNotFound
		}
		return nil, fmt.Errorf("partyRepo.GetByID: %w", err)
	}
	return &party, nil
}

func (r *partyRepo) List(ctx context.Context, companyID uuid.UUID, filter port.PartyFilter) ([]domain.Party, int, error) {
	w := newWhere("company_id", companyID)
	if filter.PartyType != "" {
		w.add("party_type = $%d", filter.PartyType)
	}
	if filter.PartyGroup != "" {
		w.add("party_group = $%d", filter.PartyGroup)
	}
	if filter.Search != "" {
		w.add("(name ILIKE $%d OR phone ILIKE $%d OR gst_number ILIKE $%d)", "%"+escapeLike(filter.Search)+"%")
	}

	q := conn(ctx, r.db)
	var total int
	if err := q.GetContext(ctx, &total, "SELECT COUNT(*) FROM parties "+w.clause(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("partyRepo.List count: %w", err)
	}

	suffix, args := w.page(filter.Offset, filter.Limit)
	query := fmt.Sprintf("SELECT * FROM parties %s ORDER BY %s%s",
		w.clause(), orderBy(filter.Sort, partySortColumns, "name ASC"), suffix)
	var parties []domain.Party
	if err := q.SelectContext(ctx, &parties, query, args...); err != nil {
		return nil, 0, fmt.Errorf("partyRepo.List: %w", err)
	}
	return parties, total, nil
}

func (r *partyRepo) Update(ctx context.Context, party *domain.Party) error {
	party.UpdatedAt = time.Now().UTC()
	query := `UPDATE parties SET name = $1, phone = $2, email = $3, gst_number = $4, address = $5,
		state_code = $6, party_group = $7, credit_limit = $8, opening_balance = $9, updated_at = $10
		WHERE id = $11 AND company_id = $12`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		party.Name, party.Phone, party.Email, party.GSTNumber, party.Address, party.StateCode,
		party.PartyGroup, party.CreditLimit, party.OpeningBalance, party.UpdatedAt, party.ID, party.CompanyID)
	if err != nil {
		return fmt.Errorf("partyRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrPartyNotFound
	}
	return nil
}

func (r *partyRepo) AdjustBalance(ctx context.Context, companyID, partyID uuid.UUID, receivable, payable decimal.Decimal) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE parties SET total_receivable = total_receivable + $1, total_payable = total_payable + $2,
		 updated_at = $3 WHERE id = $4 AND company_id = $5`,
		receivable, payable, time.Now().UTC(), partyID, companyID)
	if err != nil {
		return fmt.Errorf("partyRepo.AdjustBalance: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrPartyNotFound
	}
	return nil
}

func (r *partyRepo) HasActivity(ctx context.Context, companyID, partyID uuid.UUID) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM invoices WHERE company_id = $1 AND party_id = $2)
		     OR EXISTS (SELECT 1 FROM payments WHERE company_id = $1 AND party_id = $2)`,
		companyID, partyID)
	if err != nil {
		return false, fmt.Errorf("partyRepo.HasActivity: %w", err)
	}
	return exists, nil
}

func (r *partyRepo) Delete(ctx context.Context, companyID, partyID uuid.UUID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"DELETE FROM parties WHERE id = $1 AND company_id = $2", partyID, companyID)
	if err != nil {
		return fmt.Errorf("partyRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrPartyNotFound
	}
	return nil
}
