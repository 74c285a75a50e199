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

var paymentSortColumns = map[string]string{
	"payment_date":   "payment_date",
	"payment_number": "payment_number",
	"total_amount":   "total_amount",
	"party_name":     "party_name",
	"created_at":     "created_at",
}

type paymentRepo struct {
	db *sqlx.DB
}

// NewPaymentRepo creates a new PostgreSQL-backed PaymentRepository.
func NewPaymentRepo(db *sqlx.DB) port.PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	p.ID = uuid.New()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `INSERT INTO payments (id, company_id, payment_number, payment_type, party_id, party_name,
		payment_date, payment_methods, total_amount, discount, linked_invoices, unused_amount,
		request_id, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		p.ID, p.CompanyID, p.PaymentNumber, p.PaymentType, p.PartyID, p.PartyName, p.PaymentDate,
		p.PaymentMethods, p.TotalAmount, p.Discount, p.LinkedInvoices, p.UnusedAmount, p.RequestID,
		p.Notes, p.CreatedBy, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "payments_request_id_key") {
			return domain.ErrIdempotencyKeyConflict
		}
		return fmt.Errorf("paymentRepo.Create: %w", err)
	}
	return nil
}

func (r *paymentRepo) GetByID(ctx context.Context, companyID, paymentID uuid.UUID) (*domain.Payment, error) {
	var p domain.Payment
	err := conn(ctx, r.db).GetContext(ctx, &p,
		"SELECT * FROM payments WHERE id = $1 AND company_id = $2", paymentID, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("paymentRepo.GetByID: %w", err)
	}
	return &p, nil
}

func (r *paymentRepo) GetByRequestID(ctx context.Context, companyID uuid.UUID, requestID string) (*domain.Payment, error) {
	var p domain.Payment
	err := conn(ctx, r.db).GetContext(ctx, &p,
		"SELECT * FROM payments WHERE company_id = $1 AND request_id = $2", companyID, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("paymentRepo.GetByRequestID: %w", err)
	}
	return &p, nil
}

func (r *paymentRepo) List(ctx context.Context, companyID uuid.UUID, filter port.PaymentFilter) ([]domain.Payment, int, error) {
	w := newWhere("company_id", companyID)
	if filter.PaymentType != "" {
		w.add("payment_type = $%d", filter.PaymentType)
	}
	if filter.PartyID != nil {
		w.add("party_id = $%d", *filter.PartyID)
	}
	if filter.From != nil {
		w.add("payment_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		w.add("payment_date <= $%d", *filter.To)
	}

	q := conn(ctx, r.db)
	var total int
	if err := q.GetContext(ctx, &total, "SELECT COUNT(*) FROM payments "+w.clause(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("paymentRepo.List count: %w", err)
	}

	suffix, args := w.page(filter.Offset, filter.Limit)
	query := fmt.Sprintf("SELECT * FROM payments %s ORDER BY %s, created_at DESC%s",
		w.clause(), orderBy(filter.Sort, paymentSortColumns, "payment_date DESC"), suffix)
	var payments []domain.Payment
	if err := q.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("paymentRepo.List: %w", err)
	}
	return payments, total, nil
}

func (r *paymentRepo) Delete(ctx context.Context, companyID, paymentID uuid.UUID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"DELETE FROM payments WHERE id = $1 AND company_id = $2", paymentID, companyID)
	if err != nil {
		return fmt.Errorf("paymentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}
