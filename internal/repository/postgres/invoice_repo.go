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

const (
	invoiceNumberKey    = "invoices_number_key"
	invoiceRequestIDKey = "invoices_request_id_key"
)

var invoiceSortColumns = map[string]string{
	"invoice_date":   "invoice_date",
	"invoice_number": "invoice_number",
	"total_amount":   "total_amount",
	"balance_amount": "balance_amount",
	"party_name":     "party_name",
	"created_at":     "created_at",
}

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	inv.ID = uuid.New()
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	query := `INSERT INTO invoices (id, company_id, invoice_type, invoice_number, invoice_date, due_date,
		party_id, party_name, place_of_supply, items, subtotal, discount_amount, taxable_amount,
		gst_amount, cgst_amount, sgst_amount, igst_amount, round_off, total_amount, paid_amount,
		balance_amount, payment_status, linked_invoices, link_discount, refund_amount, refund_account_id,
		request_id, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		$21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31)`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		inv.ID, inv.CompanyID, inv.InvoiceType, inv.InvoiceNumber, inv.InvoiceDate, inv.DueDate,
		inv.PartyID, inv.PartyName, inv.PlaceOfSupply, inv.Items, inv.Subtotal, inv.DiscountAmount,
		inv.TaxableAmount, inv.GSTAmount, inv.CGSTAmount, inv.SGSTAmount, inv.IGSTAmount, inv.RoundOff,
		inv.TotalAmount, inv.PaidAmount, inv.BalanceAmount, inv.PaymentStatus, inv.LinkedInvoices,
		inv.LinkDiscount, inv.RefundAmount, inv.RefundAccountID, inv.RequestID, inv.Notes, inv.CreatedBy,
		inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err, invoiceNumberKey):
			return domain.ErrDuplicateInvoiceNumber
		case isUniqueViolation(err, invoiceRequestIDKey):
			return domain.ErrIdempotencyKeyConflict
		}
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, companyID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := conn(ctx, r.db).GetContext(ctx, &inv,
		"SELECT * FROM invoices WHERE id = $1 AND company_id = $2", invoiceID, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &inv, nil
}

// GetByIDForUpdate locks the invoice row until the surrounding transaction ends.
func (r *invoiceRepo) GetByIDForUpdate(ctx context.Context, companyID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := conn(ctx, r.db).GetContext(ctx, &inv,
		"SELECT * FROM invoices WHERE id = $1 AND company_id = $2 FOR UPDATE", invoiceID, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByIDForUpdate: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) GetByRequestID(ctx context.Context, companyID uuid.UUID, requestID string) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := conn(ctx, r.db).GetContext(ctx, &inv,
		"SELECT * FROM invoices WHERE company_id = $1 AND request_id = $2", companyID, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByRequestID: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) List(ctx context.Context, companyID uuid.UUID, filter port.InvoiceFilter) ([]domain.Invoice, int, error) {
	w := newWhere("company_id", companyID)
	if filter.InvoiceType != "" {
		w.add("invoice_type = $%d", filter.InvoiceType)
	}
	if filter.PartyID != nil {
		w.add("party_id = $%d", *filter.PartyID)
	}
	if filter.PaymentStatus != "" {
		w.add("payment_status = $%d", filter.PaymentStatus)
	}
	if filter.From != nil {
		w.add("invoice_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		w.add("invoice_date <= $%d", *filter.To)
	}
	if filter.Search != "" {
		w.add("(invoice_number ILIKE $%d OR party_name ILIKE $%d)", "%"+escapeLike(filter.Search)+"%")
	}

	q := conn(ctx, r.db)
	var total int
	if err := q.GetContext(ctx, &total, "SELECT COUNT(*) FROM invoices "+w.clause(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	suffix, args := w.page(filter.Offset, filter.Limit)
	query := fmt.Sprintf("SELECT * FROM invoices %s ORDER BY %s, created_at DESC%s",
		w.clause(), orderBy(filter.Sort, invoiceSortColumns, "invoice_date DESC"), suffix)
	var invoices []domain.Invoice
	if err := q.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepo) ListOutstanding(ctx context.Context, companyID, partyID uuid.UUID, invoiceType domain.InvoiceType) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := conn(ctx, r.db).SelectContext(ctx, &invoices,
		`SELECT * FROM invoices
		 WHERE company_id = $1 AND party_id = $2 AND invoice_type = $3 AND balance_amount > 0
		 ORDER BY invoice_date, created_at`,
		companyID, partyID, invoiceType)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListOutstanding: %w", err)
	}
	return invoices, nil
}

// Update rewrites the document fields. paid_amount only moves through ApplyPayment,
// so balance and status are derived from the stored value.
func (r *invoiceRepo) Update(ctx context.Context, inv *domain.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()
	query := `UPDATE invoices SET invoice_number = $1, invoice_date = $2, due_date = $3, party_id = $4,
		party_name = $5, place_of_supply = $6, items = $7, subtotal = $8, discount_amount = $9,
		taxable_amount = $10, gst_amount = $11, cgst_amount = $12, sgst_amount = $13, igst_amount = $14,
		round_off = $15, total_amount = $16,
		balance_amount = $16 - paid_amount,
		payment_status = CASE
			WHEN $16 - paid_amount <= 0 THEN 'paid'
			WHEN paid_amount > 0 THEN 'partial'
			ELSE 'unpaid' END,
		linked_invoices = $17, link_discount = $18, refund_amount = $19, refund_account_id = $20,
		notes = $21, updated_at = $22
		WHERE id = $23 AND company_id = $24
		RETURNING paid_amount, balance_amount, payment_status`
	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		inv.InvoiceNumber, inv.InvoiceDate, inv.DueDate, inv.PartyID, inv.PartyName, inv.PlaceOfSupply,
		inv.Items, inv.Subtotal, inv.DiscountAmount, inv.TaxableAmount, inv.GSTAmount, inv.CGSTAmount,
		inv.SGSTAmount, inv.IGSTAmount, inv.RoundOff, inv.TotalAmount,
		inv.LinkedInvoices, inv.LinkDiscount, inv.RefundAmount, inv.RefundAccountID,
		inv.Notes, inv.UpdatedAt, inv.ID, inv.CompanyID,
	).Scan(&inv.PaidAmount, &inv.BalanceAmount, &inv.PaymentStatus)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return domain.ErrInvoiceNotFound
		case isUniqueViolation(err, invoiceNumberKey):
			return domain.ErrDuplicateInvoiceNumber
		}
		return fmt.Errorf("invoiceRepo.Update: %w", err)
	}
	return nil
}

func (r *invoiceRepo) ApplyPayment(ctx context.Context, companyID, invoiceID uuid.UUID, amount decimal.Decimal) error {
	query := `UPDATE invoices SET
		paid_amount = paid_amount + $1,
		balance_amount = balance_amount - $1,
		payment_status = CASE
			WHEN balance_amount - $1 <= 0 THEN 'paid'
			WHEN paid_amount + $1 > 0 THEN 'partial'
			ELSE 'unpaid' END,
		updated_at = $2
		WHERE company_id = $3 AND id = $4 AND balance_amount >= $1 AND paid_amount + $1 >= 0`
	result, err := conn(ctx, r.db).ExecContext(ctx, query, amount, time.Now().UTC(), companyID, invoiceID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.ApplyPayment: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, companyID, invoiceID); err != nil {
		return err
	}
	if amount.IsPositive() {
		return domain.ErrAllocationExceedsBalance
	}
	return domain.ErrInvalidAmount
}

func (r *invoiceRepo) Delete(ctx context.Context, companyID, invoiceID uuid.UUID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"DELETE FROM invoices WHERE id = $1 AND company_id = $2", invoiceID, companyID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}
