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

const transactionRequestIDKey = "transactions_request_id_key"

var transactionSortColumns = map[string]string{
	"transaction_date": "transaction_date",
	"amount":           "amount",
	"created_at":       "created_at",
}

type transactionRepo struct {
	db *sqlx.DB
}

// NewTransactionRepo creates a new PostgreSQL-backed TransactionRepository.
func NewTransactionRepo(db *sqlx.DB) port.TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) Create(ctx context.Context, txn *domain.Transaction) error {
	txn.ID = uuid.New()
	now := time.Now().UTC()
	txn.CreatedAt = now
	txn.UpdatedAt = now

	query := `INSERT INTO transactions (id, company_id, account_id, transaction_type, amount,
		transaction_date, party_name, description, payment_id, invoice_id, transfer_id, request_id,
		created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		txn.ID, txn.CompanyID, txn.AccountID, txn.TransactionType, txn.Amount, txn.TransactionDate,
		txn.PartyName, txn.Description, txn.PaymentID, txn.InvoiceID, txn.TransferID, txn.RequestID,
		txn.CreatedBy, txn.CreatedAt, txn.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, transactionRequestIDKey) {
			return domain.ErrIdempotencyKeyConflict
		}
		return fmt.Errorf("transactionRepo.Create: %w", err)
	}
	return nil
}

func (r *transactionRepo) GetByID(ctx context.Context, companyID, txnID uuid.UUID) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := conn(ctx, r.db).GetContext(ctx, &txn,
		"SELECT * FROM transactions WHERE id = $1 AND company_id = $2", txnID, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("transactionRepo.GetByID: %w", err)
	}
	return &txn, nil
}

// GetByIDForUpdate locks the line until the surrounding transaction ends.
func (r *transactionRepo) GetByIDForUpdate(ctx context.Context, companyID, txnID uuid.UUID) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := conn(ctx, r.db).GetContext(ctx, &txn,
		"SELECT * FROM transactions WHERE id = $1 AND company_id = $2 FOR UPDATE", txnID, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("transactionRepo.GetByIDForUpdate: %w", err)
	}
	return &txn, nil
}

func (r *transactionRepo) GetByRequestID(ctx context.Context, companyID uuid.UUID, requestID string) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := conn(ctx, r.db).GetContext(ctx, &txn,
		"SELECT * FROM transactions WHERE company_id = $1 AND request_id = $2", companyID, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("transactionRepo.GetByRequestID: %w", err)
	}
	return &txn, nil
}

func (r *transactionRepo) List(ctx context.Context, companyID uuid.UUID, filter port.TransactionFilter) ([]domain.Transaction, int, error) {
	w := newWhere("company_id", companyID)
	if filter.AccountID != nil {
		w.add("account_id = $%d", *filter.AccountID)
	}
	if filter.TransactionType != "" {
		w.add("transaction_type = $%d", filter.TransactionType)
	}
	if filter.From != nil {
		w.add("transaction_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		w.add("transaction_date <= $%d", *filter.To)
	}

	q := conn(ctx, r.db)
	var total int
	if err := q.GetContext(ctx, &total, "SELECT COUNT(*) FROM transactions "+w.clause(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("transactionRepo.List count: %w", err)
	}

	suffix, args := w.page(filter.Offset, filter.Limit)
	query := fmt.Sprintf("SELECT * FROM transactions %s ORDER BY %s, created_at DESC%s",
		w.clause(), orderBy(filter.Sort, transactionSortColumns, "transaction_date DESC"), suffix)
	var txns []domain.Transaction
	if err := q.SelectContext(ctx, &txns, query, args...); err != nil {
		return nil, 0, fmt.Errorf("transactionRepo.List: %w", err)
	}
	return txns, total, nil
}

func (r *transactionRepo) listBy(ctx context.Context, column string, companyID, id uuid.UUID) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	query := fmt.Sprintf("SELECT * FROM transactions WHERE company_id = $1 AND %s = $2 ORDER BY created_at", column)
	if err := conn(ctx, r.db).SelectContext(ctx, &txns, query, companyID, id); err != nil {
		return nil, fmt.Errorf("transactionRepo.listBy %s: %w", column, err)
	}
	return txns, nil
}

func (r *transactionRepo) ListByPayment(ctx context.Context, companyID, paymentID uuid.UUID) ([]domain.Transaction, error) {
	return r.listBy(ctx, "payment_id", companyID, paymentID)
}

func (r *transactionRepo) ListByInvoice(ctx context.Context, companyID, invoiceID uuid.UUID) ([]domain.Transaction, error) {
	return r.listBy(ctx, "invoice_id", companyID, invoiceID)
}

func (r *transactionRepo) ListByTransfer(ctx context.Context, companyID, transferID uuid.UUID) ([]domain.Transaction, error) {
	return r.listBy(ctx, "transfer_id", companyID, transferID)
}

func (r *transactionRepo) Update(ctx context.Context, txn *domain.Transaction) error {
	txn.UpdatedAt = time.Now().UTC()
	query := `UPDATE transactions SET account_id = $1, transaction_type = $2, amount = $3,
		transaction_date = $4, party_name = $5, description = $6, updated_at = $7
		WHERE id = $8 AND company_id = $9`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		txn.AccountID, txn.TransactionType, txn.Amount, txn.TransactionDate, txn.PartyName,
		txn.Description, txn.UpdatedAt, txn.ID, txn.CompanyID)
	if err != nil {
		return fmt.Errorf("transactionRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func (r *transactionRepo) Delete(ctx context.Context, companyID, txnID uuid.UUID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"DELETE FROM transactions WHERE id = $1 AND company_id = $2", txnID, companyID)
	if err != nil {
		return fmt.Errorf("transactionRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}
