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

type bankAccountRepo struct {
	db *sqlx.DB
}

// NewBankAccountRepo creates a new PostgreSQL-backed BankAccountRepository.
func NewBankAccountRepo(db *sqlx.DB) port.BankAccountRepository {
	return &bankAccountRepo{db: db}
}

func (r *bankAccountRepo) Create(ctx context.Context, acct *domain.BankAccount) error {
	acct.ID = uuid.New()
	now := time.Now().UTC()
	acct.CreatedAt = now
	acct.UpdatedAt = now

	query := `INSERT INTO bank_accounts (id, company_id, account_type, display_name, bank_name,
		account_number, ifsc, opening_balance, current_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		acct.ID, acct.CompanyID, acct.AccountType, acct.DisplayName, acct.BankName, acct.AccountNumber,
		acct.IFSC, acct.OpeningBalance, acct.CurrentBalance, acct.CreatedAt, acct.UpdatedAt)
	if err != nil {
		return fmt.Errorf("bankAccountRepo.Create: %w", err)
	}
	return nil
}

func (r *bankAccountRepo) GetByID(ctx context.Context, companyID, accountID uuid.UUID) (*domain.BankAccount, error) {
	var acct domain.BankAccount
	err := conn(ctx, r.db).GetContext(ctx, &acct,
		"SELECT * FROM bank_accounts WHERE id = $1 AND company_id = $2", accountID, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("bankAccountRepo.GetByID: %w", err)
	}
	return &acct, nil
}

func (r *bankAccountRepo) List(ctx context.Context, companyID uuid.UUID, accountType domain.AccountType) ([]domain.BankAccount, error) {
	w := newWhere("company_id", companyID)
	if accountType != "" {
		w.add("account_type = $%d", accountType)
	}
	var accounts []domain.BankAccount
	err := conn(ctx, r.db).SelectContext(ctx, &accounts,
		"SELECT * FROM bank_accounts "+w.clause()+" ORDER BY account_type, display_name", w.args...)
	if err != nil {
		return nil, fmt.Errorf("bankAccountRepo.List: %w", err)
	}
	return accounts, nil
}

func (r *bankAccountRepo) Update(ctx context.Context, acct *domain.BankAccount) error {
	acct.UpdatedAt = time.Now().UTC()
	query := `UPDATE bank_accounts SET display_name = $1, bank_name = $2, account_number = $3, ifsc = $4,
		updated_at = $5 WHERE id = $6 AND company_id = $7`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		acct.DisplayName, acct.BankName, acct.AccountNumber, acct.IFSC, acct.UpdatedAt, acct.ID, acct.CompanyID)
	if err != nil {
		return fmt.Errorf("bankAccountRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *bankAccountRepo) AdjustBalance(ctx context.Context, companyID, accountID uuid.UUID, delta decimal.Decimal) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE bank_accounts SET current_balance = current_balance + $1, updated_at = $2 WHERE id = $3 AND company_id = $4",
		delta, time.Now().UTC(), accountID, companyID)
	if err != nil {
		return fmt.Errorf("bankAccountRepo.AdjustBalance: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// ResetBalanceFromLedger must run inside a transaction. The account row is locked
// first so the ledger sum is read after any writer holding the lock has committed.
func (r *bankAccountRepo) ResetBalanceFromLedger(ctx context.Context, companyID, accountID uuid.UUID) (decimal.Decimal, error) {
	q := conn(ctx, r.db)
	var locked uuid.UUID
	err := q.GetContext(ctx, &locked,
		"SELECT id FROM bank_accounts WHERE id = $1 AND company_id = $2 FOR UPDATE", accountID, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, domain.ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("bankAccountRepo.ResetBalanceFromLedger lock: %w", err)
	}

	var balance decimal.Decimal
	err = q.GetContext(ctx, &balance,
		`UPDATE bank_accounts a SET
			current_balance = a.opening_balance + COALESCE((
				SELECT SUM(t.amount) FROM transactions t
				WHERE t.account_id = a.id AND t.company_id = a.company_id AND t.transaction_type != $1
			), 0),
			updated_at = $2
		 WHERE a.id = $3 AND a.company_id = $4
		 RETURNING a.current_balance`,
		domain.TxnOpeningBalance, time.Now().UTC(), accountID, companyID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bankAccountRepo.ResetBalanceFromLedger: %w", err)
	}
	return balance, nil
}

// HasTransactions ignores the account's own opening balance line.
func (r *bankAccountRepo) HasTransactions(ctx context.Context, companyID, accountID uuid.UUID) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM transactions
		 WHERE company_id = $1 AND account_id = $2 AND transaction_type != $3)`,
		companyID, accountID, domain.TxnOpeningBalance)
	if err != nil {
		return false, fmt.Errorf("bankAccountRepo.HasTransactions: %w", err)
	}
	return exists, nil
}

func (r *bankAccountRepo) Delete(ctx context.Context, companyID, accountID uuid.UUID) error {
	q := conn(ctx, r.db)
	if _, err := q.ExecContext(ctx,
		"DELETE FROM transactions WHERE company_id = $1 AND account_id = $2 AND transaction_type = $3",
		companyID, accountID, domain.TxnOpeningBalance); err != nil {
		return fmt.Errorf("bankAccountRepo.Delete opening: %w", err)
	}
	result, err := q.ExecContext(ctx,
		"DELETE FROM bank_accounts WHERE id = $1 AND company_id = $2", accountID, companyID)
	if err != nil {
		return fmt.Errorf("bankAccountRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
