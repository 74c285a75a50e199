package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"khata/internal/domain"
	"khata/internal/port"
	"khata/internal/sanitize"
)

const (
	idemTransfer       = "transfer"
	reconcileBatchSize = 200
)

// CreateAccountInput is the DTO for opening a bank or cash account.
type CreateAccountInput struct {
	AccountType    domain.AccountType `json:"account_type" binding:"required,oneof=bank cash"`
	DisplayName    string             `json:"display_name" binding:"required,max=100"`
	BankName       string             `json:"bank_name"`
	AccountNumber  string             `json:"account_number" binding:"max=34"`
	IFSC           string             `json:"ifsc" binding:"omitempty,len=11"`
	OpeningBalance decimal.Decimal    `json:"opening_balance"`
	OpeningDate    domain.Date        `json:"opening_date"`
}

// UpdateAccountInput is the DTO for account metadata. Balances only move through transactions.
type UpdateAccountInput struct {
	DisplayName   *string `json:"display_name" binding:"omitempty,max=100"`
	BankName      *string `json:"bank_name"`
	AccountNumber *string `json:"account_number" binding:"omitempty,max=34"`
	IFSC          *string `json:"ifsc" binding:"omitempty,len=11"`
}

// CreateTransactionInput is the DTO for a manual ledger line.
// Deposits and withdrawals take the magnitude of Amount; adjustments keep its sign.
type CreateTransactionInput struct {
	AccountID       uuid.UUID              `json:"account_id" binding:"required"`
	TransactionType domain.TransactionType `json:"transaction_type" binding:"required,oneof=deposit withdrawal adjustment"`
	Amount          decimal.Decimal        `json:"amount"`
	TransactionDate domain.Date            `json:"transaction_date"`
	PartyName       string                 `json:"party_name"`
	Description     string                 `json:"description"`
}

// UpdateTransactionInput is the DTO for editing a manual ledger line.
type UpdateTransactionInput struct {
	AccountID       *uuid.UUID              `json:"account_id"`
	TransactionType *domain.TransactionType `json:"transaction_type" binding:"omitempty,oneof=deposit withdrawal adjustment"`
	Amount          *decimal.Decimal        `json:"amount"`
	TransactionDate *domain.Date            `json:"transaction_date"`
	PartyName       *string                 `json:"party_name"`
	Description     *string                 `json:"description"`
}

// TransferInput is the DTO for moving money between two accounts.
type TransferInput struct {
	FromAccountID uuid.UUID       `json:"from_account_id" binding:"required"`
	ToAccountID   uuid.UUID       `json:"to_account_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	TransferDate  domain.Date     `json:"transfer_date"`
	Description   string          `json:"description"`
	RequestID     string          `json:"-"`
}

// Transfer is the pair of ledger lines a transfer produces.
type Transfer struct {
	TransferID uuid.UUID           `json:"transfer_id"`
	Out        *domain.Transaction `json:"out"`
	In         *domain.Transaction `json:"in"`
}

// LedgerService defines the cash and bank contract. Every balance change is
// written in the same database transaction as the ledger line that causes it.
type LedgerService interface {
	CreateAccount(ctx context.Context, companyID, userID uuid.UUID, input CreateAccountInput) (*domain.BankAccount, error)
	GetAccount(ctx context.Context, companyID, accountID uuid.UUID) (*domain.BankAccount, error)
	ListAccounts(ctx context.Context, companyID uuid.UUID, accountType domain.AccountType) ([]domain.BankAccount, error)
	UpdateAccount(ctx context.Context, companyID, accountID uuid.UUID, input UpdateAccountInput) (*domain.BankAccount, error)
	DeleteAccount(ctx context.Context, companyID, accountID uuid.UUID) error

	CreateTransaction(ctx context.Context, companyID, userID uuid.UUID, input CreateTransactionInput) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, companyID, txnID uuid.UUID) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, companyID uuid.UUID, filter port.TransactionFilter) ([]domain.Transaction, int, error)
	UpdateTransaction(ctx context.Context, companyID, txnID uuid.UUID, input UpdateTransactionInput) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, companyID, txnID uuid.UUID) error

	Transfer(ctx context.Context, companyID, userID uuid.UUID, input TransferInput) (*Transfer, error)

	// Reconcile compares every account's balance with its ledger and returns the
	// accounts that drifted. With fix set the stored balance is reset to the ledger.
	// A nil companyID covers every company.
	Reconcile(ctx context.Context, companyID *uuid.UUID, fix bool) ([]domain.ReconciliationRow, error)
}

type ledgerService struct {
	tx          port.TxManager
	accountRepo port.BankAccountRepository
	txnRepo     port.TransactionRepository
	reportRepo  port.ReportRepository
	idem        *idempotencyStore
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	tx port.TxManager,
	accountRepo port.BankAccountRepository,
	txnRepo port.TransactionRepository,
	reportRepo port.ReportRepository,
	idempotencyTTL time.Duration,
) LedgerService {
	return &ledgerService{
		tx:          tx,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		reportRepo:  reportRepo,
		idem:        newIdempotencyStore(idempotencyTTL),
	}
}

func (s *ledgerService) CreateAccount(ctx context.Context, companyID, userID uuid.UUID, input CreateAccountInput) (*domain.BankAccount, error) {
	account := &domain.BankAccount{
		CompanyID:      companyID,
		AccountType:    input.AccountType,
		DisplayName:    sanitize.Name(input.DisplayName),
		BankName:       sanitize.Name(input.BankName),
		AccountNumber:  sanitize.Code(input.AccountNumber),
		IFSC:           sanitize.Code(input.IFSC),
		OpeningBalance: input.OpeningBalance,
		CurrentBalance: input.OpeningBalance,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.accountRepo.Create(ctx, account); err != nil {
			return err
		}
		if account.OpeningBalance.IsZero() {
			return nil
		}
		// The opening line is informational; current_balance already includes it.
		return s.txnRepo.Create(ctx, &domain.Transaction{
			CompanyID:       companyID,
			AccountID:       account.ID,
			TransactionType: domain.TxnOpeningBalance,
			Amount:          account.OpeningBalance,
			TransactionDate: dateOrToday(input.OpeningDate),
			Description:     "Opening balance",
			CreatedBy:       userID,
		})
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *ledgerService) GetAccount(ctx context.Context, companyID, accountID uuid.UUID) (*domain.BankAccount, error) {
	return s.accountRepo.GetByID(ctx, companyID, accountID)
}

func (s *ledgerService) ListAccounts(ctx context.Context, companyID uuid.UUID, accountType domain.AccountType) ([]domain.BankAccount, error) {
	return s.accountRepo.List(ctx, companyID, accountType)
}

func (s *ledgerService) UpdateAccount(ctx context.Context, companyID, accountID uuid.UUID, input UpdateAccountInput) (*domain.BankAccount, error) {
	account, err := s.accountRepo.GetByID(ctx, companyID, accountID)
	if err != nil {
		return nil, err
	}
	if input.DisplayName != nil {
		account.DisplayName = sanitize.Name(*input.DisplayName)
	}
	if input.BankName != nil {
		account.BankName = sanitize.Name(*input.BankName)
	}
	if input.AccountNumber != nil {
		account.AccountNumber = sanitize.Code(*input.AccountNumber)
	}
	if input.IFSC != nil {
		account.IFSC = sanitize.Code(*input.IFSC)
	}
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *ledgerService) DeleteAccount(ctx context.Context, companyID, accountID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		busy, err := s.accountRepo.HasTransactions(ctx, companyID, accountID)
		if err != nil {
			return err
		}
		if busy {
			return domain.ErrAccountHasTransactions
		}
		return s.accountRepo.Delete(ctx, companyID, accountID)
	})
}

// signedAmount applies the sign convention of a manual transaction type.
func signedAmount(txnType domain.TransactionType, amount decimal.Decimal) (decimal.Decimal, error) {
	if !domain.ManualTransactionTypes[txnType] {
		return decimal.Zero, domain.ErrInvalidTransactionType
	}
	if amount.IsZero() {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	switch txnType {
	case domain.TxnDeposit:
		return amount.Abs(), nil
	case domain.TxnWithdrawal:
		return amount.Abs().Neg(), nil
	default:
		return amount, nil
	}
}

func (s *ledgerService) CreateTransaction(ctx context.Context, companyID, userID uuid.UUID, input CreateTransactionInput) (*domain.Transaction, error) {
	amount, err := signedAmount(input.TransactionType, input.Amount)
	if err != nil {
		return nil, err
	}
	txn := &domain.Transaction{
		CompanyID:       companyID,
		AccountID:       input.AccountID,
		TransactionType: input.TransactionType,
		Amount:          amount,
		TransactionDate: dateOrToday(input.TransactionDate),
		PartyName:       sanitize.Name(input.PartyName),
		Description:     sanitize.Text(input.Description),
		CreatedBy:       userID,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.accountRepo.GetByID(ctx, companyID, input.AccountID); err != nil {
			return err
		}
		if err := s.txnRepo.Create(ctx, txn); err != nil {
			return err
		}
		return s.accountRepo.AdjustBalance(ctx, companyID, txn.AccountID, txn.Amount)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *ledgerService) GetTransaction(ctx context.Context, companyID, txnID uuid.UUID) (*domain.Transaction, error) {
	return s.txnRepo.GetByID(ctx, companyID, txnID)
}

func (s *ledgerService) ListTransactions(ctx context.Context, companyID uuid.UUID, filter port.TransactionFilter) ([]domain.Transaction, int, error) {
	return s.txnRepo.List(ctx, companyID, filter)
}

func (s *ledgerService) UpdateTransaction(ctx context.Context, companyID, txnID uuid.UUID, input UpdateTransactionInput) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		txn, err = s.txnRepo.GetByIDForUpdate(ctx, companyID, txnID)
		if err != nil {
			return err
		}
		if txn.TransactionType == domain.TxnOpeningBalance || txn.IsLinked() {
			return domain.ErrTransactionLinked
		}

		oldAccount, oldAmount := txn.AccountID, txn.Amount

		txnType, raw := txn.TransactionType, txn.Amount
		if input.TransactionType != nil {
			txnType = *input.TransactionType
		}
		if input.Amount != nil {
			raw = *input.Amount
		}
		amount, err := signedAmount(txnType, raw)
		if err != nil {
			return err
		}
		txn.TransactionType, txn.Amount = txnType, amount

		if input.AccountID != nil && *input.AccountID != txn.AccountID {
			if _, err := s.accountRepo.GetByID(ctx, companyID, *input.AccountID); err != nil {
				return err
			}
			txn.AccountID = *input.AccountID
		}
		if input.TransactionDate != nil && !input.TransactionDate.IsZero() {
			txn.TransactionDate = *input.TransactionDate
		}
		if input.PartyName != nil {
			txn.PartyName = sanitize.Name(*input.PartyName)
		}
		if input.Description != nil {
			txn.Description = sanitize.Text(*input.Description)
		}

		if err := s.txnRepo.Update(ctx, txn); err != nil {
			return err
		}

		if oldAccount != txn.AccountID {
			if err := s.accountRepo.AdjustBalance(ctx, companyID, oldAccount, oldAmount.Neg()); err != nil {
				return err
			}
			return s.accountRepo.AdjustBalance(ctx, companyID, txn.AccountID, txn.Amount)
		}
		delta := txn.Amount.Sub(oldAmount)
		if delta.IsZero() {
			return nil
		}
		return s.accountRepo.AdjustBalance(ctx, companyID, txn.AccountID, delta)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// DeleteTransaction removes a manual line, or both legs of a transfer.
func (s *ledgerService) DeleteTransaction(ctx context.Context, companyID, txnID uuid.UUID) error {
	var legs []domain.Transaction
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		txn, err := s.txnRepo.GetByIDForUpdate(ctx, companyID, txnID)
		if err != nil {
			return err
		}
		if txn.TransactionType == domain.TxnOpeningBalance || txn.PaymentID != nil || txn.InvoiceID != nil {
			return domain.ErrTransactionLinked
		}

		legs = []domain.Transaction{*txn}
		if txn.TransferID != nil {
			legs, err = s.txnRepo.ListByTransfer(ctx, companyID, *txn.TransferID)
			if err != nil {
				return err
			}
		}
		for i := range legs {
			if err := s.txnRepo.Delete(ctx, companyID, legs[i].ID); err != nil {
				return err
			}
			if err := s.accountRepo.AdjustBalance(ctx, companyID, legs[i].AccountID, legs[i].Amount.Neg()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for i := range legs {
		s.idem.forget(idemTransfer, companyID, legs[i].RequestID)
	}
	return nil
}

func (s *ledgerService) Transfer(ctx context.Context, companyID, userID uuid.UUID, input TransferInput) (*Transfer, error) {
	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccountTransfer
	}
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if id, ok := s.idem.lookup(idemTransfer, companyID, input.RequestID); ok {
		existing, err := s.loadTransfer(ctx, companyID, id)
		if !errors.Is(err, domain.ErrTransactionNotFound) {
			return existing, err
		}
		s.idem.forget(idemTransfer, companyID, &input.RequestID)
	}

	transferID := uuid.New()
	date := dateOrToday(input.TransferDate)
	desc := sanitize.Text(input.Description)
	result := &Transfer{TransferID: transferID}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		from, err := s.accountRepo.GetByID(ctx, companyID, input.FromAccountID)
		if err != nil {
			return err
		}
		to, err := s.accountRepo.GetByID(ctx, companyID, input.ToAccountID)
		if err != nil {
			return err
		}

		result.Out = &domain.Transaction{
			CompanyID:       companyID,
			AccountID:       from.ID,
			TransactionType: domain.TxnTransferOut,
			Amount:          input.Amount.Neg(),
			TransactionDate: date,
			PartyName:       to.DisplayName,
			Description:     desc,
			TransferID:      &transferID,
			RequestID:       requestIDPtr(input.RequestID),
			CreatedBy:       userID,
		}
		result.In = &domain.Transaction{
			CompanyID:       companyID,
			AccountID:       to.ID,
			TransactionType: domain.TxnTransferIn,
			Amount:          input.Amount,
			TransactionDate: date,
			PartyName:       from.DisplayName,
			Description:     desc,
			TransferID:      &transferID,
			CreatedBy:       userID,
		}
		for _, leg := range []*domain.Transaction{result.Out, result.In} {
			if err := s.txnRepo.Create(ctx, leg); err != nil {
				return err
			}
			if err := s.accountRepo.AdjustBalance(ctx, companyID, leg.AccountID, leg.Amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrIdempotencyKeyConflict) && input.RequestID != "" {
			if out, lookupErr := s.txnRepo.GetByRequestID(ctx, companyID, input.RequestID); lookupErr == nil && out.TransferID != nil {
				if existing, loadErr := s.loadTransfer(ctx, companyID, *out.TransferID); loadErr == nil {
					s.idem.remember(idemTransfer, companyID, input.RequestID, existing.TransferID)
					return existing, nil
				}
			}
		}
		return nil, err
	}

	s.idem.remember(idemTransfer, companyID, input.RequestID, transferID)
	zerolog.Ctx(ctx).Info().
		Str("transfer_id", transferID.String()).
		Str("from", input.FromAccountID.String()).
		Str("to", input.ToAccountID.String()).
		Str("amount", input.Amount.String()).
		Msg("transfer recorded")
	return result, nil
}

func (s *ledgerService) loadTransfer(ctx context.Context, companyID, transferID uuid.UUID) (*Transfer, error) {
	legs, err := s.txnRepo.ListByTransfer(ctx, companyID, transferID)
	if err != nil {
		return nil, err
	}
	result := &Transfer{TransferID: transferID}
	for i := range legs {
		switch legs[i].TransactionType {
		case domain.TxnTransferOut:
			result.Out = &legs[i]
		case domain.TxnTransferIn:
			result.In = &legs[i]
		}
	}
	if result.Out == nil || result.In == nil {
		return nil, domain.ErrTransactionNotFound
	}
	return result, nil
}

func (s *ledgerService) Reconcile(ctx context.Context, companyID *uuid.UUID, fix bool) ([]domain.ReconciliationRow, error) {
	log := zerolog.Ctx(ctx)
	var drifted []domain.ReconciliationRow

	for offset := 0; ; offset += reconcileBatchSize {
		rows, err := s.reportRepo.Reconciliation(ctx, companyID, offset, reconcileBatchSize)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			row := rows[i]
			if !row.HasDrift() {
				continue
			}
			log.Warn().
				Str("company_id", row.CompanyID.String()).
				Str("account_id", row.AccountID.String()).
				Str("stored", row.CurrentBalance.String()).
				Str("expected", row.ExpectedBalance.String()).
				Str("drift", row.Drift.String()).
				Bool("fix", fix).
				Msg("ledger drift detected")
			if fix {
				err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
					balance, err := s.accountRepo.ResetBalanceFromLedger(ctx, row.CompanyID, row.AccountID)
					if err != nil {
						return err
					}
					if !balance.Equal(row.ExpectedBalance) {
						log.Info().
							Str("account_id", row.AccountID.String()).
							Str("balance", balance.String()).
							Msg("ledger moved during reconcile")
					}
					return nil
				})
				if err != nil {
					return nil, err
				}
			}
			drifted = append(drifted, row)
		}
		if len(rows) < reconcileBatchSize {
			break
		}
	}
	return drifted, nil
}
