package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"khata/internal/domain"
)

// TxManager runs fn inside a database transaction carried by the context.
// Repositories called with that context join the transaction; nested calls reuse it.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CompanyRepository defines the contract for company persistence.
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Company, error)
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
	Update(ctx context.Context, company *domain.Company) error
}

// UserRepository defines the contract for user persistence.
// All query methods include companyID to enforce tenant isolation at the data layer.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, companyID, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, companyID uuid.UUID, email string) (*domain.User, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.User, int, error)
	CountActiveByRole(ctx context.Context, companyID uuid.UUID, role domain.UserRole) (int, error)
	Update(ctx context.Context, user *domain.User) error
	TouchLastLogin(ctx context.Context, companyID, userID uuid.UUID) error
	Delete(ctx context.Context, companyID, userID uuid.UUID) error
}

// PartyRepository defines the contract for customer and vendor persistence.
type PartyRepository interface {
	Create(ctx context.Context, party *domain.Party) error
	GetByID(ctx context.Context, companyID, partyID uuid.UUID) (*domain.Party, error)
	List(ctx context.Context, companyID uuid.UUID, filter PartyFilter) ([]domain.Party, int, error)
	Update(ctx context.Context, party *domain.Party) error
	// AdjustBalance adds the deltas to total_receivable and total_payable in place.
	AdjustBalance(ctx context.Context, companyID, partyID uuid.UUID, receivable, payable decimal.Decimal) error
	HasActivity(ctx context.Context, companyID, partyID uuid.UUID) (bool, error)
	Delete(ctx context.Context, companyID, partyID uuid.UUID) error
}

// ProductRepository defines the contract for product persistence.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, companyID, productID uuid.UUID) (*domain.Product, error)
	GetByItemCode(ctx context.Context, companyID uuid.UUID, itemCode string) (*domain.Product, error)
	List(ctx context.Context, companyID uuid.UUID, filter ProductFilter) ([]domain.Product, int, error)
	Update(ctx context.Context, product *domain.Product) error
	// AdjustStock adds delta to current_stock in place.
	AdjustStock(ctx context.Context, companyID, productID uuid.UUID, delta decimal.Decimal) error
	Delete(ctx context.Context, companyID, productID uuid.UUID) error
}

// InvoiceRepository defines the contract for invoice and return persistence.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, companyID, invoiceID uuid.UUID) (*domain.Invoice, error)
	// GetByIDForUpdate reads the invoice and locks it for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, companyID, invoiceID uuid.UUID) (*domain.Invoice, error)
	GetByRequestID(ctx context.Context, companyID uuid.UUID, requestID string) (*domain.Invoice, error)
	List(ctx context.Context, companyID uuid.UUID, filter InvoiceFilter) ([]domain.Invoice, int, error)
	// ListOutstanding returns invoices with a positive balance, oldest first.
	ListOutstanding(ctx context.Context, companyID, partyID uuid.UUID, invoiceType domain.InvoiceType) ([]domain.Invoice, error)
	// Update writes the document fields and refreshes paid, balance and status from the row.
	Update(ctx context.Context, invoice *domain.Invoice) error
	// ApplyPayment moves amount from balance to paid. A positive amount larger than the
	// current balance fails with domain.ErrAllocationExceedsBalance; negative amounts reverse.
	ApplyPayment(ctx context.Context, companyID, invoiceID uuid.UUID, amount decimal.Decimal) error
	Delete(ctx context.Context, companyID, invoiceID uuid.UUID) error
}

// PaymentRepository defines the contract for payment persistence.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, companyID, paymentID uuid.UUID) (*domain.Payment, error)
	GetByRequestID(ctx context.Context, companyID uuid.UUID, requestID string) (*domain.Payment, error)
	List(ctx context.Context, companyID uuid.UUID, filter PaymentFilter) ([]domain.Payment, int, error)
	Delete(ctx context.Context, companyID, paymentID uuid.UUID) error
}

// BankAccountRepository defines the contract for bank and cash account persistence.
type BankAccountRepository interface {
	Create(ctx context.Context, account *domain.BankAccount) error
	GetByID(ctx context.Context, companyID, accountID uuid.UUID) (*domain.BankAccount, error)
	List(ctx context.Context, companyID uuid.UUID, accountType domain.AccountType) ([]domain.BankAccount, error)
	Update(ctx context.Context, account *domain.BankAccount) error
	// AdjustBalance adds delta to current_balance in place.
	AdjustBalance(ctx context.Context, companyID, accountID uuid.UUID, delta decimal.Decimal) error
	// ResetBalanceFromLedger sets current_balance to the opening balance plus every
	// non-opening ledger line in one statement, and returns the new balance.
	ResetBalanceFromLedger(ctx context.Context, companyID, accountID uuid.UUID) (decimal.Decimal, error)
	HasTransactions(ctx context.Context, companyID, accountID uuid.UUID) (bool, error)
	Delete(ctx context.Context, companyID, accountID uuid.UUID) error
}

// TransactionRepository defines the contract for ledger line persistence.
type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	GetByID(ctx context.Context, companyID, txnID uuid.UUID) (*domain.Transaction, error)
	// GetByIDForUpdate reads the line and locks it for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, companyID, txnID uuid.UUID) (*domain.Transaction, error)
	// GetByRequestID returns the line that carries a client request key.
	GetByRequestID(ctx context.Context, companyID uuid.UUID, requestID string) (*domain.Transaction, error)
	List(ctx context.Context, companyID uuid.UUID, filter TransactionFilter) ([]domain.Transaction, int, error)
	ListByPayment(ctx context.Context, companyID, paymentID uuid.UUID) ([]domain.Transaction, error)
	ListByInvoice(ctx context.Context, companyID, invoiceID uuid.UUID) ([]domain.Transaction, error)
	ListByTransfer(ctx context.Context, companyID, transferID uuid.UUID) ([]domain.Transaction, error)
	Update(ctx context.Context, txn *domain.Transaction) error
	Delete(ctx context.Context, companyID, txnID uuid.UUID) error
}

// SettingsRepository defines the contract for per-company settings and numbering.
type SettingsRepository interface {
	Get(ctx context.Context, companyID uuid.UUID) (*domain.AppSettings, error)
	Upsert(ctx context.Context, settings *domain.AppSettings) error
	// NextNumber atomically reserves the next sequence number of a document series.
	NextNumber(ctx context.Context, companyID uuid.UUID, series string) (int64, error)
}

// FileMetaRepository defines the contract for file metadata persistence.
// All query methods include companyID for tenant isolation.
type FileMetaRepository interface {
	Create(ctx context.Context, meta *domain.FileMeta) error
	GetByID(ctx context.Context, companyID, fileID uuid.UUID) (*domain.FileMeta, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.FileMeta, int, error)
	UpdateStatus(ctx context.Context, companyID, fileID uuid.UUID, status domain.FileStatus) error
	Delete(ctx context.Context, companyID, fileID uuid.UUID) error
}
