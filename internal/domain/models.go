package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Company is the tenant: every other record belongs to exactly one company.
type Company struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	GSTNumber string    `db:"gst_number" json:"gst_number"`
	StateCode string    `db:"state_code" json:"state_code"`
	Address   string    `db:"address" json:"address"`
	Phone     string    `db:"phone" json:"phone"`
	Email     string    `db:"email" json:"email"`
	LogoURL   string    `db:"logo_url" json:"logo_url"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// User is a team member of a company.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	CompanyID    uuid.UUID  `db:"company_id" json:"company_id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Status       UserStatus `db:"status" json:"status"`
	InvitedBy    *uuid.UUID `db:"invited_by" json:"invited_by,omitempty"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the user can sign in.
func (u *User) IsActive() bool { return u.Status == UserStatusActive }

// Party is a customer or a vendor.
type Party struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	CompanyID       uuid.UUID       `db:"company_id" json:"company_id"`
	PartyType       PartyType       `db:"party_type" json:"party_type"`
	Name            string          `db:"name" json:"name"`
	Phone           string          `db:"phone" json:"phone"`
	Email           string          `db:"email" json:"email"`
	GSTNumber       string          `db:"gst_number" json:"gst_number"`
	Address         string          `db:"address" json:"address"`
	StateCode       string          `db:"state_code" json:"state_code"`
	PartyGroup      string          `db:"party_group" json:"party_group"`
	CreditLimit     decimal.Decimal `db:"credit_limit" json:"credit_limit"`
	OpeningBalance  decimal.Decimal `db:"opening_balance" json:"opening_balance"`
	TotalReceivable decimal.Decimal `db:"total_receivable" json:"total_receivable"`
	TotalPayable    decimal.Decimal `db:"total_payable" json:"total_payable"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// Balance is receivable minus payable. Positive means the party owes the company.
func (p *Party) Balance() decimal.Decimal {
	return p.TotalReceivable.Sub(p.TotalPayable)
}

// IsRegistered reports whether the party is GST registered (a B2B counterparty).
func (p *Party) IsRegistered() bool { return p.GSTNumber != "" }

// Product is a stocked item.
type Product struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	CompanyID    uuid.UUID       `db:"company_id" json:"company_id"`
	Name         string          `db:"name" json:"name"`
	ItemCode     string          `db:"item_code" json:"item_code"`
	Unit         string          `db:"unit" json:"unit"`
	HSNCode      string          `db:"hsn_code" json:"hsn_code"`
	B2CRate      decimal.Decimal `db:"b2c_rate" json:"b2c_rate"`
	B2BRate      decimal.Decimal `db:"b2b_rate" json:"b2b_rate"`
	PurchaseRate decimal.Decimal `db:"purchase_rate" json:"purchase_rate"`
	GSTRate      decimal.Decimal `db:"gst_rate" json:"gst_rate"`
	CurrentStock decimal.Decimal `db:"current_stock" json:"current_stock"`
	MinStock     decimal.Decimal `db:"min_stock" json:"min_stock"`
	ImageURL     string          `db:"image_url" json:"image_url"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// SaleRate returns the B2B rate for registered parties and the B2C rate otherwise.
// A zero B2B rate falls back to B2C.
func (p *Product) SaleRate(registered bool) decimal.Decimal {
	if registered && p.B2BRate.IsPositive() {
		return p.B2BRate
	}
	return p.B2CRate
}

// IsLowStock reports whether stock is at or below the configured minimum.
func (p *Product) IsLowStock() bool {
	return p.MinStock.IsPositive() && p.CurrentStock.LessThanOrEqual(p.MinStock)
}

// InvoiceItem is one computed line of an invoice.
type InvoiceItem struct {
	ProductID       *uuid.UUID      `json:"product_id,omitempty"`
	Name            string          `json:"name"`
	HSNCode         string          `json:"hsn_code,omitempty"`
	Unit            string          `json:"unit,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Rate            decimal.Decimal `json:"rate"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	GSTRate         decimal.Decimal `json:"gst_rate"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TaxableAmount   decimal.Decimal `json:"taxable_amount"`
	GSTAmount       decimal.Decimal `json:"gst_amount"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// LinkedInvoice records how much of a payment or return was applied to one invoice.
// Invoice number, date, total and balance are snapshots taken at link time.
type LinkedInvoice struct {
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	InvoiceDate    Date            `json:"invoice_date"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	BalanceAmount  decimal.Decimal `json:"balance_amount"`
	AppliedAmount  decimal.Decimal `json:"applied_amount"`
	// DiscountAmount is the part of the settlement discount written off this invoice.
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// Settled is what the link takes off the invoice balance.
func (l LinkedInvoice) Settled() decimal.Decimal {
	return l.AppliedAmount.Add(l.DiscountAmount)
}

// Invoice is a sale, purchase or return document.
type Invoice struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	CompanyID       uuid.UUID       `db:"company_id" json:"company_id"`
	InvoiceType     InvoiceType     `db:"invoice_type" json:"invoice_type"`
	InvoiceNumber   string          `db:"invoice_number" json:"invoice_number"`
	InvoiceDate     Date            `db:"invoice_date" json:"invoice_date"`
	DueDate         *Date           `db:"due_date" json:"due_date,omitempty"`
	PartyID         uuid.UUID       `db:"party_id" json:"party_id"`
	PartyName       string          `db:"party_name" json:"party_name"`
	PlaceOfSupply   string          `db:"place_of_supply" json:"place_of_supply"`
	Items           InvoiceItems    `db:"items" json:"items"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	DiscountAmount  decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	TaxableAmount   decimal.Decimal `db:"taxable_amount" json:"taxable_amount"`
	GSTAmount       decimal.Decimal `db:"gst_amount" json:"gst_amount"`
	CGSTAmount      decimal.Decimal `db:"cgst_amount" json:"cgst_amount"`
	SGSTAmount      decimal.Decimal `db:"sgst_amount" json:"sgst_amount"`
	IGSTAmount      decimal.Decimal `db:"igst_amount" json:"igst_amount"`
	RoundOff        decimal.Decimal `db:"round_off" json:"round_off"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaidAmount      decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	BalanceAmount   decimal.Decimal `db:"balance_amount" json:"balance_amount"`
	PaymentStatus   PaymentStatus   `db:"payment_status" json:"payment_status"`
	LinkedInvoices  LinkedInvoices  `db:"linked_invoices" json:"linked_invoices"`
	LinkDiscount    decimal.Decimal `db:"link_discount" json:"link_discount"`
	RefundAmount    decimal.Decimal `db:"refund_amount" json:"refund_amount"`
	RefundAccountID *uuid.UUID      `db:"refund_account_id" json:"refund_account_id,omitempty"`
	RequestID       *string         `db:"request_id" json:"request_id,omitempty"`
	Notes           string          `db:"notes" json:"notes"`
	CreatedBy       uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// PaymentMethodLine is the portion of a payment made through one method.
// When AccountID is set the amount is posted to that bank or cash account.
type PaymentMethodLine struct {
	Method      PaymentMethod   `json:"method"`
	Amount      decimal.Decimal `json:"amount"`
	ReferenceNo string          `json:"reference_no,omitempty"`
	AccountID   *uuid.UUID      `json:"account_id,omitempty"`
}

// Payment is money received from a customer or paid to a vendor.
type Payment struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	CompanyID      uuid.UUID       `db:"company_id" json:"company_id"`
	PaymentNumber  string          `db:"payment_number" json:"payment_number"`
	PaymentType    PaymentType     `db:"payment_type" json:"payment_type"`
	PartyID        uuid.UUID       `db:"party_id" json:"party_id"`
	PartyName      string          `db:"party_name" json:"party_name"`
	PaymentDate    Date            `db:"payment_date" json:"payment_date"`
	PaymentMethods PaymentMethods  `db:"payment_methods" json:"payment_methods"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
	Discount       decimal.Decimal `db:"discount" json:"discount"`
	LinkedInvoices LinkedInvoices  `db:"linked_invoices" json:"linked_invoices"`
	UnusedAmount   decimal.Decimal `db:"unused_amount" json:"unused_amount"`
	RequestID      *string         `db:"request_id" json:"request_id,omitempty"`
	Notes          string          `db:"notes" json:"notes"`
	CreatedBy      uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// BankAccount is a bank account or a cash-in-hand drawer.
type BankAccount struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	CompanyID      uuid.UUID       `db:"company_id" json:"company_id"`
	AccountType    AccountType     `db:"account_type" json:"account_type"`
	DisplayName    string          `db:"display_name" json:"display_name"`
	BankName       string          `db:"bank_name" json:"bank_name"`
	AccountNumber  string          `db:"account_number" json:"account_number"`
	IFSC           string          `db:"ifsc" json:"ifsc"`
	OpeningBalance decimal.Decimal `db:"opening_balance" json:"opening_balance"`
	CurrentBalance decimal.Decimal `db:"current_balance" json:"current_balance"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// Transaction is one signed line in an account's ledger: positive is inflow, negative outflow.
type Transaction struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	CompanyID       uuid.UUID       `db:"company_id" json:"company_id"`
	AccountID       uuid.UUID       `db:"account_id" json:"account_id"`
	TransactionType TransactionType `db:"transaction_type" json:"transaction_type"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	TransactionDate Date            `db:"transaction_date" json:"transaction_date"`
	PartyName       string          `db:"party_name" json:"party_name"`
	Description     string          `db:"description" json:"description"`
	PaymentID       *uuid.UUID      `db:"payment_id" json:"payment_id,omitempty"`
	InvoiceID       *uuid.UUID      `db:"invoice_id" json:"invoice_id,omitempty"`
	TransferID      *uuid.UUID      `db:"transfer_id" json:"transfer_id,omitempty"`
	RequestID       *string         `db:"request_id" json:"-"`
	CreatedBy       uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// IsLinked reports whether the transaction is owned by a payment, a return refund or a transfer.
func (t *Transaction) IsLinked() bool {
	return t.PaymentID != nil || t.InvoiceID != nil || t.TransferID != nil
}

// Document series used for number allocation.
const (
	SeriesSale           = "sale"
	SeriesPurchase       = "purchase"
	SeriesSaleReturn     = "sale_return"
	SeriesPurchaseReturn = "purchase_return"
	SeriesPaymentIn      = "payment_in"
	SeriesPaymentOut     = "payment_out"
)

// AppSettings holds per-company preferences.
type AppSettings struct {
	CompanyID            uuid.UUID       `db:"company_id" json:"company_id"`
	SalePrefix           string          `db:"sale_prefix" json:"sale_prefix"`
	PurchasePrefix       string          `db:"purchase_prefix" json:"purchase_prefix"`
	SaleReturnPrefix     string          `db:"sale_return_prefix" json:"sale_return_prefix"`
	PurchaseReturnPrefix string          `db:"purchase_return_prefix" json:"purchase_return_prefix"`
	PaymentInPrefix      string          `db:"payment_in_prefix" json:"payment_in_prefix"`
	PaymentOutPrefix     string          `db:"payment_out_prefix" json:"payment_out_prefix"`
	RoundOffEnabled      bool            `db:"round_off_enabled" json:"round_off_enabled"`
	DefaultGSTRate       decimal.Decimal `db:"default_gst_rate" json:"default_gst_rate"`
	LowStockAlerts       bool            `db:"low_stock_alerts" json:"low_stock_alerts"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updated_at"`
}

// DefaultAppSettings returns the settings a new company starts with.
func DefaultAppSettings(companyID uuid.UUID) *AppSettings {
	return &AppSettings{
		CompanyID:            companyID,
		SalePrefix:           "INV-",
		PurchasePrefix:       "PUR-",
		SaleReturnPrefix:     "CN-",
		PurchaseReturnPrefix: "DN-",
		PaymentInPrefix:      "PI-",
		PaymentOutPrefix:     "PO-",
		RoundOffEnabled:      true,
		DefaultGSTRate:       decimal.NewFromInt(18),
		LowStockAlerts:       true,
	}
}

// PrefixFor returns the number prefix for a document series.
func (s *AppSettings) PrefixFor(series string) string {
	switch series {
	case SeriesSale:
		return s.SalePrefix
	case SeriesPurchase:
		return s.PurchasePrefix
	case SeriesSaleReturn:
		return s.SaleReturnPrefix
	case SeriesPurchaseReturn:
		return s.PurchaseReturnPrefix
	case SeriesPaymentIn:
		return s.PaymentInPrefix
	case SeriesPaymentOut:
		return s.PaymentOutPrefix
	default:
		return ""
	}
}

// FileMeta stores metadata about an uploaded file.
type FileMeta struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	CompanyID    uuid.UUID  `db:"company_id" json:"company_id"`
	UploadedBy   uuid.UUID  `db:"uploaded_by" json:"uploaded_by"`
	FileName     string     `db:"file_name" json:"file_name"`
	OriginalName string     `db:"original_name" json:"original_name"`
	FileType     FileType   `db:"file_type" json:"file_type"`
	FileSize     int64      `db:"file_size" json:"file_size"`
	S3Bucket     string     `db:"s3_bucket" json:"s3_bucket"`
	S3Key        string     `db:"s3_key" json:"s3_key"`
	ContentType  string     `db:"content_type" json:"content_type"`
	Status       FileStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
