package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportFilters narrows report queries.
type ReportFilters struct {
	From        *time.Time
	To          *time.Time
	Granularity string
	InvoiceType InvoiceType
	PartyID     *uuid.UUID
	PartyType   PartyType
	Offset      int
	Limit       int
}

// ValidGranularities lists the accepted period-summary bucket sizes.
var ValidGranularities = map[string]bool{
	"daily":     true,
	"weekly":    true,
	"monthly":   true,
	"quarterly": true,
	"yearly":    true,
}

// PeriodSummaryRow aggregates invoices of one type over one period.
type PeriodSummaryRow struct {
	Period        string          `json:"period"`
	PeriodStart   time.Time       `db:"period_start" json:"period_start"`
	PeriodEnd     time.Time       `json:"period_end"`
	InvoiceCount  int             `db:"invoice_count" json:"invoice_count"`
	TaxableAmount decimal.Decimal `db:"taxable_amount" json:"taxable_amount"`
	GSTAmount     decimal.Decimal `db:"gst_amount" json:"gst_amount"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaidAmount    decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	BalanceAmount decimal.Decimal `db:"balance_amount" json:"balance_amount"`
}

// OutstandingRow is one party's unpaid invoice balances bucketed by age in days.
type OutstandingRow struct {
	PartyID      uuid.UUID       `db:"party_id" json:"party_id"`
	PartyName    string          `db:"party_name" json:"party_name"`
	PartyType    PartyType       `db:"party_type" json:"party_type"`
	InvoiceCount int             `db:"invoice_count" json:"invoice_count"`
	Current      decimal.Decimal `db:"current_due" json:"current"`
	Days31To60   decimal.Decimal `db:"days_31_60" json:"days_31_60"`
	Days61To90   decimal.Decimal `db:"days_61_90" json:"days_61_90"`
	Over90       decimal.Decimal `db:"over_90" json:"over_90"`
	Total        decimal.Decimal `db:"total" json:"total"`
}

// GSTSummaryRow totals tax per GST rate for one invoice type.
type GSTSummaryRow struct {
	InvoiceType   InvoiceType     `db:"invoice_type" json:"invoice_type"`
	GSTRate       decimal.Decimal `db:"gst_rate" json:"gst_rate"`
	TaxableAmount decimal.Decimal `db:"taxable_amount" json:"taxable_amount"`
	CGSTAmount    decimal.Decimal `db:"cgst_amount" json:"cgst_amount"`
	SGSTAmount    decimal.Decimal `db:"sgst_amount" json:"sgst_amount"`
	IGSTAmount    decimal.Decimal `db:"igst_amount" json:"igst_amount"`
	TotalTax      decimal.Decimal `db:"total_tax" json:"total_tax"`
}

// StatementEntry is a raw party ledger event before running balances are applied.
type StatementEntry struct {
	EntryDate   Date            `db:"entry_date" json:"date"`
	EntryType   string          `db:"entry_type" json:"entry_type"`
	Reference   string          `db:"reference" json:"reference"`
	ReferenceID uuid.UUID       `db:"reference_id" json:"reference_id"`
	Debit       decimal.Decimal `db:"debit" json:"debit"`
	Credit      decimal.Decimal `db:"credit" json:"credit"`
	CreatedAt   time.Time       `db:"created_at" json:"-"`
}

// StatementLine is a party ledger line with its running balance.
type StatementLine struct {
	StatementEntry
	Balance decimal.Decimal `json:"balance"`
}

// PartyStatement is the full ledger for one party.
type PartyStatement struct {
	Party          *Party          `json:"party"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Lines          []StatementLine `json:"lines"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// ReconciliationRow compares an account's stored balance with its ledger.
type ReconciliationRow struct {
	AccountID       uuid.UUID       `db:"account_id" json:"account_id"`
	CompanyID       uuid.UUID       `db:"company_id" json:"company_id"`
	DisplayName     string          `db:"display_name" json:"display_name"`
	OpeningBalance  decimal.Decimal `db:"opening_balance" json:"opening_balance"`
	LedgerTotal     decimal.Decimal `db:"ledger_total" json:"ledger_total"`
	ExpectedBalance decimal.Decimal `db:"expected_balance" json:"expected_balance"`
	CurrentBalance  decimal.Decimal `db:"current_balance" json:"current_balance"`
	Drift           decimal.Decimal `db:"drift" json:"drift"`
}

// HasDrift reports whether the stored balance disagrees with the ledger.
func (r *ReconciliationRow) HasDrift() bool { return !r.Drift.IsZero() }
