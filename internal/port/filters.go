package port

import (
	"github.com/google/uuid"

	"khata/internal/domain"
)

// ListParams carries pagination and a sort key such as "-invoice_date".
// Repositories accept only whitelisted sort columns and fall back to their default.
type ListParams struct {
	Offset int
	Limit  int
	Sort   string
}

// PartyFilter narrows party listings.
type PartyFilter struct {
	ListParams
	PartyType  domain.PartyType
	PartyGroup string
	Search     string
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	ListParams
	Search       string
	LowStockOnly bool
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	ListParams
	InvoiceType   domain.InvoiceType
	PartyID       *uuid.UUID
	PaymentStatus domain.PaymentStatus
	From          *domain.Date
	To            *domain.Date
	Search        string
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	ListParams
	PaymentType domain.PaymentType
	PartyID     *uuid.UUID
	From        *domain.Date
	To          *domain.Date
}

// TransactionFilter narrows ledger listings.
type TransactionFilter struct {
	ListParams
	AccountID       *uuid.UUID
	TransactionType domain.TransactionType
	From            *domain.Date
	To              *domain.Date
}
