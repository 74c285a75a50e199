package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"khata/internal/domain"
	"khata/internal/port"
	"khata/internal/sanitize"
)

// CreatePartyInput is the DTO for creating a customer or vendor.
type CreatePartyInput struct {
	PartyType      domain.PartyType `json:"party_type" binding:"required,oneof=customer vendor"`
	Name           string           `json:"name" binding:"required"`
	Phone          string           `json:"phone"`
	Email          string           `json:"email" binding:"omitempty,email"`
	GSTNumber      string           `json:"gst_number" binding:"omitempty,len=15"`
	Address        string           `json:"address"`
	StateCode      string           `json:"state_code" binding:"omitempty,len=2"`
	PartyGroup     string           `json:"party_group"`
	CreditLimit    decimal.Decimal  `json:"credit_limit"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
}

// UpdatePartyInput is the DTO for party updates. The party type cannot change.
type UpdatePartyInput struct {
	Name           *string          `json:"name"`
	Phone          *string          `json:"phone"`
	Email          *string          `json:"email" binding:"omitempty,email"`
	GSTNumber      *string          `json:"gst_number" binding:"omitempty,len=15"`
	Address        *string          `json:"address"`
	StateCode      *string          `json:"state_code" binding:"omitempty,len=2"`
	PartyGroup     *string          `json:"party_group"`
	CreditLimit    *decimal.Decimal `json:"credit_limit"`
	OpeningBalance *decimal.Decimal `json:"opening_balance"`
}

// PartyService defines the customer and vendor contract.
type PartyService interface {
	Create(ctx context.Context, companyID uuid.UUID, input CreatePartyInput) (*domain.Party, error)
	Get(ctx context.Context, companyID, partyID uuid.UUID) (*domain.Party, error)
	List(ctx context.Context, companyID uuid.UUID, filter port.PartyFilter) ([]domain.Party, int, error)
	Update(ctx context.Context, companyID, partyID uuid.UUID, input UpdatePartyInput) (*domain.Party, error)
	Delete(ctx context.Context, companyID, partyID uuid.UUID) error
	// Outstanding lists the party's open sale or purchase invoices, oldest first.
	Outstanding(ctx context.Context, companyID, partyID uuid.UUID) ([]domain.Invoice, error)
	Statement(ctx context.Context, companyID, partyID uuid.UUID, from, to *time.Time) (*domain.PartyStatement, error)
}

type partyService struct {
	tx          port.TxManager
	partyRepo   port.PartyRepository
	invoiceRepo port.InvoiceRepository
	reportRepo  port.ReportRepository
}

// NewPartyService creates a new PartyService implementation.
func NewPartyService(
	tx port.TxManager,
	partyRepo port.PartyRepository,
	invoiceRepo port.InvoiceRepository,
	reportRepo port.ReportRepository,
) PartyService {
	return &partyService{
		tx:          tx,
		partyRepo:   partyRepo,
		invoiceRepo: invoiceRepo,
		reportRepo:  reportRepo,
	}
}

// openingEffect splits an opening balance into its receivable and payable parts.
func openingEffect(opening decimal.Decimal) (receivable, payable decimal.Decimal) {
	if opening.IsNegative() {
		return decimal.Zero, opening.Neg()
	}
	return opening, decimal.Zero
}

func (s *partyService) Create(ctx context.Context, companyID uuid.UUID, input CreatePartyInput) (*domain.Party, error) {
	receivable, payable := openingEffect(input.OpeningBalance)
	party := &domain.Party{
		CompanyID:       companyID,
		PartyType:       input.PartyType,
		Name:            sanitize.Name(input.Name),
		Phone:           sanitize.Code(input.Phone),
		Email:           sanitize.Email(input.Email),
		GSTNumber:       sanitize.Code(input.GSTNumber),
		Address:         sanitize.Text(input.Address),
		StateCode:       sanitize.Code(input.StateCode),
		PartyGroup:      sanitize.Name(input.PartyGroup),
		CreditLimit:     input.CreditLimit,
		OpeningBalance:  input.OpeningBalance,
		TotalReceivable: receivable,
		TotalPayable:    payable,
	}
	if err := s.partyRepo.Create(ctx, party); err != nil {
		return nil, err
	}
	return party, nil
}

func (s *partyService) Get(ctx context.Context, companyID, partyID uuid.UUID) (*domain.Party, error) {
	return s.partyRepo.GetByID(ctx, companyID, partyID)
}

func (s *partyService) List(ctx context.Context, companyID uuid.UUID, filter port.PartyFilter) ([]domain.Party, int, error) {
	return s.partyRepo.List(ctx, companyID, filter)
}

func (s *partyService) Update(ctx context.Context, companyID, partyID uuid.UUID, input UpdatePartyInput) (*domain.Party, error) {
	var party *domain.Party
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		party, err = s.partyRepo.GetByID(ctx, companyID, partyID)
		if err != nil {
			return err
		}

		if input.Name != nil {
			party.Name = sanitize.Name(*input.Name)
		}
		if input.Phone != nil {
			party.Phone = sanitize.Code(*input.Phone)
		}
		if input.Email != nil {
			party.Email = sanitize.Email(*input.Email)
		}
		if input.GSTNumber != nil {
			party.GSTNumber = sanitize.Code(*input.GSTNumber)
		}
		if input.Address != nil {
			party.Address = sanitize.Text(*input.Address)
		}
		if input.StateCode != nil {
			party.StateCode = sanitize.Code(*input.StateCode)
		}
		if input.PartyGroup != nil {
			party.PartyGroup = sanitize.Name(*input.PartyGroup)
		}
		if input.CreditLimit != nil {
			party.CreditLimit = *input.CreditLimit
		}

		var openingChanged bool
		oldRecv, oldPay := openingEffect(party.OpeningBalance)
		if input.OpeningBalance != nil && !input.OpeningBalance.Equal(party.OpeningBalance) {
			party.OpeningBalance = *input.OpeningBalance
			openingChanged = true
		}

		if err := s.partyRepo.Update(ctx, party); err != nil {
			return err
		}
		if !openingChanged {
			return nil
		}

		newRecv, newPay := openingEffect(party.OpeningBalance)
		dRecv, dPay := newRecv.Sub(oldRecv), newPay.Sub(oldPay)
		if err := s.partyRepo.AdjustBalance(ctx, companyID, partyID, dRecv, dPay); err != nil {
			return err
		}
		party.TotalReceivable = party.TotalReceivable.Add(dRecv)
		party.TotalPayable = party.TotalPayable.Add(dPay)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return party, nil
}

func (s *partyService) Delete(ctx context.Context, companyID, partyID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		busy, err := s.partyRepo.HasActivity(ctx, companyID, partyID)
		if err != nil {
			return err
		}
		if busy {
			return domain.ErrPartyHasActivity
		}
		return s.partyRepo.Delete(ctx, companyID, partyID)
	})
}

func (s *partyService) Outstanding(ctx context.Context, companyID, partyID uuid.UUID) ([]domain.Invoice, error) {
	party, err := s.partyRepo.GetByID(ctx, companyID, partyID)
	if err != nil {
		return nil, err
	}
	invoiceType := domain.InvoiceTypeSale
	if party.PartyType == domain.PartyTypeVendor {
		invoiceType = domain.InvoiceTypePurchase
	}
	return s.invoiceRepo.ListOutstanding(ctx, companyID, partyID, invoiceType)
}

// Statement builds the party ledger between from and to. Entries before from
// are folded into the opening balance.
func (s *partyService) Statement(ctx context.Context, companyID, partyID uuid.UUID, from, to *time.Time) (*domain.PartyStatement, error) {
	party, err := s.partyRepo.GetByID(ctx, companyID, partyID)
	if err != nil {
		return nil, err
	}

	entries, err := s.reportRepo.PartyEntries(ctx, companyID, partyID, &domain.ReportFilters{To: to})
	if err != nil {
		return nil, err
	}

	return BuildStatement(party, entries, from), nil
}

// BuildStatement applies running balances to entries sorted by date.
func BuildStatement(party *domain.Party, entries []domain.StatementEntry, from *time.Time) *domain.PartyStatement {
	opening := party.OpeningBalance
	lines := make([]domain.StatementLine, 0, len(entries))
	balance := opening
	for i := range entries {
		e := entries[i]
		delta := e.Debit.Sub(e.Credit)
		if from != nil && e.EntryDate.Time.Before(*from) {
			opening = opening.Add(delta)
			balance = opening
			continue
		}
		balance = balance.Add(delta)
		lines = append(lines, domain.StatementLine{StatementEntry: e, Balance: balance})
	}
	return &domain.PartyStatement{
		Party:          party,
		OpeningBalance: opening,
		Lines:          lines,
		ClosingBalance: balance,
	}
}
