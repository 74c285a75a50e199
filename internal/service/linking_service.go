package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"khata/internal/domain"
	"khata/internal/linking"
	"khata/internal/port"
)

// LinkInput is a manual application of part of an amount to one invoice.
type LinkInput struct {
	InvoiceID uuid.UUID       `json:"invoice_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

// AllocationInput describes how a payment or return settles outstanding invoices.
// With AutoLink set, Links are ignored and invoices are filled oldest first.
type AllocationInput struct {
	AutoLink bool            `json:"auto_link"`
	Links    []LinkInput     `json:"links" binding:"dive"`
	Discount decimal.Decimal `json:"discount"`
}

// PreviewLinksInput is the DTO for a dry-run allocation.
type PreviewLinksInput struct {
	Mode       linking.Mode    `json:"mode" binding:"required"`
	PartyID    uuid.UUID       `json:"party_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Allocation AllocationInput `json:"allocation"`
}

// LinkPreview is the allocation a command with the same input would make.
type LinkPreview struct {
	Candidates []linking.Candidate `json:"candidates"`
	Result     linking.Result      `json:"result"`
}

// LinkingService previews invoice allocations without writing anything.
type LinkingService interface {
	Preview(ctx context.Context, companyID uuid.UUID, input PreviewLinksInput) (*LinkPreview, error)
}

type linkingService struct {
	partyRepo   port.PartyRepository
	invoiceRepo port.InvoiceRepository
}

// NewLinkingService creates a new LinkingService.
func NewLinkingService(partyRepo port.PartyRepository, invoiceRepo port.InvoiceRepository) LinkingService {
	return &linkingService{partyRepo: partyRepo, invoiceRepo: invoiceRepo}
}

func (s *linkingService) Preview(ctx context.Context, companyID uuid.UUID, input PreviewLinksInput) (*LinkPreview, error) {
	if !input.Mode.Valid() {
		return nil, fmt.Errorf("%w: unknown linking mode %q", domain.ErrInvalidPaymentType, input.Mode)
	}
	if input.Amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	party, err := s.partyRepo.GetByID(ctx, companyID, input.PartyID)
	if err != nil {
		return nil, err
	}
	if party.PartyType != input.Mode.PartyType() {
		return nil, domain.ErrPartyTypeMismatch
	}

	alloc, err := allocate(ctx, s.invoiceRepo, companyID, input.PartyID, input.Mode, input.Amount, input.Allocation)
	if err != nil {
		return nil, err
	}
	return &LinkPreview{Candidates: alloc.Candidates(), Result: alloc.Result()}, nil
}

// allocate loads the party's outstanding invoices for mode and replays the
// requested allocation over amount.
func allocate(
	ctx context.Context,
	invoiceRepo port.InvoiceRepository,
	companyID, partyID uuid.UUID,
	mode linking.Mode,
	amount decimal.Decimal,
	input AllocationInput,
) (*linking.Allocator, error) {
	if input.Discount.IsNegative() || input.Discount.GreaterThan(amount) {
		return nil, domain.ErrInvalidDiscount
	}

	outstanding, err := invoiceRepo.ListOutstanding(ctx, companyID, partyID, mode.EligibleInvoiceType())
	if err != nil {
		return nil, err
	}
	candidates := make([]linking.Candidate, 0, len(outstanding))
	for i := range outstanding {
		candidates = append(candidates, linking.CandidateFromInvoice(&outstanding[i]))
	}

	alloc := linking.NewAllocator(mode, amount, candidates)
	alloc.SetDiscount(input.Discount)
	if input.AutoLink {
		alloc.AutoLink()
		return alloc, nil
	}
	for _, l := range input.Links {
		if err := alloc.SetAmount(l.InvoiceID, l.Amount); err != nil {
			return nil, fmt.Errorf("link %s: %w", l.InvoiceID, err)
		}
	}
	return alloc, nil
}

// applyLinks moves each applied amount onto its invoice. sign is +1 to apply and -1 to reverse.
func applyLinks(ctx context.Context, invoiceRepo port.InvoiceRepository, companyID uuid.UUID, links domain.LinkedInvoices, sign int64) error {
	for _, l := range links {
		settled := l.Settled()
		if !settled.IsPositive() {
			continue
		}
		amount := settled.Mul(decimal.NewFromInt(sign))
		if err := invoiceRepo.ApplyPayment(ctx, companyID, l.InvoiceID, amount); err != nil {
			return fmt.Errorf("applying %s to invoice %s: %w", amount, l.InvoiceNumber, err)
		}
	}
	return nil
}
