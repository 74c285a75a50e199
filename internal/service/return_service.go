package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"khata/internal/billing"
	"khata/internal/domain"
	"khata/internal/linking"
	"khata/internal/sanitize"
)

// CreateReturn records a credit or debit note. The return amount less any cash
// refund is applied to the party's outstanding invoices; what is left stays open
// on the return itself.
func (s *invoiceService) CreateReturn(ctx context.Context, companyID, userID uuid.UUID, input CreateReturnInput) (*domain.Invoice, error) {
	if !input.InvoiceType.IsReturn() {
		return nil, domain.ErrInvalidInvoiceType
	}
	if input.RefundAmount.IsNegative() {
		return nil, fmt.Errorf("%w: refund cannot be negative", domain.ErrInvalidAmount)
	}
	if input.RefundAmount.IsPositive() && input.RefundAccountID == nil {
		return nil, fmt.Errorf("%w: a refund needs refund_account_id", domain.ErrAccountNotFound)
	}
	if existing, ok, err := s.replay(ctx, idemReturn, companyID, input.RequestID); ok || err != nil {
		return existing, err
	}

	var inv *domain.Invoice
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		party, err := s.partyFor(ctx, companyID, input.PartyID, input.InvoiceType)
		if err != nil {
			return err
		}
		totals, err := s.computeTotals(ctx, companyID, input.InvoiceType, party, input.PlaceOfSupply, input.Items)
		if err != nil {
			return err
		}

		refund := billing.Round2(input.RefundAmount)
		if refund.GreaterThan(totals.TotalAmount) {
			return fmt.Errorf("%w: refund exceeds the return total", domain.ErrInvalidAmount)
		}
		var account *domain.BankAccount
		if refund.IsPositive() {
			account, err = s.accountRepo.GetByID(ctx, companyID, *input.RefundAccountID)
			if err != nil {
				return err
			}
		}

		settle := totals.TotalAmount.Sub(refund)
		alloc, err := allocate(ctx, s.invoiceRepo, companyID, party.ID, linking.ModeForReturn(input.InvoiceType), settle, input.Allocation)
		if err != nil {
			return err
		}
		result := alloc.Result()

		number, err := s.settings.NextNumber(ctx, companyID, string(input.InvoiceType))
		if err != nil {
			return err
		}

		inv = &domain.Invoice{
			CompanyID:      companyID,
			InvoiceType:    input.InvoiceType,
			InvoiceNumber:  number,
			InvoiceDate:    dateOrToday(input.InvoiceDate),
			PartyID:        party.ID,
			PartyName:      party.Name,
			PlaceOfSupply:  sanitize.Code(input.PlaceOfSupply),
			LinkedInvoices: result.Links,
			LinkDiscount:   result.Discount,
			RefundAmount:   refund,
			RequestID:      requestIDPtr(input.RequestID),
			Notes:          sanitize.Text(input.Notes),
			CreatedBy:      userID,
		}
		if refund.IsPositive() {
			inv.RefundAccountID = &account.ID
		}
		totals.Apply(inv)
		inv.PaidAmount = result.Applied.Add(refund).Add(result.Discount)
		billing.Settle(inv)

		if err := s.invoiceRepo.Create(ctx, inv); err != nil {
			return err
		}
		if err := applyLinks(ctx, s.invoiceRepo, companyID, inv.LinkedInvoices, 1); err != nil {
			return err
		}
		if err := s.moveStock(ctx, companyID, inv.InvoiceType, inv.Items, 1); err != nil {
			return err
		}
		recv, pay := partyEffect(inv.InvoiceType, settle)
		if err := s.partyRepo.AdjustBalance(ctx, companyID, party.ID, recv, pay); err != nil {
			return err
		}
		if refund.IsPositive() {
			return s.postRefund(ctx, inv, account, userID)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrIdempotencyKeyConflict) {
			return s.afterConflict(ctx, idemReturn, companyID, input.RequestID, err)
		}
		return nil, err
	}

	s.idem.remember(idemReturn, companyID, input.RequestID, inv.ID)
	zerolog.Ctx(ctx).Info().
		Str("invoice_id", inv.ID.String()).
		Str("invoice_number", inv.InvoiceNumber).
		Str("invoice_type", string(inv.InvoiceType)).
		Str("total", inv.TotalAmount.String()).
		Str("refund", inv.RefundAmount.String()).
		Int("links", len(inv.LinkedInvoices)).
		Msg("return created")
	return inv, nil
}

// postRefund writes the refund to the ledger. A sale return pays money out,
// a purchase return brings it in.
func (s *invoiceService) postRefund(ctx context.Context, inv *domain.Invoice, account *domain.BankAccount, userID uuid.UUID) error {
	amount := inv.RefundAmount
	if inv.InvoiceType == domain.InvoiceTypeSaleReturn {
		amount = amount.Neg()
	}
	invoiceID := inv.ID
	txn := &domain.Transaction{
		CompanyID:       inv.CompanyID,
		AccountID:       account.ID,
		TransactionType: domain.TxnReturnRefund,
		Amount:          amount,
		TransactionDate: inv.InvoiceDate,
		PartyName:       inv.PartyName,
		Description:     "Refund against " + inv.InvoiceNumber,
		InvoiceID:       &invoiceID,
		CreatedBy:       userID,
	}
	if err := s.txnRepo.Create(ctx, txn); err != nil {
		return err
	}
	return s.accountRepo.AdjustBalance(ctx, inv.CompanyID, account.ID, amount)
}

// reverseReturn undoes every effect of a return and deletes it.
func (s *invoiceService) reverseReturn(ctx context.Context, inv *domain.Invoice) error {
	if err := applyLinks(ctx, s.invoiceRepo, inv.CompanyID, inv.LinkedInvoices, -1); err != nil {
		return err
	}

	txns, err := s.txnRepo.ListByInvoice(ctx, inv.CompanyID, inv.ID)
	if err != nil {
		return err
	}
	for i := range txns {
		if err := s.txnRepo.Delete(ctx, inv.CompanyID, txns[i].ID); err != nil {
			return err
		}
		if err := s.accountRepo.AdjustBalance(ctx, inv.CompanyID, txns[i].AccountID, txns[i].Amount.Neg()); err != nil {
			return err
		}
	}

	if err := s.moveStock(ctx, inv.CompanyID, inv.InvoiceType, inv.Items, -1); err != nil {
		return err
	}
	settled := inv.TotalAmount.Sub(inv.RefundAmount)
	recv, pay := partyEffect(inv.InvoiceType, settled.Neg())
	if err := s.partyRepo.AdjustBalance(ctx, inv.CompanyID, inv.PartyID, recv, pay); err != nil {
		return err
	}
	return s.invoiceRepo.Delete(ctx, inv.CompanyID, inv.ID)
}
