// Package billing computes invoice line and document totals with GST.
package billing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"khata/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// LineInput is an invoice line before computation.
type LineInput struct {
	ProductID       *uuid.UUID
	Name            string
	HSNCode         string
	Unit            string
	Quantity        decimal.Decimal
	Rate            decimal.Decimal
	DiscountPercent decimal.Decimal
	GSTRate         decimal.Decimal
}

// Options controls document-level behaviour.
type Options struct {
	CompanyStateCode string
	PartyStateCode   string
	RoundOff         bool
}

// IntraState reports whether tax splits into CGST and SGST.
// A missing state code on either side is treated as intra-state.
func (o Options) IntraState() bool {
	return o.CompanyStateCode == "" || o.PartyStateCode == "" || o.CompanyStateCode == o.PartyStateCode
}

// Totals is the computed result for a whole invoice.
type Totals struct {
	Items          domain.InvoiceItems
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	GSTAmount      decimal.Decimal
	CGSTAmount     decimal.Decimal
	SGSTAmount     decimal.Decimal
	IGSTAmount     decimal.Decimal
	RoundOff       decimal.Decimal
	TotalAmount    decimal.Decimal
}

// Round2 rounds half away from zero to paise.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComputeLine fills in the derived amounts of a single line.
func ComputeLine(in LineInput) (domain.InvoiceItem, error) {
	if in.Name == "" {
		return domain.InvoiceItem{}, fmt.Errorf("%w: name is required", domain.ErrInvalidLineItem)
	}
	if !in.Quantity.IsPositive() {
		return domain.InvoiceItem{}, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidLineItem)
	}
	if in.Rate.IsNegative() {
		return domain.InvoiceItem{}, fmt.Errorf("%w: rate cannot be negative", domain.ErrInvalidLineItem)
	}
	if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(hundred) {
		return domain.InvoiceItem{}, fmt.Errorf("%w: discount percent must be between 0 and 100", domain.ErrInvalidLineItem)
	}
	if in.GSTRate.IsNegative() || in.GSTRate.GreaterThan(hundred) {
		return domain.InvoiceItem{}, fmt.Errorf("%w: gst rate must be between 0 and 100", domain.ErrInvalidLineItem)
	}

	gross := Round2(in.Quantity.Mul(in.Rate))
	discount := Round2(gross.Mul(in.DiscountPercent).Div(hundred))
	taxable := gross.Sub(discount)
	gst := Round2(taxable.Mul(in.GSTRate).Div(hundred))

	return domain.InvoiceItem{
		ProductID:       in.ProductID,
		Name:            in.Name,
		HSNCode:         in.HSNCode,
		Unit:            in.Unit,
		Quantity:        in.Quantity,
		Rate:            in.Rate,
		DiscountPercent: in.DiscountPercent,
		GSTRate:         in.GSTRate,
		DiscountAmount:  discount,
		TaxableAmount:   taxable,
		GSTAmount:       gst,
		LineTotal:       taxable.Add(gst),
	}, nil
}

// Compute builds the invoice totals from its lines.
func Compute(lines []LineInput, opts Options) (*Totals, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyInvoice
	}

	t := &Totals{Items: make(domain.InvoiceItems, 0, len(lines))}
	for i := range lines {
		item, err := ComputeLine(lines[i])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		t.Items = append(t.Items, item)
		t.Subtotal = t.Subtotal.Add(item.TaxableAmount.Add(item.DiscountAmount))
		t.DiscountAmount = t.DiscountAmount.Add(item.DiscountAmount)
		t.TaxableAmount = t.TaxableAmount.Add(item.TaxableAmount)
		t.GSTAmount = t.GSTAmount.Add(item.GSTAmount)
	}

	if opts.IntraState() {
		t.CGSTAmount = Round2(t.GSTAmount.Div(decimal.NewFromInt(2)))
		t.SGSTAmount = t.GSTAmount.Sub(t.CGSTAmount)
	} else {
		t.IGSTAmount = t.GSTAmount
	}

	raw := t.Subtotal.Sub(t.DiscountAmount).Add(t.GSTAmount)
	t.TotalAmount = raw
	if opts.RoundOff {
		t.TotalAmount = raw.Round(0)
		t.RoundOff = t.TotalAmount.Sub(raw)
	}
	return t, nil
}

// Apply copies the totals onto an invoice and recomputes its balance and status.
func (t *Totals) Apply(inv *domain.Invoice) {
	inv.Items = t.Items
	inv.Subtotal = t.Subtotal
	inv.DiscountAmount = t.DiscountAmount
	inv.TaxableAmount = t.TaxableAmount
	inv.GSTAmount = t.GSTAmount
	inv.CGSTAmount = t.CGSTAmount
	inv.SGSTAmount = t.SGSTAmount
	inv.IGSTAmount = t.IGSTAmount
	inv.RoundOff = t.RoundOff
	inv.TotalAmount = t.TotalAmount
	Settle(inv)
}

// Settle recomputes balance and payment status from total and paid amounts.
func Settle(inv *domain.Invoice) {
	inv.BalanceAmount = inv.TotalAmount.Sub(inv.PaidAmount)
	inv.PaymentStatus = Status(inv.PaidAmount, inv.BalanceAmount)
}

// Status derives the payment status: paid once nothing is owed, partial once anything is paid.
func Status(paid, balance decimal.Decimal) domain.PaymentStatus {
	switch {
	case !balance.IsPositive():
		return domain.PaymentStatusPaid
	case paid.IsPositive():
		return domain.PaymentStatusPartial
	default:
		return domain.PaymentStatusUnpaid
	}
}
