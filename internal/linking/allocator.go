// Package linking allocates a payment or return amount across a party's
// outstanding invoices.
//
// An Allocator holds an amount P, a discount D and the candidate invoices.
// After every mutation the allocation satisfies:
//
//	applied(i) <= balance(i) for every linked invoice i
//	sum(applied) <= P - D
//
// so Unused, P - D - sum(applied), is never negative.
package linking

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"khata/internal/domain"
)

// Candidate is an invoice that may receive an allocation.
type Candidate struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   domain.Date     `json:"invoice_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
}

// CandidateFromInvoice snapshots the fields the allocator needs.
func CandidateFromInvoice(inv *domain.Invoice) Candidate {
	return Candidate{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		TotalAmount:   inv.TotalAmount,
		BalanceAmount: inv.BalanceAmount,
	}
}

// Result is the outcome of an allocation.
type Result struct {
	Mode     Mode                  `json:"mode"`
	Amount   decimal.Decimal       `json:"amount"`
	Discount decimal.Decimal       `json:"discount"`
	Applied  decimal.Decimal       `json:"applied"`
	Unused   decimal.Decimal       `json:"unused"`
	Links    domain.LinkedInvoices `json:"links"`
}

type link struct {
	invoiceID uuid.UUID
	applied   decimal.Decimal
}

// Allocator tracks the links between one amount and a set of candidate invoices.
// It is not safe for concurrent use.
type Allocator struct {
	mode       Mode
	amount     decimal.Decimal
	discount   decimal.Decimal
	candidates []Candidate
	index      map[uuid.UUID]int
	// links in the order they were made; trimming walks it backwards.
	links []link
}

// NewAllocator builds an allocator for amount over candidates.
// Candidates are ordered oldest first; ties keep their input order.
func NewAllocator(mode Mode, amount decimal.Decimal, candidates []Candidate) *Allocator {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].InvoiceDate.Before(sorted[j].InvoiceDate)
	})

	index := make(map[uuid.UUID]int, len(sorted))
	for i := range sorted {
		index[sorted[i].InvoiceID] = i
	}

	return &Allocator{
		mode:       mode,
		amount:     floor(amount),
		discount:   decimal.Zero,
		candidates: sorted,
		index:      index,
	}
}

// Candidates returns the candidate invoices, oldest first.
func (a *Allocator) Candidates() []Candidate {
	out := make([]Candidate, len(a.candidates))
	copy(out, a.candidates)
	return out
}

// Amount is P.
func (a *Allocator) Amount() decimal.Decimal { return a.amount }

// Discount is D.
func (a *Allocator) Discount() decimal.Decimal { return a.discount }

// Available is P - D.
func (a *Allocator) Available() decimal.Decimal { return a.amount.Sub(a.discount) }

// Applied is the sum of all linked amounts.
func (a *Allocator) Applied() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range a.links {
		sum = sum.Add(l.applied)
	}
	return sum
}

// Unused is P - D - applied, floored at zero.
func (a *Allocator) Unused() decimal.Decimal {
	return floor(a.Available().Sub(a.Applied()))
}

// IsLinked reports whether the invoice is currently in the allocation set.
func (a *Allocator) IsLinked(invoiceID uuid.UUID) bool {
	return a.linkIndex(invoiceID) >= 0
}

// AppliedTo returns the amount linked to one invoice.
func (a *Allocator) AppliedTo(invoiceID uuid.UUID) decimal.Decimal {
	if i := a.linkIndex(invoiceID); i >= 0 {
		return a.links[i].applied
	}
	return decimal.Zero
}

// Reset discards the current allocation and replays initial links and discount.
// Links to unknown invoices are dropped and every amount is clamped as SetAmount would.
func (a *Allocator) Reset(initial []domain.LinkedInvoice, discount decimal.Decimal) {
	a.links = nil
	a.discount = decimal.Zero
	a.SetDiscount(discount)
	for _, li := range initial {
		if _, ok := a.index[li.InvoiceID]; !ok {
			continue
		}
		_ = a.SetAmount(li.InvoiceID, li.AppliedAmount)
	}
}

// AutoLink replaces the allocation with an oldest-first greedy fill.
func (a *Allocator) AutoLink() {
	a.links = nil
	remaining := a.Available()
	for _, c := range a.candidates {
		if !remaining.IsPositive() {
			break
		}
		if !c.BalanceAmount.IsPositive() {
			continue
		}
		applied := decimal.Min(c.BalanceAmount, remaining)
		a.links = append(a.links, link{invoiceID: c.InvoiceID, applied: applied})
		remaining = remaining.Sub(applied)
	}
}

// Toggle unlinks a linked invoice, or links it with min(balance, unused).
func (a *Allocator) Toggle(invoiceID uuid.UUID) error {
	ci, ok := a.index[invoiceID]
	if !ok {
		return domain.ErrInvoiceNotFound
	}
	if li := a.linkIndex(invoiceID); li >= 0 {
		a.links = append(a.links[:li], a.links[li+1:]...)
		return nil
	}
	applied := floor(decimal.Min(a.candidates[ci].BalanceAmount, a.Unused()))
	a.links = append(a.links, link{invoiceID: invoiceID, applied: applied})
	return nil
}

// SetAmount overrides the amount linked to an invoice, linking it if needed.
// The value is clamped to min(value, balance, P - D - other links) and floored at zero.
func (a *Allocator) SetAmount(invoiceID uuid.UUID, value decimal.Decimal) error {
	ci, ok := a.index[invoiceID]
	if !ok {
		return domain.ErrInvoiceNotFound
	}

	li := a.linkIndex(invoiceID)
	others := a.Applied()
	if li >= 0 {
		others = others.Sub(a.links[li].applied)
	}
	capacity := a.Available().Sub(others)
	applied := floor(decimal.Min(value, a.candidates[ci].BalanceAmount, capacity))

	if li >= 0 {
		a.links[li].applied = applied
		return nil
	}
	a.links = append(a.links, link{invoiceID: invoiceID, applied: applied})
	return nil
}

// SetDiscount clamps D to [0, P] and trims links that no longer fit.
func (a *Allocator) SetDiscount(discount decimal.Decimal) {
	a.discount = decimal.Min(floor(discount), a.amount)
	a.trim()
}

// SetAmountTotal changes P, clamping D and trimming links that no longer fit.
func (a *Allocator) SetAmountTotal(amount decimal.Decimal) {
	a.amount = floor(amount)
	a.SetDiscount(a.discount)
}

// Result emits the allocation in link order. Zero-amount links are omitted.
func (a *Allocator) Result() Result {
	links := make(domain.LinkedInvoices, 0, len(a.links))
	for _, l := range a.links {
		if !l.applied.IsPositive() {
			continue
		}
		c := a.candidates[a.index[l.invoiceID]]
		links = append(links, domain.LinkedInvoice{
			InvoiceID:     c.InvoiceID,
			InvoiceNumber: c.InvoiceNumber,
			InvoiceDate:   c.InvoiceDate,
			TotalAmount:   c.TotalAmount,
			BalanceAmount: c.BalanceAmount,
			AppliedAmount: l.applied,
		})
	}
	spreadDiscount(links, a.discount)
	return Result{
		Mode:     a.mode,
		Amount:   a.amount,
		Discount: a.discount,
		Applied:  a.Applied(),
		Unused:   a.Unused(),
		Links:    links,
	}
}

// spreadDiscount books the settlement discount against the links, most recent
// first, up to what each invoice still owes after its applied amount. Whatever
// does not fit stays on the party as credit, like an unused amount.
func spreadDiscount(links domain.LinkedInvoices, discount decimal.Decimal) {
	left := discount
	for i := len(links) - 1; i >= 0 && left.IsPositive(); i-- {
		room := links[i].BalanceAmount.Sub(links[i].AppliedAmount)
		if !room.IsPositive() {
			continue
		}
		take := decimal.Min(room, left)
		links[i].DiscountAmount = take
		left = left.Sub(take)
	}
}

// trim removes excess allocation starting from the most recent link.
func (a *Allocator) trim() {
	excess := a.Applied().Sub(a.Available())
	for i := len(a.links) - 1; i >= 0 && excess.IsPositive(); i-- {
		cut := decimal.Min(a.links[i].applied, excess)
		a.links[i].applied = a.links[i].applied.Sub(cut)
		excess = excess.Sub(cut)
		if !a.links[i].applied.IsPositive() {
			a.links = append(a.links[:i], a.links[i+1:]...)
		}
	}
}

func (a *Allocator) linkIndex(invoiceID uuid.UUID) int {
	for i, l := range a.links {
		if l.invoiceID == invoiceID {
			return i
		}
	}
	return -1
}

func floor(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
