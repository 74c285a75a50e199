package linking_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khata/internal/domain"
	"khata/internal/linking"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func candidate(id uuid.UUID, balance string, date domain.Date) linking.Candidate {
	return linking.Candidate{
		InvoiceID:     id,
		InvoiceNumber: "INV-" + id.String()[:4],
		InvoiceDate:   date,
		TotalAmount:   dec(balance),
		BalanceAmount: dec(balance),
	}
}

func TestAllocator_AutoLink_OldestFirst(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	// Passed newest first to check ordering.
	alloc := linking.NewAllocator(linking.ModePaymentIn, dec("1000"), []linking.Candidate{
		candidate(b, "800", domain.NewDate(2024, 2, 1)),
		candidate(a, "600", domain.NewDate(2024, 1, 1)),
	})

	alloc.AutoLink()
	res := alloc.Result()

	require.Len(t, res.Links, 2)
	assert.Equal(t, a, res.Links[0].InvoiceID)
	assertDec(t, "600", res.Links[0].AppliedAmount)
	assert.Equal(t, b, res.Links[1].InvoiceID)
	assertDec(t, "400", res.Links[1].AppliedAmount)
	assertDec(t, "0", res.Unused)
}

func TestAllocator_AutoLink_DiscountReducesAvailable(t *testing.T) {
	a := uuid.New()
	alloc := linking.NewAllocator(linking.ModePaymentIn, dec("500"), []linking.Candidate{
		candidate(a, "1000", domain.NewDate(2024, 1, 1)),
	})
	alloc.SetDiscount(dec("100"))

	alloc.AutoLink()
	res := alloc.Result()

	require.Len(t, res.Links, 1)
	assertDec(t, "400", res.Links[0].AppliedAmount)
	assertDec(t, "0", res.Unused)
	assertDec(t, "100", res.Discount)
}

func TestAllocator_Result_DiscountWrittenOffLinkedInvoices(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	alloc := linking.NewAllocator(linking.ModePaymentIn, dec("700"), []linking.Candidate{
		candidate(a, "300", domain.NewDate(2024, 1, 1)),
		candidate(b, "420", domain.NewDate(2024, 2, 1)),
	})
	alloc.SetDiscount(dec("60"))

	alloc.AutoLink()
	res := alloc.Result()

	// 640 fills a then 340 of b; b has 80 left, so the whole discount lands there.
	require.Len(t, res.Links, 2)
	assertDec(t, "340", res.Links[1].AppliedAmount)
	assertDec(t, "60", res.Links[1].DiscountAmount)
	assertDec(t, "0", res.Links[0].DiscountAmount)
}

func TestAllocator_Result_DiscountSpillsToEarlierLinks(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	alloc := linking.NewAllocator(linking.ModePaymentIn, dec("500"), []linking.Candidate{
		candidate(a, "300", domain.NewDate(2024, 1, 1)),
		candidate(b, "200", domain.NewDate(2024, 2, 1)),
	})
	alloc.SetDiscount(dec("150"))
	require.NoError(t, alloc.SetAmount(a, dec("250")))
	require.NoError(t, alloc.SetAmount(b, dec("500")))

	res := alloc.Result()

	// b is capped at 100 and takes 100 of the discount; a absorbs the other 50.
	require.Len(t, res.Links, 2)
	assertDec(t, "100", res.Links[1].AppliedAmount)
	assertDec(t, "100", res.Links[1].DiscountAmount)
	assertDec(t, "50", res.Links[0].DiscountAmount)
	assertDec(t, "300", res.Links[0].Settled())
	assertDec(t, "0", res.Unused)
}

func TestAllocator_AutoLink_SkipsSettledInvoices(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	alloc := linking.NewAllocator(linking.ModePaymentOut, dec("300"), []linking.Candidate{
		candidate(a, "0", domain.NewDate(2024, 1, 1)),
		candidate(b, "200", domain.NewDate(2024, 1, 5)),
	})

	alloc.AutoLink()
	res := alloc.Result()

	require.Len(t, res.Links, 1)
	assert.Equal(t, b, res.Links[0].InvoiceID)
	assertDec(t, "100", res.Unused)
}

func TestAllocator_AutoLink_SameDateKeepsInputOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	day := domain.NewDate(2024, 3, 1)
	build := func() *linking.Allocator {
		return linking.NewAllocator(linking.ModePaymentIn, dec("150"), []linking.Candidate{
			candidate(a, "100", day),
			candidate(b, "100", day),
		})
	}

	first := build()
	first.AutoLink()
	second := build()
	second.AutoLink()

	assert.Equal(t, first.Result(), second.Result())
	assertDec(t, "100", first.AppliedTo(a))
	assertDec(t, "50", first.AppliedTo(b))
}

func TestAllocator_SetAmount_ClampsToBalanceAndCapacity(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	alloc := linking.NewAllocator(linking.ModePaymentIn, dec("1000"), []linking.Candidate{
		candidate(a, "600", domain.NewDate(2024, 1, 1)),
		candidate(b, "800", domain.NewDate(2024, 2, 1)),
	})

	require.NoError(t, alloc.Toggle(a))
	assertDec(t, "600", alloc.AppliedTo(a))
	require.NoError(t, alloc.Toggle(b))
	assertDec(t, "400", alloc.AppliedTo(b))

	require.NoError(t, alloc.SetAmount(b, dec("700")))
	assertDec(t, "400", alloc.AppliedTo(b))
	assertDec(t, "0", alloc.Unused())

	require.NoError(t, alloc.SetAmount(a, dec("900")))
	assertDec(t, "600", alloc.AppliedTo(a))
}

func TestAllocator_SetAmount_CapacityIncludesDiscount(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	alloc := linking.NewAllocator(linking.ModePaymentIn, dec("1000"), []linking.Candidate{
		candidate(a, "600", domain.NewDate(2024, 1, 1)),
		candidate(b, "800", domain.NewDate(2024, 2, 1)),
	})
	alloc.SetDiscount(dec("200"))
	require.NoError(t, alloc.SetAmount(a, dec("600")))

	require.NoError(t, alloc.SetAmount(b, dec("800")))

	assertDec(t, "200", alloc.AppliedTo(b))
	assertDec(t, "800", alloc.Applied())
	assertDec(t, "0", alloc.Unused())
}

func TestAllocator_SetAmount_NegativeFloorsAtZero(t *testing.T) {
	a := uuid.New()
	alloc := linking.NewAllocator(linking.ModePaymentIn, dec("100"), []linking.Candidate{
		candidate(a, "50", domain.NewDate(2024, 1, 1)),
	})

	require.NoError(t, alloc.SetAmount(a, dec("-10")))

	assert.True(t, alloc.IsLinked(a))
	assertDec(t, "0", alloc.AppliedTo(a))
	assert.Empty(t, alloc.Result().Links)
}

func TestAllocator_Toggle_UncheckRemovesLink(t *testing.T) {
	a := uuid.New()
	alloc := linking.NewAllocator(linking.ModeSaleReturn, dec("100"), []linking.Candidate{
		candidate(a, "300", domain.NewDate(2024, 1, 1)),
	})

	require.NoError(t, alloc.Toggle(a))
	assertDec(t, "100", alloc.AppliedTo(a))

	require.NoError(t, alloc.Toggle(a))
	assert.False(t, alloc.IsLinked(a))
	assertDec(t, "100", alloc.Unused())
}

func TestAllocator_Toggle_UnknownInvoice(t *testing.T) {
	alloc := linking.NewAllocator(linking.ModePaymentIn, dec("100"), nil)

	err := alloc.Toggle(uuid.New())

	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestAllocator_SetDiscount_TrimsMostRecentFirst(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	alloc := linking.NewAllocator(linking.ModePaymentIn, dec("1000"), []linking.Candidate{
		candidate(a, "600", domain.NewDate(2024, 1, 1)),
		candidate(b, "800", domain.NewDate(2024, 2, 1)),
	})
	alloc.AutoLink()

	alloc.SetDiscount(dec("300"))

	assertDec(t, "600", alloc.AppliedTo(a))
	assertDec(t, "100", alloc.AppliedTo(b))

	alloc.SetDiscount(dec("500"))
	assert.False(t, alloc.IsLinked(b))
	assertDec(t, "500", alloc.AppliedTo(a))
	assertDec(t, "0", alloc.Unused())
}

func TestAllocator_SetDiscount_ClampsToAmount(t *testing.T) {
	alloc := linking.NewAllocator(linking.ModePaymentIn, dec("100"), nil)

	alloc.SetDiscount(dec("250"))
	assertDec(t, "100", alloc.Discount())

	alloc.SetDiscount(dec("-5"))
	assertDec(t, "0", alloc.Discount())
}

func TestAllocator_SetAmountTotal_Trims(t *testing.T) {
	a := uuid.New()
	alloc := linking.NewAllocator(linking.ModePurchaseReturn, dec("500"), []linking.Candidate{
		candidate(a, "500", domain.NewDate(2024, 1, 1)),
	})
	alloc.AutoLink()

	alloc.SetAmountTotal(dec("200"))

	assertDec(t, "200", alloc.AppliedTo(a))
	assertDec(t, "0", alloc.Unused())
}

func TestAllocator_Reset_ReplaysSameAllocation(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	alloc := linking.NewAllocator(linking.ModePaymentIn, dec("1000"), []linking.Candidate{
		candidate(a, "600", domain.NewDate(2024, 1, 1)),
		candidate(b, "800", domain.NewDate(2024, 2, 1)),
	})
	initial := []domain.LinkedInvoice{
		{InvoiceID: b, AppliedAmount: dec("300")},
		{InvoiceID: a, AppliedAmount: dec("200")},
		{InvoiceID: uuid.New(), AppliedAmount: dec("50")},
	}

	alloc.Reset(initial, dec("100"))
	first := alloc.Result()

	require.NoError(t, alloc.Toggle(a))
	alloc.SetDiscount(dec("0"))

	alloc.Reset(initial, dec("100"))
	second := alloc.Result()

	assert.Equal(t, first, second)
	require.Len(t, first.Links, 2)
	assert.Equal(t, b, first.Links[0].InvoiceID)
	assertDec(t, "400", first.Unused)
}

func TestAllocator_Reset_ClampsOversizedLinks(t *testing.T) {
	a := uuid.New()
	alloc := linking.NewAllocator(linking.ModePaymentIn, dec("100"), []linking.Candidate{
		candidate(a, "80", domain.NewDate(2024, 1, 1)),
	})

	alloc.Reset([]domain.LinkedInvoice{{InvoiceID: a, AppliedAmount: dec("500")}}, decimal.Zero)

	assertDec(t, "80", alloc.AppliedTo(a))
	assertDec(t, "20", alloc.Unused())
}

func TestAllocator_Invariants_HoldAcrossMutations(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	balances := []string{"250", "400", "125.50"}
	candidates := make([]linking.Candidate, len(ids))
	for i, id := range ids {
		candidates[i] = candidate(id, balances[i], domain.NewDate(2024, 1, i+1))
	}
	alloc := linking.NewAllocator(linking.ModePaymentIn, dec("600"), candidates)

	check := func() {
		t.Helper()
		res := alloc.Result()
		assert.True(t, res.Applied.LessThanOrEqual(res.Amount.Sub(res.Discount)))
		assert.False(t, res.Unused.IsNegative())
		for _, l := range res.Links {
			assert.True(t, l.Settled().LessThanOrEqual(l.BalanceAmount))
		}
	}

	alloc.AutoLink()
	check()
	alloc.SetDiscount(dec("75"))
	check()
	_ = alloc.Toggle(ids[0])
	check()
	_ = alloc.SetAmount(ids[2], dec("999"))
	check()
	_ = alloc.Toggle(ids[0])
	check()
	alloc.SetAmountTotal(dec("100"))
	check()
}

func TestMode_EligibleInvoiceType(t *testing.T) {
	assert.Equal(t, domain.InvoiceTypeSale, linking.ModePaymentIn.EligibleInvoiceType())
	assert.Equal(t, domain.InvoiceTypeSale, linking.ModeSaleReturn.EligibleInvoiceType())
	assert.Equal(t, domain.InvoiceTypePurchase, linking.ModePaymentOut.EligibleInvoiceType())
	assert.Equal(t, domain.InvoiceTypePurchase, linking.ModePurchaseReturn.EligibleInvoiceType())
	assert.False(t, linking.Mode("refund").Valid())
}
