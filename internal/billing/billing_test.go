package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khata/internal/billing"
	"khata/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func line(qty, rate, disc, gst string) billing.LineInput {
	return billing.LineInput{
		Name:            "Widget",
		Quantity:        dec(qty),
		Rate:            dec(rate),
		DiscountPercent: dec(disc),
		GSTRate:         dec(gst),
	}
}

func TestComputeLine_DiscountThenTax(t *testing.T) {
	item, err := billing.ComputeLine(line("3", "199.99", "10", "18"))

	require.NoError(t, err)
	// gross 599.97, discount 60.00, taxable 539.97, gst 97.19
	assertDec(t, "60", item.DiscountAmount)
	assertDec(t, "539.97", item.TaxableAmount)
	assertDec(t, "97.19", item.GSTAmount)
	assertDec(t, "637.16", item.LineTotal)
}

func TestComputeLine_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   billing.LineInput
	}{
		{"zero quantity", line("0", "10", "0", "5")},
		{"negative rate", line("1", "-1", "0", "5")},
		{"discount over 100", line("1", "10", "101", "5")},
		{"negative gst", line("1", "10", "0", "-5")},
		{"missing name", billing.LineInput{Quantity: dec("1"), Rate: dec("1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := billing.ComputeLine(tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidLineItem)
		})
	}
}

func TestCompute_IntraStateSplitsTax(t *testing.T) {
	totals, err := billing.Compute([]billing.LineInput{
		line("1", "100.10", "0", "5"),
	}, billing.Options{CompanyStateCode: "27", PartyStateCode: "27"})

	require.NoError(t, err)
	// gst 5.005 -> 5.01; cgst 2.51 (rounded half up), sgst the remainder
	assertDec(t, "5.01", totals.GSTAmount)
	assertDec(t, "2.51", totals.CGSTAmount)
	assertDec(t, "2.50", totals.SGSTAmount)
	assertDec(t, "0", totals.IGSTAmount)
	assertDec(t, "105.11", totals.TotalAmount)
}

func TestCompute_InterStateUsesIGST(t *testing.T) {
	totals, err := billing.Compute([]billing.LineInput{
		line("2", "500", "0", "18"),
		line("1", "250", "20", "12"),
	}, billing.Options{CompanyStateCode: "27", PartyStateCode: "29"})

	require.NoError(t, err)
	assertDec(t, "1250", totals.Subtotal)
	assertDec(t, "50", totals.DiscountAmount)
	assertDec(t, "1200", totals.TaxableAmount)
	assertDec(t, "204", totals.GSTAmount)
	assertDec(t, "204", totals.IGSTAmount)
	assertDec(t, "0", totals.CGSTAmount)
	assertDec(t, "1404", totals.TotalAmount)
}

func TestCompute_MissingPartyStateIsIntraState(t *testing.T) {
	totals, err := billing.Compute([]billing.LineInput{line("1", "100", "0", "18")},
		billing.Options{CompanyStateCode: "27"})

	require.NoError(t, err)
	assertDec(t, "9", totals.CGSTAmount)
	assertDec(t, "9", totals.SGSTAmount)
}

func TestCompute_RoundOff(t *testing.T) {
	totals, err := billing.Compute([]billing.LineInput{line("1", "99.40", "0", "5")},
		billing.Options{RoundOff: true})

	require.NoError(t, err)
	// raw 99.40 + 4.97 = 104.37
	assertDec(t, "104", totals.TotalAmount)
	assertDec(t, "-0.37", totals.RoundOff)
	assert.True(t, totals.RoundOff.Abs().LessThanOrEqual(dec("0.50")))
}

func TestCompute_EmptyInvoice(t *testing.T) {
	_, err := billing.Compute(nil, billing.Options{})
	assert.ErrorIs(t, err, domain.ErrEmptyInvoice)
}

func TestApply_SetsBalanceAndStatus(t *testing.T) {
	totals, err := billing.Compute([]billing.LineInput{line("1", "1000", "0", "0")}, billing.Options{})
	require.NoError(t, err)

	inv := &domain.Invoice{PaidAmount: dec("400")}
	totals.Apply(inv)

	assertDec(t, "600", inv.BalanceAmount)
	assert.Equal(t, domain.PaymentStatusPartial, inv.PaymentStatus)
}

func TestStatus(t *testing.T) {
	assert.Equal(t, domain.PaymentStatusUnpaid, billing.Status(dec("0"), dec("100")))
	assert.Equal(t, domain.PaymentStatusPartial, billing.Status(dec("10"), dec("90")))
	assert.Equal(t, domain.PaymentStatusPaid, billing.Status(dec("100"), dec("0")))
	assert.Equal(t, domain.PaymentStatusPaid, billing.Status(dec("0"), dec("0")))
}
