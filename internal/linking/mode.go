package linking

import "khata/internal/domain"

// Mode selects which side of the books an allocation settles.
type Mode string

const (
	ModePaymentIn      Mode = "payment_in"
	ModePaymentOut     Mode = "payment_out"
	ModeSaleReturn     Mode = "sale_return"
	ModePurchaseReturn Mode = "purchase_return"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModePaymentIn, ModePaymentOut, ModeSaleReturn, ModePurchaseReturn:
		return true
	}
	return false
}

// EligibleInvoiceType is the invoice type an allocation in this mode may settle.
func (m Mode) EligibleInvoiceType() domain.InvoiceType {
	switch m {
	case ModePaymentIn, ModeSaleReturn:
		return domain.InvoiceTypeSale
	default:
		return domain.InvoiceTypePurchase
	}
}

// PartyType is the kind of party whose invoices are settled.
func (m Mode) PartyType() domain.PartyType {
	return m.EligibleInvoiceType().PartyType()
}

// ModeForPayment maps a payment type to its allocation mode.
func ModeForPayment(t domain.PaymentType) Mode {
	if t == domain.PaymentTypeIn {
		return ModePaymentIn
	}
	return ModePaymentOut
}

// ModeForReturn maps a return invoice type to its allocation mode.
func ModeForReturn(t domain.InvoiceType) Mode {
	if t == domain.InvoiceTypeSaleReturn {
		return ModeSaleReturn
	}
	return ModePurchaseReturn
}
