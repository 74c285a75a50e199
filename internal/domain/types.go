package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time-of-day component.
type Date struct {
	time.Time
}

// NewDate builds a Date in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current UTC date.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	// Accept full timestamps as well; only the date part is kept.
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
	case string:
		return d.UnmarshalJSON([]byte(v))
	case []byte:
		return d.UnmarshalJSON(v)
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Format(DateLayout), nil
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }

// InvoiceItems is a JSONB column holding invoice line items.
type InvoiceItems []InvoiceItem

func (i *InvoiceItems) Scan(value interface{}) error { return scanJSON(value, i) }

func (i InvoiceItems) Value() (driver.Value, error) { return valueJSON(i) }

// PaymentMethods is a JSONB column holding the split of a payment across methods.
type PaymentMethods []PaymentMethodLine

func (p *PaymentMethods) Scan(value interface{}) error { return scanJSON(value, p) }

func (p PaymentMethods) Value() (driver.Value, error) { return valueJSON(p) }

// Total sums the amounts across all methods.
func (p PaymentMethods) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, m := range p {
		sum = sum.Add(m.Amount)
	}
	return sum
}

// LinkedInvoices is a JSONB column holding invoice applications.
type LinkedInvoices []LinkedInvoice

func (l *LinkedInvoices) Scan(value interface{}) error { return scanJSON(value, l) }

func (l LinkedInvoices) Value() (driver.Value, error) { return valueJSON(l) }

// Applied sums the applied amounts.
func (l LinkedInvoices) Applied() decimal.Decimal {
	sum := decimal.Zero
	for _, li := range l {
		sum = sum.Add(li.AppliedAmount)
	}
	return sum
}

func scanJSON(value interface{}, dest interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into %T", value, dest)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

func valueJSON(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return []byte("[]"), nil
	}
	return b, nil
}
