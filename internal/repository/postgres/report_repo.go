package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"khata/internal/domain"
	"khata/internal/port"
)

type reportRepo struct {
	db *sqlx.DB
}

// NewReportRepo creates a new PostgreSQL-backed ReportRepository.
func NewReportRepo(db *sqlx.DB) port.ReportRepository {
	return &reportRepo{db: db}
}

// invoiceWhere builds the shared WHERE clause for invoice aggregations.
func invoiceWhere(companyID uuid.UUID, filters *domain.ReportFilters) *whereBuilder {
	w := newWhere("i.company_id", companyID)
	if filters.From != nil {
		w.add("i.invoice_date >= $%d", *filters.From)
	}
	if filters.To != nil {
		w.add("i.invoice_date <= $%d", *filters.To)
	}
	if filters.InvoiceType != "" {
		w.add("i.invoice_type = $%d", filters.InvoiceType)
	}
	if filters.PartyID != nil {
		w.add("i.party_id = $%d", *filters.PartyID)
	}
	return w
}

// dateTruncExpr returns the PostgreSQL date_trunc expression for the given granularity.
func dateTruncExpr(granularity string) string {
	switch granularity {
	case "daily":
		return "date_trunc('day', i.invoice_date)"
	case "weekly":
		return "date_trunc('week', i.invoice_date)"
	case "quarterly":
		return "date_trunc('quarter', i.invoice_date)"
	case "yearly":
		return "date_trunc('year', i.invoice_date)"
	default:
		return "date_trunc('month', i.invoice_date)"
	}
}

// formatPeriod formats a period start into a label based on granularity.
func formatPeriod(t time.Time, granularity string) string {
	switch granularity {
	case "daily":
		return t.Format("2006-01-02")
	case "weekly":
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case "quarterly":
		quarter := (int(t.Month())-1)/3 + 1
		return fmt.Sprintf("%s-Q%d", t.Format("2006"), quarter)
	case "yearly":
		return t.Format("2006")
	default:
		return t.Format("2006-01")
	}
}

// periodEnd returns the last day of the period that starts at start.
func periodEnd(start time.Time, granularity string) time.Time {
	switch granularity {
	case "daily":
		return start
	case "weekly":
		return start.AddDate(0, 0, 6)
	case "quarterly":
		return start.AddDate(0, 3, -1)
	case "yearly":
		return start.AddDate(1, 0, -1)
	default:
		return start.AddDate(0, 1, -1)
	}
}

func (r *reportRepo) PeriodSummary(ctx context.Context, companyID uuid.UUID, filters *domain.ReportFilters) ([]domain.PeriodSummaryRow, error) {
	w := invoiceWhere(companyID, filters)
	granularity := filters.Granularity
	if granularity == "" {
		granularity = "monthly"
	}

	query := fmt.Sprintf(`SELECT
		%s AS period_start,
		COUNT(*) AS invoice_count,
		COALESCE(SUM(i.taxable_amount), 0) AS taxable_amount,
		COALESCE(SUM(i.gst_amount), 0) AS gst_amount,
		COALESCE(SUM(i.total_amount), 0) AS total_amount,
		COALESCE(SUM(i.paid_amount), 0) AS paid_amount,
		COALESCE(SUM(i.balance_amount), 0) AS balance_amount
	FROM invoices i
	%s
	GROUP BY period_start
	ORDER BY period_start ASC`, dateTruncExpr(granularity), w.clause())

	var rows []domain.PeriodSummaryRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, fmt.Errorf("reportRepo.PeriodSummary: %w", err)
	}
	for i := range rows {
		rows[i].Period = formatPeriod(rows[i].PeriodStart, granularity)
		rows[i].PeriodEnd = periodEnd(rows[i].PeriodStart, granularity)
	}
	return rows, nil
}

// Outstanding buckets unpaid sale and purchase balances by days past the due date
// (or the invoice date when no due date is set) as of asOf.
func (r *reportRepo) Outstanding(ctx context.Context, companyID uuid.UUID, asOf time.Time, filters *domain.ReportFilters) ([]domain.OutstandingRow, int, error) {
	w := newWhere("i.company_id", companyID)
	w.conds = append(w.conds, "i.balance_amount > 0", "i.invoice_type IN ('sale', 'purchase')")
	if filters.PartyID != nil {
		w.add("i.party_id = $%d", *filters.PartyID)
	}
	if filters.PartyType != "" {
		w.add("p.party_type = $%d", filters.PartyType)
	}
	w.add("i.invoice_date <= $%d", asOf)
	asOfPos := len(w.args)

	age := fmt.Sprintf("($%d::date - COALESCE(i.due_date, i.invoice_date))", asOfPos)
	from := "FROM invoices i JOIN parties p ON p.id = i.party_id AND p.company_id = i.company_id"

	q := conn(ctx, r.db)
	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(DISTINCT i.party_id) %s %s", from, w.clause())
	if err := q.GetContext(ctx, &total, countQuery, w.args...); err != nil {
		return nil, 0, fmt.Errorf("reportRepo.Outstanding count: %w", err)
	}

	suffix, args := w.page(filters.Offset, filters.Limit)
	query := fmt.Sprintf(`SELECT
		i.party_id, MAX(p.name) AS party_name, MAX(p.party_type) AS party_type,
		COUNT(*) AS invoice_count,
		COALESCE(SUM(i.balance_amount) FILTER (WHERE %[1]s <= 30), 0) AS current_due,
		COALESCE(SUM(i.balance_amount) FILTER (WHERE %[1]s BETWEEN 31 AND 60), 0) AS days_31_60,
		COALESCE(SUM(i.balance_amount) FILTER (WHERE %[1]s BETWEEN 61 AND 90), 0) AS days_61_90,
		COALESCE(SUM(i.balance_amount) FILTER (WHERE %[1]s > 90), 0) AS over_90,
		SUM(i.balance_amount) AS total
	%[2]s
	%[3]s
	GROUP BY i.party_id
	ORDER BY total DESC, party_name ASC%[4]s`, age, from, w.clause(), suffix)

	var rows []domain.OutstandingRow
	if err := q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("reportRepo.Outstanding: %w", err)
	}
	return rows, total, nil
}

// GSTSummary totals tax per invoice type and GST rate from the stored line items.
func (r *reportRepo) GSTSummary(ctx context.Context, companyID uuid.UUID, filters *domain.ReportFilters) ([]domain.GSTSummaryRow, error) {
	w := invoiceWhere(companyID, filters)

	query := fmt.Sprintf(`WITH lines AS (
		SELECT i.invoice_type,
			(item->>'gst_rate')::numeric AS gst_rate,
			(item->>'taxable_amount')::numeric AS taxable_amount,
			(item->>'gst_amount')::numeric AS gst_amount,
			i.igst_amount > 0 AS inter_state
		FROM invoices i, jsonb_array_elements(i.items) AS item
		%s
	)
	SELECT invoice_type, gst_rate,
		COALESCE(SUM(taxable_amount), 0) AS taxable_amount,
		COALESCE(SUM(ROUND(gst_amount / 2, 2)) FILTER (WHERE NOT inter_state), 0) AS cgst_amount,
		COALESCE(SUM(gst_amount - ROUND(gst_amount / 2, 2)) FILTER (WHERE NOT inter_state), 0) AS sgst_amount,
		COALESCE(SUM(gst_amount) FILTER (WHERE inter_state), 0) AS igst_amount,
		COALESCE(SUM(gst_amount), 0) AS total_tax
	FROM lines
	GROUP BY invoice_type, gst_rate
	ORDER BY invoice_type, gst_rate`, w.clause())

	var rows []domain.GSTSummaryRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, fmt.Errorf("reportRepo.GSTSummary: %w", err)
	}
	return rows, nil
}

// PartyEntries lists every invoice, refund and payment that moved the party's balance.
// Debits raise what the party owes the company; credits lower it.
func (r *reportRepo) PartyEntries(ctx context.Context, companyID, partyID uuid.UUID, filters *domain.ReportFilters) ([]domain.StatementEntry, error) {
	args := []interface{}{companyID, partyID}
	dateFilter := func(col string) string {
		clause := ""
		if filters.From != nil {
			args = append(args, *filters.From)
			clause += fmt.Sprintf(" AND %s >= $%d", col, len(args))
		}
		if filters.To != nil {
			args = append(args, *filters.To)
			clause += fmt.Sprintf(" AND %s <= $%d", col, len(args))
		}
		return clause
	}
	invoiceDates := dateFilter("invoice_date")
	paymentDates := dateFilter("payment_date")

	query := fmt.Sprintf(`SELECT entry_date, entry_type, reference, reference_id, debit, credit, created_at FROM (
		SELECT invoice_date AS entry_date, invoice_type AS entry_type, invoice_number AS reference,
			id AS reference_id,
			CASE WHEN invoice_type IN ('sale', 'purchase_return') THEN total_amount ELSE 0 END AS debit,
			CASE WHEN invoice_type IN ('purchase', 'sale_return') THEN total_amount ELSE 0 END AS credit,
			created_at
		FROM invoices WHERE company_id = $1 AND party_id = $2%[1]s
		UNION ALL
		SELECT invoice_date, 'return_refund', invoice_number, id,
			CASE WHEN invoice_type = 'sale_return' THEN refund_amount ELSE 0 END,
			CASE WHEN invoice_type = 'purchase_return' THEN refund_amount ELSE 0 END,
			created_at
		FROM invoices WHERE company_id = $1 AND party_id = $2 AND refund_amount > 0%[1]s
		UNION ALL
		SELECT payment_date, payment_type, payment_number, id,
			CASE WHEN payment_type = 'payment_out' THEN total_amount ELSE 0 END,
			CASE WHEN payment_type = 'payment_in' THEN total_amount ELSE 0 END,
			created_at
		FROM payments WHERE company_id = $1 AND party_id = $2%[2]s
	) entries
	ORDER BY entry_date ASC, created_at ASC`, invoiceDates, paymentDates)

	var rows []domain.StatementEntry
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("reportRepo.PartyEntries: %w", err)
	}
	return rows, nil
}

// Reconciliation expects current_balance = opening_balance + Σ non-opening transaction amounts.
func (r *reportRepo) Reconciliation(ctx context.Context, companyID *uuid.UUID, offset, limit int) ([]domain.ReconciliationRow, error) {
	w := &whereBuilder{}
	if companyID != nil {
		w.add("a.company_id = $%d", *companyID)
	}
	suffix, args := w.page(offset, limit)

	query := fmt.Sprintf(`SELECT
		a.id AS account_id, a.company_id, a.display_name, a.opening_balance,
		COALESCE(SUM(t.amount) FILTER (WHERE t.transaction_type != 'opening_balance'), 0) AS ledger_total,
		a.opening_balance + COALESCE(SUM(t.amount) FILTER (WHERE t.transaction_type != 'opening_balance'), 0) AS expected_balance,
		a.current_balance,
		a.current_balance - a.opening_balance
			- COALESCE(SUM(t.amount) FILTER (WHERE t.transaction_type != 'opening_balance'), 0) AS drift
	FROM bank_accounts a
	LEFT JOIN transactions t ON t.account_id = a.id AND t.company_id = a.company_id
	%s
	GROUP BY a.id
	ORDER BY a.company_id, a.created_at, a.id%s`, w.clause(), suffix)

	var rows []domain.ReconciliationRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("reportRepo.Reconciliation: %w", err)
	}
	return rows, nil
}
