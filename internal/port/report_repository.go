package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"khata/internal/domain"
)

// ReportRepository provides aggregation queries for reports.
type ReportRepository interface {
	PeriodSummary(ctx context.Context, companyID uuid.UUID, filters *domain.ReportFilters) ([]domain.PeriodSummaryRow, error)
	Outstanding(ctx context.Context, companyID uuid.UUID, asOf time.Time, filters *domain.ReportFilters) ([]domain.OutstandingRow, int, error)
	GSTSummary(ctx context.Context, companyID uuid.UUID, filters *domain.ReportFilters) ([]domain.GSTSummaryRow, error)
	PartyEntries(ctx context.Context, companyID, partyID uuid.UUID, filters *domain.ReportFilters) ([]domain.StatementEntry, error)
	// Reconciliation compares stored account balances with their ledgers.
	// A nil companyID covers every company.
	Reconciliation(ctx context.Context, companyID *uuid.UUID, offset, limit int) ([]domain.ReconciliationRow, error)
}
