package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"khata/internal/domain"
	"khata/internal/port"
)

// ReportService provides the business reports.
type ReportService interface {
	PeriodSummary(ctx context.Context, companyID uuid.UUID, filters *domain.ReportFilters) ([]domain.PeriodSummaryRow, error)
	// Outstanding buckets unpaid balances by age as of asOf (today when zero).
	Outstanding(ctx context.Context, companyID uuid.UUID, asOf time.Time, filters *domain.ReportFilters) ([]domain.OutstandingRow, int, error)
	GSTSummary(ctx context.Context, companyID uuid.UUID, filters *domain.ReportFilters) ([]domain.GSTSummaryRow, error)
	LowStock(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.Product, int, error)
	Reconciliation(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.ReconciliationRow, error)
}

type reportService struct {
	reportRepo  port.ReportRepository
	productRepo port.ProductRepository
}

// NewReportService creates a new ReportService.
func NewReportService(reportRepo port.ReportRepository, productRepo port.ProductRepository) ReportService {
	return &reportService{reportRepo: reportRepo, productRepo: productRepo}
}

func (s *reportService) PeriodSummary(ctx context.Context, companyID uuid.UUID, filters *domain.ReportFilters) ([]domain.PeriodSummaryRow, error) {
	if filters.Granularity == "" {
		filters.Granularity = "monthly"
	}
	if !domain.ValidGranularities[filters.Granularity] {
		return nil, domain.ErrInvalidGranularity
	}
	if filters.InvoiceType == "" {
		filters.InvoiceType = domain.InvoiceTypeSale
	}
	if !domain.ValidInvoiceTypes[filters.InvoiceType] {
		return nil, domain.ErrInvalidInvoiceType
	}
	return s.reportRepo.PeriodSummary(ctx, companyID, filters)
}

func (s *reportService) Outstanding(ctx context.Context, companyID uuid.UUID, asOf time.Time, filters *domain.ReportFilters) ([]domain.OutstandingRow, int, error) {
	if asOf.IsZero() {
		asOf = domain.Today().Time
	}
	return s.reportRepo.Outstanding(ctx, companyID, asOf, filters)
}

func (s *reportService) GSTSummary(ctx context.Context, companyID uuid.UUID, filters *domain.ReportFilters) ([]domain.GSTSummaryRow, error) {
	return s.reportRepo.GSTSummary(ctx, companyID, filters)
}

func (s *reportService) LowStock(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.Product, int, error) {
	return s.productRepo.List(ctx, companyID, port.ProductFilter{
		ListParams:   port.ListParams{Offset: offset, Limit: limit, Sort: "current_stock"},
		LowStockOnly: true,
	})
}

func (s *reportService) Reconciliation(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.ReconciliationRow, error) {
	return s.reportRepo.Reconciliation(ctx, &companyID, offset, limit)
}
