package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
)

// MockReportService is a mock implementation of service.ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) PeriodSummary(ctx context.Context, companyID uuid.UUID, filters *domain.ReportFilters) ([]domain.PeriodSummaryRow, error) {
	args := m.Called(ctx, companyID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PeriodSummaryRow), args.Error(1)
}

func (m *MockReportService) Outstanding(ctx context.Context, companyID uuid.UUID, asOf time.Time, filters *domain.ReportFilters) ([]domain.OutstandingRow, int, error) {
	args := m.Called(ctx, companyID, asOf, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.OutstandingRow), args.Int(1), args.Error(2)
}

func (m *MockReportService) GSTSummary(ctx context.Context, companyID uuid.UUID, filters *domain.ReportFilters) ([]domain.GSTSummaryRow, error) {
	args := m.Called(ctx, companyID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GSTSummaryRow), args.Error(1)
}

func (m *MockReportService) LowStock(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.Product, int, error) {
	args := m.Called(ctx, companyID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *MockReportService) Reconciliation(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.ReconciliationRow, error) {
	args := m.Called(ctx, companyID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconciliationRow), args.Error(1)
}
