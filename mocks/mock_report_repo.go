package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
)

// MockReportRepo is a mock implementation of port.ReportRepository.
type MockReportRepo struct {
	mock.Mock
}

func (m *MockReportRepo) PeriodSummary(ctx context.Context, companyID uuid.UUID, filters *domain.ReportFilters) ([]domain.PeriodSummaryRow, error) {
	args := m.Called(ctx, companyID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PeriodSummaryRow), args.Error(1)
}

func (m *MockReportRepo) Outstanding(ctx context.Context, companyID uuid.UUID, asOf time.Time, filters *domain.ReportFilters) ([]domain.OutstandingRow, int, error) {
	args := m.Called(ctx, companyID, asOf, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.OutstandingRow), args.Int(1), args.Error(2)
}

func (m *MockReportRepo) GSTSummary(ctx context.Context, companyID uuid.UUID, filters *domain.ReportFilters) ([]domain.GSTSummaryRow, error) {
	args := m.Called(ctx, companyID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GSTSummaryRow), args.Error(1)
}

func (m *MockReportRepo) PartyEntries(ctx context.Context, companyID, partyID uuid.UUID, filters *domain.ReportFilters) ([]domain.StatementEntry, error) {
	args := m.Called(ctx, companyID, partyID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatementEntry), args.Error(1)
}

func (m *MockReportRepo) Reconciliation(ctx context.Context, companyID *uuid.UUID, offset, limit int) ([]domain.ReconciliationRow, error) {
	args := m.Called(ctx, companyID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconciliationRow), args.Error(1)
}
