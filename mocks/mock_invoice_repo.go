package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
	"khata/internal/port"
)

// MockInvoiceRepo is a mock implementation of port.InvoiceRepository.
type MockInvoiceRepo struct {
	mock.Mock
}

func (m *MockInvoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepo) GetByID(ctx context.Context, companyID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, companyID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) GetByIDForUpdate(ctx context.Context, companyID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, companyID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) GetByRequestID(ctx context.Context, companyID uuid.UUID, requestID string) (*domain.Invoice, error) {
	args := m.Called(ctx, companyID, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) List(ctx context.Context, companyID uuid.UUID, filter port.InvoiceFilter) ([]domain.Invoice, int, error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Invoice), args.Int(1), args.Error(2)
}

func (m *MockInvoiceRepo) ListOutstanding(ctx context.Context, companyID, partyID uuid.UUID, invoiceType domain.InvoiceType) ([]domain.Invoice, error) {
	args := m.Called(ctx, companyID, partyID, invoiceType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) Update(ctx context.Context, invoice *domain.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepo) ApplyPayment(ctx context.Context, companyID, invoiceID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, companyID, invoiceID, amount)
	return args.Error(0)
}

func (m *MockInvoiceRepo) Delete(ctx context.Context, companyID, invoiceID uuid.UUID) error {
	args := m.Called(ctx, companyID, invoiceID)
	return args.Error(0)
}
