package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
	"khata/internal/port"
)

// MockTransactionRepo is a mock implementation of port.TransactionRepository.
type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Create(ctx context.Context, txn *domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepo) GetByID(ctx context.Context, companyID, txnID uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(ctx, companyID, txnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) GetByIDForUpdate(ctx context.Context, companyID, txnID uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(ctx, companyID, txnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) GetByRequestID(ctx context.Context, companyID uuid.UUID, requestID string) (*domain.Transaction, error) {
	args := m.Called(ctx, companyID, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) List(ctx context.Context, companyID uuid.UUID, filter port.TransactionFilter) ([]domain.Transaction, int, error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), args.Int(1), args.Error(2)
}

func (m *MockTransactionRepo) ListByPayment(ctx context.Context, companyID, paymentID uuid.UUID) ([]domain.Transaction, error) {
	args := m.Called(ctx, companyID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) ListByInvoice(ctx context.Context, companyID, invoiceID uuid.UUID) ([]domain.Transaction, error) {
	args := m.Called(ctx, companyID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) ListByTransfer(ctx context.Context, companyID, transferID uuid.UUID) ([]domain.Transaction, error) {
	args := m.Called(ctx, companyID, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) Update(ctx context.Context, txn *domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepo) Delete(ctx context.Context, companyID, txnID uuid.UUID) error {
	args := m.Called(ctx, companyID, txnID)
	return args.Error(0)
}
