package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
	"khata/internal/port"
	"khata/internal/service"
)

// MockLedgerService is a mock implementation of service.LedgerService.
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) CreateAccount(ctx context.Context, companyID, userID uuid.UUID, input service.CreateAccountInput) (*domain.BankAccount, error) {
	args := m.Called(ctx, companyID, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccount), args.Error(1)
}

func (m *MockLedgerService) GetAccount(ctx context.Context, companyID, accountID uuid.UUID) (*domain.BankAccount, error) {
	args := m.Called(ctx, companyID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccount), args.Error(1)
}

func (m *MockLedgerService) ListAccounts(ctx context.Context, companyID uuid.UUID, accountType domain.AccountType) ([]domain.BankAccount, error) {
	args := m.Called(ctx, companyID, accountType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankAccount), args.Error(1)
}

func (m *MockLedgerService) UpdateAccount(ctx context.Context, companyID, accountID uuid.UUID, input service.UpdateAccountInput) (*domain.BankAccount, error) {
	args := m.Called(ctx, companyID, accountID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccount), args.Error(1)
}

func (m *MockLedgerService) DeleteAccount(ctx context.Context, companyID, accountID uuid.UUID) error {
	args := m.Called(ctx, companyID, accountID)
	return args.Error(0)
}

func (m *MockLedgerService) CreateTransaction(ctx context.Context, companyID, userID uuid.UUID, input service.CreateTransactionInput) (*domain.Transaction, error) {
	args := m.Called(ctx, companyID, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) GetTransaction(ctx context.Context, companyID, txnID uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(ctx, companyID, txnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) ListTransactions(ctx context.Context, companyID uuid.UUID, filter port.TransactionFilter) ([]domain.Transaction, int, error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), args.Int(1), args.Error(2)
}

func (m *MockLedgerService) UpdateTransaction(ctx context.Context, companyID, txnID uuid.UUID, input service.UpdateTransactionInput) (*domain.Transaction, error) {
	args := m.Called(ctx, companyID, txnID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) DeleteTransaction(ctx context.Context, companyID, txnID uuid.UUID) error {
	args := m.Called(ctx, companyID, txnID)
	return args.Error(0)
}

func (m *MockLedgerService) Transfer(ctx context.Context, companyID, userID uuid.UUID, input service.TransferInput) (*service.Transfer, error) {
	args := m.Called(ctx, companyID, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Transfer), args.Error(1)
}

func (m *MockLedgerService) Reconcile(ctx context.Context, companyID *uuid.UUID, fix bool) ([]domain.ReconciliationRow, error) {
	args := m.Called(ctx, companyID, fix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconciliationRow), args.Error(1)
}
