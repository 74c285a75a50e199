package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
)

// MockBankAccountRepo is a mock implementation of port.BankAccountRepository.
type MockBankAccountRepo struct {
	mock.Mock
}

func (m *MockBankAccountRepo) Create(ctx context.Context, account *domain.BankAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockBankAccountRepo) GetByID(ctx context.Context, companyID, accountID uuid.UUID) (*domain.BankAccount, error) {
	args := m.Called(ctx, companyID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccount), args.Error(1)
}

func (m *MockBankAccountRepo) List(ctx context.Context, companyID uuid.UUID, accountType domain.AccountType) ([]domain.BankAccount, error) {
	args := m.Called(ctx, companyID, accountType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankAccount), args.Error(1)
}

func (m *MockBankAccountRepo) Update(ctx context.Context, account *domain.BankAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockBankAccountRepo) AdjustBalance(ctx context.Context, companyID, accountID uuid.UUID, delta decimal.Decimal) error {
	args := m.Called(ctx, companyID, accountID, delta)
	return args.Error(0)
}

func (m *MockBankAccountRepo) ResetBalanceFromLedger(ctx context.Context, companyID, accountID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, companyID, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBankAccountRepo) HasTransactions(ctx context.Context, companyID, accountID uuid.UUID) (bool, error) {
	args := m.Called(ctx, companyID, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBankAccountRepo) Delete(ctx context.Context, companyID, accountID uuid.UUID) error {
	args := m.Called(ctx, companyID, accountID)
	return args.Error(0)
}
