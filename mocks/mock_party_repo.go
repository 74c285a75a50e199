package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
	"khata/internal/port"
)

// MockPartyRepo is a mock implementation of port.PartyRepository.
type MockPartyRepo struct {
	mock.Mock
}

func (m *MockPartyRepo) Create(ctx context.Context, party *domain.Party) error {
	args := m.Called(ctx, party)
	return args.Error(0)
}

func (m *MockPartyRepo) GetByID(ctx context.Context, companyID, partyID uuid.UUID) (*domain.Party, error) {
	args := m.Called(ctx, companyID, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Party), args.Error(1)
}

func (m *MockPartyRepo) List(ctx context.Context, companyID uuid.UUID, filter port.PartyFilter) ([]domain.Party, int, error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Party), args.Int(1), args.Error(2)
}

func (m *MockPartyRepo) Update(ctx context.Context, party *domain.Party) error {
	args := m.Called(ctx, party)
	return args.Error(0)
}

func (m *MockPartyRepo) AdjustBalance(ctx context.Context, companyID, partyID uuid.UUID, receivable, payable decimal.Decimal) error {
	args := m.Called(ctx, companyID, partyID, receivable, payable)
	return args.Error(0)
}

func (m *MockPartyRepo) HasActivity(ctx context.Context, companyID, partyID uuid.UUID) (bool, error) {
	args := m.Called(ctx, companyID, partyID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPartyRepo) Delete(ctx context.Context, companyID, partyID uuid.UUID) error {
	args := m.Called(ctx, companyID, partyID)
	return args.Error(0)
}
