package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
	"khata/internal/port"
	"khata/internal/service"
)

// MockPartyService is a mock implementation of service.PartyService.
type MockPartyService struct {
	mock.Mock
}

func (m *MockPartyService) Create(ctx context.Context, companyID uuid.UUID, input service.CreatePartyInput) (*domain.Party, error) {
	args := m.Called(ctx, companyID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Party), args.Error(1)
}

func (m *MockPartyService) Get(ctx context.Context, companyID, partyID uuid.UUID) (*domain.Party, error) {
	args := m.Called(ctx, companyID, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Party), args.Error(1)
}

func (m *MockPartyService) List(ctx context.Context, companyID uuid.UUID, filter port.PartyFilter) ([]domain.Party, int, error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Party), args.Int(1), args.Error(2)
}

func (m *MockPartyService) Update(ctx context.Context, companyID, partyID uuid.UUID, input service.UpdatePartyInput) (*domain.Party, error) {
	args := m.Called(ctx, companyID, partyID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Party), args.Error(1)
}

func (m *MockPartyService) Delete(ctx context.Context, companyID, partyID uuid.UUID) error {
	args := m.Called(ctx, companyID, partyID)
	return args.Error(0)
}

func (m *MockPartyService) Outstanding(ctx context.Context, companyID, partyID uuid.UUID) ([]domain.Invoice, error) {
	args := m.Called(ctx, companyID, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockPartyService) Statement(ctx context.Context, companyID, partyID uuid.UUID, from, to *time.Time) (*domain.PartyStatement, error) {
	args := m.Called(ctx, companyID, partyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PartyStatement), args.Error(1)
}
