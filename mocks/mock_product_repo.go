package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
	"khata/internal/port"
)

// MockProductRepo is a mock implementation of port.ProductRepository.
type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepo) GetByID(ctx context.Context, companyID, productID uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, companyID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepo) GetByItemCode(ctx context.Context, companyID uuid.UUID, itemCode string) (*domain.Product, error) {
	args := m.Called(ctx, companyID, itemCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepo) List(ctx context.Context, companyID uuid.UUID, filter port.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *MockProductRepo) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepo) AdjustStock(ctx context.Context, companyID, productID uuid.UUID, delta decimal.Decimal) error {
	args := m.Called(ctx, companyID, productID, delta)
	return args.Error(0)
}

func (m *MockProductRepo) Delete(ctx context.Context, companyID, productID uuid.UUID) error {
	args := m.Called(ctx, companyID, productID)
	return args.Error(0)
}
