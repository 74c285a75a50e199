package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khata/internal/service"
)

// MockFileService is a mock implementation of service.FileService.
type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, input service.FileUploadInput) (*service.StoredFile, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StoredFile), args.Error(1)
}

func (m *MockFileService) Get(ctx context.Context, companyID, fileID uuid.UUID) (*service.StoredFile, error) {
	args := m.Called(ctx, companyID, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StoredFile), args.Error(1)
}

func (m *MockFileService) List(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]service.StoredFile, int, error) {
	args := m.Called(ctx, companyID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]service.StoredFile), args.Int(1), args.Error(2)
}

func (m *MockFileService) GetDownloadURL(ctx context.Context, companyID, fileID uuid.UUID) (string, error) {
	args := m.Called(ctx, companyID, fileID)
	return args.String(0), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, companyID, fileID uuid.UUID) error {
	args := m.Called(ctx, companyID, fileID)
	return args.Error(0)
}
