package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khata/internal/service"
)

// MockLinkingService is a mock implementation of service.LinkingService.
type MockLinkingService struct {
	mock.Mock
}

func (m *MockLinkingService) Preview(ctx context.Context, companyID uuid.UUID, input service.PreviewLinksInput) (*service.LinkPreview, error) {
	args := m.Called(ctx, companyID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LinkPreview), args.Error(1)
}
