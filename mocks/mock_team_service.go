package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
	"khata/internal/service"
)

// MockTeamService is a mock implementation of service.TeamService.
type MockTeamService struct {
	mock.Mock
}

func (m *MockTeamService) List(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.User, int, error) {
	args := m.Called(ctx, companyID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}

func (m *MockTeamService) Invite(ctx context.Context, companyID uuid.UUID, actor service.Actor, input service.InviteMemberInput) (*domain.User, error) {
	args := m.Called(ctx, companyID, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockTeamService) AcceptInvite(ctx context.Context, input service.AcceptInviteInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockTeamService) UpdateMember(ctx context.Context, companyID uuid.UUID, actor service.Actor, memberID uuid.UUID, input service.UpdateMemberInput) (*domain.User, error) {
	args := m.Called(ctx, companyID, actor, memberID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockTeamService) RemoveMember(ctx context.Context, companyID uuid.UUID, actor service.Actor, memberID uuid.UUID) error {
	args := m.Called(ctx, companyID, actor, memberID)
	return args.Error(0)
}
