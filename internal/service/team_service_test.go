package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"khata/internal/domain"
	"khata/internal/port"
	"khata/internal/service"
	"khata/mocks"
)

type teamDeps struct {
	users     *mocks.MockUserRepo
	companies *mocks.MockCompanyRepo
	email     *mocks.MockEmailSender
}

func newTeamService() (service.TeamService, *teamDeps) {
	d := &teamDeps{
		users:     new(mocks.MockUserRepo),
		companies: new(mocks.MockCompanyRepo),
		email:     new(mocks.MockEmailSender),
	}
	return service.NewTeamService(mocks.PassthroughTxManager{}, d.users, d.companies, d.email, testJWTConfig()), d
}

func roleP(r domain.UserRole) *domain.UserRole { return &r }

func statusP(s domain.UserStatus) *domain.UserStatus { return &s }

func TestTeamService_InviteThenAccept(t *testing.T) {
	svc, d := newTeamService()
	companyID := uuid.New()
	owner := &domain.User{ID: uuid.New(), CompanyID: companyID, FullName: "Asha Rao", Role: domain.RoleOwner, Status: domain.UserStatusActive}
	newID := uuid.New()

	var invited *domain.User
	var token string
	d.companies.On("GetByID", mock.Anything, companyID).Return(&domain.Company{ID: companyID, Name: "Rao Stores"}, nil)
	d.users.On("GetByID", mock.Anything, companyID, owner.ID).Return(owner, nil)
	d.users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) {
			invited = args.Get(1).(*domain.User)
			invited.ID = newID
		}).Return(nil)
	d.email.On("SendInvitationEmail", mock.Anything, mock.AnythingOfType("port.InvitationEmail")).
		Run(func(args mock.Arguments) { token = args.Get(1).(port.InvitationEmail).Token }).
		Return(nil)

	user, err := svc.Invite(context.Background(), companyID, service.Actor{UserID: owner.ID, Role: domain.RoleOwner}, service.InviteMemberInput{
		Email:    "Clerk@Example.com",
		FullName: "Ravi  Kumar",
		Role:     domain.RoleSales,
	})
	require.NoError(t, err)
	assert.Equal(t, "clerk@example.com", user.Email)
	assert.Equal(t, domain.UserStatusInvited, user.Status)
	assert.Equal(t, &owner.ID, user.InvitedBy)
	require.NotEmpty(t, token)

	d.users.On("GetByID", mock.Anything, companyID, newID).Return(invited, nil)
	d.users.On("Update", mock.Anything, invited).Return(nil)

	accepted, err := svc.AcceptInvite(context.Background(), service.AcceptInviteInput{Token: token, Password: "s3cret-pass"})

	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusActive, accepted.Status)
	assert.NotEmpty(t, accepted.PasswordHash)
	assert.Equal(t, "Ravi Kumar", accepted.FullName)
}

func TestTeamService_Invite_EmailFailureIsNotFatal(t *testing.T) {
	svc, d := newTeamService()
	companyID := uuid.New()
	admin := &domain.User{ID: uuid.New(), CompanyID: companyID, Role: domain.RoleAdmin, Status: domain.UserStatusActive}

	d.companies.On("GetByID", mock.Anything, companyID).Return(&domain.Company{ID: companyID}, nil)
	d.users.On("GetByID", mock.Anything, companyID, admin.ID).Return(admin, nil)
	d.users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	d.email.On("SendInvitationEmail", mock.Anything, mock.Anything).Return(errors.New("ses throttled"))

	_, err := svc.Invite(context.Background(), companyID, service.Actor{UserID: admin.ID, Role: domain.RoleAdmin}, service.InviteMemberInput{
		Email: "a@b.com", FullName: "A", Role: domain.RoleViewer,
	})

	assert.NoError(t, err)
}

func TestTeamService_Invite_OwnerNeedsOwner(t *testing.T) {
	svc, d := newTeamService()

	_, err := svc.Invite(context.Background(), uuid.New(), service.Actor{UserID: uuid.New(), Role: domain.RoleAdmin}, service.InviteMemberInput{
		Email: "a@b.com", FullName: "A", Role: domain.RoleOwner,
	})

	assert.ErrorIs(t, err, domain.ErrInsufficientRole)
	d.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTeamService_AcceptInvite_BadToken(t *testing.T) {
	svc, _ := newTeamService()

	_, err := svc.AcceptInvite(context.Background(), service.AcceptInviteInput{Token: "garbage", Password: "whatever1"})

	assert.ErrorIs(t, err, domain.ErrInviteInvalid)
}

func TestTeamService_UpdateMember_LastOwnerCannotStepDown(t *testing.T) {
	svc, d := newTeamService()
	companyID := uuid.New()
	owner := &domain.User{ID: uuid.New(), Role: domain.RoleOwner, Status: domain.UserStatusActive}

	d.users.On("GetByID", mock.Anything, companyID, owner.ID).Return(owner, nil)
	d.users.On("CountActiveByRole", mock.Anything, companyID, domain.RoleOwner).Return(1, nil)

	_, err := svc.UpdateMember(context.Background(), companyID, service.Actor{UserID: owner.ID, Role: domain.RoleOwner}, owner.ID,
		service.UpdateMemberInput{Role: roleP(domain.RoleAdmin)})

	assert.ErrorIs(t, err, domain.ErrLastOwner)
	d.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTeamService_UpdateMember_DisableOwnerWithAnotherOwner(t *testing.T) {
	svc, d := newTeamService()
	companyID := uuid.New()
	owner := &domain.User{ID: uuid.New(), Role: domain.RoleOwner, Status: domain.UserStatusActive}

	d.users.On("GetByID", mock.Anything, companyID, owner.ID).Return(owner, nil)
	d.users.On("CountActiveByRole", mock.Anything, companyID, domain.RoleOwner).Return(2, nil)
	d.users.On("Update", mock.Anything, owner).Return(nil)

	user, err := svc.UpdateMember(context.Background(), companyID, service.Actor{UserID: uuid.New(), Role: domain.RoleOwner}, owner.ID,
		service.UpdateMemberInput{Status: statusP(domain.UserStatusDisabled)})

	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusDisabled, user.Status)
}

func TestTeamService_UpdateMember_AdminCannotTouchOwner(t *testing.T) {
	svc, d := newTeamService()
	companyID := uuid.New()
	owner := &domain.User{ID: uuid.New(), Role: domain.RoleOwner, Status: domain.UserStatusActive}

	d.users.On("GetByID", mock.Anything, companyID, owner.ID).Return(owner, nil)

	_, err := svc.UpdateMember(context.Background(), companyID, service.Actor{UserID: uuid.New(), Role: domain.RoleAdmin}, owner.ID,
		service.UpdateMemberInput{Role: roleP(domain.RoleViewer)})

	assert.ErrorIs(t, err, domain.ErrInsufficientRole)
}

func TestTeamService_UpdateMember_InvalidStatus(t *testing.T) {
	svc, d := newTeamService()
	companyID := uuid.New()
	member := &domain.User{ID: uuid.New(), Role: domain.RoleSales, Status: domain.UserStatusActive}

	d.users.On("GetByID", mock.Anything, companyID, member.ID).Return(member, nil)

	_, err := svc.UpdateMember(context.Background(), companyID, service.Actor{Role: domain.RoleOwner}, member.ID,
		service.UpdateMemberInput{Status: statusP(domain.UserStatusInvited)})

	assert.ErrorIs(t, err, domain.ErrInvalidUserStatus)
}

func TestTeamService_RemoveMember_LastOwner(t *testing.T) {
	svc, d := newTeamService()
	companyID := uuid.New()
	owner := &domain.User{ID: uuid.New(), Role: domain.RoleOwner, Status: domain.UserStatusActive}

	d.users.On("GetByID", mock.Anything, companyID, owner.ID).Return(owner, nil)
	d.users.On("CountActiveByRole", mock.Anything, companyID, domain.RoleOwner).Return(1, nil)

	err := svc.RemoveMember(context.Background(), companyID, service.Actor{UserID: owner.ID, Role: domain.RoleOwner}, owner.ID)

	assert.ErrorIs(t, err, domain.ErrLastOwner)
	d.users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestTeamService_RemoveMember_Viewer(t *testing.T) {
	svc, d := newTeamService()
	companyID := uuid.New()
	viewer := &domain.User{ID: uuid.New(), Role: domain.RoleViewer, Status: domain.UserStatusActive}

	d.users.On("GetByID", mock.Anything, companyID, viewer.ID).Return(viewer, nil)
	d.users.On("Delete", mock.Anything, companyID, viewer.ID).Return(nil)

	err := svc.RemoveMember(context.Background(), companyID, service.Actor{Role: domain.RoleAdmin}, viewer.ID)

	require.NoError(t, err)
	d.users.AssertExpectations(t)
}
