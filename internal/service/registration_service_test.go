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
	"khata/internal/service"
	"khata/mocks"
)

type registrationDeps struct {
	companies *mocks.MockCompanyRepo
	users     *mocks.MockUserRepo
	settings  *mocks.MockSettingsRepo
	auth      *mocks.MockAuthService
}

func newRegistrationService() (service.RegistrationService, *registrationDeps) {
	d := &registrationDeps{
		companies: new(mocks.MockCompanyRepo),
		users:     new(mocks.MockUserRepo),
		settings:  new(mocks.MockSettingsRepo),
		auth:      new(mocks.MockAuthService),
	}
	return service.NewRegistrationService(mocks.PassthroughTxManager{}, d.companies, d.users, d.settings, d.auth), d
}

func validRegistration() service.RegisterInput {
	return service.RegisterInput{
		CompanyName: "Rao General Stores",
		CompanySlug: " Rao-Stores ",
		GSTNumber:   "29abcde1234f1z5",
		StateCode:   "29",
		FullName:    "Anil Rao",
		Email:       "Anil@RaoStores.in",
		Password:    "password123",
	}
}

func TestRegistrationService_Register_Success(t *testing.T) {
	svc, d := newRegistrationService()
	companyID := uuid.New()

	d.companies.On("Create", mock.Anything, mock.AnythingOfType("*domain.Company")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Company).ID = companyID
		}).Return(nil)
	d.users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.CompanyID == companyID && u.Role == domain.RoleOwner && u.Status == domain.UserStatusActive
	})).Return(nil)
	d.settings.On("Upsert", mock.Anything, mock.MatchedBy(func(s *domain.AppSettings) bool {
		return s.CompanyID == companyID && s.SalePrefix == "INV-"
	})).Return(nil)
	d.auth.On("Login", mock.Anything, service.LoginInput{
		CompanySlug: "rao-stores",
		Email:       "anil@raostores.in",
		Password:    "password123",
	}).Return(&service.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil)

	out, err := svc.Register(context.Background(), validRegistration())

	require.NoError(t, err)
	assert.Equal(t, "rao-stores", out.Company.Slug)
	assert.Equal(t, "29ABCDE1234F1Z5", out.Company.GSTNumber)
	assert.True(t, out.Company.IsActive)
	assert.NotEqual(t, "password123", out.User.PasswordHash)
	assert.Equal(t, "access", out.Tokens.AccessToken)
	d.settings.AssertExpectations(t)
	d.auth.AssertExpectations(t)
}

func TestRegistrationService_Register_InvalidSlug(t *testing.T) {
	svc, d := newRegistrationService()

	input := validRegistration()
	input.CompanySlug = "rao stores!"
	_, err := svc.Register(context.Background(), input)

	assert.ErrorIs(t, err, domain.ErrInvalidSlug)
	d.companies.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegistrationService_Register_DuplicateSlug(t *testing.T) {
	svc, d := newRegistrationService()

	d.companies.On("Create", mock.Anything, mock.AnythingOfType("*domain.Company")).Return(domain.ErrDuplicateSlug)

	_, err := svc.Register(context.Background(), validRegistration())

	assert.ErrorIs(t, err, domain.ErrDuplicateSlug)
	d.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	d.auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestRegistrationService_Register_SettingsFailure(t *testing.T) {
	svc, d := newRegistrationService()

	d.companies.On("Create", mock.Anything, mock.AnythingOfType("*domain.Company")).Return(nil)
	d.users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	d.settings.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.AppSettings")).Return(errors.New("disk full"))

	_, err := svc.Register(context.Background(), validRegistration())

	require.Error(t, err)
	d.auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}
