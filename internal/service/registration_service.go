package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"khata/internal/domain"
	"khata/internal/port"
	"khata/internal/sanitize"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// RegisterInput is the DTO for company sign-up. The registering user becomes the owner.
type RegisterInput struct {
	CompanyName string `json:"company_name" binding:"required"`
	CompanySlug string `json:"company_slug" binding:"required,min=3,max=100"`
	GSTNumber   string `json:"gst_number" binding:"omitempty,len=15"`
	StateCode   string `json:"state_code" binding:"omitempty,len=2"`
	FullName    string `json:"full_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
}

// RegisterOutput contains the results of a successful registration.
type RegisterOutput struct {
	Company *domain.Company `json:"company"`
	User    *domain.User    `json:"user"`
	Tokens  *TokenPair      `json:"tokens"`
}

// RegistrationService defines the company sign-up contract.
type RegistrationService interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error)
}

type registrationService struct {
	tx           port.TxManager
	companyRepo  port.CompanyRepository
	userRepo     port.UserRepository
	settingsRepo port.SettingsRepository
	authSvc      AuthService
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(
	tx port.TxManager,
	companyRepo port.CompanyRepository,
	userRepo port.UserRepository,
	settingsRepo port.SettingsRepository,
	authSvc AuthService,
) RegistrationService {
	return &registrationService{
		tx:           tx,
		companyRepo:  companyRepo,
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		authSvc:      authSvc,
	}
}

func (s *registrationService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	slug := strings.ToLower(strings.TrimSpace(input.CompanySlug))
	if !slugPattern.MatchString(slug) {
		return nil, domain.ErrInvalidSlug
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	company := &domain.Company{
		Name:      sanitize.Name(input.CompanyName),
		Slug:      slug,
		GSTNumber: sanitize.Code(input.GSTNumber),
		StateCode: sanitize.Code(input.StateCode),
		IsActive:  true,
	}
	user := &domain.User{
		Email:        sanitize.Email(input.Email),
		PasswordHash: hash,
		FullName:     sanitize.Name(input.FullName),
		Role:         domain.RoleOwner,
		Status:       domain.UserStatusActive,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.companyRepo.Create(ctx, company); err != nil {
			return err
		}
		user.CompanyID = company.ID
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		return s.settingsRepo.Upsert(ctx, domain.DefaultAppSettings(company.ID))
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("company_id", company.ID.String()).
		Str("slug", company.Slug).
		Msg("company registered")

	tokens, err := s.authSvc.Login(ctx, LoginInput{
		CompanySlug: company.Slug,
		Email:       user.Email,
		Password:    input.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("issuing tokens: %w", err)
	}

	return &RegisterOutput{Company: company, User: user, Tokens: tokens}, nil
}
