package service

import (
	"context"

	"github.com/google/uuid"

	"khata/internal/domain"
	"khata/internal/port"
	"khata/internal/sanitize"
)

// UpdateCompanyInput is the DTO for company profile updates.
type UpdateCompanyInput struct {
	Name      *string `json:"name"`
	GSTNumber *string `json:"gst_number" binding:"omitempty,len=15"`
	StateCode *string `json:"state_code" binding:"omitempty,len=2"`
	Address   *string `json:"address"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email" binding:"omitempty,email"`
	LogoURL   *string `json:"logo_url" binding:"omitempty,url"`
}

// CompanyService defines the company profile contract.
type CompanyService interface {
	Get(ctx context.Context, companyID uuid.UUID) (*domain.Company, error)
	Update(ctx context.Context, companyID uuid.UUID, input UpdateCompanyInput) (*domain.Company, error)
}

type companyService struct {
	repo port.CompanyRepository
}

// NewCompanyService creates a new CompanyService implementation.
func NewCompanyService(repo port.CompanyRepository) CompanyService {
	return &companyService{repo: repo}
}

func (s *companyService) Get(ctx context.Context, companyID uuid.UUID) (*domain.Company, error) {
	return s.repo.GetByID(ctx, companyID)
}

func (s *companyService) Update(ctx context.Context, companyID uuid.UUID, input UpdateCompanyInput) (*domain.Company, error) {
	company, err := s.repo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		company.Name = sanitize.Name(*input.Name)
	}
	if input.GSTNumber != nil {
		company.GSTNumber = sanitize.Code(*input.GSTNumber)
	}
	if input.StateCode != nil {
		company.StateCode = sanitize.Code(*input.StateCode)
	}
	if input.Address != nil {
		company.Address = sanitize.Text(*input.Address)
	}
	if input.Phone != nil {
		company.Phone = sanitize.Code(*input.Phone)
	}
	if input.Email != nil {
		company.Email = sanitize.Email(*input.Email)
	}
	if input.LogoURL != nil {
		company.LogoURL = *input.LogoURL
	}

	if err := s.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}
