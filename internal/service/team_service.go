package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"khata/internal/config"
	"khata/internal/domain"
	"khata/internal/port"
	"khata/internal/sanitize"
)

// InviteMemberInput is the DTO for inviting a team member.
type InviteMemberInput struct {
	Email    string          `json:"email" binding:"required,email"`
	FullName string          `json:"full_name" binding:"required"`
	Role     domain.UserRole `json:"role" binding:"required"`
}

// AcceptInviteInput is the DTO for accepting an invitation.
type AcceptInviteInput struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
}

// UpdateMemberInput is the DTO for changing a member's role or status.
type UpdateMemberInput struct {
	Role   *domain.UserRole   `json:"role"`
	Status *domain.UserStatus `json:"status"`
}

// Actor identifies the user performing a team change.
type Actor struct {
	UserID uuid.UUID
	Role   domain.UserRole
}

// TeamService defines the team management contract.
type TeamService interface {
	List(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.User, int, error)
	Invite(ctx context.Context, companyID uuid.UUID, actor Actor, input InviteMemberInput) (*domain.User, error)
	AcceptInvite(ctx context.Context, input AcceptInviteInput) (*domain.User, error)
	UpdateMember(ctx context.Context, companyID uuid.UUID, actor Actor, memberID uuid.UUID, input UpdateMemberInput) (*domain.User, error)
	RemoveMember(ctx context.Context, companyID uuid.UUID, actor Actor, memberID uuid.UUID) error
}

type teamService struct {
	tx          port.TxManager
	userRepo    port.UserRepository
	companyRepo port.CompanyRepository
	emailSender port.EmailSender
	jwtCfg      config.JWTConfig
}

// NewTeamService creates a new TeamService.
func NewTeamService(
	tx port.TxManager,
	userRepo port.UserRepository,
	companyRepo port.CompanyRepository,
	emailSender port.EmailSender,
	jwtCfg config.JWTConfig,
) TeamService {
	return &teamService{
		tx:          tx,
		userRepo:    userRepo,
		companyRepo: companyRepo,
		emailSender: emailSender,
		jwtCfg:      jwtCfg,
	}
}

func (s *teamService) List(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.User, int, error) {
	return s.userRepo.ListByCompany(ctx, companyID, offset, limit)
}

func (s *teamService) Invite(ctx context.Context, companyID uuid.UUID, actor Actor, input InviteMemberInput) (*domain.User, error) {
	if !domain.ValidUserRoles[input.Role] {
		return nil, domain.ErrInvalidRole
	}
	if input.Role == domain.RoleOwner && actor.Role != domain.RoleOwner {
		return nil, domain.ErrInsufficientRole
	}

	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	inviter, err := s.userRepo.GetByID(ctx, companyID, actor.UserID)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		CompanyID: companyID,
		Email:     sanitize.Email(input.Email),
		FullName:  sanitize.Name(input.FullName),
		Role:      input.Role,
		Status:    domain.UserStatusInvited,
		InvitedBy: &inviter.ID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	now := time.Now()
	token, err := signToken(s.jwtCfg, user, audienceInvite, now, now.Add(s.jwtCfg.InviteTokenExpiry), uuid.New().String())
	if err != nil {
		return nil, fmt.Errorf("signing invitation token: %w", err)
	}

	// Delivery is best effort; the invited member already exists.
	if err := s.emailSender.SendInvitationEmail(ctx, port.InvitationEmail{
		ToEmail:     user.Email,
		ToName:      user.FullName,
		CompanyName: company.Name,
		InvitedBy:   inviter.FullName,
		Role:        string(user.Role),
		Token:       token,
	}); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("user_id", user.ID.String()).
			Msg("failed to send invitation email")
	}

	return user, nil
}

func (s *teamService) AcceptInvite(ctx context.Context, input AcceptInviteInput) (*domain.User, error) {
	claims, err := parseToken(s.jwtCfg.Secret, input.Token, audienceInvite)
	if err != nil {
		return nil, domain.ErrInviteInvalid
	}

	user, err := s.userRepo.GetByID(ctx, claims.CompanyID, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInviteInvalid
		}
		return nil, err
	}
	if user.Status != domain.UserStatusInvited || user.Email != claims.Email {
		return nil, domain.ErrInviteInvalid
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	user.Status = domain.UserStatusActive
	if input.FullName != "" {
		user.FullName = sanitize.Name(input.FullName)
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *teamService) UpdateMember(ctx context.Context, companyID uuid.UUID, actor Actor, memberID uuid.UUID, input UpdateMemberInput) (*domain.User, error) {
	var user *domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.userRepo.GetByID(ctx, companyID, memberID)
		if err != nil {
			return err
		}

		if input.Role != nil && !domain.ValidUserRoles[*input.Role] {
			return domain.ErrInvalidRole
		}
		if input.Status != nil && *input.Status != domain.UserStatusActive && *input.Status != domain.UserStatusDisabled {
			return domain.ErrInvalidUserStatus
		}
		promotesOwner := input.Role != nil && *input.Role == domain.RoleOwner
		if (user.Role == domain.RoleOwner || promotesOwner) && actor.Role != domain.RoleOwner {
			return domain.ErrInsufficientRole
		}

		losesOwner := user.Role == domain.RoleOwner && user.IsActive() &&
			((input.Role != nil && *input.Role != domain.RoleOwner) ||
				(input.Status != nil && *input.Status != domain.UserStatusActive))
		if losesOwner {
			if err := s.ensureAnotherOwner(ctx, companyID); err != nil {
				return err
			}
		}

		if input.Role != nil {
			user.Role = *input.Role
		}
		if input.Status != nil && user.Status != domain.UserStatusInvited {
			user.Status = *input.Status
		}
		return s.userRepo.Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *teamService) RemoveMember(ctx context.Context, companyID uuid.UUID, actor Actor, memberID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.GetByID(ctx, companyID, memberID)
		if err != nil {
			return err
		}
		if user.Role == domain.RoleOwner {
			if actor.Role != domain.RoleOwner {
				return domain.ErrInsufficientRole
			}
			if user.IsActive() {
				if err := s.ensureAnotherOwner(ctx, companyID); err != nil {
					return err
				}
			}
		}
		return s.userRepo.Delete(ctx, companyID, memberID)
	})
}

func (s *teamService) ensureAnotherOwner(ctx context.Context, companyID uuid.UUID) error {
	owners, err := s.userRepo.CountActiveByRole(ctx, companyID, domain.RoleOwner)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return domain.ErrLastOwner
	}
	return nil
}
