package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"access-control/internal/authz"
	"access-control/internal/dto"
	"access-control/internal/repositories"
	apperrors "access-control/pkg/errors"
	"access-control/pkg/service"
	"access-control/pkg/utils"
)

type AuthService struct {
	loginRepo  repositories.LoginRepositoryInterface
	orgRepo    repositories.OrganizationRepositoryInterface
	policy     *PolicyService
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthService(
	loginRepo repositories.LoginRepositoryInterface,
	orgRepo repositories.OrganizationRepositoryInterface,
	policy *PolicyService,
	jwtService service.JWTService,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		loginRepo:  loginRepo,
		orgRepo:    orgRepo,
		policy:     policy,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login проверяет пароль и выдаёт пару токенов. Пользователь без логина войти не может.
func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	user, err := s.loginRepo.FindUserByUsername(ctx, payload.Login)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := utils.ComparePasswords(user.PasswordHash, payload.Password); err != nil {
		s.logger.Warn("Неверный пароль", zap.String("username", payload.Login))
		return nil, apperrors.ErrInvalidCredentials
	}

	p, err := s.policy.PrincipalOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, p)
}

// Refresh выдаёт новую пару по refresh-токену.
func (s *AuthService) Refresh(ctx context.Context, payload dto.RefreshTokenDTO) (*dto.AuthResponseDTO, error) {
	claims, err := s.jwtService.ValidateToken(payload.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrNeedsLogin, err)
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}
	p, err := s.policy.PrincipalOf(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, p)
}

func (s *AuthService) issue(ctx context.Context, p authz.Principal) (*dto.AuthResponseDTO, error) {
	access, refresh, err := s.jwtService.GenerateTokens(p.UserID)
	if err != nil {
		s.logger.Error("Не удалось подписать токены", zap.Int64("userID", p.UserID), zap.Error(err))
		return nil, err
	}
	me, err := s.WhoAmI(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Пользователь вошёл в систему", zap.Int64("userID", p.UserID), zap.String("role", string(p.Role)))
	return &dto.AuthResponseDTO{
		TokensDTO: dto.TokensDTO{AccessToken: access, RefreshToken: refresh},
		User:      *me,
	}, nil
}

// WhoAmI возвращает пользователя, его роль и организацию.
func (s *AuthService) WhoAmI(ctx context.Context, p authz.Principal) (*dto.WhoAmIDTO, error) {
	user, err := s.loginRepo.FindUserByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	me := &dto.WhoAmIDTO{
		User:      user.ID,
		Username:  user.Username,
		LastName:  user.LastName,
		FirstName: user.FirstName,
		Role:      string(p.Role),
	}
	if org := p.OrgID(); org != 0 {
		me.Organization = &org
		if o, err := s.orgRepo.FindOrganizationByID(ctx, nil, org); err == nil {
			me.OrgName = &o.Name
		}
	}
	return me, nil
}
