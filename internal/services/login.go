package services

import (
	"context"
	"fmt"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"access-control/internal/authz"
	"access-control/internal/dto"
	"access-control/internal/entities"
	"access-control/internal/repositories"
	apperrors "access-control/pkg/errors"
	"access-control/pkg/types"
	"access-control/pkg/utils"
)

// LoginService управляет регистраторами и контролёрами организаций.
type LoginService struct {
	txManager repositories.TxManagerInterface
	loginRepo repositories.LoginRepositoryInterface
	orgRepo   repositories.OrganizationRepositoryInterface
	policy    *PolicyService
	logger    *zap.Logger
}

func NewLoginService(
	txManager repositories.TxManagerInterface,
	loginRepo repositories.LoginRepositoryInterface,
	orgRepo repositories.OrganizationRepositoryInterface,
	policy *PolicyService,
	logger *zap.Logger,
) *LoginService {
	return &LoginService{
		txManager: txManager,
		loginRepo: loginRepo,
		orgRepo:   orgRepo,
		policy:    policy,
		logger:    logger,
	}
}

// RoleResource: ресурс политики для управления логинами роли.
func RoleResource(role entities.Role) (authz.Resource, error) {
	switch role {
	case entities.RoleRegistrator:
		return authz.ResourceRegistrator, nil
	case entities.RoleController:
		return authz.ResourceController, nil
	}
	return "", fmt.Errorf("%w: роль %q не управляется через API", apperrors.ErrNotFound, role)
}

func (s *LoginService) require(p authz.Principal, role entities.Role, a authz.Action) error {
	res, err := RoleResource(role)
	if err != nil {
		return err
	}
	return authz.Require(p, res, a)
}

// checkOrganization проверяет, что организация жива и видна принципалу.
func (s *LoginService) checkOrganization(ctx context.Context, p authz.Principal, orgID int64) error {
	_, err := s.orgRepo.FindOrganization(ctx, p, orgID, types.VisibilityLive)
	return err
}

func (s *LoginService) GetLogins(ctx context.Context, p authz.Principal, role entities.Role, orgID int64, filter types.Filter) (types.ListResult[dto.LoginUserDTO], error) {
	out := types.ListResult[dto.LoginUserDTO]{Data: []dto.LoginUserDTO{}}
	if err := s.require(p, role, authz.Read); err != nil {
		return out, err
	}
	if err := s.checkOrganization(ctx, p, orgID); err != nil {
		return out, err
	}
	res, err := s.loginRepo.GetLogins(ctx, role, orgID, filter)
	if err != nil {
		s.logger.Error("Ошибка при получении списка логинов", zap.String("role", string(role)), zap.Error(err))
		return out, err
	}
	out.BaseCount, out.FilteredCount = res.BaseCount, res.FilteredCount
	for _, l := range res.Data {
		out.Data = append(out.Data, dto.LoginUserFromEntity(l))
	}
	return out, nil
}

func (s *LoginService) FindLogin(ctx context.Context, p authz.Principal, role entities.Role, id int64) (*dto.LoginUserDTO, error) {
	l, err := s.findLogin(ctx, p, role, id, authz.Read)
	if err != nil {
		return nil, err
	}
	res := dto.LoginUserFromEntity(l)
	return &res, nil
}

func (s *LoginService) findLogin(ctx context.Context, p authz.Principal, role entities.Role, id int64, a authz.Action) (entities.LoginUser, error) {
	if err := s.require(p, role, a); err != nil {
		return entities.LoginUser{}, err
	}
	l, err := s.loginRepo.FindLogin(ctx, id, role)
	if err != nil {
		return l, err
	}
	if org := p.OrgID(); org != 0 && (!l.OrganizationID.Valid || l.OrganizationID.Int64 != org) {
		return l, apperrors.ErrNotFound
	}
	return l, nil
}

// CreateLogin создаёт пользователя, затем, после фиксации, его логин с ролью в организации.
func (s *LoginService) CreateLogin(ctx context.Context, p authz.Principal, role entities.Role, orgID int64, in dto.CreateLoginDTO) (*dto.LoginUserDTO, error) {
	if err := s.require(p, role, authz.Create); err != nil {
		return nil, err
	}
	if err := s.checkOrganization(ctx, p, orgID); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := entities.User{
		Username:     trimmed(&in.Username),
		PasswordHash: hash,
		LastName:     trimmed(&in.LastName),
		FirstName:    trimmed(&in.FirstName),
	}
	var userID int64
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		exists, err := s.loginRepo.ExistsByUsername(ctx, tx, u.Username, 0)
		if err != nil {
			return err
		}
		if exists {
			return conflict("Username", "пользователь с таким именем уже существует")
		}
		userID, err = s.loginRepo.CreateUser(ctx, tx, u)
		return uniqueOr(err, "Username", "пользователь с таким именем уже существует")
	})
	if err != nil {
		s.logger.Error("Ошибка при создании пользователя", zap.Error(err))
		return nil, err
	}

	loginID, err := s.afterUserCreate(ctx, userID, role, orgID)
	if err != nil {
		s.logger.Error("Не удалось создать логин пользователя", zap.Int64("userID", userID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Логин создан", zap.Int64("id", loginID), zap.String("role", string(role)), zap.Int64("organizationID", orgID))
	return s.FindLogin(ctx, p, role, loginID)
}

func (s *LoginService) afterUserCreate(ctx context.Context, userID int64, role entities.Role, orgID int64) (int64, error) {
	var loginID int64
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		loginID, err = s.loginRepo.CreateLogin(ctx, tx, entities.Login{
			GUID:           uuid.New(),
			UserID:         userID,
			Role:           role,
			OrganizationID: null.Int64From(orgID),
		})
		return err
	})
	return loginID, err
}

// UpdateLogin меняет пароль и имя пользователя; администратор может перенести логин в другую организацию.
// Логины не удаляются через API.
func (s *LoginService) UpdateLogin(ctx context.Context, p authz.Principal, role entities.Role, id int64, in dto.UpdateLoginDTO) (*dto.LoginUserDTO, error) {
	if in.Requested() {
		return nil, fmt.Errorf("%w: логины не удаляются", apperrors.ErrForbidden)
	}
	l, err := s.findLogin(ctx, p, role, id, authz.Update)
	if err != nil {
		return nil, err
	}
	u, err := s.loginRepo.FindUserByID(ctx, l.UserID)
	if err != nil {
		return nil, err
	}

	if in.Password != nil {
		if u.PasswordHash, err = utils.HashPassword(*in.Password); err != nil {
			return nil, err
		}
	}
	if in.LastName != nil {
		u.LastName = trimmed(in.LastName)
	}
	if in.FirstName != nil {
		u.FirstName = trimmed(in.FirstName)
	}
	login := l.Login
	if in.Organization != nil {
		if !p.IsAdmin() {
			return nil, fmt.Errorf("%w: перенос в другую организацию", apperrors.ErrForbidden)
		}
		if err := s.checkOrganization(ctx, p, *in.Organization); err != nil {
			return nil, err
		}
		login.OrganizationID = null.Int64From(*in.Organization)
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.loginRepo.UpdateUser(ctx, tx, u); err != nil {
			return err
		}
		return s.loginRepo.UpdateLogin(ctx, tx, login)
	})
	if err != nil {
		s.logger.Error("Ошибка при обновлении логина", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	s.policy.Invalidate(ctx, u.ID)
	return s.FindLogin(ctx, p, role, id)
}
