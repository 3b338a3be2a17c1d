package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"access-control/internal/authz"
	"access-control/internal/dto"
	"access-control/internal/entities"
	"access-control/internal/repositories"
	"access-control/pkg/types"
)

type OrganizationService struct {
	txManager      repositories.TxManagerInterface
	orgRepo        repositories.OrganizationRepositoryInterface
	departmentRepo repositories.DepartmentRepositoryInterface
	logger         *zap.Logger
}

func NewOrganizationService(
	txManager repositories.TxManagerInterface,
	orgRepo repositories.OrganizationRepositoryInterface,
	departmentRepo repositories.DepartmentRepositoryInterface,
	logger *zap.Logger,
) *OrganizationService {
	return &OrganizationService{
		txManager:      txManager,
		orgRepo:        orgRepo,
		departmentRepo: departmentRepo,
		logger:         logger,
	}
}

func (s *OrganizationService) GetOrganizations(ctx context.Context, p authz.Principal, filter types.Filter) (types.ListResult[dto.OrganizationDTO], error) {
	out := types.ListResult[dto.OrganizationDTO]{Data: []dto.OrganizationDTO{}}
	if err := authz.Require(p, authz.ResourceOrganization, authz.Read); err != nil {
		return out, err
	}
	res, err := s.orgRepo.GetOrganizations(ctx, p, filter)
	if err != nil {
		s.logger.Error("Ошибка при получении списка организаций", zap.Error(err))
		return out, err
	}
	out.BaseCount, out.FilteredCount = res.BaseCount, res.FilteredCount
	for _, o := range res.Data {
		out.Data = append(out.Data, dto.OrganizationFromEntity(o))
	}
	return out, nil
}

func (s *OrganizationService) FindOrganization(ctx context.Context, p authz.Principal, id int64, v types.Visibility) (*dto.OrganizationDTO, error) {
	if err := authz.Require(p, authz.ResourceOrganization, authz.Read); err != nil {
		return nil, err
	}
	o, err := s.orgRepo.FindOrganization(ctx, p, id, v)
	if err != nil {
		return nil, err
	}
	res := dto.OrganizationFromEntity(o)
	return &res, nil
}

func (s *OrganizationService) CreateOrganization(ctx context.Context, p authz.Principal, in dto.CreateOrganizationDTO) (*dto.OrganizationDTO, error) {
	if err := authz.Require(p, authz.ResourceOrganization, authz.Create); err != nil {
		return nil, err
	}

	o := entities.Organization{
		GUID:           uuid.New(),
		Name:           trimmed(&in.Name),
		Address:        in.Address,
		Phone:          in.Phone,
		Timezone:       dto.TimezoneFromString(in.Timezone),
		TimesheetStart: dto.OptionalString(in.TimesheetStart),
		TimesheetEnd:   dto.OptionalString(in.TimesheetEnd),
	}
	o.Normalize()

	var newID int64
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		exists, err := s.orgRepo.ExistsByName(ctx, tx, o.Name, 0)
		if err != nil {
			return err
		}
		if exists {
			return conflict("Name", "организация с таким названием уже существует")
		}
		newID, err = s.orgRepo.Create(ctx, tx, o)
		return uniqueOr(err, "Name", "организация с таким названием уже существует")
	})
	if err != nil {
		s.logger.Error("Ошибка при создании организации", zap.Error(err))
		return nil, err
	}

	s.afterCreate(ctx, newID)
	s.logger.Info("Организация создана", zap.Int64("id", newID), zap.Int64("userID", p.UserID))
	return s.FindOrganization(ctx, p, newID, types.VisibilityAll)
}

// afterCreate создаёт подразделение по умолчанию для новой организации.
// Выполняется после фиксации; организация остаётся созданной, даже если шаг не удался.
func (s *OrganizationService) afterCreate(ctx context.Context, orgID int64) {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		_, err := s.departmentRepo.Create(ctx, tx, entities.Department{
			OrganizationID: orgID,
			Name:           repositories.DefaultDepartmentName,
			ShowInReport:   true,
		})
		return err
	})
	if err != nil {
		s.logger.Error("Не удалось создать подразделение по умолчанию", zap.Int64("organizationID", orgID), zap.Error(err))
	}
}

func (s *OrganizationService) UpdateOrganization(ctx context.Context, p authz.Principal, id int64, in dto.UpdateOrganizationDTO) (*dto.OrganizationDTO, error) {
	if err := authz.Require(p, authz.ResourceOrganization, authz.Update); err != nil {
		return nil, err
	}

	o, err := s.orgRepo.FindOrganization(ctx, p, id, types.VisibilityLive)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		o.Name = trimmed(in.Name)
	}
	if in.Address != nil {
		o.Address = *in.Address
	}
	if in.Phone != nil {
		o.Phone = *in.Phone
	}
	if in.Timezone != nil {
		o.Timezone = dto.TimezoneFromString(in.Timezone)
	}
	if in.TimesheetStart != nil {
		o.TimesheetStart = dto.OptionalString(in.TimesheetStart)
	}
	if in.TimesheetEnd != nil {
		o.TimesheetEnd = dto.OptionalString(in.TimesheetEnd)
	}
	o.Normalize()

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		exists, err := s.orgRepo.ExistsByName(ctx, tx, o.Name, id)
		if err != nil {
			return err
		}
		if exists {
			return conflict("Name", "организация с таким названием уже существует")
		}
		return uniqueOr(s.orgRepo.Update(ctx, tx, o), "Name", "организация с таким названием уже существует")
	})
	if err != nil {
		s.logger.Error("Ошибка при обновлении организации", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return s.FindOrganization(ctx, p, id, types.VisibilityAll)
}
