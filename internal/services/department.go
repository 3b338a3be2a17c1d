package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"access-control/internal/authz"
	"access-control/internal/dto"
	"access-control/internal/entities"
	"access-control/internal/repositories"
	"access-control/pkg/types"
)

type DepartmentService struct {
	txManager      repositories.TxManagerInterface
	departmentRepo repositories.DepartmentRepositoryInterface
	logger         *zap.Logger
}

func NewDepartmentService(
	txManager repositories.TxManagerInterface,
	departmentRepo repositories.DepartmentRepositoryInterface,
	logger *zap.Logger,
) *DepartmentService {
	return &DepartmentService{txManager: txManager, departmentRepo: departmentRepo, logger: logger}
}

func (s *DepartmentService) GetDepartments(ctx context.Context, p authz.Principal, filter types.Filter) (types.ListResult[dto.DepartmentDTO], error) {
	out := types.ListResult[dto.DepartmentDTO]{Data: []dto.DepartmentDTO{}}
	if err := authz.Require(p, authz.ResourceDepartment, authz.Read); err != nil {
		return out, err
	}
	res, err := s.departmentRepo.GetDepartments(ctx, p, filter)
	if err != nil {
		s.logger.Error("Ошибка при получении списка подразделений", zap.Error(err))
		return out, err
	}
	out.BaseCount, out.FilteredCount = res.BaseCount, res.FilteredCount
	for _, d := range res.Data {
		out.Data = append(out.Data, dto.DepartmentFromEntity(d))
	}
	return out, nil
}

func (s *DepartmentService) FindDepartment(ctx context.Context, p authz.Principal, id int64, v types.Visibility) (*dto.DepartmentDTO, error) {
	if err := authz.Require(p, authz.ResourceDepartment, authz.Read); err != nil {
		return nil, err
	}
	d, err := s.departmentRepo.FindDepartment(ctx, p, id, v)
	if err != nil {
		return nil, err
	}
	res := dto.DepartmentFromEntity(d)
	return &res, nil
}

// CreateDepartment создаёт подразделение в организации регистратора.
func (s *DepartmentService) CreateDepartment(ctx context.Context, p authz.Principal, in dto.CreateDepartmentDTO) (*dto.DepartmentDTO, error) {
	if err := authz.Require(p, authz.ResourceDepartment, authz.Create); err != nil {
		return nil, err
	}

	d := entities.Department{
		OrganizationID: p.OrgID(),
		Name:           trimmed(&in.Name),
		Rights:         in.Rights,
		Address:        in.Address,
		Description:    in.Description,
		ShowInReport:   true,
	}
	if in.ShowInReport != nil {
		d.ShowInReport = *in.ShowInReport
	}

	var newID int64
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		exists, err := s.departmentRepo.ExistsByName(ctx, tx, d.OrganizationID, d.Name, 0)
		if err != nil {
			return err
		}
		if exists {
			return conflict("Name", "подразделение с таким названием уже есть в организации")
		}
		newID, err = s.departmentRepo.Create(ctx, tx, d)
		return uniqueOr(err, "Name", "подразделение с таким названием уже есть в организации")
	})
	if err != nil {
		s.logger.Error("Ошибка при создании подразделения", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Подразделение создано", zap.Int64("id", newID), zap.Int64("organizationID", d.OrganizationID))
	return s.FindDepartment(ctx, p, newID, types.VisibilityAll)
}

func (s *DepartmentService) UpdateDepartment(ctx context.Context, p authz.Principal, id int64, in dto.UpdateDepartmentDTO) (*dto.DepartmentDTO, error) {
	if err := authz.Require(p, authz.ResourceDepartment, authz.Update); err != nil {
		return nil, err
	}
	d, err := s.departmentRepo.FindDepartment(ctx, p, id, types.VisibilityLive)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		d.Name = trimmed(in.Name)
	}
	if in.Rights != nil {
		d.Rights = *in.Rights
	}
	if in.Address != nil {
		d.Address = *in.Address
	}
	if in.Description != nil {
		d.Description = *in.Description
	}
	if in.ShowInReport != nil {
		d.ShowInReport = *in.ShowInReport
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		exists, err := s.departmentRepo.ExistsByName(ctx, tx, d.OrganizationID, d.Name, id)
		if err != nil {
			return err
		}
		if exists {
			return conflict("Name", "подразделение с таким названием уже есть в организации")
		}
		return uniqueOr(s.departmentRepo.Update(ctx, tx, d), "Name", "подразделение с таким названием уже есть в организации")
	})
	if err != nil {
		s.logger.Error("Ошибка при обновлении подразделения", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return s.FindDepartment(ctx, p, id, types.VisibilityAll)
}
