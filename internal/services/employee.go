package services

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"access-control/internal/authz"
	"access-control/internal/dto"
	"access-control/internal/entities"
	"access-control/internal/repositories"
	"access-control/pkg/types"
)

type EmployeeService struct {
	txManager    repositories.TxManagerInterface
	employeeRepo repositories.EmployeeRepositoryInterface
	templateRepo repositories.TemplateRepositoryInterface
	relationRepo repositories.RelationRepositoryInterface
	logger       *zap.Logger
}

func NewEmployeeService(
	txManager repositories.TxManagerInterface,
	employeeRepo repositories.EmployeeRepositoryInterface,
	templateRepo repositories.TemplateRepositoryInterface,
	relationRepo repositories.RelationRepositoryInterface,
	logger *zap.Logger,
) *EmployeeService {
	return &EmployeeService{
		txManager:    txManager,
		employeeRepo: employeeRepo,
		templateRepo: templateRepo,
		relationRepo: relationRepo,
		logger:       logger,
	}
}

func decodePhoto(s string) ([]byte, error) {
	photo, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(photo) == 0 {
		return nil, conflict("Photo", "ожидается изображение в base64")
	}
	return photo, nil
}

func (s *EmployeeService) GetEmployees(ctx context.Context, p authz.Principal, filter types.Filter) (types.ListResult[dto.EmployeeDTO], error) {
	out := types.ListResult[dto.EmployeeDTO]{Data: []dto.EmployeeDTO{}}
	if err := authz.Require(p, authz.ResourceEmployee, authz.Read); err != nil {
		return out, err
	}
	res, err := s.employeeRepo.GetEmployees(ctx, p, filter)
	if err != nil {
		s.logger.Error("Ошибка при получении списка сотрудников", zap.Error(err))
		return out, err
	}
	out.BaseCount, out.FilteredCount = res.BaseCount, res.FilteredCount
	for _, e := range res.Data {
		out.Data = append(out.Data, dto.EmployeeFromEntity(e))
	}
	return out, nil
}

func (s *EmployeeService) FindEmployee(ctx context.Context, p authz.Principal, id int64, v types.Visibility) (*dto.EmployeeDTO, error) {
	if err := authz.Require(p, authz.ResourceEmployee, authz.Read); err != nil {
		return nil, err
	}
	e, err := s.employeeRepo.FindEmployee(ctx, p, id, v)
	if err != nil {
		return nil, err
	}
	res := dto.EmployeeFromEntity(e)
	return &res, nil
}

// EmployeeExtra собирает организации, подразделения и шаблоны сотрудника для карточки.
func (s *EmployeeService) EmployeeExtra(ctx context.Context, p authz.Principal, id int64) (*dto.EmployeeExtraDTO, error) {
	links, err := s.employeeRepo.GetEmployeeOrganizations(ctx, p, id)
	if err != nil {
		return nil, err
	}
	deps, err := s.employeeRepo.GetEmployeeDepartmentIDs(ctx, p, id)
	if err != nil {
		return nil, err
	}
	templates, err := s.templateRepo.GetEmployeeTemplates(ctx, id)
	if err != nil {
		return nil, err
	}

	extra := &dto.EmployeeExtraDTO{
		Organizations: make([]dto.EmployeeOrganizationDTO, 0, len(links)),
		Departments:   deps,
		Templates:     make([]dto.TemplateDTO, 0, len(templates)),
	}
	for _, l := range links {
		extra.Organizations = append(extra.Organizations, dto.EmployeeOrganizationDTO{
			Organization:   l.OrganizationID,
			TimesheetStart: l.TimesheetStart.Ptr(),
			TimesheetEnd:   l.TimesheetEnd.Ptr(),
		})
	}
	for _, t := range templates {
		extra.Templates = append(extra.Templates, dto.TemplateDTO{
			ID:               t.ID,
			AlgorithmType:    int(t.AlgorithmType),
			AlgorithmVersion: t.AlgorithmVersion,
			CreatedAt:        t.CreatedAt,
		})
	}
	return extra, nil
}

func (s *EmployeeService) CreateEmployee(ctx context.Context, p authz.Principal, in dto.CreateEmployeeDTO) (*dto.EmployeeDTO, error) {
	if err := authz.Require(p, authz.ResourceEmployee, authz.Create); err != nil {
		return nil, err
	}
	var photo []byte
	if in.Photo != "" {
		var err error
		if photo, err = decodePhoto(in.Photo); err != nil {
			return nil, err
		}
	}

	e := entities.Employee{
		GUID:       uuid.New(),
		LastName:   trimmed(&in.LastName),
		FirstName:  trimmed(&in.FirstName),
		Patronymic: trimmed(&in.Patronymic),
	}

	var newID int64
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		if newID, err = s.employeeRepo.Create(ctx, tx, e); err != nil {
			return err
		}
		if err := linkToOrganization(ctx, tx, s.relationRepo, p, repositories.EmployeeDescriptor, newID); err != nil {
			return err
		}
		if photo != nil {
			_, err = s.templateRepo.ReplaceAvatar(ctx, tx, newID, photo, time.Now().UTC())
		}
		return err
	})
	if err != nil {
		s.logger.Error("Ошибка при создании сотрудника", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Сотрудник создан", zap.Int64("id", newID), zap.Int64("userID", p.UserID))
	return s.FindEmployee(ctx, p, newID, types.VisibilityAll)
}

// UpdateEmployee меняет поля сотрудника; photo заменяет текущий AVATAR в той же транзакции.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, p authz.Principal, id int64, in dto.UpdateEmployeeDTO) (*dto.EmployeeDTO, error) {
	if err := authz.Require(p, authz.ResourceEmployee, authz.Update); err != nil {
		return nil, err
	}
	e, err := s.employeeRepo.FindEmployee(ctx, p, id, types.VisibilityLive)
	if err != nil {
		return nil, err
	}
	var photo []byte
	if in.Photo != nil && *in.Photo != "" {
		if photo, err = decodePhoto(*in.Photo); err != nil {
			return nil, err
		}
	}
	if in.LastName != nil {
		e.LastName = trimmed(in.LastName)
	}
	if in.FirstName != nil {
		e.FirstName = trimmed(in.FirstName)
	}
	if in.Patronymic != nil {
		e.Patronymic = trimmed(in.Patronymic)
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.employeeRepo.Update(ctx, tx, e); err != nil {
			return err
		}
		if photo == nil {
			return nil
		}
		_, err := s.templateRepo.ReplaceAvatar(ctx, tx, id, photo, time.Now().UTC())
		return err
	})
	if err != nil {
		s.logger.Error("Ошибка при обновлении сотрудника", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	if photo != nil {
		s.logger.Info("Фото сотрудника заменено", zap.Int64("id", id), zap.Int("bytes", len(photo)))
	}
	return s.FindEmployee(ctx, p, id, types.VisibilityAll)
}

// GetPhoto отдаёт последний живой AVATAR сотрудника из области принципала.
func (s *EmployeeService) GetPhoto(ctx context.Context, p authz.Principal, id int64) ([]byte, error) {
	if _, err := s.FindEmployee(ctx, p, id, types.VisibilityAll); err != nil {
		return nil, err
	}
	t, err := s.templateRepo.LatestAvatar(ctx, id)
	if err != nil {
		return nil, err
	}
	return t.Template, nil
}
