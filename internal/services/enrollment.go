package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"access-control/internal/authz"
	"access-control/internal/dto"
	"access-control/internal/entities"
	"access-control/internal/repositories"
	"access-control/pkg/devicebus"
	apperrors "access-control/pkg/errors"
	"access-control/pkg/types"
)

const (
	commentBrokerUnreachable = "Не удается подключиться к серверу"
	commentIndeterminate     = "Устройство не ответило"
	commentLowQuality        = "Низкое качество образца"
	commentNotFound          = "Сотрудник не найден"
)

// CommandExecutor выполняет команду на устройстве по его MQTT-идентификатору.
type CommandExecutor interface {
	Execute(ctx context.Context, device string, cmd devicebus.Command, stop devicebus.StopCheck) (devicebus.Response, error)
}

type EnrollmentService struct {
	txManager    repositories.TxManagerInterface
	bus          CommandExecutor
	deviceRepo   repositories.DeviceRepositoryInterface
	employeeRepo repositories.EmployeeRepositoryInterface
	templateRepo repositories.TemplateRepositoryInterface
	now          func() time.Time
	logger       *zap.Logger
}

func NewEnrollmentService(
	txManager repositories.TxManagerInterface,
	bus CommandExecutor,
	deviceRepo repositories.DeviceRepositoryInterface,
	employeeRepo repositories.EmployeeRepositoryInterface,
	templateRepo repositories.TemplateRepositoryInterface,
	logger *zap.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		txManager:    txManager,
		bus:          bus,
		deviceRepo:   deviceRepo,
		employeeRepo: employeeRepo,
		templateRepo: templateRepo,
		now:          time.Now,
		logger:       logger,
	}
}

// enrollCommand строит команду устройства и шаблон, который сохраняется при ENROLL_OK.
func enrollCommand(e entities.Employee, in dto.EnrollDTO) (devicebus.Command, entities.IdentificationTemplate, error) {
	tpl := entities.IdentificationTemplate{EmployeeID: e.ID, AlgorithmVersion: 1}
	switch in.Kind {
	case "face":
		photo, err := decodeField("Photo", in.Photo)
		if err != nil {
			return devicebus.Command{}, tpl, err
		}
		tpl.AlgorithmType, tpl.Template = entities.AlgorithmFace, photo
		return devicebus.FaceEnroll(e.LastName, e.FirstName, e.Patronymic, photo), tpl, nil
	case "card":
		if in.Card == "" {
			return devicebus.Command{}, tpl, apperrors.NewValidationError("Card", "обязательное поле")
		}
		tpl.AlgorithmType, tpl.Template = entities.AlgorithmCard, []byte(in.Card)
		return devicebus.CardEnroll(e.LastName, e.FirstName, e.Patronymic, in.Card), tpl, nil
	case "finger":
		template, err := decodeField("Template", in.Template)
		if err != nil {
			return devicebus.Command{}, tpl, err
		}
		tpl.AlgorithmType, tpl.Template = entities.AlgorithmFinger1, template
		return devicebus.FingerEnroll(e.LastName, e.FirstName, e.Patronymic, template), tpl, nil
	}
	return devicebus.Command{}, tpl, apperrors.NewValidationError("Kind", fmt.Sprintf("неизвестный вид %q", in.Kind))
}

func decodeField(field, s string) ([]byte, error) {
	if s == "" {
		return nil, apperrors.NewValidationError(field, "обязательное поле")
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, apperrors.NewValidationError(field, "неверный base64")
	}
	return b, nil
}

// busFailure переводит ошибку шины в ответ без успеха. Занятое устройство остаётся ошибкой.
func busFailure(err error) (string, bool) {
	switch {
	case errors.Is(err, apperrors.ErrBrokerUnreachable):
		return commentBrokerUnreachable, true
	case errors.Is(err, apperrors.ErrIndeterminate):
		return commentIndeterminate, true
	}
	return "", false
}

func stopOn(ctx context.Context) devicebus.StopCheck {
	return func() bool { return ctx.Err() != nil }
}

// Enroll регистрирует биометрию сотрудника на устройстве.
func (s *EnrollmentService) Enroll(ctx context.Context, p authz.Principal, employeeID int64, in dto.EnrollDTO) (*dto.EnrollResultDTO, error) {
	if err := authz.Require(p, authz.ResourceEnrollment, authz.Create); err != nil {
		return nil, err
	}
	employee, err := s.employeeRepo.FindEmployee(ctx, p, employeeID, types.VisibilityLive)
	if err != nil {
		return nil, err
	}
	device, err := s.deviceRepo.FindDevice(ctx, p, in.Device, types.VisibilityLive)
	if err != nil {
		return nil, err
	}
	cmd, tpl, err := enrollCommand(employee, in)
	if err != nil {
		return nil, err
	}

	log := s.logger.With(zap.Int64("employeeID", employeeID), zap.String("device", device.MQTT), zap.String("kind", in.Kind))
	resp, err := s.bus.Execute(ctx, device.MQTT, cmd, stopOn(ctx))
	if err != nil {
		if comment, ok := busFailure(err); ok {
			log.Warn("Регистрация не выполнена", zap.Error(err))
			return &dto.EnrollResultDTO{Success: false, Comment: comment}, nil
		}
		return nil, err
	}

	switch resp.Kind {
	case devicebus.KindDuplicate:
		log.Info("Образец уже зарегистрирован", zap.Int64("owner", resp.EmployeeID))
		return &dto.EnrollResultDTO{Success: false, Employee: resp.EmployeeID, Comment: resp.Raw}, nil
	case devicebus.KindLowQuality:
		return &dto.EnrollResultDTO{Success: false, Comment: commentLowQuality}, nil
	case devicebus.KindEnrollOK:
	default:
		log.Warn("Неожиданный ответ устройства", zap.String("raw", resp.Raw))
		return &dto.EnrollResultDTO{Success: false, Comment: resp.Raw}, nil
	}

	tpl.CreatedAt = s.now().UTC()
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		_, err := s.templateRepo.Create(ctx, tx, tpl)
		return err
	})
	if err != nil {
		log.Error("Не удалось сохранить образец после регистрации", zap.Error(err))
		return nil, err
	}
	log.Info("Биометрия зарегистрирована")
	return &dto.EnrollResultDTO{Success: true, Employee: employeeID, Comment: resp.Raw}, nil
}

// Search ищет сотрудника по фото; найденный сотрудник должен быть в области принципала.
func (s *EnrollmentService) Search(ctx context.Context, p authz.Principal, deviceID int64, in dto.SearchDTO) (*dto.SearchResultDTO, error) {
	if err := authz.Require(p, authz.ResourceEnrollment, authz.Create); err != nil {
		return nil, err
	}
	device, err := s.deviceRepo.FindDevice(ctx, p, deviceID, types.VisibilityLive)
	if err != nil {
		return nil, err
	}
	probe, err := decodeField("Photo", in.Photo)
	if err != nil {
		return nil, err
	}

	resp, err := s.bus.Execute(ctx, device.MQTT, devicebus.FaceSearch(probe), stopOn(ctx))
	if err != nil {
		if comment, ok := busFailure(err); ok {
			return &dto.SearchResultDTO{Success: false, Comment: comment}, nil
		}
		return nil, err
	}
	switch resp.Kind {
	case devicebus.KindSearchOK:
	case devicebus.KindLowQuality:
		return &dto.SearchResultDTO{Success: false, Comment: commentLowQuality}, nil
	default:
		return &dto.SearchResultDTO{Success: false, Comment: resp.Raw}, nil
	}

	e, err := s.employeeRepo.FindEmployee(ctx, p, resp.EmployeeID, types.VisibilityLive)
	if errors.Is(err, apperrors.ErrNotFound) {
		return &dto.SearchResultDTO{Success: false, Comment: commentNotFound}, nil
	}
	if err != nil {
		return nil, err
	}
	found := dto.EmployeeFromEntity(e)
	return &dto.SearchResultDTO{Success: true, Employee: &found, Comment: resp.Raw}, nil
}
