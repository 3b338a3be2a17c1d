package services

import (
	"context"
	"strings"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"access-control/internal/authz"
	"access-control/internal/dto"
	"access-control/internal/entities"
	"access-control/internal/repositories"
	"access-control/pkg/types"
)

type DeviceService struct {
	txManager    repositories.TxManagerInterface
	deviceRepo   repositories.DeviceRepositoryInterface
	entityRepo   repositories.EntityRepositoryInterface
	relationRepo repositories.RelationRepositoryInterface
	logger       *zap.Logger
}

func NewDeviceService(
	txManager repositories.TxManagerInterface,
	deviceRepo repositories.DeviceRepositoryInterface,
	entityRepo repositories.EntityRepositoryInterface,
	relationRepo repositories.RelationRepositoryInterface,
	logger *zap.Logger,
) *DeviceService {
	return &DeviceService{
		txManager:    txManager,
		deviceRepo:   deviceRepo,
		entityRepo:   entityRepo,
		relationRepo: relationRepo,
		logger:       logger,
	}
}

func (s *DeviceService) GetDevices(ctx context.Context, p authz.Principal, filter types.Filter) (types.ListResult[dto.DeviceDTO], error) {
	out := types.ListResult[dto.DeviceDTO]{Data: []dto.DeviceDTO{}}
	if err := authz.Require(p, authz.ResourceDevice, authz.Read); err != nil {
		return out, err
	}
	res, err := s.deviceRepo.GetDevices(ctx, p, filter)
	if err != nil {
		s.logger.Error("Ошибка при получении списка устройств", zap.Error(err))
		return out, err
	}
	out.BaseCount, out.FilteredCount = res.BaseCount, res.FilteredCount
	for _, d := range res.Data {
		out.Data = append(out.Data, dto.DeviceFromEntity(d))
	}
	return out, nil
}

func (s *DeviceService) FindDevice(ctx context.Context, p authz.Principal, id int64, v types.Visibility) (*dto.DeviceDTO, error) {
	if err := authz.Require(p, authz.ResourceDevice, authz.Read); err != nil {
		return nil, err
	}
	d, err := s.deviceRepo.FindDevice(ctx, p, id, v)
	if err != nil {
		return nil, err
	}
	res := dto.DeviceFromEntity(d)
	return &res, nil
}

// checkUnique проверяет уникальность mqtt и имени устройства. Совпадение с самим собой не конфликт.
func (s *DeviceService) checkUnique(ctx context.Context, tx pgx.Tx, d entities.Device) error {
	exists, err := s.deviceRepo.ExistsByMQTT(ctx, tx, d.MQTT, d.ID)
	if err != nil {
		return err
	}
	if exists {
		return conflict("Mqtt", "устройство с таким идентификатором уже существует")
	}
	exists, err = s.deviceRepo.ExistsByName(ctx, tx, d.Name, d.ID)
	if err != nil {
		return err
	}
	if exists {
		return conflict("Name", "устройство с таким названием уже существует")
	}
	return nil
}

// checkCheckpoint проверяет, что проходная жива и видна принципалу.
func (s *DeviceService) checkCheckpoint(ctx context.Context, tx pgx.Tx, p authz.Principal, checkpoint null.Int64) error {
	if !checkpoint.Valid {
		return nil
	}
	ok, err := s.entityRepo.Admissible(ctx, tx, repositories.CheckpointDescriptor, p, []int64{checkpoint.Int64})
	if err != nil {
		return err
	}
	if !ok[checkpoint.Int64] {
		return conflict("Checkpoint", "проходная не найдена")
	}
	return nil
}

func uniqueDevice(err error) error {
	if repositories.IsUniqueViolation(err) && strings.Contains(err.Error(), "mqtt") {
		return conflict("Mqtt", "устройство с таким идентификатором уже существует")
	}
	return uniqueOr(err, "Name", "устройство с таким названием уже существует")
}

func (s *DeviceService) CreateDevice(ctx context.Context, p authz.Principal, in dto.CreateDeviceDTO) (*dto.DeviceDTO, error) {
	if err := authz.Require(p, authz.ResourceDevice, authz.Create); err != nil {
		return nil, err
	}
	d := entities.Device{
		MQTT:         strings.TrimSpace(in.MQTT),
		Name:         trimmed(&in.Name),
		Description:  in.Description,
		DeviceType:   in.DeviceType,
		Config:       in.Config,
		CheckpointID: null.Int64FromPtr(in.Checkpoint),
		Timezone:     dto.TimezoneFromString(in.Timezone),
	}
	d.Normalize()

	var newID int64
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.checkUnique(ctx, tx, d); err != nil {
			return err
		}
		if err := s.checkCheckpoint(ctx, tx, p, d.CheckpointID); err != nil {
			return err
		}
		var err error
		if newID, err = s.deviceRepo.Create(ctx, tx, d); err != nil {
			return uniqueDevice(err)
		}
		return linkToOrganization(ctx, tx, s.relationRepo, p, repositories.DeviceDescriptor, newID)
	})
	if err != nil {
		s.logger.Error("Ошибка при создании устройства", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Устройство создано", zap.Int64("id", newID), zap.String("mqtt", d.MQTT))
	return s.FindDevice(ctx, p, newID, types.VisibilityAll)
}

func (s *DeviceService) UpdateDevice(ctx context.Context, p authz.Principal, id int64, in dto.UpdateDeviceDTO) (*dto.DeviceDTO, error) {
	if err := authz.Require(p, authz.ResourceDevice, authz.Update); err != nil {
		return nil, err
	}
	d, err := s.deviceRepo.FindDevice(ctx, p, id, types.VisibilityLive)
	if err != nil {
		return nil, err
	}
	if in.MQTT != nil {
		d.MQTT = trimmed(in.MQTT)
	}
	if in.Name != nil {
		d.Name = trimmed(in.Name)
	}
	if in.Description != nil {
		d.Description = *in.Description
	}
	if in.DeviceType != nil {
		d.DeviceType = *in.DeviceType
	}
	if in.Config != nil {
		d.Config = *in.Config
	}
	if in.Checkpoint != nil {
		if *in.Checkpoint == 0 {
			d.CheckpointID = null.Int64{}
		} else {
			d.CheckpointID = null.Int64From(*in.Checkpoint)
		}
	}
	if in.Timezone != nil {
		d.Timezone = dto.TimezoneFromString(in.Timezone)
	}
	d.Normalize()

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.checkUnique(ctx, tx, d); err != nil {
			return err
		}
		if err := s.checkCheckpoint(ctx, tx, p, d.CheckpointID); err != nil {
			return err
		}
		return uniqueDevice(s.deviceRepo.Update(ctx, tx, d))
	})
	if err != nil {
		s.logger.Error("Ошибка при обновлении устройства", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return s.FindDevice(ctx, p, id, types.VisibilityAll)
}
