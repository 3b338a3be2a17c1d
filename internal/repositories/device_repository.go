package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"access-control/internal/authz"
	"access-control/internal/entities"
	apperrors "access-control/pkg/errors"
	"access-control/pkg/types"
)

type DeviceRepositoryInterface interface {
	GetDevices(ctx context.Context, p authz.Principal, filter types.Filter) (types.ListResult[entities.Device], error)
	FindDevice(ctx context.Context, p authz.Principal, id int64, v types.Visibility) (entities.Device, error)
	ExistsByName(ctx context.Context, tx pgx.Tx, name string, excludeID int64) (bool, error)
	ExistsByMQTT(ctx context.Context, tx pgx.Tx, mqtt string, excludeID int64) (bool, error)
	Create(ctx context.Context, tx pgx.Tx, d entities.Device) (int64, error)
	Update(ctx context.Context, tx pgx.Tx, d entities.Device) error
}

type DeviceRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDeviceRepository(storage *pgxpool.Pool, logger *zap.Logger) DeviceRepositoryInterface {
	return &DeviceRepository{storage: storage, logger: logger}
}

func scanDevice(row pgx.Row) (entities.Device, error) {
	var d entities.Device
	err := row.Scan(&d.ID, &d.MQTT, &d.Name, &d.Description, &d.DeviceType, &d.Config,
		&d.CheckpointID, &d.Timezone, &d.CreatedAt, &d.DroppedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return d, apperrors.ErrNotFound
	}
	if err != nil {
		return d, fmt.Errorf("ошибка сканирования device: %w", err)
	}
	return d, nil
}

func (r *DeviceRepository) GetDevices(ctx context.Context, p authz.Principal, filter types.Filter) (types.ListResult[entities.Device], error) {
	return List[entities.Device](ctx, r.storage, DeviceDescriptor, p, filter, nil)
}

func (r *DeviceRepository) FindDevice(ctx context.Context, p authz.Principal, id int64, v types.Visibility) (entities.Device, error) {
	return Retrieve[entities.Device](ctx, r.storage, DeviceDescriptor, p, id, v)
}

func (r *DeviceRepository) ExistsByName(ctx context.Context, tx pgx.Tx, name string, excludeID int64) (bool, error) {
	return ExistsByColumn(ctx, tx, DeviceDescriptor, "name", name, excludeID)
}

func (r *DeviceRepository) ExistsByMQTT(ctx context.Context, tx pgx.Tx, mqtt string, excludeID int64) (bool, error) {
	return ExistsByColumn(ctx, tx, DeviceDescriptor, "mqtt", mqtt, excludeID)
}

func (r *DeviceRepository) Create(ctx context.Context, tx pgx.Tx, d entities.Device) (int64, error) {
	query, args, err := sq.Insert("devices").
		Columns("mqtt", "name", "description", "device_type", "config", "checkpoint_id", "timezone").
		Values(d.MQTT, d.Name, d.Description, d.DeviceType, d.Config, d.CheckpointID, d.Timezone).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("ошибка создания устройства: %w", err)
	}
	return id, nil
}

func (r *DeviceRepository) Update(ctx context.Context, tx pgx.Tx, d entities.Device) error {
	query, args, err := sq.Update("devices").
		Set("mqtt", d.MQTT).
		Set("name", d.Name).
		Set("description", d.Description).
		Set("device_type", d.DeviceType).
		Set("config", d.Config).
		Set("checkpoint_id", d.CheckpointID).
		Set("timezone", d.Timezone).
		Where(sq.Eq{"id": d.ID}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления устройства: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
