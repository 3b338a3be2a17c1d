package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"access-control/internal/authz"
	"access-control/pkg/types"
)

// EntityRepositoryInterface: операции движка запросов, общие для всех сущностей реестра.
type EntityRepositoryInterface interface {
	Registry() *Registry
	// DroppedAt: состояние мягкого удаления, которое видит и меняет принципал.
	DroppedAt(ctx context.Context, tx pgx.Tx, d *EntityDescriptor, p authz.Principal, id int64) (*time.Time, error)
	SetDroppedAt(ctx context.Context, tx pgx.Tx, d *EntityDescriptor, p authz.Principal, id int64, at *time.Time) error
	Admissible(ctx context.Context, tx pgx.Tx, d *EntityDescriptor, p authz.Principal, ids []int64) (map[int64]bool, error)
	Count(ctx context.Context, d *EntityDescriptor, p authz.Principal) (uint64, error)
}

type EntityRepository struct {
	storage  *pgxpool.Pool
	registry *Registry
	logger   *zap.Logger
}

func NewEntityRepository(storage *pgxpool.Pool, registry *Registry, logger *zap.Logger) EntityRepositoryInterface {
	return &EntityRepository{storage: storage, registry: registry, logger: logger}
}

func (r *EntityRepository) Registry() *Registry {
	return r.registry
}

func (r *EntityRepository) DroppedAt(ctx context.Context, tx pgx.Tx, d *EntityDescriptor, p authz.Principal, id int64) (*time.Time, error) {
	return DroppedAt(ctx, tx, d, p, id)
}

func (r *EntityRepository) SetDroppedAt(ctx context.Context, tx pgx.Tx, d *EntityDescriptor, p authz.Principal, id int64, at *time.Time) error {
	if err := SetDroppedAt(ctx, tx, d, p, id, at); err != nil {
		return err
	}
	r.logger.Debug("Изменено состояние мягкого удаления",
		zap.String("entity", d.Name), zap.Int64("id", id), zap.Bool("dropped", at != nil))
	return nil
}

// Admissible без транзакции читает из пула.
func (r *EntityRepository) Admissible(ctx context.Context, tx pgx.Tx, d *EntityDescriptor, p authz.Principal, ids []int64) (map[int64]bool, error) {
	if tx == nil {
		return AdmissibleIDs(ctx, r.storage, d, p, ids)
	}
	return AdmissibleIDs(ctx, tx, d, p, ids)
}

func (r *EntityRepository) Count(ctx context.Context, d *EntityDescriptor, p authz.Principal) (uint64, error) {
	return Count(ctx, r.storage, d, p, types.VisibilityLive)
}
