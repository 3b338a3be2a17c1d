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

type CheckpointRepositoryInterface interface {
	GetCheckpoints(ctx context.Context, p authz.Principal, filter types.Filter) (types.ListResult[entities.Checkpoint], error)
	FindCheckpoint(ctx context.Context, p authz.Principal, id int64, v types.Visibility) (entities.Checkpoint, error)
	ExistsByName(ctx context.Context, tx pgx.Tx, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, tx pgx.Tx, c entities.Checkpoint) (int64, error)
	Update(ctx context.Context, tx pgx.Tx, c entities.Checkpoint) error
}

type CheckpointRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewCheckpointRepository(storage *pgxpool.Pool, logger *zap.Logger) CheckpointRepositoryInterface {
	return &CheckpointRepository{storage: storage, logger: logger}
}

func scanCheckpoint(row pgx.Row) (entities.Checkpoint, error) {
	var c entities.Checkpoint
	err := row.Scan(&c.ID, &c.Name, &c.Rights, &c.Description, &c.CreatedAt, &c.DroppedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return c, apperrors.ErrNotFound
	}
	if err != nil {
		return c, fmt.Errorf("ошибка сканирования checkpoint: %w", err)
	}
	return c, nil
}

func (r *CheckpointRepository) GetCheckpoints(ctx context.Context, p authz.Principal, filter types.Filter) (types.ListResult[entities.Checkpoint], error) {
	return List[entities.Checkpoint](ctx, r.storage, CheckpointDescriptor, p, filter, nil)
}

func (r *CheckpointRepository) FindCheckpoint(ctx context.Context, p authz.Principal, id int64, v types.Visibility) (entities.Checkpoint, error) {
	return Retrieve[entities.Checkpoint](ctx, r.storage, CheckpointDescriptor, p, id, v)
}

func (r *CheckpointRepository) ExistsByName(ctx context.Context, tx pgx.Tx, name string, excludeID int64) (bool, error) {
	return ExistsByColumn(ctx, tx, CheckpointDescriptor, "name", name, excludeID)
}

func (r *CheckpointRepository) Create(ctx context.Context, tx pgx.Tx, c entities.Checkpoint) (int64, error) {
	query, args, err := sq.Insert("checkpoints").
		Columns("name", "rights", "description").
		Values(c.Name, c.Rights, c.Description).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("ошибка создания проходной: %w", err)
	}
	return id, nil
}

func (r *CheckpointRepository) Update(ctx context.Context, tx pgx.Tx, c entities.Checkpoint) error {
	query, args, err := sq.Update("checkpoints").
		Set("name", c.Name).
		Set("rights", c.Rights).
		Set("description", c.Description).
		Where(sq.Eq{"id": c.ID}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления проходной: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
