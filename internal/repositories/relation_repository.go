package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"access-control/internal/authz"
	"access-control/pkg/types"
)

type RelationRepositoryInterface interface {
	// Related возвращает подчинённые записи, связанные (или не связанные) с master живой связью.
	Related(ctx context.Context, p authz.Principal, rel *RelationDescriptor, masterID int64, linked bool, filter types.Filter) (types.ListResult[interface{}], error)
	// LinkStates возвращает существующие строки связи как slaveID -> dropped_at.
	LinkStates(ctx context.Context, tx pgx.Tx, rel *RelationDescriptor, masterID int64, slaveIDs []int64) (map[int64]*time.Time, error)
	Insert(ctx context.Context, tx pgx.Tx, rel *RelationDescriptor, masterID int64, slaveIDs []int64) error
	SetDropped(ctx context.Context, tx pgx.Tx, rel *RelationDescriptor, masterID int64, slaveIDs []int64, at *time.Time) error
	// LinkToOrganization создаёт строку связи сущности d с организацией.
	LinkToOrganization(ctx context.Context, tx pgx.Tx, d *EntityDescriptor, organizationID, id int64) error
}

type RelationRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRelationRepository(storage *pgxpool.Pool, logger *zap.Logger) RelationRepositoryInterface {
	return &RelationRepository{storage: storage, logger: logger}
}

func (r *RelationRepository) Related(ctx context.Context, p authz.Principal, rel *RelationDescriptor, masterID int64, linked bool, filter types.Filter) (types.ListResult[interface{}], error) {
	sub, args, err := sq.Select("1").From(rel.LinkTable + " AS rl").
		Where(fmt.Sprintf("rl.%s = %s", rel.SlaveColumn, rel.Slave.col("id"))).
		Where(sq.Eq{"rl." + rel.MasterColumn: masterID}).
		Where("rl.dropped_at IS NULL").
		ToSql()
	if err != nil {
		return types.ListResult[interface{}]{}, err
	}
	op := "EXISTS"
	if !linked {
		op = "NOT EXISTS"
	}
	return List[interface{}](ctx, r.storage, rel.Slave, p, filter, sq.Expr(op+" ("+sub+")", args...))
}

func (r *RelationRepository) LinkStates(ctx context.Context, tx pgx.Tx, rel *RelationDescriptor, masterID int64, slaveIDs []int64) (map[int64]*time.Time, error) {
	query, args, err := sq.Select(rel.SlaveColumn, "dropped_at").
		From(rel.LinkTable).
		Where(sq.Eq{rel.MasterColumn: masterID, rel.SlaveColumn: slaveIDs}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения связей %s: %w", rel.LinkTable, err)
	}
	defer rows.Close()

	states := make(map[int64]*time.Time)
	for rows.Next() {
		var id int64
		var dropped *time.Time
		if err := rows.Scan(&id, &dropped); err != nil {
			return nil, err
		}
		states[id] = dropped
	}
	return states, rows.Err()
}

func (r *RelationRepository) Insert(ctx context.Context, tx pgx.Tx, rel *RelationDescriptor, masterID int64, slaveIDs []int64) error {
	if len(slaveIDs) == 0 {
		return nil
	}
	b := sq.Insert(rel.LinkTable).Columns(rel.MasterColumn, rel.SlaveColumn)
	for _, id := range slaveIDs {
		b = b.Values(masterID, id)
	}
	query, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка создания связей %s: %w", rel.LinkTable, err)
	}
	return nil
}

func (r *RelationRepository) SetDropped(ctx context.Context, tx pgx.Tx, rel *RelationDescriptor, masterID int64, slaveIDs []int64, at *time.Time) error {
	if len(slaveIDs) == 0 {
		return nil
	}
	query, args, err := sq.Update(rel.LinkTable).
		Set("dropped_at", at).
		Where(sq.Eq{rel.MasterColumn: masterID, rel.SlaveColumn: slaveIDs}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка изменения связей %s: %w", rel.LinkTable, err)
	}
	return nil
}

func (r *RelationRepository) LinkToOrganization(ctx context.Context, tx pgx.Tx, d *EntityDescriptor, organizationID, id int64) error {
	if d.OrgLink == nil {
		return fmt.Errorf("сущность %s не связывается с организацией", d.Name)
	}
	query, args, err := sq.Insert(d.OrgLink.Table).
		Columns(d.OrgLink.EntityColumn, "organization_id").
		Values(id, organizationID).
		Suffix("ON CONFLICT (" + d.OrgLink.EntityColumn + ", organization_id) DO UPDATE SET dropped_at = NULL").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка привязки %s к организации: %w", d.Name, err)
	}
	return nil
}
