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

type OrganizationRepositoryInterface interface {
	GetOrganizations(ctx context.Context, p authz.Principal, filter types.Filter) (types.ListResult[entities.Organization], error)
	FindOrganization(ctx context.Context, p authz.Principal, id int64, v types.Visibility) (entities.Organization, error)
	FindOrganizationByID(ctx context.Context, db querier, id int64) (entities.Organization, error)
	ExistsByName(ctx context.Context, tx pgx.Tx, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, tx pgx.Tx, o entities.Organization) (int64, error)
	Update(ctx context.Context, tx pgx.Tx, o entities.Organization) error
}

type OrganizationRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewOrganizationRepository(storage *pgxpool.Pool, logger *zap.Logger) OrganizationRepositoryInterface {
	return &OrganizationRepository{storage: storage, logger: logger}
}

func scanOrganization(row pgx.Row) (entities.Organization, error) {
	var o entities.Organization
	err := row.Scan(&o.ID, &o.GUID, &o.Name, &o.Address, &o.Phone, &o.Timezone,
		&o.TimesheetStart, &o.TimesheetEnd, &o.CreatedAt, &o.DroppedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return o, apperrors.ErrNotFound
	}
	if err != nil {
		return o, fmt.Errorf("ошибка сканирования organization: %w", err)
	}
	return o, nil
}

func (r *OrganizationRepository) GetOrganizations(ctx context.Context, p authz.Principal, filter types.Filter) (types.ListResult[entities.Organization], error) {
	return List[entities.Organization](ctx, r.storage, OrganizationDescriptor, p, filter, nil)
}

func (r *OrganizationRepository) FindOrganization(ctx context.Context, p authz.Principal, id int64, v types.Visibility) (entities.Organization, error) {
	return Retrieve[entities.Organization](ctx, r.storage, OrganizationDescriptor, p, id, v)
}

// FindOrganizationByID читает организацию без области принципала, для внутренних нужд отчёта.
func (r *OrganizationRepository) FindOrganizationByID(ctx context.Context, db querier, id int64) (entities.Organization, error) {
	if db == nil {
		db = r.storage
	}
	return Retrieve[entities.Organization](ctx, db, OrganizationDescriptor, authz.Principal{}, id, types.VisibilityAll)
}

func (r *OrganizationRepository) ExistsByName(ctx context.Context, tx pgx.Tx, name string, excludeID int64) (bool, error) {
	return ExistsByColumn(ctx, tx, OrganizationDescriptor, "name", name, excludeID)
}

func (r *OrganizationRepository) Create(ctx context.Context, tx pgx.Tx, o entities.Organization) (int64, error) {
	query, args, err := sq.Insert("organizations").
		Columns("guid", "name", "address", "phone", "timezone", "timesheet_start", "timesheet_end").
		Values(o.GUID, o.Name, o.Address, o.Phone, o.Timezone, o.TimesheetStart, o.TimesheetEnd).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("ошибка создания организации: %w", err)
	}
	return id, nil
}

func (r *OrganizationRepository) Update(ctx context.Context, tx pgx.Tx, o entities.Organization) error {
	query, args, err := sq.Update("organizations").
		Set("name", o.Name).
		Set("address", o.Address).
		Set("phone", o.Phone).
		Set("timezone", o.Timezone).
		Set("timesheet_start", o.TimesheetStart).
		Set("timesheet_end", o.TimesheetEnd).
		Where(sq.Eq{"id": o.ID}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления организации: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
