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

// DefaultDepartmentName: подразделение, создаваемое вместе с организацией.
const DefaultDepartmentName = "Основное подразделение"

type DepartmentRepositoryInterface interface {
	GetDepartments(ctx context.Context, p authz.Principal, filter types.Filter) (types.ListResult[entities.Department], error)
	FindDepartment(ctx context.Context, p authz.Principal, id int64, v types.Visibility) (entities.Department, error)
	ExistsByName(ctx context.Context, tx pgx.Tx, organizationID int64, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, tx pgx.Tx, d entities.Department) (int64, error)
	Update(ctx context.Context, tx pgx.Tx, d entities.Department) error
}

type DepartmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDepartmentRepository(storage *pgxpool.Pool, logger *zap.Logger) DepartmentRepositoryInterface {
	return &DepartmentRepository{storage: storage, logger: logger}
}

func scanDepartment(row pgx.Row) (entities.Department, error) {
	var d entities.Department
	err := row.Scan(&d.ID, &d.OrganizationID, &d.Name, &d.Rights, &d.Address, &d.Description,
		&d.ShowInReport, &d.CreatedAt, &d.DroppedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return d, apperrors.ErrNotFound
	}
	if err != nil {
		return d, fmt.Errorf("ошибка сканирования department: %w", err)
	}
	return d, nil
}

func (r *DepartmentRepository) GetDepartments(ctx context.Context, p authz.Principal, filter types.Filter) (types.ListResult[entities.Department], error) {
	return List[entities.Department](ctx, r.storage, DepartmentDescriptor, p, filter, nil)
}

func (r *DepartmentRepository) FindDepartment(ctx context.Context, p authz.Principal, id int64, v types.Visibility) (entities.Department, error) {
	return Retrieve[entities.Department](ctx, r.storage, DepartmentDescriptor, p, id, v)
}

// ExistsByName проверяет имя подразделения в пределах организации.
func (r *DepartmentRepository) ExistsByName(ctx context.Context, tx pgx.Tx, organizationID int64, name string, excludeID int64) (bool, error) {
	query, args, err := sq.Select("1").From("departments").
		Where(sq.Eq{"organization_id": organizationID, "name": name}).
		Where(sq.NotEq{"id": excludeID}).
		Limit(1).PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return false, err
	}
	var one int
	err = tx.QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (r *DepartmentRepository) Create(ctx context.Context, tx pgx.Tx, d entities.Department) (int64, error) {
	query, args, err := sq.Insert("departments").
		Columns("organization_id", "name", "rights", "address", "description", "show_in_report").
		Values(d.OrganizationID, d.Name, d.Rights, d.Address, d.Description, d.ShowInReport).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("ошибка создания подразделения: %w", err)
	}
	return id, nil
}

func (r *DepartmentRepository) Update(ctx context.Context, tx pgx.Tx, d entities.Department) error {
	query, args, err := sq.Update("departments").
		Set("name", d.Name).
		Set("rights", d.Rights).
		Set("address", d.Address).
		Set("description", d.Description).
		Set("show_in_report", d.ShowInReport).
		Where(sq.Eq{"id": d.ID}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления подразделения: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
