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

type EmployeeRepositoryInterface interface {
	GetEmployees(ctx context.Context, p authz.Principal, filter types.Filter) (types.ListResult[entities.Employee], error)
	FindEmployee(ctx context.Context, p authz.Principal, id int64, v types.Visibility) (entities.Employee, error)
	Create(ctx context.Context, tx pgx.Tx, e entities.Employee) (int64, error)
	Update(ctx context.Context, tx pgx.Tx, e entities.Employee) error
	GetEmployeeOrganizations(ctx context.Context, p authz.Principal, employeeID int64) ([]entities.EmployeeOrganization, error)
	GetEmployeeDepartmentIDs(ctx context.Context, p authz.Principal, employeeID int64) ([]int64, error)
}

type EmployeeRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewEmployeeRepository(storage *pgxpool.Pool, logger *zap.Logger) EmployeeRepositoryInterface {
	return &EmployeeRepository{storage: storage, logger: logger}
}

func scanEmployee(row pgx.Row) (entities.Employee, error) {
	var e entities.Employee
	err := row.Scan(&e.ID, &e.GUID, &e.LastName, &e.FirstName, &e.Patronymic, &e.CreatedAt, &e.DroppedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return e, apperrors.ErrNotFound
	}
	if err != nil {
		return e, fmt.Errorf("ошибка сканирования employee: %w", err)
	}
	return e, nil
}

func (r *EmployeeRepository) GetEmployees(ctx context.Context, p authz.Principal, filter types.Filter) (types.ListResult[entities.Employee], error) {
	return List[entities.Employee](ctx, r.storage, EmployeeDescriptor, p, filter, nil)
}

func (r *EmployeeRepository) FindEmployee(ctx context.Context, p authz.Principal, id int64, v types.Visibility) (entities.Employee, error) {
	return Retrieve[entities.Employee](ctx, r.storage, EmployeeDescriptor, p, id, v)
}

func (r *EmployeeRepository) Create(ctx context.Context, tx pgx.Tx, e entities.Employee) (int64, error) {
	query, args, err := sq.Insert("employees").
		Columns("guid", "last_name", "first_name", "patronymic").
		Values(e.GUID, e.LastName, e.FirstName, e.Patronymic).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("ошибка создания сотрудника: %w", err)
	}
	return id, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, tx pgx.Tx, e entities.Employee) error {
	query, args, err := sq.Update("employees").
		Set("last_name", e.LastName).
		Set("first_name", e.FirstName).
		Set("patronymic", e.Patronymic).
		Where(sq.Eq{"id": e.ID}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления сотрудника: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetEmployeeOrganizations возвращает живые связи сотрудника с организациями в области принципала.
func (r *EmployeeRepository) GetEmployeeOrganizations(ctx context.Context, p authz.Principal, employeeID int64) ([]entities.EmployeeOrganization, error) {
	b := sq.Select("id", "employee_id", "organization_id", "timesheet_start", "timesheet_end", "dropped_at").
		From("employee2organization").
		Where(sq.Eq{"employee_id": employeeID}).
		Where("dropped_at IS NULL").
		OrderBy("organization_id").
		PlaceholderFormat(sq.Dollar)
	if org := p.OrgID(); org != 0 {
		b = b.Where(sq.Eq{"organization_id": org})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]entities.EmployeeOrganization, 0)
	for rows.Next() {
		var l entities.EmployeeOrganization
		if err := rows.Scan(&l.ID, &l.EmployeeID, &l.OrganizationID, &l.TimesheetStart, &l.TimesheetEnd, &l.DroppedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *EmployeeRepository) GetEmployeeDepartmentIDs(ctx context.Context, p authz.Principal, employeeID int64) ([]int64, error) {
	b := sq.Select("ed.department_id").
		From("employee2department AS ed").
		Join("departments AS d ON d.id = ed.department_id").
		Where(sq.Eq{"ed.employee_id": employeeID}).
		Where("ed.dropped_at IS NULL AND d.dropped_at IS NULL").
		OrderBy("ed.department_id").
		PlaceholderFormat(sq.Dollar)
	if org := p.OrgID(); org != 0 {
		b = b.Where(sq.Eq{"d.organization_id": org})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
