package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"access-control/internal/entities"
)

type ReportRepositoryInterface interface {
	// DayCounts считает события по (сутки UTC, сотрудник), от новых суток к старым.
	DayCounts(ctx context.Context, tx pgx.Tx, sel entities.ReportSelection) ([]entities.ReportDayCount, error)
	// Events возвращает события выборки с моментом в [from, to), по возрастанию момента.
	Events(ctx context.Context, tx pgx.Tx, sel entities.ReportSelection, from, to time.Time) ([]entities.ReportEvent, error)
	Employees(ctx context.Context, tx pgx.Tx, ids []int64) ([]entities.Employee, error)
	EmployeeOrganizations(ctx context.Context, tx pgx.Tx, employeeIDs []int64) ([]entities.EmployeeOrganization, error)
	Organizations(ctx context.Context, tx pgx.Tx, ids []int64) ([]entities.Organization, error)
	ReportDepartments(ctx context.Context, tx pgx.Tx, employeeIDs []int64) ([]entities.ReportDepartmentLink, error)
	// EntityName возвращает подпись выбранной сущности для имени файла отчёта.
	EntityName(ctx context.Context, tx pgx.Tx, t entities.ReportEntityType, id int64) (string, error)
}

type ReportRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewReportRepository(storage *pgxpool.Pool, logger *zap.Logger) ReportRepositoryInterface {
	return &ReportRepository{storage: storage, logger: logger}
}

const utcDayExpr = "date_trunc('day', ev.moment AT TIME ZONE 'UTC')"

// selection строит FROM и WHERE для событий отчёта.
func selection(sel entities.ReportSelection, columns ...string) sq.SelectBuilder {
	b := sq.Select(columns...).
		From("identification_events AS ev").
		LeftJoin("devices AS dv ON dv.id = ev.device_id").
		LeftJoin("checkpoints AS cp ON cp.id = dv.checkpoint_id").
		Where("ev.employee_id IS NOT NULL").
		PlaceholderFormat(sq.Dollar)

	switch sel.EntityType {
	case entities.ReportEmployee:
		b = b.Where(sq.Eq{"ev.employee_id": sel.EntityID})
	case entities.ReportDevice:
		b = b.Where(sq.Eq{"ev.device_id": sel.EntityID})
	case entities.ReportCheckpoint, entities.ReportDeviceGroup:
		b = b.Where(sq.Eq{"dv.checkpoint_id": sel.EntityID})
	case entities.ReportDepartment:
		b = b.Where(`EXISTS (SELECT 1 FROM employee2department AS ed
			WHERE ed.employee_id = ev.employee_id AND ed.department_id = ? AND ed.dropped_at IS NULL)`, sel.EntityID)
	case entities.ReportOrganization:
		b = b.Where(`EXISTS (SELECT 1 FROM employee2organization AS eo
			WHERE eo.employee_id = ev.employee_id AND eo.organization_id = ? AND eo.dropped_at IS NULL)`, sel.EntityID)
	}

	if sel.OrganizationID != 0 {
		b = b.Where(`EXISTS (SELECT 1 FROM employee2organization AS seo
			WHERE seo.employee_id = ev.employee_id AND seo.organization_id = ? AND seo.dropped_at IS NULL)`, sel.OrganizationID).
			Where(`EXISTS (SELECT 1 FROM device2organization AS sdo
			WHERE sdo.device_id = ev.device_id AND sdo.organization_id = ? AND sdo.dropped_at IS NULL)`, sel.OrganizationID)
	}
	if sel.From != nil {
		b = b.Where(sq.GtOrEq{"ev.moment": *sel.From})
	}
	if sel.To != nil {
		b = b.Where(sq.LtOrEq{"ev.moment": *sel.To})
	}
	return b
}

func (r *ReportRepository) DayCounts(ctx context.Context, tx pgx.Tx, sel entities.ReportSelection) ([]entities.ReportDayCount, error) {
	query, args, err := selection(sel, utcDayExpr+" AS day", "ev.employee_id", "COUNT(*)").
		GroupBy("day", "ev.employee_id").
		OrderBy("day DESC", "ev.employee_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса отчёта: %w", err)
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта строк отчёта: %w", err)
	}
	defer rows.Close()

	counts := make([]entities.ReportDayCount, 0)
	for rows.Next() {
		var c entities.ReportDayCount
		if err := rows.Scan(&c.Day, &c.EmployeeID, &c.Events); err != nil {
			return nil, err
		}
		c.Day = time.Date(c.Day.Year(), c.Day.Month(), c.Day.Day(), 0, 0, 0, 0, time.UTC)
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *ReportRepository) Events(ctx context.Context, tx pgx.Tx, sel entities.ReportSelection, from, to time.Time) ([]entities.ReportEvent, error) {
	query, args, err := selection(sel,
		"ev.id", "ev.moment", "ev.employee_id", "ev.device_id", "dv.timezone", "cp.name").
		Where(sq.GtOrEq{"ev.moment": from}).
		Where(sq.Lt{"ev.moment": to}).
		OrderBy("ev.moment", "ev.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса событий: %w", err)
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки событий отчёта: %w", err)
	}
	defer rows.Close()

	events := make([]entities.ReportEvent, 0)
	for rows.Next() {
		var ev entities.ReportEvent
		if err := rows.Scan(&ev.ID, &ev.Moment, &ev.EmployeeID, &ev.DeviceID, &ev.DeviceTimezone, &ev.CheckpointName); err != nil {
			return nil, err
		}
		ev.Moment = ev.Moment.UTC()
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *ReportRepository) Employees(ctx context.Context, tx pgx.Tx, ids []int64) ([]entities.Employee, error) {
	query, args, err := sq.Select(EmployeeDescriptor.Columns...).
		From(EmployeeDescriptor.from()).
		Where(sq.Eq{"e.id": ids}).
		OrderBy("e.id").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entities.Employee, 0, len(ids))
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// EmployeeOrganizations возвращает живые связи сотрудников с организациями, по id связи организации.
func (r *ReportRepository) EmployeeOrganizations(ctx context.Context, tx pgx.Tx, employeeIDs []int64) ([]entities.EmployeeOrganization, error) {
	query, args, err := sq.Select("id", "employee_id", "organization_id", "timesheet_start", "timesheet_end", "dropped_at").
		From("employee2organization").
		Where(sq.Eq{"employee_id": employeeIDs}).
		Where("dropped_at IS NULL").
		OrderBy("employee_id", "organization_id").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entities.EmployeeOrganization, 0)
	for rows.Next() {
		var l entities.EmployeeOrganization
		if err := rows.Scan(&l.ID, &l.EmployeeID, &l.OrganizationID, &l.TimesheetStart, &l.TimesheetEnd, &l.DroppedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *ReportRepository) Organizations(ctx context.Context, tx pgx.Tx, ids []int64) ([]entities.Organization, error) {
	query, args, err := sq.Select(OrganizationDescriptor.Columns...).
		From(OrganizationDescriptor.from()).
		Where(sq.Eq{"o.id": ids}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entities.Organization, 0, len(ids))
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ReportDepartments возвращает живые подразделения с show_in_report, к которым привязаны сотрудники.
func (r *ReportRepository) ReportDepartments(ctx context.Context, tx pgx.Tx, employeeIDs []int64) ([]entities.ReportDepartmentLink, error) {
	columns := append([]string{"ed.employee_id"}, DepartmentDescriptor.Columns...)
	query, args, err := sq.Select(columns...).
		From("employee2department AS ed").
		Join("departments AS d ON d.id = ed.department_id").
		Where(sq.Eq{"ed.employee_id": employeeIDs}).
		Where("ed.dropped_at IS NULL AND d.dropped_at IS NULL AND d.show_in_report").
		OrderBy("ed.employee_id", "d.id").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entities.ReportDepartmentLink, 0)
	for rows.Next() {
		var l entities.ReportDepartmentLink
		d := &l.Department
		if err := rows.Scan(&l.EmployeeID, &d.ID, &d.OrganizationID, &d.Name, &d.Rights, &d.Address,
			&d.Description, &d.ShowInReport, &d.CreatedAt, &d.DroppedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

var entityNameQueries = map[entities.ReportEntityType]string{
	entities.ReportEmployee:     "SELECT concat_ws(' ', last_name, first_name, patronymic) FROM employees WHERE id = $1",
	entities.ReportDepartment:   "SELECT name FROM departments WHERE id = $1",
	entities.ReportOrganization: "SELECT name FROM organizations WHERE id = $1",
	entities.ReportDevice:       "SELECT COALESCE(name, mqtt) FROM devices WHERE id = $1",
	entities.ReportCheckpoint:   "SELECT name FROM checkpoints WHERE id = $1",
}

func (r *ReportRepository) EntityName(ctx context.Context, tx pgx.Tx, t entities.ReportEntityType, id int64) (string, error) {
	query, ok := entityNameQueries[t]
	if !ok || id == 0 {
		return "", nil
	}
	var name string
	err := tx.QueryRow(ctx, query, id).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("ошибка чтения имени %s %d: %w", t, id, err)
	}
	return name, nil
}
