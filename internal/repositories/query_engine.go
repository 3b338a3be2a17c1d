package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"access-control/internal/authz"
	apperrors "access-control/pkg/errors"
	"access-control/pkg/types"
)

// scoped строит SELECT из таблицы сущности с ограничением областью принципала.
// Для сущностей со связью через таблицу M:N присоединяется строка связи
// с организацией принципала.
func scoped(d *EntityDescriptor, p authz.Principal, columns ...string) sq.SelectBuilder {
	b := sq.Select(columns...).From(d.from()).PlaceholderFormat(sq.Dollar)
	org := p.OrgID()
	if org == 0 {
		return b
	}
	switch {
	case d.OrgLink != nil:
		l := d.OrgLink
		b = b.Join(fmt.Sprintf("%s AS %s ON %s.%s = %s AND %s.organization_id = ?",
			l.Table, l.Alias, l.Alias, l.EntityColumn, d.col("id"), l.Alias), org)
	case d.OrgColumn != "":
		b = b.Where(sq.Eq{d.col(d.OrgColumn): org})
	}
	return b
}

// droppedExpr возвращает выражение, по которому определяется видимость строки.
// Для принципала с областью запись удалена, если удалена связь или сама сущность.
func droppedExpr(d *EntityDescriptor, p authz.Principal) string {
	if p.OrgID() != 0 && d.OrgLink != nil {
		return fmt.Sprintf("COALESCE(%s.dropped_at, %s)", d.OrgLink.Alias, d.col("dropped_at"))
	}
	return d.col("dropped_at")
}

// stateExpr возвращает колонку, которую меняют drop/restore данного принципала.
func stateExpr(d *EntityDescriptor, p authz.Principal) string {
	if p.OrgID() != 0 && d.OrgLink != nil {
		return d.OrgLink.Alias + ".dropped_at"
	}
	return d.col("dropped_at")
}

func withVisibility(b sq.SelectBuilder, expr string, v types.Visibility) sq.SelectBuilder {
	switch v {
	case types.VisibilityLive:
		return b.Where(expr + " IS NULL")
	case types.VisibilityDeletedOnly:
		return b.Where(expr + " IS NOT NULL")
	}
	return b
}

// withFilters применяет фильтры запроса: name ищется по searchable-колонкам,
// остальные ключи, по объявленным фильтрам сущности. Неизвестные ключи игнорируются.
func withFilters(b sq.SelectBuilder, d *EntityDescriptor, params map[string]string) (sq.SelectBuilder, error) {
	for key, value := range params {
		if key == "name" {
			if len(d.Searchable) == 0 {
				continue
			}
			pattern := "%" + escapeLike(value) + "%"
			or := sq.Or{}
			for _, col := range d.Searchable {
				or = append(or, sq.Expr(col+" ILIKE ?", pattern))
			}
			b = b.Where(or)
			continue
		}
		fn, ok := d.Filters[key]
		if !ok {
			continue
		}
		cond, err := fn(value)
		if err != nil {
			return b, err
		}
		b = b.Where(cond)
	}
	return b, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

// List возвращает {data, baseCount, filteredCount} для сущности d в области принципала.
// baseCount учитывает только базовые фильтры ("_"-параметры), filteredCount и data
// учитывают ещё и пользовательские. extra сужает выборку (например, связанные записи).
func List[T any](ctx context.Context, db querier, d *EntityDescriptor, p authz.Principal, f types.Filter, extra sq.Sqlizer) (types.ListResult[T], error) {
	result := types.ListResult[T]{Data: make([]T, 0)}

	baseQ := withVisibility(scoped(d, p, "COUNT(*)"), droppedExpr(d, p), f.Visibility)
	if extra != nil {
		baseQ = baseQ.Where(extra)
	}
	baseQ, err := withFilters(baseQ, d, f.Base)
	if err != nil {
		return result, err
	}
	if result.BaseCount, err = count(ctx, db, baseQ); err != nil {
		return result, err
	}

	filteredQ, err := withFilters(baseQ, d, f.Search)
	if err != nil {
		return result, err
	}
	if result.FilteredCount, err = count(ctx, db, filteredQ); err != nil {
		return result, err
	}
	if result.FilteredCount == 0 {
		return result, nil
	}

	dataQ := withVisibility(scoped(d, p, d.Columns...), droppedExpr(d, p), f.Visibility)
	if extra != nil {
		dataQ = dataQ.Where(extra)
	}
	if dataQ, err = withFilters(dataQ, d, f.Base); err != nil {
		return result, err
	}
	if dataQ, err = withFilters(dataQ, d, f.Search); err != nil {
		return result, err
	}
	dataQ = dataQ.OrderBy(d.col("id") + " DESC")
	if f.WithPagination && f.PerPage > 0 {
		dataQ = dataQ.Limit(uint64(f.PerPage)).Offset(uint64(f.Offset()))
	}

	sqlQuery, args, err := dataQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("ошибка сборки запроса %s: %w", d.Name, err)
	}
	rows, err := db.Query(ctx, sqlQuery, args...)
	if err != nil {
		return result, fmt.Errorf("ошибка запроса %s: %w", d.Name, err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := d.Scan(rows)
		if err != nil {
			return result, err
		}
		item, ok := v.(T)
		if !ok {
			return result, fmt.Errorf("сущность %s: неожиданный тип %T", d.Name, v)
		}
		result.Data = append(result.Data, item)
	}
	return result, rows.Err()
}

// Retrieve возвращает запись по id или ErrNotFound, если она вне области.
func Retrieve[T any](ctx context.Context, db querier, d *EntityDescriptor, p authz.Principal, id int64, v types.Visibility) (T, error) {
	var zero T
	q := withVisibility(scoped(d, p, d.Columns...), droppedExpr(d, p), v).
		Where(sq.Eq{d.col("id"): id})
	sqlQuery, args, err := q.ToSql()
	if err != nil {
		return zero, err
	}
	raw, err := d.Scan(db.QueryRow(ctx, sqlQuery, args...))
	if err != nil {
		return zero, err
	}
	item, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("сущность %s: неожиданный тип %T", d.Name, raw)
	}
	return item, nil
}

// Count считает записи сущности в области принципала.
func Count(ctx context.Context, db querier, d *EntityDescriptor, p authz.Principal, v types.Visibility) (uint64, error) {
	return count(ctx, db, withVisibility(scoped(d, p, "COUNT(*)"), droppedExpr(d, p), v))
}

func count(ctx context.Context, db querier, q sq.SelectBuilder) (uint64, error) {
	sqlQuery, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}
	var total uint64
	if err := db.QueryRow(ctx, sqlQuery, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта: %w", err)
	}
	return total, nil
}

// AdmissibleIDs оставляет из ids живые и видимые принципалу.
func AdmissibleIDs(ctx context.Context, db querier, d *EntityDescriptor, p authz.Principal, ids []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := withVisibility(scoped(d, p, d.col("id")), droppedExpr(d, p), types.VisibilityLive).
		Where(sq.Eq{d.col("id"): ids})
	sqlQuery, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// DroppedAt читает состояние мягкого удаления записи для принципала.
func DroppedAt(ctx context.Context, db querier, d *EntityDescriptor, p authz.Principal, id int64) (*time.Time, error) {
	q := scoped(d, p, stateExpr(d, p)).Where(sq.Eq{d.col("id"): id})
	sqlQuery, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var dropped *time.Time
	err = db.QueryRow(ctx, sqlQuery, args...).Scan(&dropped)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения состояния %s: %w", d.Name, err)
	}
	return dropped, nil
}

// SetDroppedAt меняет dropped_at сущности, а для принципала с областью
// меняет строки связи с его организацией.
func SetDroppedAt(ctx context.Context, db querier, d *EntityDescriptor, p authz.Principal, id int64, at *time.Time) error {
	var b sq.UpdateBuilder
	if org := p.OrgID(); org != 0 && d.OrgLink != nil {
		b = sq.Update(d.OrgLink.Table).Set("dropped_at", at).
			Where(sq.Eq{d.OrgLink.EntityColumn: id, "organization_id": org})
	} else {
		b = sq.Update(d.Table).Set("dropped_at", at).Where(sq.Eq{"id": id})
	}
	sqlQuery, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return err
	}
	tag, err := db.Exec(ctx, sqlQuery, args...)
	if err != nil {
		return fmt.Errorf("ошибка изменения состояния %s: %w", d.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ExistsByColumn проверяет уникальность значения среди всех строк, кроме excludeID.
// Конфликт записи с самой собой конфликтом не считается.
func ExistsByColumn(ctx context.Context, db querier, d *EntityDescriptor, column string, value interface{}, excludeID int64) (bool, error) {
	q := sq.Select("1").From(d.from()).
		Where(sq.Eq{d.col(column): value}).
		Where(sq.NotEq{d.col("id"): excludeID}).
		Limit(1).PlaceholderFormat(sq.Dollar)
	sqlQuery, args, err := q.ToSql()
	if err != nil {
		return false, err
	}
	var one int
	err = db.QueryRow(ctx, sqlQuery, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
