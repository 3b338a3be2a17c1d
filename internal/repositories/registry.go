package repositories

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"access-control/internal/authz"
	apperrors "access-control/pkg/errors"
)

// FilterFunc строит условие по значению параметра запроса.
type FilterFunc func(value string) (sq.Sqlizer, error)

// OrgLink описывает таблицу связи сущности с организацией.
type OrgLink struct {
	Table        string
	Alias        string
	EntityColumn string
}

// EntityDescriptor: метаданные сущности для движка запросов.
type EntityDescriptor struct {
	Name       string
	Table      string
	Alias      string
	Resource   authz.Resource
	Columns    []string
	Searchable []string
	Filters    map[string]FilterFunc

	// OrgColumn: колонка организации в самой таблице (для организаций это id).
	OrgColumn string
	// OrgLink: связь через таблицу M:N. Удаление для принципала с областью
	// применяется к строке связи, а не к самой сущности.
	OrgLink *OrgLink

	Scan func(row pgx.Row) (interface{}, error)
}

func (d *EntityDescriptor) col(name string) string {
	return d.Alias + "." + name
}

func (d *EntityDescriptor) from() string {
	return d.Table + " AS " + d.Alias
}

// RelationDescriptor: связь M:N между двумя сущностями.
type RelationDescriptor struct {
	Master       *EntityDescriptor
	Slave        *EntityDescriptor
	LinkTable    string
	MasterColumn string
	SlaveColumn  string
	// Resource, на изменение которого нужно право для add/remove.
	Resource authz.Resource
}

type Registry struct {
	entities  map[string]*EntityDescriptor
	relations map[string]*RelationDescriptor
}

func NewRegistry() *Registry {
	return &Registry{
		entities:  make(map[string]*EntityDescriptor),
		relations: make(map[string]*RelationDescriptor),
	}
}

func (r *Registry) RegisterEntity(d *EntityDescriptor) {
	r.entities[d.Name] = d
}

func (r *Registry) RegisterRelation(rel *RelationDescriptor) {
	r.relations[rel.Master.Name+"/"+rel.Slave.Name] = rel
}

func (r *Registry) Entity(name string) (*EntityDescriptor, error) {
	d, ok := r.entities[name]
	if !ok {
		return nil, fmt.Errorf("%w: неизвестная сущность %q", apperrors.ErrNotFound, name)
	}
	return d, nil
}

func (r *Registry) Relation(master, slave string) (*RelationDescriptor, error) {
	rel, ok := r.relations[master+"/"+slave]
	if !ok {
		return nil, fmt.Errorf("%w: неизвестная связь %s/%s", apperrors.ErrNotFound, master, slave)
	}
	return rel, nil
}

func (r *Registry) Entities() []*EntityDescriptor {
	out := make([]*EntityDescriptor, 0, len(r.entities))
	for _, name := range entityOrder {
		if d, ok := r.entities[name]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Relations возвращает все зарегистрированные связи в порядке имён.
func (r *Registry) Relations() []*RelationDescriptor {
	keys := make([]string, 0, len(r.relations))
	for k := range r.relations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*RelationDescriptor, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.relations[k])
	}
	return out
}

var entityOrder = []string{EntityOrganizations, EntityDepartments, EntityEmployees, EntityDevices, EntityCheckpoints}

func eqInt(column string) FilterFunc {
	return func(value string) (sq.Sqlizer, error) {
		ids, err := parseIntList(value)
		if err != nil {
			return nil, err
		}
		return sq.Eq{column: ids}, nil
	}
}

func eqBool(column string) FilterFunc {
	return func(value string) (sq.Sqlizer, error) {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, apperrors.NewValidationError(column, "ожидается логическое значение")
		}
		return sq.Eq{column: v}, nil
	}
}

// linkedTo требует живую строку link с одним из masters.
func linkedTo(entityColumn, linkTable, linkEntityColumn, linkMasterColumn string) FilterFunc {
	return func(value string) (sq.Sqlizer, error) {
		ids, err := parseIntList(value)
		if err != nil {
			return nil, err
		}
		sub, args, err := sq.Select("1").From(linkTable + " AS lf").
			Where(fmt.Sprintf("lf.%s = %s", linkEntityColumn, entityColumn)).
			Where(sq.Eq{"lf." + linkMasterColumn: ids}).
			Where("lf.dropped_at IS NULL").
			ToSql()
		if err != nil {
			return nil, err
		}
		return sq.Expr("EXISTS ("+sub+")", args...), nil
	}
}

func parseIntList(value string) ([]int64, error) {
	parts := strings.Split(value, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, apperrors.NewValidationError("Filter", fmt.Sprintf("неверное значение %q", p))
		}
		ids = append(ids, id)
	}
	return ids, nil
}
