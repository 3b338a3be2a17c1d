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
	apperrors "access-control/pkg/errors"
)

type TemplateRepositoryInterface interface {
	Create(ctx context.Context, tx pgx.Tx, t entities.IdentificationTemplate) (int64, error)
	// ReplaceAvatar создаёт новый AVATAR и помечает прежний удалённым в одной транзакции.
	ReplaceAvatar(ctx context.Context, tx pgx.Tx, employeeID int64, photo []byte, at time.Time) (int64, error)
	LatestAvatar(ctx context.Context, employeeID int64) (entities.IdentificationTemplate, error)
	GetEmployeeTemplates(ctx context.Context, employeeID int64) ([]entities.IdentificationTemplate, error)
}

type TemplateRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTemplateRepository(storage *pgxpool.Pool, logger *zap.Logger) TemplateRepositoryInterface {
	return &TemplateRepository{storage: storage, logger: logger}
}

const templateColumns = "id, employee_id, algorithm_type, algorithm_version, template, quality, config, created_at, dropped_at"

func scanTemplate(row pgx.Row) (entities.IdentificationTemplate, error) {
	var t entities.IdentificationTemplate
	err := row.Scan(&t.ID, &t.EmployeeID, &t.AlgorithmType, &t.AlgorithmVersion, &t.Template,
		&t.Quality, &t.Config, &t.CreatedAt, &t.DroppedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, apperrors.ErrNotFound
	}
	if err != nil {
		return t, fmt.Errorf("ошибка сканирования template: %w", err)
	}
	return t, nil
}

func (r *TemplateRepository) Create(ctx context.Context, tx pgx.Tx, t entities.IdentificationTemplate) (int64, error) {
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	query, args, err := sq.Insert("identification_templates").
		Columns("employee_id", "algorithm_type", "algorithm_version", "template", "quality", "config", "created_at").
		Values(t.EmployeeID, t.AlgorithmType, t.AlgorithmVersion, t.Template, t.Quality, t.Config, createdAt).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("ошибка сохранения шаблона: %w", err)
	}
	return id, nil
}

func (r *TemplateRepository) ReplaceAvatar(ctx context.Context, tx pgx.Tx, employeeID int64, photo []byte, at time.Time) (int64, error) {
	id, err := r.Create(ctx, tx, entities.IdentificationTemplate{
		EmployeeID:    employeeID,
		AlgorithmType: entities.AlgorithmAvatar,
		Template:      photo,
		CreatedAt:     at,
	})
	if err != nil {
		return 0, err
	}

	query, args, err := sq.Update("identification_templates").
		Set("dropped_at", at).
		Where(sq.Eq{"employee_id": employeeID, "algorithm_type": entities.AlgorithmAvatar}).
		Where(sq.NotEq{"id": id}).
		Where("dropped_at IS NULL").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("ошибка замены фото: %w", err)
	}
	return id, nil
}

func (r *TemplateRepository) LatestAvatar(ctx context.Context, employeeID int64) (entities.IdentificationTemplate, error) {
	query, args, err := sq.Select(templateColumns).
		From("identification_templates").
		Where(sq.Eq{"employee_id": employeeID, "algorithm_type": entities.AlgorithmAvatar}).
		Where("dropped_at IS NULL").
		OrderBy("created_at DESC", "id DESC").
		Limit(1).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return entities.IdentificationTemplate{}, err
	}
	return scanTemplate(r.storage.QueryRow(ctx, query, args...))
}

// GetEmployeeTemplates возвращает живые шаблоны сотрудника без AVATAR.
func (r *TemplateRepository) GetEmployeeTemplates(ctx context.Context, employeeID int64) ([]entities.IdentificationTemplate, error) {
	query, args, err := sq.Select(templateColumns).
		From("identification_templates").
		Where(sq.Eq{"employee_id": employeeID}).
		Where(sq.NotEq{"algorithm_type": entities.AlgorithmAvatar}).
		Where("dropped_at IS NULL").
		OrderBy("id").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]entities.IdentificationTemplate, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}
