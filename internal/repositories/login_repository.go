package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"access-control/internal/entities"
	apperrors "access-control/pkg/errors"
	"access-control/pkg/types"
)

type LoginRepositoryInterface interface {
	FindUserByUsername(ctx context.Context, username string) (entities.User, error)
	FindUserByID(ctx context.Context, id int64) (entities.User, error)
	ExistsByUsername(ctx context.Context, tx pgx.Tx, username string, excludeID int64) (bool, error)
	CreateUser(ctx context.Context, tx pgx.Tx, u entities.User) (int64, error)
	UpdateUser(ctx context.Context, tx pgx.Tx, u entities.User) error

	CreateLogin(ctx context.Context, tx pgx.Tx, l entities.Login) (int64, error)
	UpdateLogin(ctx context.Context, tx pgx.Tx, l entities.Login) error
	FindLoginByUserID(ctx context.Context, userID int64) (entities.Login, error)
	GetLogins(ctx context.Context, role entities.Role, organizationID int64, filter types.Filter) (types.ListResult[entities.LoginUser], error)
	FindLogin(ctx context.Context, id int64, role entities.Role) (entities.LoginUser, error)
}

type LoginRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewLoginRepository(storage *pgxpool.Pool, logger *zap.Logger) LoginRepositoryInterface {
	return &LoginRepository{storage: storage, logger: logger}
}

const (
	userColumns      = "u.id, u.username, u.password_hash, u.last_name, u.first_name, u.created_at"
	loginUserColumns = "l.id, l.guid, l.user_id, l.role, l.organization_id, l.dropped_at, u.username, u.last_name, u.first_name"
)

func scanUser(row pgx.Row) (entities.User, error) {
	var u entities.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.LastName, &u.FirstName, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, apperrors.ErrNotFound
	}
	if err != nil {
		return u, fmt.Errorf("ошибка сканирования user: %w", err)
	}
	return u, nil
}

func scanLoginUser(row pgx.Row) (entities.LoginUser, error) {
	var l entities.LoginUser
	err := row.Scan(&l.ID, &l.GUID, &l.UserID, &l.Role, &l.OrganizationID, &l.DroppedAt,
		&l.Username, &l.LastName, &l.FirstName)
	if errors.Is(err, pgx.ErrNoRows) {
		return l, apperrors.ErrNotFound
	}
	if err != nil {
		return l, fmt.Errorf("ошибка сканирования login: %w", err)
	}
	return l, nil
}

func (r *LoginRepository) FindUserByUsername(ctx context.Context, username string) (entities.User, error) {
	query, args, err := sq.Select(userColumns).From("users AS u").
		Where(sq.Eq{"u.username": username}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return entities.User{}, err
	}
	return scanUser(r.storage.QueryRow(ctx, query, args...))
}

func (r *LoginRepository) FindUserByID(ctx context.Context, id int64) (entities.User, error) {
	query, args, err := sq.Select(userColumns).From("users AS u").
		Where(sq.Eq{"u.id": id}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return entities.User{}, err
	}
	return scanUser(r.storage.QueryRow(ctx, query, args...))
}

func (r *LoginRepository) ExistsByUsername(ctx context.Context, tx pgx.Tx, username string, excludeID int64) (bool, error) {
	query, args, err := sq.Select("1").From("users").
		Where(sq.Eq{"username": username}).
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

func (r *LoginRepository) CreateUser(ctx context.Context, tx pgx.Tx, u entities.User) (int64, error) {
	query, args, err := sq.Insert("users").
		Columns("username", "password_hash", "last_name", "first_name").
		Values(u.Username, u.PasswordHash, u.LastName, u.FirstName).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return id, nil
}

func (r *LoginRepository) UpdateUser(ctx context.Context, tx pgx.Tx, u entities.User) error {
	query, args, err := sq.Update("users").
		Set("username", u.Username).
		Set("password_hash", u.PasswordHash).
		Set("last_name", u.LastName).
		Set("first_name", u.FirstName).
		Where(sq.Eq{"id": u.ID}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка обновления пользователя: %w", err)
	}
	return nil
}

func (r *LoginRepository) CreateLogin(ctx context.Context, tx pgx.Tx, l entities.Login) (int64, error) {
	l.Normalize()
	query, args, err := sq.Insert("logins").
		Columns("guid", "user_id", "role", "organization_id").
		Values(l.GUID, l.UserID, l.Role, l.OrganizationID).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("ошибка создания логина: %w", err)
	}
	return id, nil
}

func (r *LoginRepository) UpdateLogin(ctx context.Context, tx pgx.Tx, l entities.Login) error {
	l.Normalize()
	query, args, err := sq.Update("logins").
		Set("role", l.Role).
		Set("organization_id", l.OrganizationID).
		Set("dropped_at", l.DroppedAt).
		Where(sq.Eq{"id": l.ID}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления логина: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindLoginByUserID ищет живой логин пользователя. Его отсутствие означает NEEDS_LOGIN.
func (r *LoginRepository) FindLoginByUserID(ctx context.Context, userID int64) (entities.Login, error) {
	query, args, err := sq.Select("id", "guid", "user_id", "role", "organization_id", "dropped_at").
		From("logins").
		Where(sq.Eq{"user_id": userID}).
		Where("dropped_at IS NULL").
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return entities.Login{}, err
	}
	var l entities.Login
	err = r.storage.QueryRow(ctx, query, args...).Scan(&l.ID, &l.GUID, &l.UserID, &l.Role, &l.OrganizationID, &l.DroppedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return l, apperrors.ErrNeedsLogin
	}
	if err != nil {
		return l, fmt.Errorf("ошибка чтения логина: %w", err)
	}
	return l, nil
}

func (r *LoginRepository) GetLogins(ctx context.Context, role entities.Role, organizationID int64, filter types.Filter) (types.ListResult[entities.LoginUser], error) {
	result := types.ListResult[entities.LoginUser]{Data: make([]entities.LoginUser, 0)}

	base := func(columns string) sq.SelectBuilder {
		b := sq.Select(columns).From("logins AS l").
			Join("users AS u ON u.id = l.user_id").
			Where(sq.Eq{"l.role": role, "l.organization_id": organizationID}).
			PlaceholderFormat(sq.Dollar)
		return withVisibility(b, "l.dropped_at", filter.Visibility)
	}
	search := func(b sq.SelectBuilder, params map[string]string) sq.SelectBuilder {
		if name, ok := params["name"]; ok && name != "" {
			pattern := "%" + escapeLike(name) + "%"
			b = b.Where(sq.Or{
				sq.Expr("u.username ILIKE ?", pattern),
				sq.Expr("concat_ws(' ', u.last_name, u.first_name) ILIKE ?", pattern),
			})
		}
		return b
	}

	var err error
	if result.BaseCount, err = count(ctx, r.storage, search(base("COUNT(*)"), filter.Base)); err != nil {
		return result, err
	}
	if result.FilteredCount, err = count(ctx, r.storage, search(search(base("COUNT(*)"), filter.Base), filter.Search)); err != nil {
		return result, err
	}

	dataQ := search(search(base(loginUserColumns), filter.Base), filter.Search).OrderBy("l.id DESC")
	if filter.WithPagination && filter.PerPage > 0 {
		dataQ = dataQ.Limit(uint64(filter.PerPage)).Offset(uint64(filter.Offset()))
	}
	query, args, err := dataQ.ToSql()
	if err != nil {
		return result, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return result, fmt.Errorf("ошибка запроса логинов: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		l, err := scanLoginUser(rows)
		if err != nil {
			return result, err
		}
		result.Data = append(result.Data, l)
	}
	return result, rows.Err()
}

func (r *LoginRepository) FindLogin(ctx context.Context, id int64, role entities.Role) (entities.LoginUser, error) {
	query, args, err := sq.Select(loginUserColumns).From("logins AS l").
		Join("users AS u ON u.id = l.user_id").
		Where(sq.Eq{"l.id": id, "l.role": role}).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return entities.LoginUser{}, err
	}
	return scanLoginUser(r.storage.QueryRow(ctx, query, args...))
}
