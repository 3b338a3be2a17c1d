package authz

import (
	"context"

	"github.com/aarondl/null/v8"

	"access-control/internal/entities"
	"access-control/pkg/contextkeys"
	apperrors "access-control/pkg/errors"
)

// Principal описывает аутентифицированного пользователя с ролью и областью организации.
// Передаётся явно в движок запросов и отчётов.
type Principal struct {
	UserID         int64         `json:"user_id"`
	LoginID        int64         `json:"login_id"`
	Username       string        `json:"username"`
	Role           entities.Role `json:"role"`
	OrganizationID null.Int64    `json:"organization"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == entities.RoleAdmin
}

// Scoped сообщает, ограничены ли запросы принципала одной организацией.
func (p Principal) Scoped() bool {
	return p.Role.OrganizationScoped()
}

// OrgID возвращает организацию принципала или 0.
func (p Principal) OrgID() int64 {
	if !p.Scoped() || !p.OrganizationID.Valid {
		return 0
	}
	return p.OrganizationID.Int64
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextkeys.PrincipalKey, p)
}

func FromContext(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(contextkeys.PrincipalKey).(Principal)
	if !ok {
		return Principal{}, apperrors.ErrNeedsLogin
	}
	return p, nil
}
