package services

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"access-control/internal/authz"
	"access-control/internal/repositories"
	apperrors "access-control/pkg/errors"
)

func conflict(field, reason string) error {
	return apperrors.NewValidationError(field, reason)
}

// uniqueOr переводит нарушение уникального индекса в ошибку валидации поля.
func uniqueOr(err error, field, reason string) error {
	if repositories.IsUniqueViolation(err) {
		return conflict(field, reason)
	}
	return err
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// linkToOrganization привязывает новую запись к организации принципала с областью.
func linkToOrganization(ctx context.Context, tx pgx.Tx, relationRepo repositories.RelationRepositoryInterface, p authz.Principal, d *repositories.EntityDescriptor, id int64) error {
	org := p.OrgID()
	if org == 0 {
		return nil
	}
	return relationRepo.LinkToOrganization(ctx, tx, d, org, id)
}
