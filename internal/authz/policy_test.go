package authz

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"

	"access-control/internal/entities"
	apperrors "access-control/pkg/errors"
)

func principal(role entities.Role, org int64) Principal {
	p := Principal{UserID: 1, Role: role}
	if org != 0 {
		p.OrganizationID = null.Int64From(org)
	}
	return p
}

func TestCapabilityTable(t *testing.T) {
	admin := principal(entities.RoleAdmin, 0)
	registrator := principal(entities.RoleRegistrator, 3)
	controller := principal(entities.RoleController, 3)

	tests := []struct {
		name string
		p    Principal
		r    Resource
		a    Action
		want bool
	}{
		{"админ восстанавливает организацию в любое время", admin, ResourceOrganization, RestoreAnyTime, true},
		{"админ не видит подразделения", admin, ResourceDepartment, Read, false},
		{"регистратор читает свою организацию", registrator, ResourceOrganization, Read, true},
		{"регистратор не меняет организацию", registrator, ResourceOrganization, Update, false},
		{"регистратор создаёт проходную", registrator, ResourceCheckpoint, Create, true},
		{"регистратор не удаляет проходную", registrator, ResourceCheckpoint, Delete, false},
		{"регистратор удаляет сотрудника", registrator, ResourceEmployee, Delete, true},
		{"регистратор без восстановления в любое время", registrator, ResourceEmployee, RestoreAnyTime, false},
		{"регистратор не смотрит отчёт", registrator, ResourceReport, Read, false},
		{"контролёр смотрит отчёт", controller, ResourceReport, Read, true},
		{"контролёр только читает устройства", controller, ResourceDevice, Create, false},
		{"админ управляет регистраторами", admin, ResourceRegistrator, Create, true},
		{"админ не управляет контролёрами", admin, ResourceController, Create, false},
		{"регистратор управляет контролёрами", registrator, ResourceController, Update, true},
		{"нет роли", principal(entities.RoleNone, 0), ResourceEmployee, Read, false},
		{"контролёр без организации", principal(entities.RoleController, 0), ResourceEmployee, Read, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.p, tt.r, tt.a))
		})
	}
}

func TestRequireWrapsForbidden(t *testing.T) {
	err := Require(principal(entities.RoleController, 1), ResourceEmployee, Update)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.NoError(t, Require(principal(entities.RoleAdmin, 0), ResourceEmployee, Update|Delete))
}

func TestPrincipalOrgID(t *testing.T) {
	assert.Equal(t, int64(0), principal(entities.RoleAdmin, 0).OrgID())
	assert.Equal(t, int64(5), principal(entities.RoleController, 5).OrgID())

	// у админа организация игнорируется
	p := principal(entities.RoleAdmin, 5)
	assert.Equal(t, int64(0), p.OrgID())
}

func TestFromContextWithoutPrincipal(t *testing.T) {
	_, err := FromContext(t.Context())
	assert.ErrorIs(t, err, apperrors.ErrNeedsLogin)

	ctx := WithPrincipal(t.Context(), principal(entities.RoleAdmin, 0))
	p, err := FromContext(ctx)
	assert.NoError(t, err)
	assert.True(t, p.IsAdmin())
}
