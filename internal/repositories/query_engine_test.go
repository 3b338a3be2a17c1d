package repositories

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"access-control/internal/authz"
	"access-control/internal/entities"
	apperrors "access-control/pkg/errors"
	"access-control/pkg/types"
)

var (
	testAdmin       = authz.Principal{UserID: 1, Role: entities.RoleAdmin}
	testRegistrator = authz.Principal{UserID: 2, Role: entities.RoleRegistrator, OrganizationID: null.Int64From(7)}
)

func TestScopedAdminSeesEverything(t *testing.T) {
	sqlQuery, args, err := scoped(EmployeeDescriptor, testAdmin, "e.id").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT e.id FROM employees AS e", sqlQuery)
	assert.Empty(t, args)
	assert.Equal(t, "e.dropped_at", droppedExpr(EmployeeDescriptor, testAdmin))
}

func TestScopedLinkedEntityJoinsOrganizationLink(t *testing.T) {
	q := withVisibility(scoped(EmployeeDescriptor, testRegistrator, "e.id"),
		droppedExpr(EmployeeDescriptor, testRegistrator), types.VisibilityLive)
	sqlQuery, args, err := q.ToSql()
	require.NoError(t, err)

	assert.Contains(t, sqlQuery, "JOIN employee2organization AS eo ON eo.employee_id = e.id AND eo.organization_id = $1")
	assert.Contains(t, sqlQuery, "COALESCE(eo.dropped_at, e.dropped_at) IS NULL")
	assert.Equal(t, []interface{}{int64(7)}, args)
	assert.Equal(t, "eo.dropped_at", stateExpr(EmployeeDescriptor, testRegistrator))
}

func TestScopedOwnColumn(t *testing.T) {
	sqlQuery, args, err := scoped(DepartmentDescriptor, testRegistrator, "d.id").ToSql()
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, "WHERE d.organization_id = $1")
	assert.Equal(t, []interface{}{int64(7)}, args)

	sqlQuery, _, err = scoped(OrganizationDescriptor, testRegistrator, "o.id").ToSql()
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, "WHERE o.id = $1")
	assert.Equal(t, "o.dropped_at", stateExpr(OrganizationDescriptor, testRegistrator))
}

func TestWithVisibility(t *testing.T) {
	base := scoped(CheckpointDescriptor, testAdmin, "c.id")

	sqlQuery, _, _ := withVisibility(base, "c.dropped_at", types.VisibilityDeletedOnly).ToSql()
	assert.Contains(t, sqlQuery, "c.dropped_at IS NOT NULL")

	sqlQuery, _, _ = withVisibility(base, "c.dropped_at", types.VisibilityAll).ToSql()
	assert.NotContains(t, sqlQuery, "dropped_at")
}

func TestWithFilters(t *testing.T) {
	base := scoped(DeviceDescriptor, testAdmin, "dv.id")

	q, err := withFilters(base, DeviceDescriptor, map[string]string{"name": "50%_off", "unknown": "1"})
	require.NoError(t, err)
	sqlQuery, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, "(dv.name ILIKE $1 OR dv.mqtt ILIKE $2)")
	assert.Equal(t, []interface{}{`%50\%\_off%`, `%50\%\_off%`}, args)

	q, err = withFilters(base, DeviceDescriptor, map[string]string{"checkpoint": "3, 4"})
	require.NoError(t, err)
	sqlQuery, args, err = q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, "dv.checkpoint_id IN ($1,$2)")
	assert.Equal(t, []interface{}{int64(3), int64(4)}, args)

	_, err = withFilters(base, DeviceDescriptor, map[string]string{"checkpoint": "abc"})
	var vErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestLinkedToFilterRequiresLiveLink(t *testing.T) {
	q, err := withFilters(scoped(EmployeeDescriptor, testAdmin, "e.id"), EmployeeDescriptor,
		map[string]string{"department": "5"})
	require.NoError(t, err)
	sqlQuery, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, "employee2department AS lf")
	assert.Contains(t, sqlQuery, "lf.dropped_at IS NULL")
	assert.Equal(t, []interface{}{int64(5)}, args)
}

func TestRegistryRelations(t *testing.T) {
	r := DefaultRegistry()

	rel, err := r.Relation(EntityOrganizations, EntityDevices)
	require.NoError(t, err)
	assert.Equal(t, "device2organization", rel.LinkTable)
	assert.Equal(t, authz.ResourceDevice, rel.Resource)

	_, err = r.Relation(EntityCheckpoints, EntityDevices)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	keys := make([]string, 0)
	for _, rel := range r.Relations() {
		keys = append(keys, rel.Master.Name+"/"+rel.Slave.Name)
	}
	assert.Len(t, keys, 8)
	assert.IsIncreasing(t, keys)
}
