package repositories

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"access-control/internal/entities"
	apperrors "access-control/pkg/errors"
	"access-control/pkg/database/postgresql"
	"access-control/pkg/types"
)

var testPool *pgxpool.Pool

// TestMain подключается к тестовой БД из TEST_DATABASE_URL и применяет миграции.
// Без переменной интеграционные тесты пропускаются.
func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn != "" {
		ctx := context.Background()
		var err error
		testPool, err = postgresql.ConnectDB(ctx, dsn, zap.NewNop())
		if err != nil {
			log.Fatalf("Не удалось подключиться к тестовой БД: %v", err)
		}
		if err := postgresql.Migrate(ctx, testPool, "", zap.NewNop()); err != nil {
			log.Fatalf("Не удалось применить миграции: %v", err)
		}
	}

	code := m.Run()
	if testPool != nil {
		testPool.Close()
	}
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL не задан")
	}
}

// cleanupTables очищает таблицы для изоляции тестов.
func cleanupTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(), `TRUNCATE TABLE
		employee2organization, employee2department, device2organization, checkpoint2organization,
		identification_templates, identification_events, logins, users, devices, checkpoints, departments, employees, organizations
		RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "Не удалось очистить таблицы")
}

func seedOrganization(t *testing.T, name string) int64 {
	t.Helper()
	var id int64
	err := testPool.QueryRow(context.Background(),
		`INSERT INTO organizations (guid, name) VALUES ($1, $2) RETURNING id`, uuid.New(), name).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedEmployee(t *testing.T, lastName string, orgID int64) int64 {
	t.Helper()
	ctx := context.Background()
	var id int64
	err := testPool.QueryRow(ctx,
		`INSERT INTO employees (guid, last_name, first_name) VALUES ($1, $2, 'Тест') RETURNING id`, uuid.New(), lastName).Scan(&id)
	require.NoError(t, err)
	_, err = testPool.Exec(ctx,
		`INSERT INTO employee2organization (employee_id, organization_id) VALUES ($1, $2)`, id, orgID)
	require.NoError(t, err)
	return id
}

func TestQueryEngine_Integration_ScopeAndSoftDelete(t *testing.T) {
	requireDB(t)
	cleanupTables(t)
	ctx := context.Background()

	org := seedOrganization(t, "Первая")
	other := seedOrganization(t, "Вторая")
	ivanov := seedEmployee(t, "Иванов", org)
	petrov := seedEmployee(t, "Петров", other)

	registrator := testRegistrator
	registrator.OrganizationID.Int64 = org

	all, err := List[entities.Employee](ctx, testPool, EmployeeDescriptor, testAdmin, types.Filter{}, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), all.BaseCount)
	require.Len(t, all.Data, 2)
	assert.Equal(t, petrov, all.Data[0].ID, "сортировка по id по убыванию")

	scopedList, err := List[entities.Employee](ctx, testPool, EmployeeDescriptor, registrator, types.Filter{}, nil)
	require.NoError(t, err)
	require.Len(t, scopedList.Data, 1)
	assert.Equal(t, ivanov, scopedList.Data[0].ID)

	_, err = Retrieve[entities.Employee](ctx, testPool, EmployeeDescriptor, registrator, petrov, types.VisibilityLive)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	admissible, err := AdmissibleIDs(ctx, testPool, EmployeeDescriptor, registrator, []int64{ivanov, petrov})
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{ivanov: true}, admissible)

	// удаление регистратором гасит только связь с его организацией
	now := time.Now().UTC()
	require.NoError(t, SetDroppedAt(ctx, testPool, EmployeeDescriptor, registrator, ivanov, &now))

	dropped, err := DroppedAt(ctx, testPool, EmployeeDescriptor, registrator, ivanov)
	require.NoError(t, err)
	require.NotNil(t, dropped)

	entityDropped, err := DroppedAt(ctx, testPool, EmployeeDescriptor, testAdmin, ivanov)
	require.NoError(t, err)
	assert.Nil(t, entityDropped)

	live, err := Count(ctx, testPool, EmployeeDescriptor, registrator, types.VisibilityLive)
	require.NoError(t, err)
	assert.Zero(t, live)
	deleted, err := Count(ctx, testPool, EmployeeDescriptor, registrator, types.VisibilityDeletedOnly)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), deleted)

	err = SetDroppedAt(ctx, testPool, EmployeeDescriptor, registrator, petrov, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestQueryEngine_Integration_Search(t *testing.T) {
	requireDB(t)
	cleanupTables(t)
	ctx := context.Background()

	org := seedOrganization(t, "Поиск")
	seedEmployee(t, "Сидоров", org)
	seedEmployee(t, "Смирнов", org)

	res, err := List[entities.Employee](ctx, testPool, EmployeeDescriptor, testAdmin, types.Filter{
		Search: map[string]string{"name": "Сидор"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.BaseCount)
	assert.Equal(t, uint64(1), res.FilteredCount)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Сидоров", res.Data[0].LastName)

	exists, err := ExistsByColumn(ctx, testPool, OrganizationDescriptor, "name", "Поиск", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = ExistsByColumn(ctx, testPool, OrganizationDescriptor, "name", "Поиск", org)
	require.NoError(t, err)
	assert.False(t, exists, "запись не конфликтует сама с собой")
}
