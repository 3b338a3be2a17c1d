package services

import (
	"context"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"access-control/internal/authz"
	"access-control/internal/entities"
	"access-control/internal/repositories"
	"access-control/pkg/devicebus"
	"access-control/pkg/types"
)

// fakeTx выполняет fn без базы.
type fakeTx struct{ calls int }

func (f *fakeTx) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	return fn(nil)
}

func (f *fakeTx) RunInReadTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	return fn(nil)
}

type mockEntityRepo struct {
	mock.Mock
	registry *repositories.Registry
}

func (m *mockEntityRepo) Registry() *repositories.Registry { return m.registry }

func (m *mockEntityRepo) DroppedAt(ctx context.Context, tx pgx.Tx, d *repositories.EntityDescriptor, p authz.Principal, id int64) (*time.Time, error) {
	args := m.Called(d.Name, id)
	at, _ := args.Get(0).(*time.Time)
	return at, args.Error(1)
}

func (m *mockEntityRepo) SetDroppedAt(ctx context.Context, tx pgx.Tx, d *repositories.EntityDescriptor, p authz.Principal, id int64, at *time.Time) error {
	return m.Called(d.Name, id, at != nil).Error(0)
}

func (m *mockEntityRepo) Admissible(ctx context.Context, tx pgx.Tx, d *repositories.EntityDescriptor, p authz.Principal, ids []int64) (map[int64]bool, error) {
	args := m.Called(d.Name, ids)
	ok, _ := args.Get(0).(map[int64]bool)
	return ok, args.Error(1)
}

func (m *mockEntityRepo) Count(ctx context.Context, d *repositories.EntityDescriptor, p authz.Principal) (uint64, error) {
	args := m.Called(d.Name)
	return args.Get(0).(uint64), args.Error(1)
}

type mockRelationRepo struct {
	mock.Mock
}

func (m *mockRelationRepo) Related(ctx context.Context, p authz.Principal, rel *repositories.RelationDescriptor, masterID int64, linked bool, filter types.Filter) (types.ListResult[interface{}], error) {
	args := m.Called(masterID, linked)
	return args.Get(0).(types.ListResult[interface{}]), args.Error(1)
}

func (m *mockRelationRepo) LinkStates(ctx context.Context, tx pgx.Tx, rel *repositories.RelationDescriptor, masterID int64, slaveIDs []int64) (map[int64]*time.Time, error) {
	args := m.Called(masterID, slaveIDs)
	states, _ := args.Get(0).(map[int64]*time.Time)
	return states, args.Error(1)
}

func (m *mockRelationRepo) Insert(ctx context.Context, tx pgx.Tx, rel *repositories.RelationDescriptor, masterID int64, slaveIDs []int64) error {
	return m.Called("insert", masterID, slaveIDs).Error(0)
}

func (m *mockRelationRepo) SetDropped(ctx context.Context, tx pgx.Tx, rel *repositories.RelationDescriptor, masterID int64, slaveIDs []int64, at *time.Time) error {
	return m.Called("dropped", masterID, slaveIDs, at != nil).Error(0)
}

func (m *mockRelationRepo) LinkToOrganization(ctx context.Context, tx pgx.Tx, d *repositories.EntityDescriptor, organizationID, id int64) error {
	return m.Called(d.Name, organizationID, id).Error(0)
}

type mockBus struct {
	mock.Mock
}

func (m *mockBus) Execute(ctx context.Context, device string, cmd devicebus.Command, stop devicebus.StopCheck) (devicebus.Response, error) {
	args := m.Called(device, cmd.Line)
	return args.Get(0).(devicebus.Response), args.Error(1)
}

type mockDeviceRepo struct {
	mock.Mock
	repositories.DeviceRepositoryInterface
}

func (m *mockDeviceRepo) FindDevice(ctx context.Context, p authz.Principal, id int64, v types.Visibility) (entities.Device, error) {
	args := m.Called(id)
	return args.Get(0).(entities.Device), args.Error(1)
}

type mockEmployeeRepo struct {
	mock.Mock
	repositories.EmployeeRepositoryInterface
}

func (m *mockEmployeeRepo) FindEmployee(ctx context.Context, p authz.Principal, id int64, v types.Visibility) (entities.Employee, error) {
	args := m.Called(id)
	return args.Get(0).(entities.Employee), args.Error(1)
}

type mockTemplateRepo struct {
	mock.Mock
	repositories.TemplateRepositoryInterface
}

func (m *mockTemplateRepo) Create(ctx context.Context, tx pgx.Tx, t entities.IdentificationTemplate) (int64, error) {
	args := m.Called(t.EmployeeID, t.AlgorithmType)
	return args.Get(0).(int64), args.Error(1)
}

func admin() authz.Principal {
	return authz.Principal{UserID: 1, Role: entities.RoleAdmin}
}

func registrator(org int64) authz.Principal {
	return authz.Principal{UserID: 2, Role: entities.RoleRegistrator, OrganizationID: null.Int64From(org)}
}

func timePtr(t time.Time) *time.Time { return &t }
