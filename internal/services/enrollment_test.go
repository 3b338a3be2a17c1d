package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"access-control/internal/dto"
	"access-control/internal/entities"
	"access-control/pkg/devicebus"
	apperrors "access-control/pkg/errors"
)

type enrollFixture struct {
	bus       *mockBus
	devices   *mockDeviceRepo
	employees *mockEmployeeRepo
	templates *mockTemplateRepo
	service   *EnrollmentService
}

func newEnrollFixture() *enrollFixture {
	f := &enrollFixture{
		bus:       &mockBus{},
		devices:   &mockDeviceRepo{},
		employees: &mockEmployeeRepo{},
		templates: &mockTemplateRepo{},
	}
	f.devices.On("FindDevice", int64(3)).Return(entities.Device{ID: 3, MQTT: "M"}, nil)
	f.employees.On("FindEmployee", int64(17)).
		Return(entities.Employee{ID: 17, LastName: "Петров", FirstName: "Пётр", Patronymic: "Петрович"}, nil)
	f.service = NewEnrollmentService(&fakeTx{}, f.bus, f.devices, f.employees, f.templates, zap.NewNop())
	return f
}

func faceEnroll() dto.EnrollDTO {
	return dto.EnrollDTO{Device: 3, Kind: "face", Photo: base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8})}
}

func TestEnrollDuplicate(t *testing.T) {
	f := newEnrollFixture()
	raw := "!DUPLICATE,0,Ivanov,Ivan,Ivanovich,42"
	f.bus.On("Execute", "M", "!FACE_ENROLL,0,Петров,Пётр,Петрович").
		Return(devicebus.Response{Kind: devicebus.KindDuplicate, Raw: raw, EmployeeID: 42}, nil)

	res, err := f.service.Enroll(context.Background(), registrator(1), 17, faceEnroll())
	require.NoError(t, err)
	assert.Equal(t, &dto.EnrollResultDTO{Success: false, Employee: 42, Comment: raw}, res)
	f.templates.AssertNotCalled(t, "Create", int64(17), entities.AlgorithmFace)
}

func TestEnrollBrokerUnreachable(t *testing.T) {
	f := newEnrollFixture()
	f.bus.On("Execute", "M", "!FACE_ENROLL,0,Петров,Пётр,Петрович").
		Return(devicebus.Response{}, fmt.Errorf("%w: connection refused", apperrors.ErrBrokerUnreachable))

	res, err := f.service.Enroll(context.Background(), registrator(1), 17, faceEnroll())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Не удается подключиться к серверу", res.Comment)
}

func TestEnrollOKStoresTemplate(t *testing.T) {
	f := newEnrollFixture()
	f.bus.On("Execute", "M", "!IDENROLL,0,Петров,Пётр,Петрович,0001").
		Return(devicebus.Response{Kind: devicebus.KindEnrollOK, Raw: "!ENROLL_OK,0,Петров,Пётр,Петрович,17", EmployeeID: 17}, nil)
	f.templates.On("Create", int64(17), entities.AlgorithmCard).Return(int64(100), nil)

	res, err := f.service.Enroll(context.Background(), admin(), 17, dto.EnrollDTO{Device: 3, Kind: "card", Card: "0001"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int64(17), res.Employee)
	f.templates.AssertExpectations(t)
}

func TestEnrollDeviceBusyIsError(t *testing.T) {
	f := newEnrollFixture()
	f.bus.On("Execute", "M", "!FACE_ENROLL,0,Петров,Пётр,Петрович").Return(devicebus.Response{}, apperrors.ErrDeviceBusy)

	_, err := f.service.Enroll(context.Background(), registrator(1), 17, faceEnroll())
	assert.ErrorIs(t, err, apperrors.ErrDeviceBusy)
}

func TestEnrollRequiresPayload(t *testing.T) {
	f := newEnrollFixture()
	_, err := f.service.Enroll(context.Background(), registrator(1), 17, dto.EnrollDTO{Device: 3, Kind: "finger"})

	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	f.bus.AssertNotCalled(t, "Execute", "M", "!ENROLL,0,Петров,Пётр,Петрович")
}

func TestSearchFindsEmployeeInScope(t *testing.T) {
	f := newEnrollFixture()
	f.bus.On("Execute", "M", "!FACE_SEARCH,0,").
		Return(devicebus.Response{Kind: devicebus.KindSearchOK, Raw: "!SEARCH_OK,0,Петров,Пётр,Петрович,17", EmployeeID: 17}, nil)

	res, err := f.service.Search(context.Background(), registrator(1), 3,
		dto.SearchDTO{Device: 3, Photo: base64.StdEncoding.EncodeToString([]byte{1, 2})})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "Петров Пётр Петрович", res.Employee.FullName)
}

func TestSearchEmployeeOutOfScope(t *testing.T) {
	f := newEnrollFixture()
	f.bus.On("Execute", "M", "!FACE_SEARCH,0,").
		Return(devicebus.Response{Kind: devicebus.KindSearchOK, EmployeeID: 99}, nil)
	f.employees.On("FindEmployee", int64(99)).Return(entities.Employee{}, apperrors.ErrNotFound)

	res, err := f.service.Search(context.Background(), registrator(1), 3,
		dto.SearchDTO{Device: 3, Photo: base64.StdEncoding.EncodeToString([]byte{1})})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Nil(t, res.Employee)
}

func TestEnrollForbiddenForController(t *testing.T) {
	p := registrator(1)
	p.Role = entities.RoleController
	_, err := newEnrollFixture().service.Enroll(context.Background(), p, 17, faceEnroll())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
