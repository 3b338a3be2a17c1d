package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"access-control/internal/dto"
	"access-control/internal/repositories"
	apperrors "access-control/pkg/errors"
)

func TestCheckRestoreWindow(t *testing.T) {
	dropped := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

	status, err := CheckRestore(&dropped, dropped.Add(4*time.Minute), DefaultRestoreWindow, false)
	require.NoError(t, err)
	assert.Equal(t, StatusRestorable, status)

	status, err = CheckRestore(&dropped, dropped.Add(6*time.Minute), DefaultRestoreWindow, false)
	assert.ErrorIs(t, err, apperrors.ErrExpiredTime)
	assert.Equal(t, StatusExpiredTime, status)

	status, err = CheckRestore(&dropped, dropped.Add(6*time.Minute), DefaultRestoreWindow, true)
	require.NoError(t, err)
	assert.Equal(t, StatusRestorable, status)

	// ровно на границе окна восстановление уже запрещено
	_, err = CheckRestore(&dropped, dropped.Add(DefaultRestoreWindow), DefaultRestoreWindow, false)
	assert.ErrorIs(t, err, apperrors.ErrExpiredTime)

	_, err = CheckRestore(nil, dropped, DefaultRestoreWindow, true)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyRestored)
}

func TestCheckRestoreComparesInUTC(t *testing.T) {
	dropped := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	msk := time.FixedZone("MSK", 3*3600)
	now := dropped.Add(2 * time.Minute).In(msk)

	_, err := CheckRestore(&dropped, now, DefaultRestoreWindow, false)
	assert.NoError(t, err)
}

func TestCheckDrop(t *testing.T) {
	status, err := CheckDrop(nil)
	require.NoError(t, err)
	assert.Equal(t, StatusDeletable, status)

	now := time.Now()
	status, err = CheckDrop(&now)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyDeleted)
	assert.Equal(t, StatusAlreadyDeleted, status)
}

func newSoftDelete(repo *mockEntityRepo, now time.Time) *SoftDeleteService {
	s := NewSoftDeleteService(&fakeTx{}, repo, 0, zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

func TestSoftDeleteDropRestoreScenario(t *testing.T) {
	d := repositories.OrganizationDescriptor
	dropped := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

	repo := &mockEntityRepo{}
	repo.On("DroppedAt", d.Name, int64(7)).Return(timePtr(dropped), nil)
	repo.On("SetDroppedAt", d.Name, int64(7), false).Return(nil)

	ctx := context.Background()
	restore := dto.SoftDeleteDTO{Restore: true}

	res, err := newSoftDelete(repo, dropped.Add(4*time.Minute)).Apply(ctx, admin(), d, 7, restore)
	require.NoError(t, err)
	assert.Equal(t, StatusRestorable, res.Status)

	_, err = newSoftDelete(repo, dropped.Add(6*time.Minute)).Apply(ctx, admin(), d, 7, restore)
	assert.ErrorIs(t, err, apperrors.ErrExpiredTime)

	restore.AnyTime = true
	res, err = newSoftDelete(repo, dropped.Add(6*time.Minute)).Apply(ctx, admin(), d, 7, restore)
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.ID)

	repo.AssertNumberOfCalls(t, "SetDroppedAt", 2)
}

func TestSoftDeleteDropLive(t *testing.T) {
	d := repositories.DeviceDescriptor
	repo := &mockEntityRepo{}
	repo.On("DroppedAt", d.Name, int64(3)).Return(nil, nil)
	repo.On("SetDroppedAt", d.Name, int64(3), true).Return(nil)

	res, err := newSoftDelete(repo, time.Now()).Apply(context.Background(), registrator(1), d, 3, dto.SoftDeleteDTO{Delete: true})
	require.NoError(t, err)
	assert.Equal(t, StatusDeletable, res.Status)
	repo.AssertExpectations(t)
}

func TestSoftDeleteAnyTimeIsAdminOnly(t *testing.T) {
	repo := &mockEntityRepo{}
	_, err := newSoftDelete(repo, time.Now()).Apply(context.Background(), registrator(1), repositories.DeviceDescriptor, 3,
		dto.SoftDeleteDTO{Restore: true, AnyTime: true})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	repo.AssertNotCalled(t, "DroppedAt", repositories.DeviceDescriptor.Name, int64(3))
}

func TestSoftDeleteControllerCannotDrop(t *testing.T) {
	p := registrator(1)
	p.Role = "controller"
	_, err := newSoftDelete(&mockEntityRepo{}, time.Now()).Apply(context.Background(), p, repositories.EmployeeDescriptor, 3,
		dto.SoftDeleteDTO{Delete: true})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
