package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"access-control/internal/repositories"
	apperrors "access-control/pkg/errors"
)

func TestPlanAddMergesTombstones(t *testing.T) {
	dropped := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	admissible := map[int64]bool{10: true, 11: true, 12: true}
	states := map[int64]*time.Time{10: nil, 11: &dropped}

	plan := PlanAdd([]int64{99, 12, 11, 10}, admissible, states)
	assert.Equal(t, []int64{12}, plan.Insert)
	assert.Equal(t, []int64{11}, plan.Restore)
	assert.Empty(t, plan.Drop)
	assert.Equal(t, []int64{10, 11, 12}, plan.Success)
	assert.Equal(t, []int64{99}, plan.Failure)
}

func TestPlanRemove(t *testing.T) {
	dropped := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	admissible := map[int64]bool{10: true, 11: true, 12: true}
	states := map[int64]*time.Time{10: nil, 11: &dropped}

	plan := PlanRemove([]int64{10, 11, 12, 99}, admissible, states)
	assert.Equal(t, []int64{10}, plan.Drop)
	assert.Equal(t, []int64{10, 11}, plan.Success)
	assert.Equal(t, []int64{12, 99}, plan.Failure)
}

func newRelationService(entityRepo *mockEntityRepo, relationRepo *mockRelationRepo) *RelationService {
	entityRepo.registry = repositories.DefaultRegistry()
	return NewRelationService(&fakeTx{}, entityRepo, relationRepo, zap.NewNop())
}

func TestRelationAddDevicesToOrganization(t *testing.T) {
	dropped := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ids := []int64{10, 11, 12, 99}

	entityRepo := &mockEntityRepo{}
	entityRepo.On("Admissible", repositories.EntityOrganizations, []int64{1}).Return(map[int64]bool{1: true}, nil)
	entityRepo.On("Admissible", repositories.EntityDevices, ids).Return(map[int64]bool{10: true, 11: true, 12: true}, nil)

	relationRepo := &mockRelationRepo{}
	relationRepo.On("LinkStates", int64(1), ids).Return(map[int64]*time.Time{10: nil, 11: &dropped}, nil)
	relationRepo.On("SetDropped", "dropped", int64(1), []int64{11}, false).Return(nil)
	relationRepo.On("Insert", "insert", int64(1), []int64{12}).Return(nil)

	res, err := newRelationService(entityRepo, relationRepo).
		Add(context.Background(), admin(), repositories.EntityOrganizations, 1, repositories.EntityDevices, ids)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 12}, res.Success)
	assert.Equal(t, []int64{99}, res.Failure)
	relationRepo.AssertExpectations(t)
}

func TestRelationMasterOutOfScope(t *testing.T) {
	entityRepo := &mockEntityRepo{}
	entityRepo.On("Admissible", repositories.EntityOrganizations, []int64{5}).Return(map[int64]bool{}, nil)

	_, err := newRelationService(entityRepo, &mockRelationRepo{}).
		Remove(context.Background(), admin(), repositories.EntityOrganizations, 5, repositories.EntityDevices, []int64{10})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRelationUnknownPair(t *testing.T) {
	_, err := newRelationService(&mockEntityRepo{}, &mockRelationRepo{}).
		Add(context.Background(), admin(), repositories.EntityCheckpoints, 1, repositories.EntityDevices, []int64{1})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
