package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"access-control/internal/authz"
	"access-control/internal/dto"
	"access-control/internal/repositories"
	apperrors "access-control/pkg/errors"
	"access-control/pkg/types"
)

// RelationPlan: что сделать со строками связи за один запрос.
type RelationPlan struct {
	Insert  []int64
	Restore []int64
	Drop    []int64
	Success []int64
	Failure []int64
}

// PlanAdd вставляет новые строки и восстанавливает удалённые. Живые остаются как есть.
// Недопустимые для принципала id попадают в failure.
func PlanAdd(ids []int64, admissible map[int64]bool, states map[int64]*time.Time) RelationPlan {
	var plan RelationPlan
	for _, id := range ids {
		if !admissible[id] {
			plan.Failure = append(plan.Failure, id)
			continue
		}
		dropped, exists := states[id]
		switch {
		case !exists:
			plan.Insert = append(plan.Insert, id)
		case dropped != nil:
			plan.Restore = append(plan.Restore, id)
		}
		plan.Success = append(plan.Success, id)
	}
	plan.sort()
	return plan
}

// PlanRemove помечает живые строки удалёнными. Уже удалённые считаются успехом.
// Отсутствующая связь или недопустимый id, failure.
func PlanRemove(ids []int64, admissible map[int64]bool, states map[int64]*time.Time) RelationPlan {
	var plan RelationPlan
	for _, id := range ids {
		dropped, exists := states[id]
		if !admissible[id] || !exists {
			plan.Failure = append(plan.Failure, id)
			continue
		}
		if dropped == nil {
			plan.Drop = append(plan.Drop, id)
		}
		plan.Success = append(plan.Success, id)
	}
	plan.sort()
	return plan
}

func (p *RelationPlan) sort() {
	for _, s := range [][]int64{p.Insert, p.Restore, p.Drop, p.Success, p.Failure} {
		sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
	}
}

func (p RelationPlan) result() *dto.RelationResultDTO {
	res := &dto.RelationResultDTO{Success: p.Success, Failure: p.Failure}
	if res.Success == nil {
		res.Success = []int64{}
	}
	if res.Failure == nil {
		res.Failure = []int64{}
	}
	return res
}

type RelationService struct {
	txManager    repositories.TxManagerInterface
	entityRepo   repositories.EntityRepositoryInterface
	relationRepo repositories.RelationRepositoryInterface
	now          func() time.Time
	logger       *zap.Logger
}

func NewRelationService(
	txManager repositories.TxManagerInterface,
	entityRepo repositories.EntityRepositoryInterface,
	relationRepo repositories.RelationRepositoryInterface,
	logger *zap.Logger,
) *RelationService {
	return &RelationService{
		txManager:    txManager,
		entityRepo:   entityRepo,
		relationRepo: relationRepo,
		now:          time.Now,
		logger:       logger,
	}
}

func (s *RelationService) relation(master, slave string) (*repositories.RelationDescriptor, error) {
	return s.entityRepo.Registry().Relation(master, slave)
}

// Related возвращает подчинённые записи, связанные с master (linked) или ещё не связанные.
func (s *RelationService) Related(ctx context.Context, p authz.Principal, master string, masterID int64, slave string, linked bool, filter types.Filter) (types.ListResult[interface{}], error) {
	rel, err := s.relation(master, slave)
	if err != nil {
		return types.ListResult[interface{}]{}, err
	}
	if err := authz.Require(p, rel.Slave.Resource, authz.Read); err != nil {
		return types.ListResult[interface{}]{}, err
	}
	if err := s.checkMaster(ctx, nil, p, rel, masterID); err != nil {
		return types.ListResult[interface{}]{}, err
	}
	return s.relationRepo.Related(ctx, p, rel, masterID, linked, filter)
}

func (s *RelationService) Add(ctx context.Context, p authz.Principal, master string, masterID int64, slave string, ids []int64) (*dto.RelationResultDTO, error) {
	return s.apply(ctx, p, master, masterID, slave, ids, true)
}

func (s *RelationService) Remove(ctx context.Context, p authz.Principal, master string, masterID int64, slave string, ids []int64) (*dto.RelationResultDTO, error) {
	return s.apply(ctx, p, master, masterID, slave, ids, false)
}

func (s *RelationService) checkMaster(ctx context.Context, tx pgx.Tx, p authz.Principal, rel *repositories.RelationDescriptor, masterID int64) error {
	ok, err := s.entityRepo.Admissible(ctx, tx, rel.Master, p, []int64{masterID})
	if err != nil {
		return err
	}
	if !ok[masterID] {
		return fmt.Errorf("%w: %s %d", apperrors.ErrNotFound, rel.Master.Name, masterID)
	}
	return nil
}

func (s *RelationService) apply(ctx context.Context, p authz.Principal, master string, masterID int64, slave string, ids []int64, add bool) (*dto.RelationResultDTO, error) {
	rel, err := s.relation(master, slave)
	if err != nil {
		return nil, err
	}
	if err := authz.Require(p, rel.Resource, authz.Update); err != nil {
		return nil, err
	}

	var plan RelationPlan
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.checkMaster(ctx, tx, p, rel, masterID); err != nil {
			return err
		}
		admissible, err := s.entityRepo.Admissible(ctx, tx, rel.Slave, p, ids)
		if err != nil {
			return err
		}
		states, err := s.relationRepo.LinkStates(ctx, tx, rel, masterID, ids)
		if err != nil {
			return err
		}

		if !add {
			plan = PlanRemove(ids, admissible, states)
			now := s.now().UTC()
			return s.relationRepo.SetDropped(ctx, tx, rel, masterID, plan.Drop, &now)
		}
		plan = PlanAdd(ids, admissible, states)
		if err := s.relationRepo.SetDropped(ctx, tx, rel, masterID, plan.Restore, nil); err != nil {
			return err
		}
		return s.relationRepo.Insert(ctx, tx, rel, masterID, plan.Insert)
	})
	if err != nil {
		s.logger.Error("Ошибка изменения связей",
			zap.String("master", master), zap.Int64("masterID", masterID), zap.String("slave", slave), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Связи изменены",
		zap.String("master", master), zap.Int64("masterID", masterID), zap.String("slave", slave),
		zap.Bool("add", add), zap.Int64s("success", plan.Success), zap.Int64s("failure", plan.Failure))
	return plan.result(), nil
}
