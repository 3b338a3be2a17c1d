package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"access-control/internal/authz"
	"access-control/internal/dto"
	"access-control/internal/entities"
	"access-control/internal/repositories"
	"access-control/pkg/types"
)

type CheckpointService struct {
	txManager      repositories.TxManagerInterface
	checkpointRepo repositories.CheckpointRepositoryInterface
	relationRepo   repositories.RelationRepositoryInterface
	logger         *zap.Logger
}

func NewCheckpointService(
	txManager repositories.TxManagerInterface,
	checkpointRepo repositories.CheckpointRepositoryInterface,
	relationRepo repositories.RelationRepositoryInterface,
	logger *zap.Logger,
) *CheckpointService {
	return &CheckpointService{
		txManager:      txManager,
		checkpointRepo: checkpointRepo,
		relationRepo:   relationRepo,
		logger:         logger,
	}
}

func (s *CheckpointService) GetCheckpoints(ctx context.Context, p authz.Principal, filter types.Filter) (types.ListResult[dto.CheckpointDTO], error) {
	out := types.ListResult[dto.CheckpointDTO]{Data: []dto.CheckpointDTO{}}
	if err := authz.Require(p, authz.ResourceCheckpoint, authz.Read); err != nil {
		return out, err
	}
	res, err := s.checkpointRepo.GetCheckpoints(ctx, p, filter)
	if err != nil {
		s.logger.Error("Ошибка при получении списка проходных", zap.Error(err))
		return out, err
	}
	out.BaseCount, out.FilteredCount = res.BaseCount, res.FilteredCount
	for _, c := range res.Data {
		out.Data = append(out.Data, dto.CheckpointFromEntity(c))
	}
	return out, nil
}

func (s *CheckpointService) FindCheckpoint(ctx context.Context, p authz.Principal, id int64, v types.Visibility) (*dto.CheckpointDTO, error) {
	if err := authz.Require(p, authz.ResourceCheckpoint, authz.Read); err != nil {
		return nil, err
	}
	c, err := s.checkpointRepo.FindCheckpoint(ctx, p, id, v)
	if err != nil {
		return nil, err
	}
	res := dto.CheckpointFromEntity(c)
	return &res, nil
}

func (s *CheckpointService) CreateCheckpoint(ctx context.Context, p authz.Principal, in dto.CreateCheckpointDTO) (*dto.CheckpointDTO, error) {
	if err := authz.Require(p, authz.ResourceCheckpoint, authz.Create); err != nil {
		return nil, err
	}
	c := entities.Checkpoint{
		Name:        trimmed(&in.Name),
		Rights:      in.Rights,
		Description: in.Description,
	}

	var newID int64
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		exists, err := s.checkpointRepo.ExistsByName(ctx, tx, c.Name, 0)
		if err != nil {
			return err
		}
		if exists {
			return conflict("Name", "проходная с таким названием уже существует")
		}
		if newID, err = s.checkpointRepo.Create(ctx, tx, c); err != nil {
			return uniqueOr(err, "Name", "проходная с таким названием уже существует")
		}
		return linkToOrganization(ctx, tx, s.relationRepo, p, repositories.CheckpointDescriptor, newID)
	})
	if err != nil {
		s.logger.Error("Ошибка при создании проходной", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Проходная создана", zap.Int64("id", newID), zap.Int64("userID", p.UserID))
	return s.FindCheckpoint(ctx, p, newID, types.VisibilityAll)
}

func (s *CheckpointService) UpdateCheckpoint(ctx context.Context, p authz.Principal, id int64, in dto.UpdateCheckpointDTO) (*dto.CheckpointDTO, error) {
	if err := authz.Require(p, authz.ResourceCheckpoint, authz.Update); err != nil {
		return nil, err
	}
	c, err := s.checkpointRepo.FindCheckpoint(ctx, p, id, types.VisibilityLive)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		c.Name = trimmed(in.Name)
	}
	if in.Rights != nil {
		c.Rights = *in.Rights
	}
	if in.Description != nil {
		c.Description = *in.Description
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		exists, err := s.checkpointRepo.ExistsByName(ctx, tx, c.Name, id)
		if err != nil {
			return err
		}
		if exists {
			return conflict("Name", "проходная с таким названием уже существует")
		}
		return uniqueOr(s.checkpointRepo.Update(ctx, tx, c), "Name", "проходная с таким названием уже существует")
	})
	if err != nil {
		s.logger.Error("Ошибка при обновлении проходной", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return s.FindCheckpoint(ctx, p, id, types.VisibilityAll)
}
