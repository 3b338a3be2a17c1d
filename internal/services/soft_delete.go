package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"access-control/internal/authz"
	"access-control/internal/dto"
	"access-control/internal/repositories"
	apperrors "access-control/pkg/errors"
)

// Статусы автомата мягкого удаления.
const (
	StatusDeletable       = "DELETABLE"
	StatusAlreadyDeleted  = "ALREADY_DELETED"
	StatusRestorable      = "RESTORABLE"
	StatusAlreadyRestored = "ALREADY_RESTORED"
	StatusExpiredTime     = "EXPIRED_TIME"
)

// DefaultRestoreWindow: сколько после удаления запись можно восстановить без anyTime.
const DefaultRestoreWindow = 5 * time.Minute

// CheckDrop разрешает LIVE -> DROPPED.
func CheckDrop(droppedAt *time.Time) (string, error) {
	if droppedAt != nil {
		return StatusAlreadyDeleted, apperrors.ErrAlreadyDeleted
	}
	return StatusDeletable, nil
}

// CheckRestore разрешает DROPPED -> LIVE, если с удаления прошло меньше window или anyTime.
// Оба момента сравниваются в UTC.
func CheckRestore(droppedAt *time.Time, now time.Time, window time.Duration, anyTime bool) (string, error) {
	if droppedAt == nil {
		return StatusAlreadyRestored, apperrors.ErrAlreadyRestored
	}
	if anyTime || now.UTC().Sub(droppedAt.UTC()) < window {
		return StatusRestorable, nil
	}
	return StatusExpiredTime, apperrors.ErrExpiredTime
}

type SoftDeleteService struct {
	txManager  repositories.TxManagerInterface
	entityRepo repositories.EntityRepositoryInterface
	window     time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

func NewSoftDeleteService(
	txManager repositories.TxManagerInterface,
	entityRepo repositories.EntityRepositoryInterface,
	window time.Duration,
	logger *zap.Logger,
) *SoftDeleteService {
	if window <= 0 {
		window = DefaultRestoreWindow
	}
	return &SoftDeleteService{
		txManager:  txManager,
		entityRepo: entityRepo,
		window:     window,
		now:        time.Now,
		logger:     logger,
	}
}

// Apply выполняет delete или restore из тела PATCH. Для принципала с областью
// меняется только строка связи сущности с его организацией.
func (s *SoftDeleteService) Apply(ctx context.Context, p authz.Principal, d *repositories.EntityDescriptor, id int64, req dto.SoftDeleteDTO) (*dto.SoftDeleteStatusDTO, error) {
	if err := authz.Require(p, d.Resource, authz.Delete); err != nil {
		return nil, err
	}
	anyTime := bool(req.AnyTime)
	if anyTime {
		if err := authz.Require(p, d.Resource, authz.RestoreAnyTime); err != nil {
			return nil, err
		}
	}

	var status string
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		droppedAt, err := s.entityRepo.DroppedAt(ctx, tx, d, p, id)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		var next *time.Time
		if req.Delete {
			if status, err = CheckDrop(droppedAt); err != nil {
				return err
			}
			next = &now
		} else {
			if status, err = CheckRestore(droppedAt, now, s.window, anyTime); err != nil {
				return err
			}
		}
		return s.entityRepo.SetDroppedAt(ctx, tx, d, p, id, next)
	})
	if err != nil {
		s.logger.Warn("Мягкое удаление отклонено",
			zap.String("entity", d.Name), zap.Int64("id", id), zap.String("status", apperrors.Kind(err)), zap.Error(err))
		return nil, err
	}

	action := "удалена"
	if !req.Delete {
		action = "восстановлена"
	}
	s.logger.Info(fmt.Sprintf("Запись %s %s", d.Name, action), zap.Int64("id", id), zap.Int64("userID", p.UserID))
	return &dto.SoftDeleteStatusDTO{ID: id, Status: status}, nil
}
