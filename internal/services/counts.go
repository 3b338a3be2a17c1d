package services

import (
	"context"

	"go.uber.org/zap"

	"access-control/internal/authz"
	"access-control/internal/dto"
	"access-control/internal/repositories"
)

type CountsService struct {
	entityRepo repositories.EntityRepositoryInterface
	logger     *zap.Logger
}

func NewCountsService(entityRepo repositories.EntityRepositoryInterface, logger *zap.Logger) *CountsService {
	return &CountsService{entityRepo: entityRepo, logger: logger}
}

// Counts считает живые записи каждой сущности, видимой принципалу.
// Сущности без права чтения пропускаются.
func (s *CountsService) Counts(ctx context.Context, p authz.Principal) (dto.CountsDTO, error) {
	out := make(dto.CountsDTO)
	for _, d := range s.entityRepo.Registry().Entities() {
		if !authz.Can(p, d.Resource, authz.Read) {
			continue
		}
		n, err := s.entityRepo.Count(ctx, d, p)
		if err != nil {
			s.logger.Error("Ошибка подсчёта записей", zap.String("entity", d.Name), zap.Error(err))
			return nil, err
		}
		out[d.Name] = n
	}
	return out, nil
}
