package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"access-control/internal/authz"
	"access-control/internal/repositories"
)

const principalCachePrefix = "principal:"

// PolicyService определяет принципала по пользователю сессии.
// Результат кэшируется в Redis и сбрасывается при изменении логина.
type PolicyService struct {
	loginRepo repositories.LoginRepositoryInterface
	cache     repositories.CacheRepositoryInterface
	ttl       time.Duration
	logger    *zap.Logger
}

func NewPolicyService(
	loginRepo repositories.LoginRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	ttl time.Duration,
	logger *zap.Logger,
) *PolicyService {
	return &PolicyService{loginRepo: loginRepo, cache: cache, ttl: ttl, logger: logger}
}

func principalKey(userID int64) string {
	return fmt.Sprintf("%s%d", principalCachePrefix, userID)
}

// PrincipalOf возвращает принципала или ErrNeedsLogin, если живого логина нет.
func (s *PolicyService) PrincipalOf(ctx context.Context, userID int64) (authz.Principal, error) {
	if p, ok := s.cached(ctx, userID); ok {
		return p, nil
	}

	login, err := s.loginRepo.FindLoginByUserID(ctx, userID)
	if err != nil {
		return authz.Principal{}, err
	}
	user, err := s.loginRepo.FindUserByID(ctx, userID)
	if err != nil {
		return authz.Principal{}, err
	}
	login.Normalize()

	p := authz.Principal{
		UserID:         user.ID,
		LoginID:        login.ID,
		Username:       user.Username,
		Role:           login.Role,
		OrganizationID: login.OrganizationID,
	}
	s.store(ctx, p)
	return p, nil
}

// Invalidate сбрасывает закэшированного принципала пользователя.
func (s *PolicyService) Invalidate(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, principalKey(userID)); err != nil {
		s.logger.Warn("Не удалось сбросить кэш принципала", zap.Int64("userID", userID), zap.Error(err))
	}
}

func (s *PolicyService) cached(ctx context.Context, userID int64) (authz.Principal, bool) {
	if s.cache == nil {
		return authz.Principal{}, false
	}
	raw, err := s.cache.Get(ctx, principalKey(userID))
	if err != nil {
		if !errors.Is(err, repositories.ErrCacheMiss) {
			s.logger.Warn("Ошибка чтения кэша принципала", zap.Int64("userID", userID), zap.Error(err))
		}
		return authz.Principal{}, false
	}
	var p authz.Principal
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.logger.Warn("Повреждённая запись кэша принципала", zap.Int64("userID", userID), zap.Error(err))
		return authz.Principal{}, false
	}
	return p, true
}

func (s *PolicyService) store(ctx context.Context, p authz.Principal) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, principalKey(p.UserID), string(data), s.ttl); err != nil {
		s.logger.Warn("Не удалось записать кэш принципала", zap.Int64("userID", p.UserID), zap.Error(err))
	}
}
