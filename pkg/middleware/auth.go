package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"access-control/internal/authz"
	"access-control/pkg/contextkeys"
	apperrors "access-control/pkg/errors"
	"access-control/pkg/service"
	"access-control/pkg/utils"
)

// PrincipalResolver определяет роль и организацию пользователя токена.
type PrincipalResolver interface {
	PrincipalOf(ctx context.Context, userID int64) (authz.Principal, error)
}

type AuthMiddleware struct {
	jwtService service.JWTService
	resolver   PrincipalResolver
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, resolver PrincipalResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		resolver:   resolver,
		logger:     logger,
	}
}

// Auth проверяет access-токен и кладёт принципала в контекст запроса.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return utils.ErrorResponse(c, fmt.Errorf("%w: пустой заголовок Authorization", apperrors.ErrNeedsLogin), m.logger)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("AuthMiddleware: Неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, fmt.Errorf("%w: неверный формат заголовка Authorization", apperrors.ErrNeedsLogin), m.logger)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("AuthMiddleware: Ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}
		if claims.IsRefreshToken {
			m.logger.Warn("AuthMiddleware: Попытка доступа с refresh токеном")
			return utils.ErrorResponse(c, apperrors.ErrTokenIsNotAccess, m.logger)
		}

		ctx := c.Request().Context()
		p, err := m.resolver.PrincipalOf(ctx, claims.UserID)
		if err != nil {
			return utils.ErrorResponse(c, err, m.logger)
		}

		ctx = context.WithValue(ctx, contextkeys.UserIDKey, claims.UserID)
		ctx = authz.WithPrincipal(ctx, p)
		c.SetRequest(c.Request().WithContext(ctx))

		m.logger.Debug("AuthMiddleware: Пользователь аутентифицирован",
			zap.Int64("userID", claims.UserID), zap.String("role", string(p.Role)))
		return next(c)
	}
}
