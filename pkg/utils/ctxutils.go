package utils

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"access-control/pkg/contextkeys"
	apperrors "access-control/pkg/errors"
)

func GetUserIDFromCtx(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(int64)
	if !ok || userID == 0 {
		return 0, apperrors.ErrNeedsLogin
	}
	return userID, nil
}

func ContextWithTimeout(c echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), timeout)
}
