package utils

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "access-control/pkg/errors"
)

// ListResponse отвечает {data, baseCount, filteredCount, ...extras}.
func ListResponse(c echo.Context, data interface{}, baseCount, filteredCount uint64, extras map[string]interface{}) error {
	body := map[string]interface{}{
		"data":          data,
		"baseCount":     baseCount,
		"filteredCount": filteredCount,
	}
	for k, v := range extras {
		body[k] = v
	}
	return c.JSON(http.StatusOK, body)
}

// DataResponse отвечает {data, ...extras} для получения одной записи.
func DataResponse(c echo.Context, data interface{}, extras map[string]interface{}) error {
	body := map[string]interface{}{"data": data}
	for k, v := range extras {
		body[k] = v
	}
	return c.JSON(http.StatusOK, body)
}

// SuccessResponse отвечает {data, success:true} для изменяющих запросов.
func SuccessResponse(c echo.Context, code int, data interface{}) error {
	return c.JSON(code, map[string]interface{}{
		"data":    data,
		"success": true,
	})
}

// ErrorResponse переводит ошибку сервиса в конверт старого API.
func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	switch {
	case errors.Is(err, apperrors.ErrNeedsLogin), errors.Is(err, apperrors.ErrForbidden),
		errors.Is(err, apperrors.ErrTokenExpired), errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrTokenIsNotAccess), errors.Is(err, apperrors.ErrTokenIsNotRefresh):
		// историческое поведение клиента: 500 и redirect2Login
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"redirect2Login": true,
			"message":        err.Error(),
		})
	case errors.Is(err, apperrors.ErrNotFound):
		return c.JSON(http.StatusNotFound, failure(err.Error(), apperrors.Kind(err)))
	case errors.Is(err, apperrors.ErrAlreadyDeleted),
		errors.Is(err, apperrors.ErrAlreadyRestored),
		errors.Is(err, apperrors.ErrExpiredTime):
		return c.JSON(http.StatusBadRequest, failure(err.Error(), apperrors.Kind(err)))
	case errors.Is(err, apperrors.ErrBadRequest), errors.Is(err, apperrors.ErrInvalidCredentials):
		return c.JSON(http.StatusBadRequest, failure(err.Error(), ""))
	case errors.Is(err, apperrors.ErrDeviceBusy):
		return c.JSON(http.StatusConflict, failure(err.Error(), ""))
	}

	var vErr *apperrors.ValidationError
	if errors.As(err, &vErr) {
		return c.JSON(http.StatusBadRequest, failure(vErr.Error(), "VALIDATION"))
	}

	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Err != nil {
			logger.Error("HTTP Error", zap.Int("code", httpErr.Code), zap.String("message", httpErr.Message), zap.Error(httpErr.Err))
		}
		return c.JSON(httpErr.Code, failure(httpErr.Message, ""))
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		msg, _ := echoErr.Message.(string)
		if msg == "" {
			msg = http.StatusText(echoErr.Code)
		}
		return c.JSON(echoErr.Code, failure(msg, ""))
	}

	logger.Error("Unexpected Error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, failure(err.Error(), ""))
}

func failure(message, status string) map[string]interface{} {
	body := map[string]interface{}{
		"message": message,
		"success": false,
	}
	if status != "" {
		body["status"] = status
	}
	return body
}
