package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")
	ErrTokenIsNotRefresh    = fmt.Errorf("токен не является refresh-токеном")

	// Авторизация
	ErrNeedsLogin         = fmt.Errorf("требуется вход в систему")
	ErrForbidden          = fmt.Errorf("доступ запрещён")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")

	// Общие
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrBadRequest = fmt.Errorf("неверный запрос")

	// Мягкое удаление
	ErrAlreadyDeleted  = fmt.Errorf("запись уже удалена")
	ErrAlreadyRestored = fmt.Errorf("запись уже восстановлена")
	ErrExpiredTime     = fmt.Errorf("время на восстановление истекло")

	// Шина устройств
	ErrBrokerUnreachable = fmt.Errorf("Не удается подключиться к серверу")
	ErrIndeterminate     = fmt.Errorf("устройство не ответило вовремя")
	ErrDeviceBusy        = fmt.Errorf("устройство занято другой командой")
)

// Kind возвращает машинное имя ошибки мягкого удаления для поля status ответа.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyDeleted):
		return "ALREADY_DELETED"
	case errors.Is(err, ErrAlreadyRestored):
		return "ALREADY_RESTORED"
	case errors.Is(err, ErrExpiredTime):
		return "EXPIRED_TIME"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrNeedsLogin):
		return "NEEDS_LOGIN"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrBrokerUnreachable):
		return "BROKER_UNREACHABLE"
	case errors.Is(err, ErrIndeterminate):
		return "INDETERMINATE"
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "VALIDATION"
	}
	return ""
}

type HttpError struct {
	Code    int
	Message string
	Err     error
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err}
}

// FieldError: одна ошибка поля: человекочитаемое имя и причина.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError собирает ошибки полей; Error() склеивает их через перевод строки.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		lines = append(lines, fmt.Sprintf("%s: %s", f.Field, f.Reason))
	}
	return strings.Join(lines, "\n")
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}
