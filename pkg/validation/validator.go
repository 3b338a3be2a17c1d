package validation

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	apperrors "access-control/pkg/errors"
)

// CustomValidator - обертка для использования в Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate реализует интерфейс echo.Validator и возвращает *apperrors.ValidationError.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}
	out := &apperrors.ValidationError{}
	for _, fe := range vErrs {
		out.Fields = append(out.Fields, apperrors.FieldError{
			Field:  Humanize(fe.Field()),
			Reason: reason(fe),
		})
	}
	return out
}

// New создает и настраивает валидатор
func New() *CustomValidator {
	v := validator.New()

	// имена полей берём из json-тегов, чтобы сообщения совпадали с телом запроса
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	registerNullTypes(v)

	if err := registerRules(v); err != nil {
		panic("ошибка регистрации валидаторов: " + err.Error())
	}

	return &CustomValidator{validator: v}
}

// Humanize превращает "timesheet_start" в "Timesheet start".
func Humanize(field string) string {
	s := strings.TrimSpace(strings.ReplaceAll(field, "_", " "))
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "обязательное поле"
	case "min":
		return "слишком короткое значение (минимум " + fe.Param() + ")"
	case "max":
		return "слишком длинное значение (максимум " + fe.Param() + ")"
	case "oneof":
		return "допустимые значения: " + fe.Param()
	case "hhmm":
		return "ожидается время в формате ЧЧ:ММ"
	case "utcoffset":
		return "ожидается смещение в формате ±ЧЧ:ММ"
	case "mqttid":
		return "недопустимые символы в идентификаторе"
	case "idlist":
		return "ожидается список идентификаторов через запятую"
	case "gt", "gte":
		return "значение должно быть больше " + fe.Param()
	case "base64":
		return "ожидается строка base64"
	}
	return "не прошло проверку '" + fe.Tag() + "'"
}
