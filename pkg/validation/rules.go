package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"access-control/pkg/utils"
)

var mqttIDRe = regexp.MustCompile(`^[A-Za-z0-9_\-.:]+$`)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("hhmm", isHHMM); err != nil {
		return err
	}
	if err := v.RegisterValidation("utcoffset", isUTCOffset); err != nil {
		return err
	}
	if err := v.RegisterValidation("mqttid", isMQTTID); err != nil {
		return err
	}
	if err := v.RegisterValidation("idlist", isIDList); err != nil {
		return err
	}
	return nil
}

// isHHMM - формат "ЧЧ:ММ"; диапазон проверяется нормализацией графика
func isHHMM(fl validator.FieldLevel) bool {
	_, err := utils.ParseHHMM(fl.Field().String())
	return err == nil
}

// isUTCOffset - формат "±ЧЧ:ММ"; значения вне [-12, +14] сбрасываются при сохранении
func isUTCOffset(fl validator.FieldLevel) bool {
	_, err := utils.ParseUTCOffset(fl.Field().String())
	return err == nil
}

// isMQTTID - идентификатор устройства попадает в имя топика, без "/" и "#"
func isMQTTID(fl validator.FieldLevel) bool {
	return mqttIDRe.MatchString(fl.Field().String())
}

func isIDList(fl validator.FieldLevel) bool {
	_, err := utils.ParseIDList(fl.Field().String())
	return err == nil
}
