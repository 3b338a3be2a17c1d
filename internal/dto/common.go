package dto

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/aarondl/null/v8"

	"access-control/pkg/utils"
)

// Flag принимает 1, "1", true, "true" из тела запроса.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = false
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	*f = Flag(utils.IsTruthy(s))
	return nil
}

// SoftDeleteDTO читает ключи PATCH, переключающие мягкое удаление вместо изменения полей.
type SoftDeleteDTO struct {
	Delete  Flag `json:"delete"`
	Restore Flag `json:"restore"`
	AnyTime Flag `json:"anyTime"`
}

func (s SoftDeleteDTO) Requested() bool {
	return bool(s.Delete) || bool(s.Restore)
}

// TimezoneToString переводит секунды в "+03:00".
func TimezoneToString(tz null.Int) *string {
	if !tz.Valid {
		return nil
	}
	s := utils.FormatUTCOffset(tz.Int)
	return &s
}

// TimezoneFromString превращает "" или nil в NULL. Формат проверен валидатором.
func TimezoneFromString(s *string) null.Int {
	if s == nil || strings.TrimSpace(*s) == "" {
		return null.Int{}
	}
	seconds, err := utils.ParseUTCOffset(strings.TrimSpace(*s))
	if err != nil {
		return null.Int{}
	}
	return null.IntFrom(seconds)
}

// OptionalString превращает "" или nil в NULL.
func OptionalString(s *string) null.String {
	if s == nil || strings.TrimSpace(*s) == "" {
		return null.String{}
	}
	return null.StringFrom(strings.TrimSpace(*s))
}

// TimesheetCount считает плановую продолжительность "ЧЧ:ММ" или возвращает nil.
func TimesheetCount(start, end null.String) *string {
	if !start.Valid || !end.Valid {
		return nil
	}
	minutes, ok := utils.TimesheetMinutes(start.String, end.String)
	if !ok {
		return nil
	}
	s := utils.FormatHHMM(minutes)
	return &s
}

// RelationIDsDTO: тело add/remove: ids=<список через запятую>.
type RelationIDsDTO struct {
	IDs string `json:"ids" form:"ids" validate:"required,idlist"`
}

type RelationResultDTO struct {
	Success []int64 `json:"success"`
	Failure []int64 `json:"failure"`
}

// SoftDeleteStatusDTO - результат drop/restore.
type SoftDeleteStatusDTO struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}
