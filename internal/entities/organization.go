package entities

import (
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"

	"access-control/pkg/types"
	"access-control/pkg/utils"
)

type Organization struct {
	ID             int64       `json:"id"`
	GUID           uuid.UUID   `json:"guid"`
	Name           string      `json:"name"`
	Address        string      `json:"address"`
	Phone          string      `json:"phone"`
	Timezone       null.Int    `json:"timezone"` // секунды относительно UTC
	TimesheetStart null.String `json:"timesheet_start"`
	TimesheetEnd   null.String `json:"timesheet_end"`

	types.SoftDelete
	types.BaseEntity
}

// Normalize применяет правила сохранения: смещение вне [-12, +14] и
// некорректное окно графика сбрасываются в NULL.
func (o *Organization) Normalize() {
	o.Timezone = ClampTimezone(o.Timezone)
	o.TimesheetStart, o.TimesheetEnd = NormalizeTimesheet(o.TimesheetStart, o.TimesheetEnd)
}

func ClampTimezone(tz null.Int) null.Int {
	return null.IntFromPtr(utils.ClampTimezone(tz.Ptr()))
}

func NormalizeTimesheet(start, end null.String) (null.String, null.String) {
	s, e := utils.NormalizeTimesheet(start.Ptr(), end.Ptr())
	return null.StringFromPtr(s), null.StringFromPtr(e)
}
