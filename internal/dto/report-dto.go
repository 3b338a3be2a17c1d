package dto

import (
	"access-control/internal/report"
)

// ReportQueryDTO: параметры /report и /report.xlsx. PerPage = 0 означает весь отчёт.
type ReportQueryDTO struct {
	EntityID   int64  `query:"entity_id" validate:"gte=0"`
	EntityType string `query:"entity_type"`
	Start      string `query:"start" validate:"omitempty,len=8,numeric"`
	End        string `query:"end" validate:"omitempty,len=8,numeric"`
	From       int    `query:"from" validate:"gte=0"`
	PerPage    int    `query:"perPage" validate:"gte=0,lte=1000"`
	Count      int    `query:"count" validate:"gte=0,lte=100"`
}

type ReportExtraDTO struct {
	Employees   map[int64]EmployeeDTO   `json:"employees"`
	Departments map[int64]DepartmentDTO `json:"departments"`
}

type ReportDTO struct {
	Data  []report.Line  `json:"data"`
	Count int            `json:"count"`
	Extra ReportExtraDTO `json:"extra"`
}
