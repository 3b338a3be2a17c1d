package entities

import (
	"github.com/aarondl/null/v8"

	"access-control/pkg/types"
)

// Link: строка таблицы связи M:N со своим мягким удалением.
type Link struct {
	ID       int64 `json:"id"`
	MasterID int64 `json:"master"`
	SlaveID  int64 `json:"slave"`

	types.SoftDelete
}

// EmployeeOrganization: связь сотрудника с организацией и личный график.
type EmployeeOrganization struct {
	ID             int64       `json:"id"`
	EmployeeID     int64       `json:"employee"`
	OrganizationID int64       `json:"organization"`
	TimesheetStart null.String `json:"timesheet_start"`
	TimesheetEnd   null.String `json:"timesheet_end"`

	types.SoftDelete
}
