package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
)

type ReportEntityType string

const (
	ReportEmployee     ReportEntityType = "EMPLOYEE"
	ReportDepartment   ReportEntityType = "DEPARTMENT"
	ReportOrganization ReportEntityType = "ORGANIZATION"
	ReportDevice       ReportEntityType = "DEVICE"
	ReportCheckpoint   ReportEntityType = "CHECKPOINT"
	ReportAll          ReportEntityType = "ALL"

	// ReportDeviceGroup: прежнее имя CHECKPOINT, принимается клиентами старых версий.
	ReportDeviceGroup ReportEntityType = "DEVICE_GROUP"
)

// ParseReportEntityType читает тип выборки. Пустое значение означает ALL, DEVICE_GROUP сводится к CHECKPOINT.
func ParseReportEntityType(s string) (ReportEntityType, error) {
	t := ReportEntityType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case "":
		return ReportAll, nil
	case ReportDeviceGroup:
		return ReportCheckpoint, nil
	case ReportEmployee, ReportDepartment, ReportOrganization, ReportDevice, ReportCheckpoint, ReportAll:
		return t, nil
	}
	return "", fmt.Errorf("неизвестный тип сущности отчёта %q", s)
}

// ReportSelection: какие события попадают в отчёт.
type ReportSelection struct {
	EntityType     ReportEntityType
	EntityID       int64
	OrganizationID int64 // область принципала, 0, без ограничения
	From           *time.Time
	To             *time.Time
}

// ReportDayCount: число событий сотрудника за сутки (UTC).
type ReportDayCount struct {
	Day        time.Time
	EmployeeID int64
	Events     int
}

// ReportEvent: событие идентификации с данными устройства для отчёта.
type ReportEvent struct {
	ID             int64
	Moment         time.Time
	EmployeeID     int64
	DeviceID       null.Int64
	DeviceTimezone null.Int
	CheckpointName null.String
}

// ReportDepartmentLink: подразделение сотрудника, показываемое в отчёте.
type ReportDepartmentLink struct {
	EmployeeID int64
	Department Department
}
