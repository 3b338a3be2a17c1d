package dto

import (
	"time"

	"github.com/google/uuid"

	"access-control/internal/entities"
)

type CreateOrganizationDTO struct {
	Name           string  `json:"name" validate:"required,max=255"`
	Address        string  `json:"address"`
	Phone          string  `json:"phone" validate:"max=64"`
	Timezone       *string `json:"timezone" validate:"omitempty,utcoffset"`
	TimesheetStart *string `json:"timesheet_start" validate:"omitempty,hhmm"`
	TimesheetEnd   *string `json:"timesheet_end" validate:"omitempty,hhmm"`
}

type UpdateOrganizationDTO struct {
	SoftDeleteDTO
	Name           *string `json:"name" validate:"omitempty,min=1,max=255"`
	Address        *string `json:"address"`
	Phone          *string `json:"phone" validate:"omitempty,max=64"`
	Timezone       *string `json:"timezone" validate:"omitempty,utcoffset"`
	TimesheetStart *string `json:"timesheet_start" validate:"omitempty,hhmm"`
	TimesheetEnd   *string `json:"timesheet_end" validate:"omitempty,hhmm"`
}

type OrganizationDTO struct {
	ID             int64      `json:"id"`
	GUID           uuid.UUID  `json:"guid"`
	Name           string     `json:"name"`
	Address        string     `json:"address"`
	Phone          string     `json:"phone"`
	Timezone       *string    `json:"timezone"`
	TimesheetStart *string    `json:"timesheet_start"`
	TimesheetEnd   *string    `json:"timesheet_end"`
	TimesheetCount *string    `json:"timesheet_count"`
	CreatedAt      time.Time  `json:"created_at"`
	DroppedAt      *time.Time `json:"dropped_at"`
}

func OrganizationFromEntity(o entities.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:             o.ID,
		GUID:           o.GUID,
		Name:           o.Name,
		Address:        o.Address,
		Phone:          o.Phone,
		Timezone:       TimezoneToString(o.Timezone),
		TimesheetStart: o.TimesheetStart.Ptr(),
		TimesheetEnd:   o.TimesheetEnd.Ptr(),
		TimesheetCount: TimesheetCount(o.TimesheetStart, o.TimesheetEnd),
		CreatedAt:      o.CreatedAt,
		DroppedAt:      o.DroppedAt,
	}
}
