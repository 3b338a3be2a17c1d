package dto

import (
	"time"

	"access-control/internal/entities"
)

type CreateDepartmentDTO struct {
	Organization int64  `json:"organization"`
	Name         string `json:"name" validate:"required,max=255"`
	Rights       int    `json:"rights" validate:"gte=0"`
	Address      string `json:"address"`
	Description  string `json:"description"`
	ShowInReport *bool  `json:"show_in_report"`
}

type UpdateDepartmentDTO struct {
	SoftDeleteDTO
	Name         *string `json:"name" validate:"omitempty,min=1,max=255"`
	Rights       *int    `json:"rights" validate:"omitempty,gte=0"`
	Address      *string `json:"address"`
	Description  *string `json:"description"`
	ShowInReport *bool   `json:"show_in_report"`
}

type DepartmentDTO struct {
	ID           int64      `json:"id"`
	Organization int64      `json:"organization"`
	Name         string     `json:"name"`
	Rights       int        `json:"rights"`
	Address      string     `json:"address"`
	Description  string     `json:"description"`
	ShowInReport bool       `json:"show_in_report"`
	CreatedAt    time.Time  `json:"created_at"`
	DroppedAt    *time.Time `json:"dropped_at"`
}

func DepartmentFromEntity(d entities.Department) DepartmentDTO {
	return DepartmentDTO{
		ID:           d.ID,
		Organization: d.OrganizationID,
		Name:         d.Name,
		Rights:       d.Rights,
		Address:      d.Address,
		Description:  d.Description,
		ShowInReport: d.ShowInReport,
		CreatedAt:    d.CreatedAt,
		DroppedAt:    d.DroppedAt,
	}
}
