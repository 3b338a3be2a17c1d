package dto

import (
	"time"

	"github.com/google/uuid"

	"access-control/internal/entities"
)

type CreateEmployeeDTO struct {
	LastName   string `json:"last_name" validate:"required,max=150"`
	FirstName  string `json:"first_name" validate:"required,max=150"`
	Patronymic string `json:"patronymic" validate:"max=150"`
	Photo      string `json:"photo" validate:"omitempty,base64"`
}

type UpdateEmployeeDTO struct {
	SoftDeleteDTO
	LastName   *string `json:"last_name" validate:"omitempty,min=1,max=150"`
	FirstName  *string `json:"first_name" validate:"omitempty,min=1,max=150"`
	Patronymic *string `json:"patronymic" validate:"omitempty,max=150"`
	// Photo: JPEG в base64; заменяет текущий AVATAR.
	Photo *string `json:"photo" validate:"omitempty,base64"`
}

type EmployeeDTO struct {
	ID         int64      `json:"id"`
	GUID       uuid.UUID  `json:"guid"`
	LastName   string     `json:"last_name"`
	FirstName  string     `json:"first_name"`
	Patronymic string     `json:"patronymic"`
	FullName   string     `json:"full_name"`
	CreatedAt  time.Time  `json:"created_at"`
	DroppedAt  *time.Time `json:"dropped_at"`
}

func EmployeeFromEntity(e entities.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         e.ID,
		GUID:       e.GUID,
		LastName:   e.LastName,
		FirstName:  e.FirstName,
		Patronymic: e.Patronymic,
		FullName:   e.FullName(),
		CreatedAt:  e.CreatedAt,
		DroppedAt:  e.DroppedAt,
	}
}

// EmployeeOrganizationDTO описывает связь с организацией и личный график.
type EmployeeOrganizationDTO struct {
	Organization   int64   `json:"organization"`
	TimesheetStart *string `json:"timesheet_start"`
	TimesheetEnd   *string `json:"timesheet_end"`
}

type TemplateDTO struct {
	ID               int64     `json:"id"`
	AlgorithmType    int       `json:"algorithm_type"`
	AlgorithmVersion int       `json:"algorithm_version"`
	CreatedAt        time.Time `json:"created_at"`
}

// EmployeeExtraDTO содержит дополнительные данные карточки сотрудника.
type EmployeeExtraDTO struct {
	Organizations []EmployeeOrganizationDTO `json:"organizations"`
	Departments   []int64                   `json:"departments"`
	Templates     []TemplateDTO             `json:"templates"`
}
