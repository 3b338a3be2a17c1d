package dto

import (
	"time"

	"access-control/internal/entities"
)

// CreateLoginDTO создаёт учётную запись вместе с ролью в организации.
// Роль и организация задаются маршрутом, а не телом запроса.
type CreateLoginDTO struct {
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Password  string `json:"password" validate:"required,min=6"`
	LastName  string `json:"last_name" validate:"max=150"`
	FirstName string `json:"first_name" validate:"max=150"`
}

type UpdateLoginDTO struct {
	SoftDeleteDTO
	Password  *string `json:"password" validate:"omitempty,min=6"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	// Organization переносит логин в другую организацию; только для администратора.
	Organization *int64 `json:"organization" validate:"omitempty,gt=0"`
}

type LoginUserDTO struct {
	ID           int64      `json:"id"`
	User         int64      `json:"user"`
	Username     string     `json:"username"`
	LastName     string     `json:"last_name"`
	FirstName    string     `json:"first_name"`
	Role         string     `json:"role"`
	Organization *int64     `json:"organization"`
	DroppedAt    *time.Time `json:"dropped_at"`
}

func LoginUserFromEntity(l entities.LoginUser) LoginUserDTO {
	return LoginUserDTO{
		ID:           l.ID,
		User:         l.UserID,
		Username:     l.Username,
		LastName:     l.LastName,
		FirstName:    l.FirstName,
		Role:         string(l.Role),
		Organization: l.OrganizationID.Ptr(),
		DroppedAt:    l.DroppedAt,
	}
}
