package entities

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"

	"access-control/pkg/types"
)

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleRegistrator Role = "registrator"
	RoleController  Role = "controller"
	RoleNone        Role = "none"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleRegistrator, RoleController, RoleNone:
		return true
	}
	return false
}

// OrganizationScoped сообщает, привязана ли роль к организации.
func (r Role) OrganizationScoped() bool {
	return r == RoleRegistrator || r == RoleController
}

// User: учётная запись для входа; пароль хранится только в виде bcrypt-хеша.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	LastName     string    `json:"last_name"`
	FirstName    string    `json:"first_name"`
	CreatedAt    time.Time `json:"created_at"`
}

type Login struct {
	ID             int64      `json:"id"`
	GUID           uuid.UUID  `json:"guid"`
	UserID         int64      `json:"user"`
	Role           Role       `json:"role"`
	OrganizationID null.Int64 `json:"organization"`

	types.SoftDelete
}

// Normalize убирает организацию у всех, кроме регистратора и контролёра.
func (l *Login) Normalize() {
	if !l.Role.Valid() {
		l.Role = RoleNone
	}
	if !l.Role.OrganizationScoped() {
		l.OrganizationID = null.Int64{}
	}
}

// LoginUser: логин вместе с учётной записью, для списков пользователей.
type LoginUser struct {
	Login
	Username  string `json:"username"`
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
}
