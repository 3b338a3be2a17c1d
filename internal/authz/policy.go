package authz

import (
	"fmt"

	"access-control/internal/entities"
	apperrors "access-control/pkg/errors"
)

type Action uint8

const (
	Read Action = 1 << iota
	Create
	Update
	Delete
	RestoreAnyTime
)

type Resource string

const (
	ResourceOrganization Resource = "organization"
	ResourceCheckpoint   Resource = "checkpoint"
	ResourceDepartment   Resource = "department"
	ResourceDevice       Resource = "device"
	ResourceEmployee     Resource = "employee"
	ResourceRegistrator  Resource = "registrator"
	ResourceController   Resource = "controller"
	ResourceReport       Resource = "report"
	ResourceEnrollment   Resource = "enrollment"
)

const all = Read | Create | Update | Delete | RestoreAnyTime

// capabilities: что каждая роль может делать с каждым ресурсом.
// Ограничение своей организацией накладывает движок запросов.
var capabilities = map[Resource]map[entities.Role]Action{
	ResourceOrganization: {
		entities.RoleAdmin:       all,
		entities.RoleRegistrator: Read,
		entities.RoleController:  Read,
	},
	ResourceCheckpoint: {
		entities.RoleAdmin:       all,
		entities.RoleRegistrator: Read | Create | Update,
		entities.RoleController:  Read,
	},
	ResourceDepartment: {
		entities.RoleRegistrator: Read | Create | Update | Delete,
		entities.RoleController:  Read,
	},
	ResourceDevice: {
		entities.RoleAdmin:       all,
		entities.RoleRegistrator: Read | Create | Update | Delete,
		entities.RoleController:  Read,
	},
	ResourceEmployee: {
		entities.RoleAdmin:       all,
		entities.RoleRegistrator: Read | Create | Update | Delete,
		entities.RoleController:  Read,
	},
	ResourceRegistrator: {
		entities.RoleAdmin: Read | Create | Update,
	},
	ResourceController: {
		entities.RoleRegistrator: Read | Create | Update,
	},
	ResourceReport: {
		entities.RoleAdmin:      Read,
		entities.RoleController: Read,
	},
	ResourceEnrollment: {
		entities.RoleAdmin:       Create,
		entities.RoleRegistrator: Create,
	},
}

func Can(p Principal, r Resource, a Action) bool {
	if p.Role.OrganizationScoped() && !p.OrganizationID.Valid {
		// регистратор или контролёр без организации ничего не видит
		return false
	}
	return capabilities[r][p.Role]&a == a
}

// Require возвращает ErrForbidden, если действие не разрешено роли.
func Require(p Principal, r Resource, a Action) error {
	if Can(p, r, a) {
		return nil
	}
	return fmt.Errorf("%w: %s не может выполнить действие над %s", apperrors.ErrForbidden, p.Role, r)
}
