package entities

import (
	"strings"

	"github.com/google/uuid"

	"access-control/pkg/types"
)

type Employee struct {
	ID         int64     `json:"id"`
	GUID       uuid.UUID `json:"guid"`
	LastName   string    `json:"last_name"`
	FirstName  string    `json:"first_name"`
	Patronymic string    `json:"patronymic"`

	types.SoftDelete
	types.BaseEntity
}

// FullName собирает "Фамилия Имя Отчество" без лишних пробелов.
func (e Employee) FullName() string {
	return strings.Join(strings.Fields(e.LastName+" "+e.FirstName+" "+e.Patronymic), " ")
}
