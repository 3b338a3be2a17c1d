package entities

import "access-control/pkg/types"

type Department struct {
	ID             int64  `json:"id"`
	OrganizationID int64  `json:"organization"`
	Name           string `json:"name"`
	Rights         int    `json:"rights"`
	Address        string `json:"address"`
	Description    string `json:"description"`
	ShowInReport   bool   `json:"show_in_report"`

	types.SoftDelete
	types.BaseEntity
}
