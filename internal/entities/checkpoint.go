package entities

import "access-control/pkg/types"

type Checkpoint struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Rights      int    `json:"rights"`
	Description string `json:"description"`

	types.SoftDelete
	types.BaseEntity
}
