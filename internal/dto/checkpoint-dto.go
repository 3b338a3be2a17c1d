package dto

import (
	"time"

	"access-control/internal/entities"
)

type CreateCheckpointDTO struct {
	Name        string `json:"name" validate:"required,max=255"`
	Rights      int    `json:"rights" validate:"gte=0"`
	Description string `json:"description"`
}

type UpdateCheckpointDTO struct {
	SoftDeleteDTO
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Rights      *int    `json:"rights" validate:"omitempty,gte=0"`
	Description *string `json:"description"`
}

type CheckpointDTO struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Rights      int        `json:"rights"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	DroppedAt   *time.Time `json:"dropped_at"`
}

func CheckpointFromEntity(c entities.Checkpoint) CheckpointDTO {
	return CheckpointDTO{
		ID:          c.ID,
		Name:        c.Name,
		Rights:      c.Rights,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		DroppedAt:   c.DroppedAt,
	}
}
