package types

import "time"

type BaseEntity struct {
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SoftDelete: признак мягкого удаления: nil означает «живая» запись.
type SoftDelete struct {
	DroppedAt *time.Time `json:"dropped_at" db:"dropped_at"`
}

func (s SoftDelete) IsLive() bool { return s.DroppedAt == nil }
