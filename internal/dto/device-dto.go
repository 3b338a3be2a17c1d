package dto

import (
	"time"

	"access-control/internal/entities"
)

type CreateDeviceDTO struct {
	MQTT        string  `json:"mqtt" validate:"required,max=255,mqttid"`
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description"`
	DeviceType  int     `json:"device_type" validate:"gte=0"`
	Config      string  `json:"config"`
	Checkpoint  *int64  `json:"checkpoint" validate:"omitempty,gt=0"`
	Timezone    *string `json:"timezone" validate:"omitempty,utcoffset"`
}

type UpdateDeviceDTO struct {
	SoftDeleteDTO
	MQTT        *string `json:"mqtt" validate:"omitempty,max=255,mqttid"`
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	DeviceType  *int    `json:"device_type" validate:"omitempty,gte=0"`
	Config      *string `json:"config"`
	// Checkpoint: 0 отвязывает устройство от проходной.
	Checkpoint *int64  `json:"checkpoint" validate:"omitempty,gte=0"`
	Timezone   *string `json:"timezone" validate:"omitempty,utcoffset"`
}

type DeviceDTO struct {
	ID          int64      `json:"id"`
	MQTT        string     `json:"mqtt"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	DeviceType  int        `json:"device_type"`
	Config      string     `json:"config"`
	Checkpoint  *int64     `json:"checkpoint"`
	Timezone    *string    `json:"timezone"`
	CreatedAt   time.Time  `json:"created_at"`
	DroppedAt   *time.Time `json:"dropped_at"`
}

func DeviceFromEntity(d entities.Device) DeviceDTO {
	return DeviceDTO{
		ID:          d.ID,
		MQTT:        d.MQTT,
		Name:        d.Name,
		Description: d.Description,
		DeviceType:  d.DeviceType,
		Config:      d.Config,
		Checkpoint:  d.CheckpointID.Ptr(),
		Timezone:    TimezoneToString(d.Timezone),
		CreatedAt:   d.CreatedAt,
		DroppedAt:   d.DroppedAt,
	}
}
