package entities

import (
	"github.com/aarondl/null/v8"

	"access-control/pkg/types"
)

type Device struct {
	ID           int64      `json:"id"`
	MQTT         string     `json:"mqtt"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	DeviceType   int        `json:"device_type"`
	Config       string     `json:"config"`
	CheckpointID null.Int64 `json:"checkpoint"`
	Timezone     null.Int   `json:"timezone"`

	types.SoftDelete
	types.BaseEntity
}

func (d *Device) Normalize() {
	d.Timezone = ClampTimezone(d.Timezone)
}
