package validation

import (
	"errors"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "access-control/pkg/errors"
)

type sample struct {
	Name           string      `json:"name" validate:"required"`
	TimesheetStart null.String `json:"timesheet_start" validate:"omitempty,hhmm"`
	Timezone       null.String `json:"timezone" validate:"omitempty,utcoffset"`
	MQTT           string      `json:"mqtt" validate:"omitempty,mqttid"`
}

func TestValidateHumanizedNewlineJoined(t *testing.T) {
	v := New()
	err := v.Validate(&sample{
		TimesheetStart: null.StringFrom("9 утра"),
		Timezone:       null.StringFrom("+03:00"),
	})
	require.Error(t, err)

	var vErr *apperrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "Name: обязательное поле\nTimesheet start: ожидается время в формате ЧЧ:ММ", vErr.Error())
}

func TestValidateNullTypesOmitEmpty(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(&sample{Name: "Офис", MQTT: "dev-01"}))
	assert.Error(t, v.Validate(&sample{Name: "Офис", MQTT: "dev/01"}))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Show in report", Humanize("show_in_report"))
	assert.Equal(t, "Mqtt", Humanize("mqtt"))
}
