package entities

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
)

func TestLoginNormalize(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		org      null.Int64
		wantRole Role
		wantOrg  null.Int64
	}{
		{"admin без организации", RoleAdmin, null.Int64From(3), RoleAdmin, null.Int64{}},
		{"none без организации", RoleNone, null.Int64From(3), RoleNone, null.Int64{}},
		{"регистратор сохраняет организацию", RoleRegistrator, null.Int64From(3), RoleRegistrator, null.Int64From(3)},
		{"контролёр сохраняет организацию", RoleController, null.Int64From(4), RoleController, null.Int64From(4)},
		{"неизвестная роль становится none", Role("owner"), null.Int64From(3), RoleNone, null.Int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Login{Role: tt.role, OrganizationID: tt.org}
			l.Normalize()
			assert.Equal(t, tt.wantRole, l.Role)
			assert.Equal(t, tt.wantOrg, l.OrganizationID)

			once := l
			l.Normalize()
			assert.Equal(t, once, l)

			if !l.Role.OrganizationScoped() {
				assert.False(t, l.OrganizationID.Valid)
			}
		})
	}
}

func TestOrganizationNormalize(t *testing.T) {
	tests := []struct {
		name      string
		tz        null.Int
		start     null.String
		end       null.String
		wantTZ    null.Int
		wantStart null.String
		wantEnd   null.String
	}{
		{
			name:      "корректные значения приводятся к ЧЧ:ММ",
			tz:        null.IntFrom(3 * 3600),
			start:     null.StringFrom("9:00"),
			end:       null.StringFrom("18:00"),
			wantTZ:    null.IntFrom(3 * 3600),
			wantStart: null.StringFrom("09:00"),
			wantEnd:   null.StringFrom("18:00"),
		},
		{
			name:      "смещение вне диапазона сбрасывается",
			tz:        null.IntFrom(15 * 3600),
			start:     null.StringFrom("09:00"),
			end:       null.StringFrom("18:00"),
			wantStart: null.StringFrom("09:00"),
			wantEnd:   null.StringFrom("18:00"),
		},
		{
			name:   "перевёрнутое окно графика сбрасывается целиком",
			tz:     null.IntFrom(-12 * 3600),
			start:  null.StringFrom("18:00"),
			end:    null.StringFrom("09:00"),
			wantTZ: null.IntFrom(-12 * 3600),
		},
		{
			name:  "одна граница без другой сбрасывается",
			tz:    null.IntFrom(-13 * 3600),
			start: null.StringFrom("09:00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Organization{Timezone: tt.tz, TimesheetStart: tt.start, TimesheetEnd: tt.end}
			o.Normalize()
			assert.Equal(t, tt.wantTZ, o.Timezone)
			assert.Equal(t, tt.wantStart, o.TimesheetStart)
			assert.Equal(t, tt.wantEnd, o.TimesheetEnd)

			once := o
			o.Normalize()
			assert.Equal(t, once, o)
		})
	}
}
