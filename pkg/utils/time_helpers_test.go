package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHHMM(t *testing.T) {
	m, err := ParseHHMM("09:05")
	require.NoError(t, err)
	assert.Equal(t, 9*60+5, m)

	_, err = ParseHHMM("9-05")
	assert.Error(t, err)
	_, err = ParseHHMM("10:75")
	assert.Error(t, err)
}

func TestNormalizeTimesheet(t *testing.T) {
	tests := []struct {
		name       string
		start, end *string
		wantStart  *string
		wantEnd    *string
	}{
		{"корректное окно", ToPtr("9:00"), ToPtr("18:00"), ToPtr("09:00"), ToPtr("18:00")},
		{"граница суток", ToPtr("00:00"), ToPtr("23:59"), ToPtr("00:00"), ToPtr("23:59")},
		{"начало после конца", ToPtr("18:00"), ToPtr("09:00"), nil, nil},
		{"равные границы", ToPtr("09:00"), ToPtr("09:00"), nil, nil},
		{"за пределами суток", ToPtr("09:00"), ToPtr("24:10"), nil, nil},
		{"одна граница", ToPtr("09:00"), nil, nil, nil},
		{"мусор", ToPtr("abc"), ToPtr("18:00"), nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, e := NormalizeTimesheet(tt.start, tt.end)
			assert.Equal(t, tt.wantStart, s)
			assert.Equal(t, tt.wantEnd, e)
		})
	}
}

func TestTimesheetMinutesNonNegative(t *testing.T) {
	m, ok := TimesheetMinutes("09:00", "18:30")
	require.True(t, ok)
	assert.Equal(t, 9*60+30, m)

	_, ok = TimesheetMinutes("18:00", "09:00")
	assert.False(t, ok)
}

func TestUTCOffsetRoundTrip(t *testing.T) {
	s, err := ParseUTCOffset("+03:00")
	require.NoError(t, err)
	assert.Equal(t, 3*3600, s)
	assert.Equal(t, "+03:00", FormatUTCOffset(s))

	s, err = ParseUTCOffset("-05:30")
	require.NoError(t, err)
	assert.Equal(t, -(5*3600 + 30*60), s)
	assert.Equal(t, "-05:30", FormatUTCOffset(s))
}

func TestClampTimezoneIdempotent(t *testing.T) {
	for _, v := range []int{-13 * 3600, 15 * 3600, 14*3600 + 60} {
		first := ClampTimezone(&v)
		assert.Nil(t, first)
		second := ClampTimezone(first)
		assert.Nil(t, second)
	}

	edge := 14 * 3600
	got := ClampTimezone(&edge)
	require.NotNil(t, got)
	assert.Equal(t, edge, *got)

	low := -12 * 3600
	assert.NotNil(t, ClampTimezone(&low))
}

func TestFormatDurationHHMM(t *testing.T) {
	assert.Equal(t, "03:15", FormatDurationHHMM(3*time.Hour+15*time.Minute))
	assert.Equal(t, "05:06", FormatDurationHHMM(-(5*time.Hour + 6*time.Minute)))
	assert.Equal(t, "00:00", FormatDurationHHMM(30*time.Second))
}

func TestParseCompactDate(t *testing.T) {
	d, err := ParseCompactDate("20240304")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseCompactDate("2024-03-04")
	assert.Error(t, err)
}
