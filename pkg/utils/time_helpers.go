package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	MinUTCOffset = -12 * 3600
	MaxUTCOffset = 14 * 3600

	// последняя минута суток, 23:59
	LastMinuteOfDay = 23*60 + 59
)

var (
	hhmmRe   = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	offsetRe = regexp.MustCompile(`^([+-])?(\d{1,2}):(\d{2})$`)
)

// ParseHHMM переводит "HH:MM" в минуты от начала суток. Диапазон не проверяется.
func ParseHHMM(s string) (int, error) {
	m := hhmmRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("ожидается формат ЧЧ:ММ, получено %q", s)
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	if min > 59 {
		return 0, fmt.Errorf("минуты вне диапазона в %q", s)
	}
	return h*60 + min, nil
}

func FormatHHMM(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NormalizeTimesheet приводит окно графика к виду start < end в [00:00, 23:59].
// Если хотя бы одна граница отсутствует или нарушает правило, обе сбрасываются в nil.
func NormalizeTimesheet(start, end *string) (*string, *string) {
	if start == nil || end == nil {
		return nil, nil
	}
	s, err := ParseHHMM(*start)
	if err != nil {
		return nil, nil
	}
	e, err := ParseHHMM(*end)
	if err != nil {
		return nil, nil
	}
	if s < 0 || e > LastMinuteOfDay || s >= e {
		return nil, nil
	}
	ns, ne := FormatHHMM(s), FormatHHMM(e)
	return &ns, &ne
}

// TimesheetMinutes возвращает плановую продолжительность end - start в минутах.
func TimesheetMinutes(start, end string) (int, bool) {
	s, err := ParseHHMM(start)
	if err != nil {
		return 0, false
	}
	e, err := ParseHHMM(end)
	if err != nil || e < s {
		return 0, false
	}
	return e - s, true
}

// ParseUTCOffset переводит "+03:00" / "-05:30" / "3:00" в секунды.
func ParseUTCOffset(s string) (int, error) {
	m := offsetRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("ожидается смещение ±ЧЧ:ММ, получено %q", s)
	}
	h, _ := strconv.Atoi(m[2])
	min, _ := strconv.Atoi(m[3])
	if min > 59 {
		return 0, fmt.Errorf("минуты вне диапазона в %q", s)
	}
	seconds := h*3600 + min*60
	if m[1] == "-" {
		seconds = -seconds
	}
	return seconds, nil
}

// FormatUTCOffset форматирует смещение в секундах как "+03:00".
func FormatUTCOffset(seconds int) string {
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	return fmt.Sprintf("%c%02d:%02d", sign, seconds/3600, (seconds%3600)/60)
}

// ClampTimezone возвращает nil, если смещение вне [-12:00, +14:00].
func ClampTimezone(seconds *int) *int {
	if seconds == nil || *seconds < MinUTCOffset || *seconds > MaxUTCOffset {
		return nil
	}
	v := *seconds
	return &v
}

// FormatDurationHHMM форматирует длительность как "ЧЧ:ММ" без знака.
func FormatDurationHHMM(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	total := int(d / time.Minute)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// ParseCompactDate разбирает дату отчёта в формате YYYYMMDD (UTC).
func ParseCompactDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("20060102", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("ожидается дата ГГГГММДД, получено %q", s)
	}
	return t, nil
}

// MinuteOfDay считает минуты от полуночи для момента t в его зоне.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
