package report

import (
	"time"

	"github.com/aarondl/null/v8"

	"access-control/internal/entities"
	"access-control/pkg/utils"
)

const dash = "-"

var (
	monthNames = [...]string{"", "Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
		"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь"}
	weekDayNames = [...]string{"вс", "пн", "вт", "ср", "чт", "пт", "сб"}
)

// Schedule: плановое окно рабочего дня сотрудника.
type Schedule struct {
	Start null.String `json:"start"`
	End   null.String `json:"end"`
}

// Complete сообщает, заданы ли обе границы и неотрицательна ли длительность.
func (s Schedule) Complete() bool {
	if !s.Start.Valid || !s.End.Valid {
		return false
	}
	_, ok := utils.TimesheetMinutes(s.Start.String, s.End.String)
	return ok
}

// Line: строка отчёта.
type Line struct {
	ID             int64      `json:"id"`
	Employee       int64      `json:"employee"`
	Department     null.Int64 `json:"department"`
	IncomingMoment time.Time  `json:"incoming_moment"`
	IncomingTime   string     `json:"incoming_time"`
	OutcomingTime  *string    `json:"outcoming_time"`
	TimeCount      string     `json:"time_count"`
	Checkpoints    string     `json:"checkpoints"`
	UTC            string     `json:"utc"`
	Month          string     `json:"month"`
	Date           string     `json:"date"`
	WeekDay        string     `json:"week_day"`
	IsLater        bool       `json:"is_later"`
	PlannedStart   string     `json:"planned_start"`
	PlannedEnd     string     `json:"planned_end"`
	PlannedCount   string     `json:"planned_count"`
}

// Hydration: данные, нужные для сборки строк отчёта.
type Hydration struct {
	Schedules   map[int64]Schedule
	Departments map[int64]entities.Department
}

// displayOffset берёт смещение устройства входа, затем устройства выхода, иначе UTC.
func displayOffset(p Pair) int {
	if p.In.DeviceTimezone.Valid {
		return p.In.DeviceTimezone.Int
	}
	if p.Out != nil && p.Out.DeviceTimezone.Valid {
		return p.Out.DeviceTimezone.Int
	}
	return 0
}

func checkpointName(ev entities.ReportEvent) string {
	if ev.CheckpointName.Valid && ev.CheckpointName.String != "" {
		return ev.CheckpointName.String
	}
	return dash
}

// isLater сообщает, что вход строго позже планового начала.
func isLater(local time.Time, s Schedule) bool {
	if !s.Start.Valid {
		return false
	}
	start, err := utils.ParseHHMM(s.Start.String)
	if err != nil {
		return false
	}
	return utils.MinuteOfDay(local)*60+local.Second() > start*60
}

// Assemble собирает строки для окон страницы. pairs, все пары загруженных суток.
// Опоздание определяется по первому входу сотрудника за сутки и действует для всех его строк.
func Assemble(windows []Window, pairs map[time.Time][]Pair, h Hydration) []Line {
	later := make(map[bucketKey]bool)
	for day, dayPairs := range pairs {
		for _, p := range dayPairs {
			k := bucketKey{employeeID: p.In.EmployeeID, day: day}
			if _, seen := later[k]; seen {
				continue
			}
			local := p.In.Moment.In(time.FixedZone("", displayOffset(p)))
			later[k] = isLater(local, h.Schedules[p.In.EmployeeID])
		}
	}

	lines := make([]Line, 0)
	for _, w := range windows {
		dayPairs := pairs[w.Day]
		to := min(w.To, len(dayPairs))
		for i := w.From; i < to; i++ {
			p := dayPairs[i]
			lines = append(lines, buildLine(p, h, later[bucketKey{employeeID: p.In.EmployeeID, day: w.Day}]))
		}
	}
	return lines
}

func buildLine(p Pair, h Hydration, late bool) Line {
	offset := displayOffset(p)
	zone := time.FixedZone(utils.FormatUTCOffset(offset), offset)
	in := p.In.Moment.In(zone)

	l := Line{
		ID:             p.In.ID,
		Employee:       p.In.EmployeeID,
		IncomingMoment: p.In.Moment.UTC(),
		IncomingTime:   in.Format("15:04"),
		TimeCount:      dash,
		Checkpoints:    checkpointName(p.In),
		UTC:            utils.FormatUTCOffset(offset),
		Month:          monthNames[in.Month()],
		Date:           in.Format("02.01.2006"),
		WeekDay:        weekDayNames[in.Weekday()],
		IsLater:        late,
		PlannedStart:   dash,
		PlannedEnd:     dash,
		PlannedCount:   dash,
	}
	if p.Out != nil {
		out := p.Out.Moment.In(zone).Format("15:04")
		l.OutcomingTime = &out
		l.Checkpoints += " / " + checkpointName(*p.Out)
	}
	if d, ok := p.Duration(); ok {
		l.TimeCount = utils.FormatDurationHHMM(d)
	}
	if dep, ok := h.Departments[p.In.EmployeeID]; ok {
		l.Department = null.Int64From(dep.ID)
	}
	if s := h.Schedules[p.In.EmployeeID]; s.Complete() {
		minutes, _ := utils.TimesheetMinutes(s.Start.String, s.End.String)
		l.PlannedStart = s.Start.String
		l.PlannedEnd = s.End.String
		l.PlannedCount = utils.FormatHHMM(minutes)
	}
	return l
}
