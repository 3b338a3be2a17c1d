package report

import (
	"sort"
	"time"

	"access-control/internal/entities"
)

// Pair - вход и, если есть, выход того же сотрудника в те же сутки.
type Pair struct {
	In  entities.ReportEvent
	Out *entities.ReportEvent
}

func (p Pair) Duration() (time.Duration, bool) {
	if p.Out == nil {
		return 0, false
	}
	return p.Out.Moment.Sub(p.In.Moment), true
}

type bucketKey struct {
	employeeID int64
	day        time.Time
}

// Day возвращает сутки UTC, к которым относится момент.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PairDay разбивает события одного сотрудника за одни сутки на пары.
// Нечётные по порядку события (1-е, 3-е, ...), входы, следующее за входом, выход.
func PairDay(events []entities.ReportEvent) []Pair {
	sorted := append([]entities.ReportEvent(nil), events...)
	sortEvents(sorted)

	pairs := make([]Pair, 0, (len(sorted)+1)/2)
	for i := 0; i < len(sorted); i += 2 {
		p := Pair{In: sorted[i]}
		if i+1 < len(sorted) {
			out := sorted[i+1]
			p.Out = &out
		}
		pairs = append(pairs, p)
	}
	return pairs
}

func sortEvents(events []entities.ReportEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Moment.Equal(events[j].Moment) {
			return events[i].Moment.Before(events[j].Moment)
		}
		return events[i].ID < events[j].ID
	})
}

// PairByDay группирует события по (сотрудник, сутки) и возвращает пары каждых суток
// по возрастанию момента входа.
func PairByDay(events []entities.ReportEvent) map[time.Time][]Pair {
	buckets := make(map[bucketKey][]entities.ReportEvent)
	for _, ev := range events {
		k := bucketKey{employeeID: ev.EmployeeID, day: Day(ev.Moment)}
		buckets[k] = append(buckets[k], ev)
	}

	days := make(map[time.Time][]Pair)
	for k, evs := range buckets {
		days[k.day] = append(days[k.day], PairDay(evs)...)
	}
	for day := range days {
		pairs := days[day]
		sort.SliceStable(pairs, func(i, j int) bool {
			if !pairs[i].In.Moment.Equal(pairs[j].In.Moment) {
				return pairs[i].In.Moment.Before(pairs[j].In.Moment)
			}
			return pairs[i].In.ID < pairs[j].In.ID
		})
	}
	return days
}

// LineCount считает ⌈events/2⌉.
func LineCount(events int) int {
	return (events + 1) / 2
}
