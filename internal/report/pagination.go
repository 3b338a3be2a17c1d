package report

import (
	"sort"
	"time"

	"access-control/internal/entities"
)

// DayLines: число строк отчёта в сутках.
type DayLines struct {
	Day   time.Time
	Lines int
}

// Window: диапазон строк [From, To) внутри суток, строки суток по возрастанию времени входа.
type Window struct {
	Day  time.Time
	From int
	To   int
}

// Page: параметры страницы в пространстве строк отчёта.
// PerPage <= 0 означает весь отчёт.
type Page struct {
	From    int
	PerPage int
	Count   int
}

// DayLinesFromCounts суммирует ⌈events/2⌉ по сотрудникам за каждые сутки.
// Результат упорядочен от новых суток к старым.
func DayLinesFromCounts(counts []entities.ReportDayCount) []DayLines {
	byDay := make(map[time.Time]int)
	for _, c := range counts {
		byDay[Day(c.Day)] += LineCount(c.Events)
	}
	days := make([]DayLines, 0, len(byDay))
	for day, lines := range byDay {
		days = append(days, DayLines{Day: day, Lines: lines})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day.After(days[j].Day) })
	return days
}

func TotalLines(days []DayLines) int {
	total := 0
	for _, d := range days {
		total += d.Lines
	}
	return total
}

// Paginate переводит страницу в окна внутри суток. Сутки обходятся от новых к старым;
// страница занимает строки [from·perPage, from·perPage + perPage·count) сквозной нумерации.
func Paginate(days []DayLines, page Page) []Window {
	windows := make([]Window, 0)
	if page.PerPage <= 0 {
		for _, d := range days {
			if d.Lines > 0 {
				windows = append(windows, Window{Day: d.Day, From: 0, To: d.Lines})
			}
		}
		return windows
	}

	count := page.Count
	if count < 1 {
		count = 1
	}
	offset := page.From * page.PerPage
	limit := offset + page.PerPage*count

	before := 0
	for _, d := range days {
		if before >= limit {
			break
		}
		lo := max(0, offset-before)
		hi := min(d.Lines, limit-before)
		if lo < hi {
			windows = append(windows, Window{Day: d.Day, From: lo, To: hi})
		}
		before += d.Lines
	}
	return windows
}

// EventRange возвращает интервал [from, to), покрывающий все окна.
func EventRange(windows []Window) (time.Time, time.Time, bool) {
	if len(windows) == 0 {
		return time.Time{}, time.Time{}, false
	}
	from, to := windows[0].Day, windows[0].Day
	for _, w := range windows[1:] {
		if w.Day.Before(from) {
			from = w.Day
		}
		if w.Day.After(to) {
			to = w.Day
		}
	}
	return from, to.AddDate(0, 0, 1), true
}
