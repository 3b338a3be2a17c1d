package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"access-control/internal/entities"
)

var msk = time.FixedZone("+03:00", 3*3600)

func event(id, employee int64, moment time.Time) entities.ReportEvent {
	return entities.ReportEvent{
		ID:             id,
		Moment:         moment.UTC(),
		EmployeeID:     employee,
		DeviceID:       null.Int64From(1),
		DeviceTimezone: null.IntFrom(3 * 3600),
		CheckpointName: null.StringFrom("Главный вход"),
	}
}

func countsOf(events []entities.ReportEvent) []entities.ReportDayCount {
	type key struct {
		day time.Time
		emp int64
	}
	byKey := make(map[key]int)
	for _, ev := range events {
		byKey[key{Day(ev.Moment), ev.EmployeeID}]++
	}
	out := make([]entities.ReportDayCount, 0, len(byKey))
	for k, n := range byKey {
		out = append(out, entities.ReportDayCount{Day: k.day, EmployeeID: k.emp, Events: n})
	}
	return out
}

func buildReport(events []entities.ReportEvent, page Page, h Hydration) []Line {
	windows := Paginate(DayLinesFromCounts(countsOf(events)), page)
	return Assemble(windows, PairByDay(events), h)
}

func scheduleNineToSix() Hydration {
	return Hydration{
		Schedules: map[int64]Schedule{
			7: {Start: null.StringFrom("09:00"), End: null.StringFrom("18:00")},
		},
		Departments: map[int64]entities.Department{},
	}
}

func TestPairDayOddEventsAreEntries(t *testing.T) {
	base := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	events := []entities.ReportEvent{
		event(3, 1, base.Add(2*time.Hour)),
		event(1, 1, base),
		event(5, 1, base.Add(4*time.Hour)),
		event(2, 1, base.Add(time.Hour)),
		event(4, 1, base.Add(3*time.Hour)),
	}
	pairs := PairDay(events)
	require.Len(t, pairs, 3)
	assert.Equal(t, int64(1), pairs[0].In.ID)
	assert.Equal(t, int64(2), pairs[0].Out.ID)
	assert.Equal(t, int64(3), pairs[1].In.ID)
	assert.Equal(t, int64(4), pairs[1].Out.ID)
	assert.Equal(t, int64(5), pairs[2].In.ID)
	assert.Nil(t, pairs[2].Out)

	_, ok := pairs[2].Duration()
	assert.False(t, ok)
}

func TestPairingAndTardiness(t *testing.T) {
	day := func(h, m int) time.Time { return time.Date(2024, 3, 4, h, m, 0, 0, msk) }
	events := []entities.ReportEvent{
		event(1, 7, day(8, 55)),
		event(2, 7, day(12, 10)),
		event(3, 7, day(12, 55)),
		event(4, 7, day(18, 1)),
	}

	lines := buildReport(events, Page{}, scheduleNineToSix())
	require.Len(t, lines, 2)

	assert.Equal(t, "08:55", lines[0].IncomingTime)
	require.NotNil(t, lines[0].OutcomingTime)
	assert.Equal(t, "12:10", *lines[0].OutcomingTime)
	assert.Equal(t, "03:15", lines[0].TimeCount)
	assert.False(t, lines[0].IsLater)

	assert.Equal(t, "12:55", lines[1].IncomingTime)
	assert.Equal(t, "18:01", *lines[1].OutcomingTime)
	assert.Equal(t, "05:06", lines[1].TimeCount)
	assert.False(t, lines[1].IsLater)

	assert.Equal(t, "+03:00", lines[0].UTC)
	assert.Equal(t, "Главный вход / Главный вход", lines[0].Checkpoints)
	assert.Equal(t, "04.03.2024", lines[0].Date)
	assert.Equal(t, "Март", lines[0].Month)
	assert.Equal(t, "пн", lines[0].WeekDay)
	assert.Equal(t, "09:00", lines[0].PlannedStart)
	assert.Equal(t, "09:00", lines[0].PlannedCount)

	// опоздание первого входа распространяется на все строки дня
	events[0] = event(1, 7, day(9, 5))
	lines = buildReport(events, Page{}, scheduleNineToSix())
	require.Len(t, lines, 2)
	assert.True(t, lines[0].IsLater)
	assert.True(t, lines[1].IsLater)
	assert.Equal(t, "03:05", lines[0].TimeCount)
}

func TestUnpairedEntryRendersDash(t *testing.T) {
	ev := event(1, 7, time.Date(2024, 3, 4, 9, 0, 0, 0, msk))
	ev.CheckpointName = null.String{}
	lines := buildReport([]entities.ReportEvent{ev}, Page{}, Hydration{})
	require.Len(t, lines, 1)
	assert.Nil(t, lines[0].OutcomingTime)
	assert.Equal(t, "-", lines[0].TimeCount)
	assert.Equal(t, "-", lines[0].Checkpoints)
	assert.Equal(t, "-", lines[0].PlannedStart)
	assert.False(t, lines[0].IsLater)
}

func TestDisplayOffsetFallsBackToOutgoingDevice(t *testing.T) {
	in := event(1, 7, time.Date(2024, 3, 4, 6, 0, 0, 0, time.UTC))
	in.DeviceTimezone = null.Int{}
	out := event(2, 7, time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC))
	out.DeviceTimezone = null.IntFrom(5 * 3600)

	lines := buildReport([]entities.ReportEvent{in, out}, Page{}, Hydration{})
	require.Len(t, lines, 1)
	assert.Equal(t, "+05:00", lines[0].UTC)
	assert.Equal(t, "11:00", lines[0].IncomingTime)
}

// сутки D1..D5 от новых к старым со строками 3, 1, 4, 2, 5
func fiveDays() []DayLines {
	newest := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	counts := []int{3, 1, 4, 2, 5}
	days := make([]DayLines, len(counts))
	for i, n := range counts {
		days[i] = DayLines{Day: newest.AddDate(0, 0, -i), Lines: n}
	}
	return days
}

func TestPaginateVirtualLines(t *testing.T) {
	days := fiveDays()
	d := func(i int) time.Time { return days[i-1].Day }

	assert.Equal(t, []Window{{d(1), 0, 3}, {d(2), 0, 1}}, Paginate(days, Page{From: 0, PerPage: 4}))
	assert.Equal(t, []Window{{d(3), 0, 4}}, Paginate(days, Page{From: 1, PerPage: 4}))
	assert.Equal(t, []Window{{d(4), 0, 2}, {d(5), 0, 2}}, Paginate(days, Page{From: 2, PerPage: 4}))
	assert.Equal(t, []Window{{d(5), 2, 5}}, Paginate(days, Page{From: 3, PerPage: 4}))
	assert.Empty(t, Paginate(days, Page{From: 4, PerPage: 4}))

	// count склеивает соседние страницы
	assert.Equal(t, []Window{{d(1), 0, 3}, {d(2), 0, 1}, {d(3), 0, 4}}, Paginate(days, Page{From: 0, PerPage: 4, Count: 2}))
	assert.Equal(t, 15, TotalLines(days))
}

func TestPaginationCompleteness(t *testing.T) {
	days := fiveDays()

	type lineRef struct {
		day time.Time
		idx int
	}
	var full []lineRef
	for _, w := range Paginate(days, Page{}) {
		for i := w.From; i < w.To; i++ {
			full = append(full, lineRef{w.Day, i})
		}
	}
	require.Len(t, full, 15)

	for perPage := 1; perPage <= 16; perPage++ {
		var got []lineRef
		for from := 0; ; from++ {
			windows := Paginate(days, Page{From: from, PerPage: perPage})
			if len(windows) == 0 {
				break
			}
			n := 0
			for _, w := range windows {
				for i := w.From; i < w.To; i++ {
					got = append(got, lineRef{w.Day, i})
					n++
				}
			}
			assert.LessOrEqual(t, n, perPage)
		}
		assert.Equal(t, full, got, "perPage=%d", perPage)
	}
}

func TestDayLinesFromCounts(t *testing.T) {
	d1 := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	days := DayLinesFromCounts([]entities.ReportDayCount{
		{Day: d1, EmployeeID: 1, Events: 3},
		{Day: d1, EmployeeID: 2, Events: 2},
		{Day: d2, EmployeeID: 1, Events: 1},
	})
	assert.Equal(t, []DayLines{{d2, 1}, {d1, 3}}, days)

	from, to, ok := EventRange(Paginate(days, Page{}))
	require.True(t, ok)
	assert.Equal(t, d1, from)
	assert.Equal(t, d2.AddDate(0, 0, 1), to)
}

func TestReportOrderNewestDayFirst(t *testing.T) {
	older := time.Date(2024, 3, 4, 9, 0, 0, 0, msk)
	newer := older.AddDate(0, 0, 1)
	events := []entities.ReportEvent{
		event(1, 7, older),
		event(2, 8, older.Add(-time.Hour)),
		event(3, 7, newer),
	}
	lines := buildReport(events, Page{}, Hydration{})
	require.Len(t, lines, 3)
	assert.Equal(t, int64(3), lines[0].ID)
	assert.Equal(t, int64(2), lines[1].ID)
	assert.Equal(t, int64(1), lines[2].ID)
}

func TestHydrationPrefersOverrideAndScopedDepartment(t *testing.T) {
	orgs := []entities.Organization{
		{ID: 1, TimesheetStart: null.StringFrom("09:00"), TimesheetEnd: null.StringFrom("18:00")},
		{ID: 2, TimesheetStart: null.StringFrom("08:00"), TimesheetEnd: null.StringFrom("17:00")},
	}
	links := []entities.EmployeeOrganization{
		{EmployeeID: 7, OrganizationID: 2},
		{EmployeeID: 7, OrganizationID: 1, TimesheetStart: null.StringFrom("10:00"), TimesheetEnd: null.StringFrom("19:00")},
	}
	deps := []entities.ReportDepartmentLink{
		{EmployeeID: 7, Department: entities.Department{ID: 5, OrganizationID: 2, ShowInReport: true}},
		{EmployeeID: 7, Department: entities.Department{ID: 9, OrganizationID: 1, ShowInReport: true}},
		{EmployeeID: 7, Department: entities.Department{ID: 3, OrganizationID: 1, ShowInReport: false}},
	}
	sel := entities.ReportSelection{EntityType: entities.ReportAll}

	// без области берётся первая по id организация сотрудника и её личный график
	h := BuildHydration(0, sel, []int64{7}, links, orgs, deps)
	assert.Equal(t, "10:00", h.Schedules[7].Start.String)
	assert.Equal(t, int64(9), h.Departments[7].ID)

	h = BuildHydration(2, sel, []int64{7}, links, orgs, deps)
	assert.Equal(t, "08:00", h.Schedules[7].Start.String)
	assert.Equal(t, int64(5), h.Departments[7].ID)

	// в организации 3 подразделений нет, чужие не подставляются
	h = BuildHydration(3, sel, []int64{7}, links, orgs, deps)
	assert.False(t, h.Schedules[7].Complete())
	assert.NotContains(t, h.Departments, int64(7))

	assert.Equal(t, []int64{1}, OrganizationIDs(0, entities.ReportSelection{EntityType: entities.ReportOrganization, EntityID: 1}, links))
	assert.Equal(t, []int64{2}, OrganizationIDs(2, sel, links))
}

func TestHydrationSkipsDepartmentOfOtherOrganization(t *testing.T) {
	links := []entities.EmployeeOrganization{
		{EmployeeID: 7, OrganizationID: 1},
		{EmployeeID: 7, OrganizationID: 2},
	}
	deps := []entities.ReportDepartmentLink{
		{EmployeeID: 7, Department: entities.Department{ID: 5, OrganizationID: 2, Name: "Чужое", ShowInReport: true}},
	}
	sel := entities.ReportSelection{EntityType: entities.ReportAll}

	h := BuildHydration(1, sel, []int64{7}, links, nil, deps)
	assert.NotContains(t, h.Departments, int64(7))

	_, ok := PickDepartment([]entities.Department{deps[0].Department}, 0)
	assert.False(t, ok)

	// без подразделения в XLSX ставится прочерк
	ev := event(1, 7, time.Date(2024, 3, 4, 9, 0, 0, 0, msk))
	lines := buildReport([]entities.ReportEvent{ev}, Page{}, h)
	require.Len(t, lines, 1)
	assert.False(t, lines[0].Department.Valid)
	assert.Equal(t, "-", Row(lines[0], nil, h.Departments)[7])
}

func TestRenderXLSX(t *testing.T) {
	day := func(h, m int) time.Time { return time.Date(2024, 3, 4, h, m, 0, 0, msk) }
	events := []entities.ReportEvent{
		event(1, 7, day(8, 55)),
		event(2, 7, day(12, 10)),
		event(3, 8, day(13, 0)),
	}
	h := scheduleNineToSix()
	h.Departments[7] = entities.Department{ID: 4, Name: "Бухгалтерия"}
	lines := buildReport(events, Page{}, h)
	require.Len(t, lines, 2)

	employees := map[int64]entities.Employee{
		7: {ID: 7, LastName: "Иванов", FirstName: "Иван", Patronymic: "Иванович"},
	}
	departments := map[int64]entities.Department{4: {ID: 4, Name: "Бухгалтерия"}}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, lines, employees, departments))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	cell := func(name string) string {
		v, err := f.GetCellValue(SheetName, name)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Место и дата регистрации", cell("A1"))
	assert.Equal(t, "Информация о сотруднике", cell("E1"))
	assert.Equal(t, "Факт", cell("I1"))
	assert.Equal(t, "План", cell("L1"))
	assert.Equal(t, "Проходная", cell("A2"))
	assert.Equal(t, "Прод. (план)", cell("N2"))

	merged, err := f.GetMergeCells(SheetName)
	require.NoError(t, err)
	ranges := make([]string, 0, len(merged))
	for _, m := range merged {
		ranges = append(ranges, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	assert.ElementsMatch(t, []string{"A1:D1", "E1:H1", "I1:K1", "L1:N1"}, ranges)

	assert.Equal(t, "Иванов Иван Иванович", cell("E3"))
	assert.Equal(t, "нет в базе", cell("F3"))
	assert.Equal(t, "нет в базе", cell("G3"))
	assert.Equal(t, "Бухгалтерия", cell("H3"))
	assert.Equal(t, "03:15", cell("K3"))
	assert.Equal(t, "09:00", cell("L3"))

	// сотрудник без графика: план прочерками
	assert.Equal(t, "-", cell("J4"))
	assert.Equal(t, "-", cell("L4"))
	assert.Equal(t, "-", cell("N4"))
	assert.Equal(t, "Кол-во: 2", cell("A5"))

	width, err := f.GetColWidth(SheetName, "E")
	require.NoError(t, err)
	assert.Equal(t, float64(len([]rune("Иванов Иван Иванович"))+4), width)
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "Report Ромашка 2024_03_04.xlsx", FileName("Ромашка", at))
	assert.Equal(t, "Report Все 2024_03_04.xlsx", FileName("", at))
}
