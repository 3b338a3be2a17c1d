package report

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"access-control/internal/entities"
)

const (
	SheetName       = "Отчёт"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	notInDatabase   = "нет в базе"
)

type headerGroup struct {
	Title   string
	Columns []string
}

// порядок групп и колонок фиксирован
var headerGroups = []headerGroup{
	{"Место и дата регистрации", []string{"Проходная", "Месяц", "Дата", "д.н."}},
	{"Информация о сотруднике", []string{"ФИО", "Табельный №", "Должность", "Подразделение"}},
	{"Факт", []string{"Приход (факт)", "Уход (факт)", "Прод. (факт)"}},
	{"План", []string{"Приход (план)", "Уход (план)", "Прод. (план)"}},
}

// Columns возвращает подзаголовки по порядку.
func Columns() []string {
	cols := make([]string, 0, 14)
	for _, g := range headerGroups {
		cols = append(cols, g.Columns...)
	}
	return cols
}

// Row раскладывает строку отчёта в порядке Columns().
func Row(l Line, employees map[int64]entities.Employee, departments map[int64]entities.Department) []string {
	fio := dash
	if e, ok := employees[l.Employee]; ok {
		fio = e.FullName()
	}
	department := dash
	if l.Department.Valid {
		if d, ok := departments[l.Department.Int64]; ok {
			department = d.Name
		}
	}
	out := dash
	if l.OutcomingTime != nil {
		out = *l.OutcomingTime
	}
	return []string{
		l.Checkpoints, l.Month, l.Date, l.WeekDay,
		fio, notInDatabase, notInDatabase, department,
		l.IncomingTime, out, l.TimeCount,
		l.PlannedStart, l.PlannedEnd, l.PlannedCount,
	}
}

// RenderXLSX строит книгу: два ряда заголовков, строки отчёта и итог "Кол-во: N".
func RenderXLSX(lines []Line, employees map[int64]entities.Employee, departments map[int64]entities.Department) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	cols := Columns()
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = utf8.RuneCountInString(c)
	}

	col := 1
	for _, g := range headerGroups {
		first, _ := excelize.CoordinatesToCellName(col, 1)
		last, _ := excelize.CoordinatesToCellName(col+len(g.Columns)-1, 1)
		if err := f.SetCellValue(SheetName, first, g.Title); err != nil {
			return nil, err
		}
		if err := f.MergeCell(SheetName, first, last); err != nil {
			return nil, err
		}
		col += len(g.Columns)
	}
	if err := f.SetSheetRow(SheetName, "A2", &cols); err != nil {
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(cols), 2)
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, bold); err != nil {
		return nil, err
	}

	for i, l := range lines {
		row := Row(l, employees, departments)
		for j, v := range row {
			if w := utf8.RuneCountInString(v); w > widths[j] {
				widths[j] = w
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	totalCell, _ := excelize.CoordinatesToCellName(1, len(lines)+3)
	if err := f.SetCellValue(SheetName, totalCell, fmt.Sprintf("Кол-во: %d", len(lines))); err != nil {
		return nil, err
	}

	for i, w := range widths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, name, name, float64(w+4)); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// WriteXLSX рендерит книгу прямо в w.
func WriteXLSX(w io.Writer, lines []Line, employees map[int64]entities.Employee, departments map[int64]entities.Department) error {
	f, err := RenderXLSX(lines, employees, departments)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// FileName строит имя "Report <name> YYYY_MM_DD.xlsx".
func FileName(name string, at time.Time) string {
	if name == "" {
		name = "Все"
	}
	return fmt.Sprintf("Report %s %s.xlsx", name, at.Format("2006_01_02"))
}
