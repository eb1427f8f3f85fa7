// Package export renders planned weeks as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Week plan"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var weekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func FileName(week domain.Week) string {
	return fmt.Sprintf("week_plan_%s.xlsx", week.Start.Format("20060102"))
}

// WriteWeekPlan writes one row per employee and one column per day of the week. A cell holds
// the shift type of that day or stays empty. Employees that only appear through assignments
// (for example deactivated ones) are appended after the roster.
func WriteWeekPlan(w io.Writer, week domain.Week, employees []*domain.Employee, assignments []*domain.ShiftAssignment) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	days := week.Days()
	headers := make([]string, 0, len(days)+1)
	headers = append(headers, "Employee")
	for _, day := range days {
		headers = append(headers, fmt.Sprintf("%s %s", weekdayLabels[domain.WeekdayIndex(day)], day.Format("02.01.2006")))
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "A", "A", 28); err != nil {
		return err
	}

	rows := make(map[int64]int, len(employees))
	names := make(map[int64]string, len(employees))
	order := make([]int64, 0, len(employees))
	for _, emp := range employees {
		if _, exists := rows[emp.ID]; exists {
			continue
		}
		rows[emp.ID] = len(order) + 2
		names[emp.ID] = emp.Name
		order = append(order, emp.ID)
	}
	for _, a := range assignments {
		if _, exists := rows[a.EmployeeID]; !exists {
			rows[a.EmployeeID] = len(order) + 2
			names[a.EmployeeID] = fmt.Sprintf("#%d", a.EmployeeID)
			order = append(order, a.EmployeeID)
		}
	}

	for _, id := range order {
		if err := f.SetCellValue(SheetName, fmt.Sprintf("A%d", rows[id]), names[id]); err != nil {
			return err
		}
	}

	for _, a := range assignments {
		offset := int(domain.DateOf(a.Date).Sub(week.Start).Hours() / 24)
		if offset < 0 || offset >= len(days) {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(offset+2, rows[a.EmployeeID])
		if err := f.SetCellValue(SheetName, cell, string(a.ShiftType)); err != nil {
			return err
		}
	}

	return f.Write(w)
}
