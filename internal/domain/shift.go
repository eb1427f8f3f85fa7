package domain

import (
	"errors"
	"time"
)

type ShiftType string

const (
	ShiftTypeWork        ShiftType = "work"
	ShiftTypeFree        ShiftType = "free"
	ShiftTypeSick        ShiftType = "sick"
	ShiftTypeVacation    ShiftType = "vacation"
	ShiftTypeAppointment ShiftType = "appointment"
)

// ErrAssignmentConflict reports that an (employee, date) pair is already taken.
var ErrAssignmentConflict = errors.New("shift assignment already exists for employee and date")

var ShiftTypes = []ShiftType{
	ShiftTypeWork,
	ShiftTypeFree,
	ShiftTypeSick,
	ShiftTypeVacation,
	ShiftTypeAppointment,
}

// ShiftAssignment is one row per (employee, calendar date). Date carries no time of day.
type ShiftAssignment struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employeeID"`
	Date       time.Time `json:"date"`
	ShiftType  ShiftType `json:"shiftType"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AssignmentKey identifies an (employee, date) pair; Date is formatted as DateLayout.
type AssignmentKey struct {
	EmployeeID int64
	Date       string
}

func (a *ShiftAssignment) Key() AssignmentKey {
	return AssignmentKey{EmployeeID: a.EmployeeID, Date: a.Date.Format(DateLayout)}
}
