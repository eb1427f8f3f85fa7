package domain

import (
	"slices"
	"time"
)

type Employee struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	DaysPerWeek   int32     `json:"daysPerWeek"`
	IsFlexible    bool      `json:"isFlexible"`
	PreferredDays []int32   `json:"preferredDays"` // 0 = Monday .. 6 = Sunday
	FederalState  *string   `json:"federalState"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	Version       int32     `json:"-"`
}

// Region returns the employee's federal state code, or "" when none is set.
func (e *Employee) Region() string {
	if e.FederalState == nil {
		return ""
	}
	return *e.FederalState
}

func (e *Employee) Prefers(weekday int32) bool {
	return slices.Contains(e.PreferredDays, weekday)
}
