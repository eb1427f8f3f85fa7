package domain

import (
	"errors"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

const DaysPerWeekSpan = 7

type PlanMode string

const (
	PlanModeForecast PlanMode = "forecast"
	PlanModeMaximum  PlanMode = "maximum"
)

var ErrInvalidPlanMode = errors.New("invalid plan mode")

// ParsePlanMode accepts "forecast" or "maximum"; an empty string means forecast.
func ParsePlanMode(s string) (PlanMode, error) {
	switch PlanMode(s) {
	case "":
		return PlanModeForecast, nil
	case PlanModeForecast, PlanModeMaximum:
		return PlanMode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPlanMode, s)
	}
}

// Week is the 7-day span starting at Start. Start is not required to be a Monday.
type Week struct {
	Start time.Time
}

func NewWeek(start time.Time) Week {
	return Week{Start: DateOf(start)}
}

func (w Week) End() time.Time {
	return w.Start.AddDate(0, 0, DaysPerWeekSpan-1)
}

func (w Week) Days() []time.Time {
	days := make([]time.Time, DaysPerWeekSpan)
	for offset := range days {
		days[offset] = w.Start.AddDate(0, 0, offset)
	}
	return days
}

func (w Week) String() string {
	return fmt.Sprintf("%s – %s", w.Start.Format(DateLayout), w.End().Format(DateLayout))
}

// DateOf drops the time of day, keeping the calendar date as seen in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekdayIndex maps a date to 0 = Monday .. 6 = Sunday.
func WeekdayIndex(t time.Time) int32 {
	return int32((t.Weekday() + 6) % 7)
}
