package utils

import (
	"fmt"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
)

func ValidatePreferredDays(days []int32) error {
	seen := make(map[int32]bool, len(days))
	for _, day := range days {
		if day < 0 || day > 6 {
			return fmt.Errorf("preferred day %d is not a weekday index between 0 (Monday) and 6 (Sunday)", day)
		}
		if seen[day] {
			return fmt.Errorf("preferred day %d is listed twice", day)
		}
		seen[day] = true
	}
	return nil
}

// ValidateEmployee checks the planning attributes and normalizes the federal state code in place.
// An empty federal state is stored as no federal state.
func ValidateEmployee(emp *domain.Employee) error {
	if emp.DaysPerWeek < 0 || emp.DaysPerWeek > domain.DaysPerWeekSpan {
		return fmt.Errorf("days per week must be between 0 and %d", domain.DaysPerWeekSpan)
	}

	if err := ValidatePreferredDays(emp.PreferredDays); err != nil {
		return err
	}

	if emp.Region() == "" {
		emp.FederalState = nil
		return nil
	}
	state, ok := domain.NormalizeFederalState(emp.Region())
	if !ok {
		return fmt.Errorf("%q is not a German federal state code", emp.Region())
	}
	emp.FederalState = &state

	return nil
}
