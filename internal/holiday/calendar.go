package holiday

import (
	"context"
	"fmt"
	"time"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/de"
)

var stateHolidays = map[string][]*cal.Holiday{
	"BW": de.HolidaysBW,
	"BY": de.HolidaysBY,
	"BE": de.HolidaysBE,
	"BB": de.HolidaysBB,
	"HB": de.HolidaysHB,
	"HH": de.HolidaysHH,
	"HE": de.HolidaysHE,
	"MV": de.HolidaysMV,
	"NI": de.HolidaysNI,
	"NW": de.HolidaysNW,
	"RP": de.HolidaysRP,
	"SL": de.HolidaysSL,
	"SN": de.HolidaysSN,
	"ST": de.HolidaysST,
	"SH": de.HolidaysSH,
	"TH": de.HolidaysTH,
}

// Mariä Himmelfahrt is only a holiday in the Catholic municipalities of Bavaria, a
// state wide lookup leaves it out.
func municipalOnly(state string, date time.Time) bool {
	return state == "BY" && date.Month() == time.August && date.Day() == 15
}

// Calendar computes statutory public holidays of the German federal states.
type Calendar struct {
	states map[string][]*cal.Holiday
}

func NewCalendar() *Calendar {
	return &Calendar{states: stateHolidays}
}

func (c *Calendar) Holidays(_ context.Context, region string, year int) (Set, error) {
	state, ok := domain.NormalizeFederalState(region)
	if !ok {
		return Set{}, fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}
	list, ok := c.states[state]
	if !ok {
		return Set{}, fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}

	set := NewSet()
	for _, h := range list {
		actual, _ := h.Calc(year)
		// zero outside the years the holiday is in force
		if actual.IsZero() || municipalOnly(state, actual) {
			continue
		}
		set.add(time.Date(actual.Year(), actual.Month(), actual.Day(), 0, 0, 0, 0, time.UTC), h.Name)
	}
	return set, nil
}
