// Package holiday answers which calendar dates are public holidays in a German federal state.
package holiday

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
)

var ErrUnknownRegion = errors.New("unknown holiday region")

// Provider returns the holiday set of one region for one calendar year. Implementations
// must return the same set for the same (region, year) within a planning run.
type Provider interface {
	Holidays(ctx context.Context, region string, year int) (Set, error)
}

// Set maps a date (domain.DateLayout) to the holiday's name.
type Set struct {
	dates map[string]string
}

func NewSet() Set {
	return Set{dates: make(map[string]string)}
}

func (s Set) add(date time.Time, name string) {
	key := date.Format(domain.DateLayout)
	if _, exists := s.dates[key]; !exists {
		s.dates[key] = name
	}
}

func (s Set) Contains(date time.Time) bool {
	_, ok := s.dates[date.Format(domain.DateLayout)]
	return ok
}

func (s Set) Name(date time.Time) (string, bool) {
	name, ok := s.dates[date.Format(domain.DateLayout)]
	return name, ok
}

func (s Set) Len() int {
	return len(s.dates)
}

// Dates returns the holidays in chronological order.
func (s Set) Dates() []time.Time {
	dates := make([]time.Time, 0, len(s.dates))
	for key := range s.dates {
		date, _ := time.Parse(domain.DateLayout, key)
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates
}

func (s Set) MarshalJSON() ([]byte, error) {
	if s.dates == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.dates)
}

func (s *Set) UnmarshalJSON(data []byte) error {
	dates := make(map[string]string)
	if err := json.Unmarshal(data, &dates); err != nil {
		return err
	}
	s.dates = dates
	return nil
}

// IsHoliday looks up the set for the date's own year, so a span crossing New Year resolves
// 1 January against the following year.
func IsHoliday(ctx context.Context, p Provider, region string, date time.Time) (bool, error) {
	set, err := p.Holidays(ctx, region, date.Year())
	if err != nil {
		return false, err
	}
	return set.Contains(date), nil
}
