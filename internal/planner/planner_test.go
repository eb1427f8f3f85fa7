package planner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dsp-ops/shift-planner/backend/internal/clock"
	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/dsp-ops/shift-planner/backend/internal/holiday"
	"github.com/dsp-ops/shift-planner/backend/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type fakeRoster struct {
	employees []*domain.Employee
	err       error
}

func (f *fakeRoster) ListActiveEmployees(context.Context) ([]*domain.Employee, error) {
	return f.employees, f.err
}

type fakeStore struct {
	rows        []*domain.ShiftAssignment
	listErr     error
	createErr   error
	createCalls int
}

func (f *fakeStore) ListAssignments(_ context.Context, from, to time.Time) ([]*domain.ShiftAssignment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.ShiftAssignment
	for _, a := range f.rows {
		if !a.Date.Before(from) && !a.Date.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateAssignments(_ context.Context, batch []*domain.ShiftAssignment) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	seen := make(map[domain.AssignmentKey]bool)
	for _, a := range f.rows {
		seen[a.Key()] = true
	}
	for _, a := range batch {
		if seen[a.Key()] {
			return fmt.Errorf("insert shift assignment: %w", domain.ErrAssignmentConflict)
		}
		seen[a.Key()] = true
	}
	for _, a := range batch {
		a.ID = int64(len(f.rows) + 1)
		f.rows = append(f.rows, a)
	}
	return nil
}

func (f *fakeStore) countFor(employeeID int64) int {
	n := 0
	for _, a := range f.rows {
		if a.EmployeeID == employeeID {
			n++
		}
	}
	return n
}

type fakeHolidays struct {
	dates map[string][]time.Time
	err   error
	calls int
}

func (f *fakeHolidays) Holidays(_ context.Context, region string, year int) (holiday.Set, error) {
	f.calls++
	if f.err != nil {
		return holiday.Set{}, f.err
	}
	raw := []byte("{")
	first := true
	for _, d := range f.dates[region] {
		if d.Year() != year {
			continue
		}
		if !first {
			raw = append(raw, ',')
		}
		raw = append(raw, fmt.Sprintf("%q:%q", d.Format(domain.DateLayout), "test holiday")...)
		first = false
	}
	raw = append(raw, '}')

	var set holiday.Set
	if err := set.UnmarshalJSON(raw); err != nil {
		return holiday.Set{}, err
	}
	return set, nil
}

var (
	// Monday
	weekStart = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	monday    = weekStart
	tuesday   = weekStart.AddDate(0, 0, 1)
	wednesday = weekStart.AddDate(0, 0, 2)
	thursday  = weekStart.AddDate(0, 0, 3)
	friday    = weekStart.AddDate(0, 0, 4)
)

func region(s string) *string {
	return &s
}

func employee(id int64, daysPerWeek int32, flexible bool, preferred []int32, state *string) *domain.Employee {
	return &domain.Employee{
		ID:            id,
		Name:          fmt.Sprintf("employee %d", id),
		DaysPerWeek:   daysPerWeek,
		IsFlexible:    flexible,
		PreferredDays: preferred,
		FederalState:  state,
		IsActive:      true,
	}
}

func newTestPlanner(roster RosterSource, store AssignmentStore, provider holiday.Provider, now time.Time, opts Options) *Planner {
	opts.Clock = clock.NewFakeClock(now)
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(roster, store, provider, opts)
}

func datesOf(assignments []*domain.ShiftAssignment) []time.Time {
	dates := make([]time.Time, len(assignments))
	for i, a := range assignments {
		dates[i] = a.Date
	}
	return dates
}

func TestPlanWeek_Scenarios(t *testing.T) {
	ctx := context.Background()
	morning := weekStart.Add(8 * time.Hour)

	t.Run("A: preferred days only in forecast mode", func(t *testing.T) {
		roster := &fakeRoster{employees: []*domain.Employee{
			employee(1, 2, false, []int32{0, 2}, region("BY")),
		}}
		store := &fakeStore{}
		p := newTestPlanner(roster, store, holiday.NewCalendar(), morning, Options{})

		res, err := p.PlanWeek(ctx, weekStart, domain.PlanModeForecast)

		require.NoError(t, err)
		require.Equal(t, 2, res.CreatedCount)
		require.Equal(t, []time.Time{monday, wednesday}, datesOf(res.Assignments))
		for _, a := range res.Assignments {
			require.Equal(t, domain.ShiftTypeWork, a.ShiftType)
			require.Equal(t, int64(1), a.EmployeeID)
		}
		require.Equal(t, 1, store.createCalls)
		require.Len(t, store.rows, 2)
	})

	t.Run("B: holiday skipped, flexible falls through in maximum mode", func(t *testing.T) {
		roster := &fakeRoster{employees: []*domain.Employee{
			employee(1, 2, true, []int32{0, 2}, region("BY")),
		}}
		store := &fakeStore{}
		provider := &fakeHolidays{dates: map[string][]time.Time{"BY": {monday}}}
		p := newTestPlanner(roster, store, provider, morning, Options{})

		res, err := p.PlanWeek(ctx, weekStart, domain.PlanModeMaximum)

		require.NoError(t, err)
		require.Equal(t, 2, res.CreatedCount)
		require.ElementsMatch(t, []time.Time{tuesday, wednesday}, datesOf(res.Assignments))
		require.NotContains(t, datesOf(res.Assignments), monday)
	})

	t.Run("C: existing assignment is not duplicated and counts toward the target", func(t *testing.T) {
		roster := &fakeRoster{employees: []*domain.Employee{
			employee(1, 2, false, []int32{0, 2, 4}, region("BY")),
		}}
		store := &fakeStore{rows: []*domain.ShiftAssignment{
			{ID: 99, EmployeeID: 1, Date: wednesday, ShiftType: domain.ShiftTypeWork},
		}}
		p := newTestPlanner(roster, store, holiday.NewCalendar(), morning, Options{})

		res, err := p.PlanWeek(ctx, weekStart, domain.PlanModeForecast)

		require.NoError(t, err)
		require.Equal(t, 1, res.CreatedCount)
		require.Equal(t, []time.Time{monday}, datesOf(res.Assignments))
		require.Equal(t, 2, store.countFor(1))
	})

	t.Run("C: existing rows ignored for the target when configured", func(t *testing.T) {
		roster := &fakeRoster{employees: []*domain.Employee{
			employee(1, 2, false, []int32{0, 2, 4}, region("BY")),
		}}
		store := &fakeStore{rows: []*domain.ShiftAssignment{
			{ID: 99, EmployeeID: 1, Date: wednesday, ShiftType: domain.ShiftTypeWork},
		}}
		p := newTestPlanner(roster, store, holiday.NewCalendar(), morning, Options{IgnoreExistingWork: true})

		res, err := p.PlanWeek(ctx, weekStart, domain.PlanModeForecast)

		require.NoError(t, err)
		require.Equal(t, []time.Time{monday, friday}, datesOf(res.Assignments))
	})

	t.Run("existing non-work rows block the day but do not count", func(t *testing.T) {
		roster := &fakeRoster{employees: []*domain.Employee{
			employee(1, 2, false, []int32{0, 2, 4}, region("BY")),
		}}
		store := &fakeStore{rows: []*domain.ShiftAssignment{
			{ID: 99, EmployeeID: 1, Date: monday, ShiftType: domain.ShiftTypeVacation},
		}}
		p := newTestPlanner(roster, store, holiday.NewCalendar(), morning, Options{})

		res, err := p.PlanWeek(ctx, weekStart, domain.PlanModeForecast)

		require.NoError(t, err)
		require.Equal(t, []time.Time{wednesday, friday}, datesOf(res.Assignments))
	})
}

func TestPlanWeek_Properties(t *testing.T) {
	ctx := context.Background()
	morning := weekStart.Add(8 * time.Hour)

	t.Run("target ceiling respected", func(t *testing.T) {
		roster := &fakeRoster{employees: []*domain.Employee{
			employee(1, 3, true, nil, region("BE")),
			employee(2, 0, true, []int32{0, 1}, region("BE")),
			employee(3, 7, false, []int32{1}, region("BE")),
		}}
		store := &fakeStore{}
		p := newTestPlanner(roster, store, holiday.NewCalendar(), morning, Options{})

		res, err := p.PlanWeek(ctx, weekStart, domain.PlanModeMaximum)

		require.NoError(t, err)
		grouped := res.ByEmployee()
		require.Equal(t, []time.Time{monday, tuesday, wednesday}, datesOf(grouped[1]))
		require.Empty(t, grouped[2])
		require.Equal(t, []time.Time{tuesday}, datesOf(grouped[3]))
	})

	t.Run("no past-dated creation", func(t *testing.T) {
		roster := &fakeRoster{employees: []*domain.Employee{
			employee(1, 7, true, nil, region("HH")),
		}}
		store := &fakeStore{}
		// Wednesday 10:00 in Berlin
		berlin, err := time.LoadLocation("Europe/Berlin")
		require.NoError(t, err)
		now := time.Date(2025, 3, 12, 10, 0, 0, 0, berlin)
		p := newTestPlanner(roster, store, holiday.NewCalendar(), now, Options{Location: berlin})

		res, err := p.PlanWeek(ctx, weekStart, domain.PlanModeForecast)

		require.NoError(t, err)
		require.Equal(t, 5, res.CreatedCount)
		for _, a := range res.Assignments {
			require.False(t, a.Date.Before(wednesday), "created %s", a.Date)
		}
	})

	t.Run("past week creates nothing without error", func(t *testing.T) {
		roster := &fakeRoster{employees: []*domain.Employee{
			employee(1, 5, true, nil, region("HH")),
		}}
		store := &fakeStore{}
		p := newTestPlanner(roster, store, holiday.NewCalendar(), weekStart.AddDate(0, 1, 0), Options{})

		res, err := p.PlanWeek(ctx, weekStart, domain.PlanModeForecast)

		require.NoError(t, err)
		require.Zero(t, res.CreatedCount)
		require.Zero(t, store.createCalls)
	})

	t.Run("no holiday assignment across new year", func(t *testing.T) {
		roster := &fakeRoster{employees: []*domain.Employee{
			employee(1, 7, true, nil, region("BY")),
		}}
		store := &fakeStore{}
		start := time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC)
		p := newTestPlanner(roster, store, holiday.NewCalendar(), start, Options{})

		res, err := p.PlanWeek(ctx, start, domain.PlanModeForecast)

		require.NoError(t, err)
		require.Equal(t, 6, res.CreatedCount)
		require.NotContains(t, datesOf(res.Assignments), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	})

	t.Run("idempotent on immediate re-run", func(t *testing.T) {
		roster := &fakeRoster{employees: []*domain.Employee{
			employee(1, 2, false, []int32{0, 2}, region("BY")),
			employee(2, 3, true, []int32{4}, region("NW")),
			employee(3, 5, true, nil, region("SN")),
		}}
		store := &fakeStore{}
		p := newTestPlanner(roster, store, holiday.NewCalendar(), morning, Options{})

		first, err := p.PlanWeek(ctx, weekStart, domain.PlanModeMaximum)
		require.NoError(t, err)
		require.Equal(t, 10, first.CreatedCount)

		second, err := p.PlanWeek(ctx, weekStart, domain.PlanModeMaximum)
		require.NoError(t, err)
		require.Zero(t, second.CreatedCount)
		require.Len(t, store.rows, 10)
	})

	t.Run("no duplicate pairs after planning", func(t *testing.T) {
		roster := &fakeRoster{employees: []*domain.Employee{
			employee(1, 5, true, []int32{0, 1}, region("BY")),
			employee(2, 4, true, nil, region("BY")),
		}}
		store := &fakeStore{rows: []*domain.ShiftAssignment{
			{ID: 1, EmployeeID: 1, Date: tuesday, ShiftType: domain.ShiftTypeSick},
			{ID: 2, EmployeeID: 2, Date: thursday, ShiftType: domain.ShiftTypeWork},
		}}
		p := newTestPlanner(roster, store, holiday.NewCalendar(), morning, Options{})

		_, err := p.PlanWeek(ctx, weekStart, domain.PlanModeForecast)
		require.NoError(t, err)

		seen := make(map[domain.AssignmentKey]bool)
		for _, a := range store.rows {
			require.False(t, seen[a.Key()], "duplicate %v", a.Key())
			seen[a.Key()] = true
		}
	})

	t.Run("employees without region are skipped silently", func(t *testing.T) {
		roster := &fakeRoster{employees: []*domain.Employee{
			employee(1, 5, true, nil, nil),
			employee(2, 5, true, nil, region("")),
			employee(3, 5, true, nil, region("XX")),
			employee(4, 1, false, []int32{0}, region("nrw")),
		}}
		store := &fakeStore{}
		p := newTestPlanner(roster, store, holiday.NewCalendar(), morning, Options{})

		res, err := p.PlanWeek(ctx, weekStart, domain.PlanModeForecast)

		require.NoError(t, err)
		require.Equal(t, 1, res.CreatedCount)
		require.Equal(t, int64(4), res.Assignments[0].EmployeeID)
		require.Equal(t, 2, res.Skipped[SkipReasonNoRegion])
		require.Equal(t, 1, res.Skipped[SkipReasonUnknownRegion])
	})

	t.Run("results follow roster order then date", func(t *testing.T) {
		roster := &fakeRoster{employees: []*domain.Employee{
			employee(7, 2, false, []int32{3, 1}, region("BE")),
			employee(3, 1, false, []int32{0}, region("BE")),
		}}
		store := &fakeStore{}
		p := newTestPlanner(roster, store, holiday.NewCalendar(), morning, Options{})

		res, err := p.PlanWeek(ctx, weekStart, domain.PlanModeForecast)

		require.NoError(t, err)
		require.Len(t, res.Assignments, 3)
		require.Equal(t, int64(7), res.Assignments[0].EmployeeID)
		require.Equal(t, tuesday, res.Assignments[0].Date)
		require.Equal(t, thursday, res.Assignments[1].Date)
		require.Equal(t, int64(3), res.Assignments[2].EmployeeID)
	})

	t.Run("holiday sets are loaded once per region and year", func(t *testing.T) {
		roster := &fakeRoster{employees: []*domain.Employee{
			employee(1, 5, true, nil, region("BY")),
			employee(2, 5, true, nil, region("BY")),
			employee(3, 5, true, nil, region("HE")),
		}}
		provider := &fakeHolidays{}
		p := newTestPlanner(roster, &fakeStore{}, provider, morning, Options{})

		_, err := p.PlanWeek(ctx, weekStart, domain.PlanModeForecast)

		require.NoError(t, err)
		require.Equal(t, 2, provider.calls)
	})
}

func TestPlanWeek_Errors(t *testing.T) {
	ctx := context.Background()
	morning := weekStart.Add(8 * time.Hour)
	boom := errors.New("connection refused")

	t.Run("invalid mode", func(t *testing.T) {
		p := newTestPlanner(&fakeRoster{}, &fakeStore{}, holiday.NewCalendar(), morning, Options{})

		_, err := p.PlanWeek(ctx, weekStart, domain.PlanMode("everything"))

		require.True(t, errors.Is(err, domain.ErrInvalidPlanMode))
	})

	t.Run("empty mode means forecast", func(t *testing.T) {
		p := newTestPlanner(&fakeRoster{}, &fakeStore{}, holiday.NewCalendar(), morning, Options{})

		res, err := p.PlanWeek(ctx, weekStart, "")

		require.NoError(t, err)
		require.Equal(t, domain.PlanModeForecast, res.Mode)
	})

	t.Run("roster failure", func(t *testing.T) {
		store := &fakeStore{}
		p := newTestPlanner(&fakeRoster{err: boom}, store, holiday.NewCalendar(), morning, Options{})

		_, err := p.PlanWeek(ctx, weekStart, domain.PlanModeForecast)

		require.ErrorIs(t, err, boom)
		require.Zero(t, store.createCalls)
	})

	t.Run("store read failure", func(t *testing.T) {
		roster := &fakeRoster{employees: []*domain.Employee{employee(1, 5, true, nil, region("BY"))}}
		p := newTestPlanner(roster, &fakeStore{listErr: boom}, holiday.NewCalendar(), morning, Options{})

		_, err := p.PlanWeek(ctx, weekStart, domain.PlanModeForecast)

		require.ErrorIs(t, err, boom)
		require.Contains(t, err.Error(), "list existing assignments")
	})

	t.Run("holiday provider failure aborts the whole run", func(t *testing.T) {
		roster := &fakeRoster{employees: []*domain.Employee{
			employee(1, 5, true, nil, region("BY")),
		}}
		store := &fakeStore{}
		p := newTestPlanner(roster, store, &fakeHolidays{err: boom}, morning, Options{})

		_, err := p.PlanWeek(ctx, weekStart, domain.PlanModeForecast)

		require.ErrorIs(t, err, boom)
		require.Zero(t, store.createCalls)
		require.Empty(t, store.rows)
	})

	t.Run("conflict aborts the batch", func(t *testing.T) {
		roster := &fakeRoster{employees: []*domain.Employee{
			employee(1, 2, true, nil, region("BY")),
			employee(2, 2, true, nil, region("BY")),
		}}
		store := &fakeStore{createErr: fmt.Errorf("insert shift assignment: %w", domain.ErrAssignmentConflict)}
		p := newTestPlanner(roster, store, holiday.NewCalendar(), morning, Options{})

		_, err := p.PlanWeek(ctx, weekStart, domain.PlanModeForecast)

		require.ErrorIs(t, err, ErrConflict)
		require.Empty(t, store.rows)
	})
}

func TestPropose(t *testing.T) {
	roster := &fakeRoster{employees: []*domain.Employee{
		employee(1, 2, false, []int32{0, 2}, region("BY")),
	}}
	store := &fakeStore{}
	p := newTestPlanner(roster, store, holiday.NewCalendar(), weekStart, Options{})

	res, err := p.Propose(context.Background(), weekStart, domain.PlanModeForecast)

	require.NoError(t, err)
	require.Equal(t, 2, res.CreatedCount)
	require.Zero(t, store.createCalls)
	require.NotEmpty(t, res.RunID)
	require.Equal(t, "Auto-plan for 2025-03-10 – 2025-03-16 in mode 'forecast' finished, 2 assignments created.", res.Message())
}

func TestPlanWeek_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.NewPrometheus(reg, "test")
	require.NoError(t, err)

	roster := &fakeRoster{employees: []*domain.Employee{
		employee(1, 2, false, []int32{0, 2}, region("BY")),
		employee(2, 2, false, []int32{0, 2}, nil),
	}}
	p := newTestPlanner(roster, &fakeStore{}, holiday.NewCalendar(), weekStart, Options{Metrics: m})

	_, err = p.PlanWeek(context.Background(), weekStart, domain.PlanModeForecast)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg,
		"test_planner_runs_total",
		"test_planner_assignments_created_total",
		"test_planner_employees_skipped_total",
	)
	require.NoError(t, err)
	require.Equal(t, 3, count)
}
