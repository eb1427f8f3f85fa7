// Package planner fills a week with work assignments for every active employee.
//
// Each employee is handled on its own in roster order: the seven days of the span are visited
// chronologically and a day is taken when it is not in the past, not already assigned, not
// a public holiday in the employee's federal state, the weekly target is not yet met and the
// day is eligible for the plan mode. All new rows of one run are saved in a single batch.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dsp-ops/shift-planner/backend/internal/clock"
	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/dsp-ops/shift-planner/backend/internal/holiday"
	"github.com/dsp-ops/shift-planner/backend/internal/metrics"
	"github.com/google/uuid"
)

// ErrConflict is returned when the store rejects the batch because an (employee, date) pair
// was taken in the meantime. Nothing of the run is saved.
var ErrConflict = domain.ErrAssignmentConflict

const (
	SkipReasonNoRegion      = "no_region"
	SkipReasonUnknownRegion = "unknown_region"
)

type RosterSource interface {
	ListActiveEmployees(ctx context.Context) ([]*domain.Employee, error)
}

type AssignmentStore interface {
	ListAssignments(ctx context.Context, from, to time.Time) ([]*domain.ShiftAssignment, error)
	// CreateAssignments saves all rows or none of them.
	CreateAssignments(ctx context.Context, batch []*domain.ShiftAssignment) error
}

type Options struct {
	// Location decides which calendar day "today" is. Defaults to UTC.
	Location *time.Location
	// IgnoreExistingWork stops existing work rows of the week from counting toward
	// DaysPerWeek, so only rows created in this run count.
	IgnoreExistingWork bool
	Clock              clock.Clock
	Metrics            metrics.PlannerMetrics
	Logger             *slog.Logger
}

type Planner struct {
	roster   RosterSource
	store    AssignmentStore
	holidays holiday.Provider

	loc                *time.Location
	ignoreExistingWork bool
	clock              clock.Clock
	metrics            metrics.PlannerMetrics
	logger             *slog.Logger
}

func New(roster RosterSource, store AssignmentStore, holidays holiday.Provider, opts Options) *Planner {
	p := &Planner{
		roster:             roster,
		store:              store,
		holidays:           holidays,
		loc:                opts.Location,
		ignoreExistingWork: opts.IgnoreExistingWork,
		clock:              opts.Clock,
		metrics:            opts.Metrics,
		logger:             opts.Logger,
	}
	if p.loc == nil {
		p.loc = time.UTC
	}
	if p.clock == nil {
		p.clock = clock.RealClock{}
	}
	if p.metrics == nil {
		p.metrics = metrics.Nop{}
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

type Result struct {
	RunID        string                    `json:"runID"`
	Mode         domain.PlanMode           `json:"mode"`
	WeekStart    time.Time                 `json:"weekStart"`
	WeekEnd      time.Time                 `json:"weekEnd"`
	CreatedCount int                       `json:"createdCount"`
	Assignments  []*domain.ShiftAssignment `json:"assignments"`
	Skipped      map[string]int            `json:"skipped"`
}

func (r *Result) Message() string {
	return fmt.Sprintf("Auto-plan for %s – %s in mode '%s' finished, %d assignments created.",
		r.WeekStart.Format(domain.DateLayout), r.WeekEnd.Format(domain.DateLayout), r.Mode, r.CreatedCount)
}

// ByEmployee groups the created assignments per employee, keeping date order.
func (r *Result) ByEmployee() map[int64][]*domain.ShiftAssignment {
	grouped := make(map[int64][]*domain.ShiftAssignment)
	for _, a := range r.Assignments {
		grouped[a.EmployeeID] = append(grouped[a.EmployeeID], a)
	}
	return grouped
}

// PlanWeek plans the 7-day span starting at weekStart and saves the new rows atomically.
func (p *Planner) PlanWeek(ctx context.Context, weekStart time.Time, mode domain.PlanMode) (*Result, error) {
	started := time.Now()

	res, err := p.Propose(ctx, weekStart, mode)
	if err == nil && len(res.Assignments) > 0 {
		if saveErr := p.store.CreateAssignments(ctx, res.Assignments); saveErr != nil {
			err = fmt.Errorf("save planned assignments: %w", saveErr)
		}
	}

	label := string(mode)
	if res != nil {
		label = string(res.Mode)
	}
	switch {
	case err == nil:
		p.metrics.ObservePlanRun(label, "success", time.Since(started))
	case errors.Is(err, ErrConflict):
		p.metrics.ObservePlanRun(label, "conflict", time.Since(started))
	case errors.Is(err, domain.ErrInvalidPlanMode):
		p.metrics.ObservePlanRun("invalid", "error", time.Since(started))
	default:
		p.metrics.ObservePlanRun(label, "error", time.Since(started))
	}
	if err != nil {
		return nil, err
	}

	p.metrics.AddAssignmentsCreated(string(res.Mode), res.CreatedCount)
	for reason, n := range res.Skipped {
		p.metrics.AddEmployeesSkipped(reason, n)
	}

	p.logger.Info("auto-plan finished",
		"run_id", res.RunID,
		"week_start", res.WeekStart.Format(domain.DateLayout),
		"mode", res.Mode,
		"created", res.CreatedCount,
		"duration", time.Since(started),
	)

	return res, nil
}

// Propose computes the assignments PlanWeek would create without saving them.
func (p *Planner) Propose(ctx context.Context, weekStart time.Time, mode domain.PlanMode) (*Result, error) {
	mode, err := domain.ParsePlanMode(string(mode))
	if err != nil {
		return nil, err
	}

	week := domain.NewWeek(weekStart)
	today := clock.Today(p.clock, p.loc)

	existing, err := p.store.ListAssignments(ctx, week.Start, week.End())
	if err != nil {
		return nil, fmt.Errorf("list existing assignments: %w", err)
	}
	taken := make(map[domain.AssignmentKey]*domain.ShiftAssignment, len(existing))
	for _, a := range existing {
		taken[a.Key()] = a
	}

	employees, err := p.roster.ListActiveEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}

	res := &Result{
		RunID:       uuid.NewString(),
		Mode:        mode,
		WeekStart:   week.Start,
		WeekEnd:     week.End(),
		Assignments: make([]*domain.ShiftAssignment, 0),
		Skipped:     make(map[string]int),
	}

	holidays := newHolidayMemo(p.holidays)

	for _, emp := range employees {
		if emp.Region() == "" {
			res.Skipped[SkipReasonNoRegion]++
			continue
		}
		region, ok := domain.NormalizeFederalState(emp.Region())
		if !ok {
			p.logger.Warn("employee has an unknown federal state, skipped", "employee_id", emp.ID, "federal_state", emp.Region())
			res.Skipped[SkipReasonUnknownRegion]++
			continue
		}

		created, err := p.planEmployee(ctx, emp, region, week, mode, today, taken, holidays)
		if err != nil {
			return nil, err
		}
		res.Assignments = append(res.Assignments, created...)
	}

	res.CreatedCount = len(res.Assignments)
	return res, nil
}

func (p *Planner) planEmployee(
	ctx context.Context,
	emp *domain.Employee,
	region string,
	week domain.Week,
	mode domain.PlanMode,
	today time.Time,
	taken map[domain.AssignmentKey]*domain.ShiftAssignment,
	holidays *holidayMemo,
) ([]*domain.ShiftAssignment, error) {
	assigned := int32(0)
	if !p.ignoreExistingWork {
		for _, day := range week.Days() {
			if a, exists := taken[domain.AssignmentKey{EmployeeID: emp.ID, Date: day.Format(domain.DateLayout)}]; exists && a.ShiftType == domain.ShiftTypeWork {
				assigned++
			}
		}
	}

	var created []*domain.ShiftAssignment
	for _, day := range week.Days() {
		if day.Before(today) {
			continue
		}
		if _, exists := taken[domain.AssignmentKey{EmployeeID: emp.ID, Date: day.Format(domain.DateLayout)}]; exists {
			continue
		}
		isHoliday, err := holidays.contains(ctx, region, day)
		if err != nil {
			return nil, fmt.Errorf("holidays for %s %d: %w", region, day.Year(), err)
		}
		if isHoliday {
			continue
		}
		if assigned >= emp.DaysPerWeek {
			continue
		}
		if !eligible(mode, emp, domain.WeekdayIndex(day)) {
			continue
		}

		created = append(created, &domain.ShiftAssignment{
			EmployeeID: emp.ID,
			Date:       day,
			ShiftType:  domain.ShiftTypeWork,
		})
		assigned++
	}

	return created, nil
}

// eligible reports whether a weekday may be planned. Both modes currently accept preferred
// days plus any day for flexible employees; they stay separate so they can diverge.
func eligible(mode domain.PlanMode, emp *domain.Employee, weekday int32) bool {
	switch mode {
	case domain.PlanModeMaximum:
		return emp.Prefers(weekday) || emp.IsFlexible
	default:
		return emp.Prefers(weekday) || emp.IsFlexible
	}
}

type regionYear struct {
	region string
	year   int
}

// holidayMemo loads each (region, year) set at most once per run.
type holidayMemo struct {
	provider holiday.Provider
	sets     map[regionYear]holiday.Set
}

func newHolidayMemo(provider holiday.Provider) *holidayMemo {
	return &holidayMemo{
		provider: provider,
		sets:     make(map[regionYear]holiday.Set),
	}
}

func (m *holidayMemo) contains(ctx context.Context, region string, day time.Time) (bool, error) {
	key := regionYear{region: region, year: day.Year()}
	set, ok := m.sets[key]
	if !ok {
		var err error
		set, err = m.provider.Holidays(ctx, region, day.Year())
		if err != nil {
			return false, err
		}
		m.sets[key] = set
	}
	return set.Contains(day), nil
}
