package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/dsp-ops/shift-planner/backend/internal/planner"
	"github.com/dsp-ops/shift-planner/backend/internal/utils"
	"github.com/spf13/cobra"
)

type weekPlanner interface {
	PlanWeek(ctx context.Context, weekStart time.Time, mode domain.PlanMode) (*planner.Result, error)
	Propose(ctx context.Context, weekStart time.Time, mode domain.PlanMode) (*planner.Result, error)
}

func newPlanCmd() *cobra.Command {
	var (
		week   string
		mode   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:     "plan",
		Short:   "Auto-plan work shifts for one week",
		GroupID: "planning",
		Example: `  planctl plan --week 2025-03-10
  planctl plan --week 10.03.2025 --mode maximum --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			weekStart, planMode, err := parsePlanArgs(week, mode)
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			holidays, closeHolidays := e.holidayProvider()
			defer closeHolidays()

			pl, err := e.newPlanner(holidays)
			if err != nil {
				return err
			}

			employees, err := e.repo.GetAllEmployees(cmd.Context())
			if err != nil {
				return fmt.Errorf("list employees: %w", err)
			}

			return runPlan(cmd.Context(), cmd.OutOrStdout(), pl, employees, weekStart, planMode, dryRun)
		},
	}

	cmd.Flags().StringVarP(&week, "week", "w", "", "First day of the week (YYYY-MM-DD, DD/MM/YYYY or DD.MM.YYYY)")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(domain.PlanModeForecast), "Plan mode: forecast or maximum")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the plan without saving it")
	_ = cmd.MarkFlagRequired("week")

	return cmd
}

func parsePlanArgs(week, mode string) (time.Time, domain.PlanMode, error) {
	weekStart, err := utils.ParseDate(week)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid --week: %w", err)
	}
	planMode, err := domain.ParsePlanMode(mode)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid --mode: %w", err)
	}
	return weekStart, planMode, nil
}

func runPlan(
	ctx context.Context,
	w io.Writer,
	pl weekPlanner,
	employees []*domain.Employee,
	weekStart time.Time,
	mode domain.PlanMode,
	dryRun bool,
) error {
	run := pl.PlanWeek
	if dryRun {
		run = pl.Propose
	}

	res, err := run(ctx, weekStart, mode)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	printResult(w, res, employees, dryRun)
	return nil
}

func printResult(w io.Writer, res *planner.Result, employees []*domain.Employee, dryRun bool) {
	names := make(map[int64]string, len(employees))
	for _, emp := range employees {
		names[emp.ID] = emp.Name
	}

	PrintSection(w, fmt.Sprintf("Week %s", domain.NewWeek(res.WeekStart)))
	PrintLabelValue(w, "Mode", string(res.Mode))
	PrintLabelValue(w, "Run", res.RunID)

	byEmployee := res.ByEmployee()
	ids := make([]int64, 0, len(byEmployee))
	for id := range byEmployee {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if len(ids) > 0 {
		fmt.Fprintln(w)
	}
	for _, id := range ids {
		days := make([]string, 0, len(byEmployee[id]))
		for _, a := range byEmployee[id] {
			days = append(days, a.Date.Format("Mon 02.01."))
		}
		name, ok := names[id]
		if !ok {
			name = fmt.Sprintf("#%d", id)
		}
		PrintLabelValue(w, name, strings.Join(days, ", "))
	}

	reasons := make([]string, 0, len(res.Skipped))
	for reason := range res.Skipped {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		PrintWarning(w, fmt.Sprintf("%d employees skipped: %s", res.Skipped[reason], reason))
	}

	fmt.Fprintln(w)
	if dryRun {
		PrintSuccess(w, fmt.Sprintf("Dry run, %d assignments would be created.", len(res.Assignments)))
		return
	}
	PrintSuccess(w, res.Message())
}
