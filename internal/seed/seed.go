// Package seed loads employee rosters into the database.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/dsp-ops/shift-planner/backend/internal/utils"
)

// RosterHeaders are the columns a roster CSV must carry; extra columns are ignored.
var RosterHeaders = []string{"name", "email", "days_per_week", "is_flexible", "preferred_days", "federal_state"}

type EmployeeCreator interface {
	CreateEmployee(ctx context.Context, emp *domain.Employee) error
}

// ReadRoster parses a roster CSV. preferred_days is a comma separated list of weekday
// indices (0 = Monday), for example "0, 2, 4".
func ReadRoster(r io.Reader) ([]*domain.Employee, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(headers[i]))
	}
	for _, required := range RosterHeaders {
		if !slices.Contains(headers, required) {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	employees := make([]*domain.Employee, 0)
	line := 1
	for {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row: %w", err)
		}
		line++

		record := make(map[string]string, len(headers))
		for i, value := range row {
			record[headers[i]] = strings.TrimSpace(value)
		}

		emp, err := employeeFromRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		employees = append(employees, emp)
	}

	return employees, nil
}

func employeeFromRecord(record map[string]string) (*domain.Employee, error) {
	if record["name"] == "" {
		return nil, errors.New("name is empty")
	}

	emp := &domain.Employee{
		Name:          record["name"],
		Email:         record["email"],
		DaysPerWeek:   5,
		IsFlexible:    true,
		PreferredDays: make([]int32, 0),
	}

	if v := record["days_per_week"]; v != "" {
		days, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("days_per_week %q: %w", v, err)
		}
		emp.DaysPerWeek = int32(days)
	}

	if v := record["is_flexible"]; v != "" {
		flexible, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("is_flexible %q: %w", v, err)
		}
		emp.IsFlexible = flexible
	}

	for _, day := range strings.Split(record["preferred_days"], ",") {
		day = strings.TrimSpace(day)
		if day == "" {
			continue
		}
		dayInt, err := strconv.ParseInt(day, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("preferred_days %q: %w", day, err)
		}
		emp.PreferredDays = append(emp.PreferredDays, int32(dayInt))
	}

	if v := record["federal_state"]; v != "" {
		emp.FederalState = &v
	}

	if err := utils.ValidateEmployee(emp); err != nil {
		return nil, err
	}

	return emp, nil
}

// SeedRoster creates every employee and reports how many were stored. A failing row is
// logged and skipped.
func SeedRoster(ctx context.Context, store EmployeeCreator, employees []*domain.Employee) int {
	created := 0
	for _, emp := range employees {
		if err := store.CreateEmployee(ctx, emp); err != nil {
			slog.Error("failed to insert employee", "name", emp.Name, "error", err)
			continue
		}
		created++
	}
	return created
}
