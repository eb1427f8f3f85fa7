package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
)

const selectEmployees = `
	SELECT
		e.id,
		e.name,
		e.email,
		e.days_per_week,
		e.is_flexible,
		e.federal_state,
		e.is_active,
		e.created_at,
		e.version,
		epd.day
	FROM employees e
	LEFT JOIN employee_preferred_days epd ON e.id = epd.employee_id
`

// scanEmployees folds the one-row-per-preferred-day result back into employees, keeping the
// order in which employees first appear.
func scanEmployees(rows *sql.Rows) ([]*domain.Employee, error) {
	employees := make([]*domain.Employee, 0)
	index := make(map[int64]*domain.Employee)

	for rows.Next() {
		var row struct {
			ID           int64
			Name         string
			Email        string
			DaysPerWeek  int32
			IsFlexible   bool
			FederalState sql.NullString
			IsActive     bool
			CreatedAt    time.Time
			Version      int32

			Day sql.NullInt32
		}

		dst := []any{
			&row.ID,
			&row.Name,
			&row.Email,
			&row.DaysPerWeek,
			&row.IsFlexible,
			&row.FederalState,
			&row.IsActive,
			&row.CreatedAt,
			&row.Version,
			&row.Day,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		emp, exists := index[row.ID]
		if !exists {
			emp = &domain.Employee{
				ID:            row.ID,
				Name:          row.Name,
				Email:         row.Email,
				DaysPerWeek:   row.DaysPerWeek,
				IsFlexible:    row.IsFlexible,
				PreferredDays: make([]int32, 0),
				IsActive:      row.IsActive,
				CreatedAt:     row.CreatedAt,
				Version:       row.Version,
			}
			if row.FederalState.Valid {
				state := row.FederalState.String
				emp.FederalState = &state
			}
			index[row.ID] = emp
			employees = append(employees, emp)
		}

		// no preferred days at all
		if !row.Day.Valid {
			continue
		}
		emp.PreferredDays = append(emp.PreferredDays, row.Day.Int32)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

// ListActiveEmployees returns the planning roster in id order.
func (r *Repository) ListActiveEmployees(ctx context.Context) ([]*domain.Employee, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := selectEmployees + `
		WHERE e.is_active = TRUE
		ORDER BY e.id, epd.day
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEmployees(rows)
}

func (r *Repository) GetAllEmployees(ctx context.Context) ([]*domain.Employee, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := selectEmployees + `
		ORDER BY e.id, epd.day
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEmployees(rows)
}

func (r *Repository) GetEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := selectEmployees + `
		WHERE e.id = $1
		ORDER BY epd.day
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees, err := scanEmployees(rows)
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return nil, sql.ErrNoRows
	}

	return employees[0], nil
}

func (r *Repository) CreateEmployee(ctx context.Context, emp *domain.Employee) error {
	ctx, cancel := r.transactionContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO employees (name, email, days_per_week, is_flexible, federal_state)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, version
	`
	args := []any{emp.Name, emp.Email, emp.DaysPerWeek, emp.IsFlexible, emp.FederalState}
	dst := []any{&emp.ID, &emp.IsActive, &emp.CreatedAt, &emp.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	if err := insertPreferredDays(ctx, tx, emp); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// UpdateEmployee writes emp if its version is still current; a stale version yields
// sql.ErrNoRows.
func (r *Repository) UpdateEmployee(ctx context.Context, emp *domain.Employee) error {
	ctx, cancel := r.transactionContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE employees
		SET
			name = $1,
			email = $2,
			days_per_week = $3,
			is_flexible = $4,
			federal_state = $5,
			is_active = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`
	args := []any{emp.Name, emp.Email, emp.DaysPerWeek, emp.IsFlexible, emp.FederalState, emp.IsActive, emp.ID, emp.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&emp.Version); err != nil {
		return err
	}

	query = `
		DELETE FROM employee_preferred_days WHERE employee_id = $1
	`
	if _, err := tx.ExecContext(ctx, query, emp.ID); err != nil {
		return err
	}

	if err := insertPreferredDays(ctx, tx, emp); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func insertPreferredDays(ctx context.Context, tx *sql.Tx, emp *domain.Employee) error {
	query := `
		INSERT INTO employee_preferred_days (employee_id, day)
		VALUES ($1, $2)
	`
	for _, day := range emp.PreferredDays {
		if _, err := tx.ExecContext(ctx, query, emp.ID, day); err != nil {
			return err
		}
	}
	return nil
}

// DeleteEmployee removes the employee together with its preferred days and assignments.
func (r *Repository) DeleteEmployee(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		DELETE FROM employees WHERE id = $1
	`

	result, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
