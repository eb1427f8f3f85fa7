package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	constraintAssignmentUnique   = "shift_assignments_employee_id_date_key"
	constraintAssignmentEmployee = "shift_assignments_employee_id_fkey"
)

// ErrEmployeeNotFound is returned when an assignment references an employee that does not exist.
var ErrEmployeeNotFound = errors.New("employee not found")

// assignmentError turns constraint violations into domain errors and leaves the rest untouched.
func assignmentError(err error, a *domain.ShiftAssignment) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.ConstraintName {
	case constraintAssignmentUnique:
		return fmt.Errorf("%w: employee %d on %s", domain.ErrAssignmentConflict, a.EmployeeID, a.Date.Format(domain.DateLayout))
	case constraintAssignmentEmployee:
		return fmt.Errorf("%w: id %d", ErrEmployeeNotFound, a.EmployeeID)
	default:
		return err
	}
}

// ListAssignments returns all assignments dated from..to inclusive, ordered by date and employee.
func (r *Repository) ListAssignments(ctx context.Context, from, to time.Time) ([]*domain.ShiftAssignment, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT id, employee_id, date, shift_type, created_at
		FROM shift_assignments
		WHERE date BETWEEN $1 AND $2
		ORDER BY date, employee_id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, domain.DateOf(from), domain.DateOf(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]*domain.ShiftAssignment, 0)
	for rows.Next() {
		a := &domain.ShiftAssignment{}
		dst := []any{&a.ID, &a.EmployeeID, &a.Date, &a.ShiftType, &a.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		a.Date = domain.DateOf(a.Date)
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}

// CreateAssignments inserts the whole batch in one transaction. If any (employee, date) pair
// is already taken nothing is written and the error wraps domain.ErrAssignmentConflict.
func (r *Repository) CreateAssignments(ctx context.Context, batch []*domain.ShiftAssignment) error {
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
		INSERT INTO shift_assignments (employee_id, date, shift_type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	for _, a := range batch {
		if err := tx.QueryRowContext(ctx, query, a.EmployeeID, a.Date, a.ShiftType).Scan(&a.ID, &a.CreatedAt); err != nil {
			return assignmentError(err, a)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateAssignment(ctx context.Context, a *domain.ShiftAssignment) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO shift_assignments (employee_id, date, shift_type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	if err := r.dbpool.QueryRowContext(ctx, query, a.EmployeeID, a.Date, a.ShiftType).Scan(&a.ID, &a.CreatedAt); err != nil {
		return assignmentError(err, a)
	}

	return nil
}

func (r *Repository) DeleteAssignment(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		DELETE FROM shift_assignments WHERE id = $1
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
