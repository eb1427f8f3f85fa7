package handler

import (
	"bytes"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/dsp-ops/shift-planner/backend/internal/export"
	"github.com/dsp-ops/shift-planner/backend/internal/planner"
	"github.com/dsp-ops/shift-planner/backend/internal/repository"
	"github.com/dsp-ops/shift-planner/backend/internal/utils"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID int64  `json:"employeeID" validate:"required,min=1"`
		Date       string `json:"date" validate:"required"`
		ShiftType  string `json:"shiftType" validate:"required,oneof=work free sick vacation appointment"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	a := &domain.ShiftAssignment{
		EmployeeID: req.EmployeeID,
		Date:       date,
		ShiftType:  domain.ShiftType(req.ShiftType),
	}

	if err := h.repository.CreateAssignment(r.Context(), a); err != nil {
		switch {
		case errors.Is(err, domain.ErrAssignmentConflict):
			h.conflictResponse(w, r, "the employee already has a shift on this date")
		case errors.Is(err, repository.ErrEmployeeNotFound):
			h.errorResponse(w, r, "employee not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "shift created", a)
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "invalid shift id")
		return
	}

	if err := h.repository.DeleteAssignment(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "shift not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "shift deleted", nil)
}

func (h *Handler) GetShiftsByWeek(w http.ResponseWriter, r *http.Request) {
	week := r.Context().Value(WeekCtx).(domain.Week)

	assignments, err := h.repository.ListAssignments(r.Context(), week.Start, week.End())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "shifts for "+week.String(), assignments)
}

func (h *Handler) ExportWeek(w http.ResponseWriter, r *http.Request) {
	week := r.Context().Value(WeekCtx).(domain.Week)

	assignments, err := h.repository.ListAssignments(r.Context(), week.Start, week.End())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	employees, err := h.repository.GetAllEmployees(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// rendered into memory first so a failure can still become an error response
	var buf bytes.Buffer
	if err := export.WriteWeekPlan(&buf, week, employees, assignments); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+export.FileName(week))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logInternalServerError(r, err)
	}
}

// planMode reads ?mode= and falls back to the configured default.
func (h *Handler) planMode(r *http.Request) (domain.PlanMode, error) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = h.config.Planner.DefaultMode
	}
	return domain.ParsePlanMode(mode)
}

func (h *Handler) AutoPlanWeek(w http.ResponseWriter, r *http.Request) {
	week := r.Context().Value(WeekCtx).(domain.Week)

	mode, err := h.planMode(r)
	if err != nil {
		h.errorResponse(w, r, "mode must be 'forecast' or 'maximum'")
		return
	}

	res, err := h.planner.PlanWeek(r.Context(), week.Start, mode)
	if err != nil {
		switch {
		case errors.Is(err, planner.ErrConflict):
			h.conflictResponse(w, r, "another change to this week was saved first, nothing was planned, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if h.config.Planner.NotifyEmployees && res.CreatedCount > 0 {
		h.notifyPlannedEmployees(r, res)
	}

	h.successResponse(w, r, res.Message(), res)
}

func (h *Handler) PreviewAutoPlan(w http.ResponseWriter, r *http.Request) {
	week := r.Context().Value(WeekCtx).(domain.Week)

	mode, err := h.planMode(r)
	if err != nil {
		h.errorResponse(w, r, "mode must be 'forecast' or 'maximum'")
		return
	}

	res, err := h.planner.Propose(r.Context(), week.Start, mode)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "preview, nothing was saved", res)
}
