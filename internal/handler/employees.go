package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/dsp-ops/shift-planner/backend/internal/utils"
)

func (h *Handler) GetAllEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.repository.GetAllEmployees(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "employees loaded", employees)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string  `json:"name" validate:"required"`
		Email         string  `json:"email" validate:"omitempty,email"`
		DaysPerWeek   *int32  `json:"daysPerWeek" validate:"omitempty,min=0,max=7"`
		IsFlexible    *bool   `json:"isFlexible"`
		PreferredDays []int32 `json:"preferredDays" validate:"dive,min=0,max=6"`
		FederalState  *string `json:"federalState"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	emp := &domain.Employee{
		Name:          req.Name,
		Email:         req.Email,
		DaysPerWeek:   5,
		IsFlexible:    true,
		PreferredDays: req.PreferredDays,
		FederalState:  req.FederalState,
	}
	if req.DaysPerWeek != nil {
		emp.DaysPerWeek = *req.DaysPerWeek
	}
	if req.IsFlexible != nil {
		emp.IsFlexible = *req.IsFlexible
	}
	if emp.PreferredDays == nil {
		emp.PreferredDays = make([]int32, 0)
	}

	if err := utils.ValidateEmployee(emp); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateEmployee(r.Context(), emp); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "employee created", emp)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp := r.Context().Value(EmployeeCtx).(*domain.Employee)

	h.successResponse(w, r, "employee loaded", emp)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          *string  `json:"name" validate:"omitempty,min=1"`
		Email         *string  `json:"email" validate:"omitempty,email"`
		DaysPerWeek   *int32   `json:"daysPerWeek" validate:"omitempty,min=0,max=7"`
		IsFlexible    *bool    `json:"isFlexible"`
		PreferredDays *[]int32 `json:"preferredDays"`
		FederalState  *string  `json:"federalState"`
		IsActive      *bool    `json:"isActive"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	emp := r.Context().Value(EmployeeCtx).(*domain.Employee)

	if req.Name != nil {
		emp.Name = *req.Name
	}
	if req.Email != nil {
		emp.Email = *req.Email
	}
	if req.DaysPerWeek != nil {
		emp.DaysPerWeek = *req.DaysPerWeek
	}
	if req.IsFlexible != nil {
		emp.IsFlexible = *req.IsFlexible
	}
	if req.PreferredDays != nil {
		emp.PreferredDays = *req.PreferredDays
	}
	if req.FederalState != nil {
		emp.FederalState = req.FederalState
	}
	if req.IsActive != nil {
		emp.IsActive = *req.IsActive
	}

	if err := utils.ValidateEmployee(emp); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateEmployee(r.Context(), emp); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "employee was changed concurrently, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "employee updated", emp)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	emp := r.Context().Value(EmployeeCtx).(*domain.Employee)

	if err := h.repository.DeleteEmployee(r.Context(), emp.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "employee not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "employee deleted", nil)
}
