package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/dsp-ops/shift-planner/backend/internal/holiday"
	"github.com/go-chi/chi/v5"
)

type holidayItem struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

func (h *Handler) GetHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 {
		h.errorResponse(w, r, "invalid year")
		return
	}

	region := chi.URLParam(r, "region")
	set, err := h.holidays.Holidays(r.Context(), region, year)
	if err != nil {
		switch {
		case errors.Is(err, holiday.ErrUnknownRegion):
			h.errorResponse(w, r, "unknown federal state")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	items := make([]holidayItem, 0, set.Len())
	for _, date := range set.Dates() {
		name, _ := set.Name(date)
		items = append(items, holidayItem{Date: date.Format(domain.DateLayout), Name: name})
	}

	h.successResponse(w, r, "holidays loaded", items)
}
