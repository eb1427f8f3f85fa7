package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// readJSON decodes exactly one JSON value; unknown fields are rejected.
func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			return errors.New("request body too large")
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		default:
			return err
		}
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "path", r.URL.Path, "error", err)
	}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, success bool, msg string, data any) {
	h.writeJSON(w, r, status, Response{
		Success: success,
		Message: msg,
		Data:    data,
	})
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.respond(w, r, http.StatusOK, true, msg, data)
}

// errorResponse reports a request the client can fix. The status stays 200, clients read success.
func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, msg string) {
	h.respond(w, r, http.StatusOK, false, msg, nil)
}

// conflictResponse is used when the request lost a race for an (employee, date) pair.
func (h *Handler) conflictResponse(w http.ResponseWriter, r *http.Request, msg string) {
	h.respond(w, r, http.StatusConflict, false, msg, nil)
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		h.errorResponse(w, r, err.Error())
		return
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		msgs = append(msgs, fieldErr.Translate(h.translator))
	}
	h.errorResponse(w, r, strings.Join(msgs, "; "))
}

// logInternalServerError is used on its own once the response is already on the wire.
func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("internal server error",
		"request_id", middleware.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.respond(w, r, http.StatusInternalServerError, false, "internal server error", nil)
}
