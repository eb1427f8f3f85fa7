package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/dsp-ops/shift-planner/backend/internal/planner"
	amqp "github.com/rabbitmq/amqp091-go"
)

// notifyPlannedEmployees runs after the plan is committed, so failures are only logged.
func (h *Handler) notifyPlannedEmployees(r *http.Request, res *planner.Result) {
	employees, err := h.repository.ListActiveEmployees(r.Context())
	if err != nil {
		slog.Warn("could not load employees for notifications", "run_id", res.RunID, "error", err)
		return
	}

	published := h.publishShiftPlanned(employees, res)
	slog.Info("shift notifications queued", "run_id", res.RunID, "count", published)
}

// publishShiftPlanned queues one shift_planned mail per employee with new work days and an
// email address. It returns how many messages were published.
func (h *Handler) publishShiftPlanned(employees []*domain.Employee, res *planner.Result) int {
	grouped := res.ByEmployee()
	published := 0

	for _, emp := range employees {
		planned := grouped[emp.ID]
		if len(planned) == 0 || emp.Email == "" {
			continue
		}

		days := make([]string, 0, len(planned))
		for _, a := range planned {
			days = append(days, a.Date.Format("Mon 02.01.2006"))
		}

		mailMessage := domain.MailMessage{
			Type: domain.MailTypeShiftPlanned,
			To:   emp.Email,
			Data: domain.ShiftPlannedMailData{
				Name:      emp.Name,
				WeekStart: res.WeekStart.Format("02.01.2006"),
				WeekEnd:   res.WeekEnd.Format("02.01.2006"),
				Days:      days,
			},
		}

		body, err := json.Marshal(mailMessage)
		if err != nil {
			slog.Error("could not encode mail message", "employee_id", emp.ID, "error", err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
		err = h.mailChannel.PublishWithContext(
			ctx,
			"",
			h.config.RabbitMQ.Queue,
			true,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        body,
			},
		)
		cancel()
		if err != nil {
			slog.Error("could not publish mail message", "employee_id", emp.ID, "error", err)
			continue
		}

		published++
	}

	return published
}
