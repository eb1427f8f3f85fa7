package handler

import (
	"context"

	"github.com/dsp-ops/shift-planner/backend/internal/config"
	"github.com/dsp-ops/shift-planner/backend/internal/domain"
	"github.com/dsp-ops/shift-planner/backend/internal/holiday"
	"github.com/dsp-ops/shift-planner/backend/internal/planner"
	"github.com/dsp-ops/shift-planner/backend/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MailPublisher is the part of *amqp.Channel the handlers publish notifications with.
type MailPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	planner     *planner.Planner
	holidays    holiday.Provider
	translator  ut.Translator
	mailChannel MailPublisher
	gatherer    prometheus.Gatherer

	Mux *chi.Mux
}

func NewHandler(
	cfg *config.Config,
	repo *repository.Repository,
	pl *planner.Planner,
	holidays holiday.Provider,
	mailCh MailPublisher,
	gatherer prometheus.Gatherer,
) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		planner:     pl,
		holidays:    holidays,
		translator:  trans,
		mailChannel: mailCh,
		gatherer:    gatherer,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(middleware.RequestID)
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	h.Mux.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	// everything below requires a valid session
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.GetAllEmployees)
			r.Post("/", h.CreateEmployee)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.employeeInfo)
				r.Get("/", h.GetEmployee)
				r.Patch("/", h.UpdateEmployee)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteEmployee)
			})
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Post("/", h.CreateShift)
			r.Delete("/{id}", h.DeleteShift)
			r.Route("/by-week/{weekStart}", func(r chi.Router) {
				r.Use(h.weekParam)
				r.Get("/", h.GetShiftsByWeek)
				r.Get("/export", h.ExportWeek)
			})
			r.Route("/auto-plan/{weekStart}", func(r chi.Router) {
				r.Use(h.weekParam)
				r.Post("/", h.AutoPlanWeek)
				r.Post("/preview", h.PreviewAutoPlan)
			})
		})

		r.Get("/holidays/{region}/{year}", h.GetHolidays)
	})
}
