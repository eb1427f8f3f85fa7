// Package metrics exposes planner instrumentation backed by Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PlannerMetrics is what the planner reports after each run.
type PlannerMetrics interface {
	ObservePlanRun(mode string, result string, duration time.Duration)
	AddAssignmentsCreated(mode string, n int)
	AddEmployeesSkipped(reason string, n int)
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObservePlanRun(string, string, time.Duration) {}
func (Nop) AddAssignmentsCreated(string, int)            {}
func (Nop) AddEmployeesSkipped(string, int)              {}

var _ PlannerMetrics = Nop{}

// Prometheus implements PlannerMetrics with counters and a run duration histogram.
type Prometheus struct {
	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	created     *prometheus.CounterVec
	skipped     *prometheus.CounterVec
}

var _ PlannerMetrics = (*Prometheus)(nil)

// NewPrometheus registers the planner collectors on reg (prometheus.DefaultRegisterer when
// nil) under namespace ("shiftplanner" when empty).
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "shiftplanner"
	}

	p := &Prometheus{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "runs_total",
			Help:      "Auto-plan invocations by mode and result (success, conflict, error).",
		}, []string{"mode", "result"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "run_duration_seconds",
			Help:      "Duration of auto-plan invocations in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms .. ~2.5s
		}, []string{"mode"}),
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "assignments_created_total",
			Help:      "Work assignments created by the auto-planner.",
		}, []string{"mode"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "employees_skipped_total",
			Help:      "Employees left out of a run by reason (no_region, unknown_region).",
		}, []string{"reason"}),
	}

	for _, c := range []prometheus.Collector{p.runs, p.runDuration, p.created, p.skipped} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (p *Prometheus) ObservePlanRun(mode string, result string, duration time.Duration) {
	p.runs.WithLabelValues(mode, result).Inc()
	p.runDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

func (p *Prometheus) AddAssignmentsCreated(mode string, n int) {
	if n <= 0 {
		return
	}
	p.created.WithLabelValues(mode).Add(float64(n))
}

func (p *Prometheus) AddEmployeesSkipped(reason string, n int) {
	if n <= 0 {
		return
	}
	p.skipped.WithLabelValues(reason).Add(float64(n))
}
