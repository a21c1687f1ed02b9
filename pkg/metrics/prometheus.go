package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics implements ProbeMetrics with Prometheus
// collectors registered on a caller-supplied registerer.
type PrometheusMetrics struct {
	Trials            *prometheus.CounterVec
	TrialMismatches   *prometheus.CounterVec
	Assertions        *prometheus.CounterVec
	AssertionDuration *prometheus.HistogramVec
	RunTotal          prometheus.Counter
}

// NewPrometheusMetrics creates and registers all collectors under
// namespace. Registering twice on the same registerer panics, as
// promauto does.
func NewPrometheusMetrics(
	reg prometheus.Registerer,
	namespace string,
) *PrometheusMetrics {
	f := promauto.With(reg)
	return &PrometheusMetrics{
		Trials: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "trials_total",
				Help:      "Total number of probe trials",
			},
			[]string{"rule", "bound", "outcome"},
		),
		TrialMismatches: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "trial_mismatches_total",
				Help:      "Trials whose outcome differed from the declared rule",
			},
			[]string{"rule", "bound"},
		),
		Assertions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "assertions_total",
				Help:      "Total number of matcher assertions",
			},
			[]string{"matcher", "outcome"},
		),
		AssertionDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "assertion_duration_seconds",
				Help:      "Duration of matcher assertions in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"matcher"},
		),
		RunTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of suite runs",
			},
		),
	}
}

// RecordTrial counts a trial by rule, bound and outcome, and counts
// a mismatch when the outcome differs from the expected one.
func (m *PrometheusMetrics) RecordTrial(
	rule, bound string, expectPass, passed bool,
) {
	m.Trials.WithLabelValues(rule, bound, outcomeLabel(passed)).Inc()
	if expectPass != passed {
		m.TrialMismatches.WithLabelValues(rule, bound).Inc()
	}
}

// RecordAssertion counts a matcher assertion and observes its
// duration.
func (m *PrometheusMetrics) RecordAssertion(
	matcher string, passed bool, duration time.Duration,
) {
	m.Assertions.WithLabelValues(matcher, outcomeLabel(passed)).Inc()
	m.AssertionDuration.WithLabelValues(matcher).
		Observe(duration.Seconds())
}

// IncrementRunTotal counts a suite run.
func (m *PrometheusMetrics) IncrementRunTotal() {
	m.RunTotal.Inc()
}
