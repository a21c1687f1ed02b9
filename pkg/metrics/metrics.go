// Package metrics records probe activity: individual trials and
// whole matcher assertions.
package metrics

import "time"

// ProbeMetrics defines the interface for recording probe metrics.
type ProbeMetrics interface {
	// RecordTrial records one trial. rule is the rule kind
	// ("content_type", "aspect_ratio", "dimension"), bound the
	// trial label, expectPass the required outcome and passed
	// the observed one.
	RecordTrial(rule, bound string, expectPass, passed bool)

	// RecordAssertion records a finished matcher assertion.
	RecordAssertion(matcher string, passed bool, duration time.Duration)

	// IncrementRunTotal increments the suite run counter.
	IncrementRunTotal()
}

// NoopMetrics is a no-op implementation of ProbeMetrics useful
// for tests or when metrics collection is disabled.
type NoopMetrics struct{}

// RecordTrial does nothing.
func (NoopMetrics) RecordTrial(_, _ string, _, _ bool) {}

// RecordAssertion does nothing.
func (NoopMetrics) RecordAssertion(_ string, _ bool, _ time.Duration) {}

// IncrementRunTotal does nothing.
func (NoopMetrics) IncrementRunTotal() {}

// OrNoop returns m, or NoopMetrics when m is nil.
func OrNoop(m ProbeMetrics) ProbeMetrics {
	if m == nil {
		return NoopMetrics{}
	}
	return m
}

func outcomeLabel(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}
