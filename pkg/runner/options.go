package runner

import (
	"digital.vasic.attachprobe/pkg/bank"
	"digital.vasic.attachprobe/pkg/logging"
	"digital.vasic.attachprobe/pkg/metrics"
	"digital.vasic.attachprobe/pkg/probe"
)

// RunnerOption configures a DefaultRunner.
type RunnerOption func(*DefaultRunner)

// WithBank sets the bank expectations are read from.
func WithBank(b *bank.Bank) RunnerOption {
	return func(r *DefaultRunner) {
		r.bank = b
	}
}

// WithLogger sets the logger used by the runner and its probe
// engine.
func WithLogger(logger logging.Logger) RunnerOption {
	return func(r *DefaultRunner) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics sink for assertions and trials.
func WithMetrics(m metrics.ProbeMetrics) RunnerOption {
	return func(r *DefaultRunner) {
		r.metrics = m
	}
}

// WithEngineOptions adds options applied to the probe engine after
// the runner's logger and metrics.
func WithEngineOptions(opts ...probe.Option) RunnerOption {
	return func(r *DefaultRunner) {
		r.engineOpts = append(r.engineOpts, opts...)
	}
}

// WithPreHook adds a hook run before each expectation. A failing
// pre-hook marks the expectation as an error.
func WithPreHook(h Hook) RunnerOption {
	return func(r *DefaultRunner) {
		r.preHooks = append(r.preHooks, h)
	}
}

// WithPostHook adds a hook run after each expectation. Failures are
// logged as warnings.
func WithPostHook(h Hook) RunnerOption {
	return func(r *DefaultRunner) {
		r.postHooks = append(r.postHooks, h)
	}
}
