package probe

import (
	"fmt"

	"digital.vasic.attachprobe/pkg/attachment"
	"digital.vasic.attachprobe/pkg/logging"
	"digital.vasic.attachprobe/pkg/metadata"
	"digital.vasic.attachprobe/pkg/metrics"
	"digital.vasic.attachprobe/pkg/record"
)

// Engine runs trials against a record. Trials run one at a time;
// each attaches a fresh file and runs a fresh validation.
type Engine struct {
	builder *attachment.Builder
	base    record.MetadataProvider
	logger  logging.Logger
	metrics metrics.ProbeMetrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithBuilder sets the synthetic attachment builder.
func WithBuilder(b *attachment.Builder) Option {
	return func(e *Engine) {
		e.builder = b
	}
}

// WithBaseProvider sets the metadata provider used when a trial
// does not mock metadata, and behind every override.
func WithBaseProvider(p record.MetadataProvider) Option {
	return func(e *Engine) {
		e.base = p
	}
}

// WithLogger sets the logger used for per-trial debug output.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMetrics sets the metrics sink for trials.
func WithMetrics(m metrics.ProbeMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates an Engine with the supplied options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		builder: attachment.NewBuilder(),
		base:    metadata.Unanalyzed,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.OrNull(e.logger)
	e.metrics = metrics.OrNoop(e.metrics)
	return e
}

// Run executes every trial of rule against field. All trials run
// even after a mismatch so the outcome lists every violation. A
// collaborator error aborts the run and is returned as is.
func (e *Engine) Run(
	r record.Record,
	field string,
	vctx record.Context,
	rule Rule,
) (*Outcome, error) {
	out := &Outcome{Rule: rule}
	for _, t := range rule.Trials() {
		res, err := e.Execute(r, field, vctx, t)
		if err != nil {
			return out, fmt.Errorf("trial %s: %w", t.Label, err)
		}
		e.metrics.RecordTrial(
			string(rule.Kind()), t.Label, t.ExpectPass, res.Passed,
		)
		e.logger.Debug("probe trial",
			logging.StringField("field", field),
			logging.StringField("trial", t.Label),
			logging.BoolField("expect_pass", t.ExpectPass),
			logging.BoolField("passed", res.Passed),
		)
		out.Results = append(out.Results, res)
	}
	return out, nil
}

// Execute attaches the trial's file, runs validation in vctx and
// reports whether field came out free of errors.
func (e *Engine) Execute(
	r record.Record,
	field string,
	vctx record.Context,
	t Trial,
) (TrialResult, error) {
	a, err := e.builder.Attach(r, field, attachment.Spec{
		ContentType: t.ContentType,
	})
	if err != nil {
		return TrialResult{Trial: t}, err
	}

	var outcome *record.Outcome
	validate := func(meta record.MetadataProvider) error {
		o, err := r.Validate(vctx, meta)
		if err != nil {
			return fmt.Errorf("validate: %w", err)
		}
		if o == nil {
			return fmt.Errorf("validate: record returned no outcome")
		}
		outcome = o
		return nil
	}

	if t.Mocked {
		err = metadata.WithMocked(e.base, a, t.Width, t.Height, validate)
	} else {
		err = validate(e.base)
	}
	if err != nil {
		return TrialResult{Trial: t}, err
	}

	errs := outcome.ErrorsFor(field)
	return TrialResult{
		Trial:  t,
		Ran:    true,
		Passed: len(errs) == 0,
		Errors: errs,
	}, nil
}
