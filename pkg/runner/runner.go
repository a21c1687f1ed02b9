// Package runner executes the expectations of a bank against freshly
// built model records and classifies each against the result the
// suite author declared.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"digital.vasic.attachprobe/pkg/bank"
	"digital.vasic.attachprobe/pkg/logging"
	"digital.vasic.attachprobe/pkg/matcher"
	"digital.vasic.attachprobe/pkg/metrics"
	"digital.vasic.attachprobe/pkg/probe"
)

// Status constants for expectation outcomes.
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
	StatusError  = "error"
)

// Result captures the outcome of one expectation.
type Result struct {
	// RunID groups the results of one RunAll or RunSequence call.
	RunID string `json:"run_id"`

	// ExpectationID is the expectation's suite ID.
	ExpectationID string `json:"expectation_id"`

	Model       string     `json:"model"`
	Field       string     `json:"field"`
	Kind        probe.Kind `json:"kind"`
	Description string     `json:"description"`

	// Status is one of the Status* constants.
	Status string `json:"status"`

	// Matched is whether the matcher assertion passed.
	Matched bool `json:"matched"`

	// Expected is whether the suite expected it to pass.
	Expected bool `json:"expected"`

	Failure        matcher.Failure `json:"failure,omitempty"`
	FailureMessage string          `json:"failure_message,omitempty"`

	// Trials is the number of rule trials run.
	Trials int `json:"trials"`

	// Mismatches lists the labels of trials that contradicted the
	// declared rule.
	Mismatches []string `json:"mismatches,omitempty"`

	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`

	// Error contains the collaborator or setup error, if any.
	Error string `json:"error,omitempty"`

	Source string `json:"source,omitempty"`
}

// Runner defines expectation execution.
type Runner interface {
	// Run executes a single expectation by ID.
	Run(ctx context.Context, id string) (*Result, error)

	// RunAll executes every expectation in load order.
	RunAll(ctx context.Context) ([]*Result, error)

	// RunSequence executes the given expectations in order.
	RunSequence(ctx context.Context, ids []string) ([]*Result, error)
}

// Hook is invoked before or after an expectation runs.
type Hook func(ctx context.Context, e *bank.Expectation) error

// DefaultRunner is the standard Runner implementation. Expectations
// run one at a time.
type DefaultRunner struct {
	bank       *bank.Bank
	logger     logging.Logger
	metrics    metrics.ProbeMetrics
	engineOpts []probe.Option
	engine     *probe.Engine
	preHooks   []Hook
	postHooks  []Hook
}

// NewRunner creates a DefaultRunner with the supplied options.
func NewRunner(opts ...RunnerOption) *DefaultRunner {
	r := &DefaultRunner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.bank == nil {
		r.bank = bank.New()
	}
	r.logger = logging.OrNull(r.logger)
	r.metrics = metrics.OrNoop(r.metrics)

	engineOpts := append([]probe.Option{
		probe.WithLogger(r.logger),
		probe.WithMetrics(r.metrics),
	}, r.engineOpts...)
	r.engine = probe.NewEngine(engineOpts...)
	return r
}

// Run executes a single expectation by ID.
func (r *DefaultRunner) Run(ctx context.Context, id string) (*Result, error) {
	e, ok := r.bank.Get(id)
	if !ok {
		return nil, fmt.Errorf("expectation not found: %s", id)
	}
	return r.execute(ctx, uuid.NewString(), e), nil
}

// RunAll executes every loaded expectation in load order.
func (r *DefaultRunner) RunAll(ctx context.Context) ([]*Result, error) {
	return r.runExpectations(ctx, r.bank.All())
}

// RunSequence executes the given expectations in order. Unknown IDs
// are rejected before anything runs.
func (r *DefaultRunner) RunSequence(
	ctx context.Context,
	ids []string,
) ([]*Result, error) {
	exps := make([]*bank.Expectation, 0, len(ids))
	for _, id := range ids {
		e, ok := r.bank.Get(id)
		if !ok {
			return nil, fmt.Errorf("expectation not found: %s", id)
		}
		exps = append(exps, e)
	}
	return r.runExpectations(ctx, exps)
}

func (r *DefaultRunner) runExpectations(
	ctx context.Context,
	exps []*bank.Expectation,
) ([]*Result, error) {
	runID := uuid.NewString()
	r.metrics.IncrementRunTotal()
	r.logger.Info("run_started",
		logging.StringField("run_id", runID),
		logging.IntField("expectations", len(exps)),
	)

	results := make([]*Result, 0, len(exps))
	for _, e := range exps {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("run %s interrupted: %w", runID, err)
		}
		results = append(results, r.execute(ctx, runID, e))
	}

	r.logger.Info("run_completed",
		logging.StringField("run_id", runID),
		logging.IntField("results", len(results)),
	)
	return results, nil
}

// execute runs one expectation: pre-hooks, matcher build, match,
// classification, post-hooks. Every failure is captured in the
// Result.
func (r *DefaultRunner) execute(
	ctx context.Context,
	runID string,
	e *bank.Expectation,
) *Result {
	result := &Result{
		RunID:         runID,
		ExpectationID: e.ID,
		Model:         e.Model,
		Field:         e.Field,
		Kind:          e.Kind(),
		Description:   e.Description,
		Expected:      e.ExpectPass(),
		StartTime:     time.Now(),
		Source:        e.Source,
	}
	log := r.logger.WithFields(
		logging.StringField("run_id", runID),
		logging.StringField("expectation_id", e.ID),
	)
	log.Info("expectation_started")

	fail := func(stage string, err error) *Result {
		result.Status = StatusError
		result.Error = fmt.Sprintf("%s: %v", stage, err)
		r.finish(result)
		log.Error("expectation_error",
			logging.StringField("error", result.Error))
		return result
	}

	for _, hook := range r.preHooks {
		if err := hook(ctx, e); err != nil {
			return fail("pre-hook failed", err)
		}
	}

	m, err := e.Matcher(r.engine)
	if err != nil {
		return fail("build matcher", err)
	}
	if result.Description == "" {
		result.Description = m.Description()
	}
	subject, err := r.bank.Subject(e)
	if err != nil {
		return fail("build subject", err)
	}

	res, err := m.Match(subject)
	if err != nil {
		return fail("match", err)
	}

	result.Matched = res.Passed
	result.Failure = res.Failure
	result.FailureMessage = res.FailureMessage()
	result.Trials = res.Trials()
	if res.Outcome != nil {
		for _, mm := range res.Outcome.Mismatches() {
			result.Mismatches = append(result.Mismatches, mm.Trial.Label)
		}
	}

	result.Status = StatusPassed
	if result.Matched != result.Expected {
		result.Status = StatusFailed
	}
	r.finish(result)
	r.metrics.RecordAssertion(string(m.Kind()), res.Passed, result.Duration)

	for _, hook := range r.postHooks {
		if err := hook(ctx, e); err != nil {
			log.Warn("post_hook_warning",
				logging.ErrorField(err))
		}
	}

	log.Info("expectation_completed",
		logging.StringField("status", result.Status),
		logging.BoolField("matched", result.Matched),
		logging.IntField("trials", result.Trials),
		logging.StringField("duration", result.Duration.String()),
	)
	return result
}

func (r *DefaultRunner) finish(result *Result) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
}
