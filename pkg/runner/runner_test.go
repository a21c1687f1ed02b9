package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"digital.vasic.attachprobe/pkg/bank"
	"digital.vasic.attachprobe/pkg/logging"
	"digital.vasic.attachprobe/pkg/matcher"
	"digital.vasic.attachprobe/pkg/metrics"
	"digital.vasic.attachprobe/pkg/model"
	"digital.vasic.attachprobe/pkg/probe"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const suite = `
version: "1.0"
name: users
models:
  - name: user
    attachments: [avatar, cover]
    validations:
      - field: avatar
        kind: content_type
        options:
          allowed: [image/png]
      - field: cover
        kind: broken
expectations:
  - id: png-only
    model: user
    field: avatar
    content_type:
      allowing: [image/png]
      rejecting: [image/gif]
  - id: gif-too
    model: user
    field: avatar
    content_type:
      allowing: [image/png, image/gif]
  - id: png-rejected
    model: user
    field: avatar
    content_type:
      rejecting: [image/png]
    expect: fail
  - id: broken-cover
    model: user
    field: cover
    dimension:
      width_max: 100
`

func loadBank(t *testing.T) *bank.Bank {
	t.Helper()
	reg := model.NewRegistry()
	require.NoError(t, reg.Register("broken",
		func(map[string]any) (model.Validator, error) { return nil, nil }))

	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(suite), 0644))

	b := bank.New(bank.WithRegistry(reg))
	require.NoError(t, b.LoadFile(path))
	return b
}

var _ Runner = (*DefaultRunner)(nil)

func TestRunner_RunAll(t *testing.T) {
	r := NewRunner(WithBank(loadBank(t)))

	results, err := r.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 4)

	byID := make(map[string]*Result)
	for _, res := range results {
		byID[res.ExpectationID] = res
		assert.Equal(t, results[0].RunID, res.RunID)
		assert.False(t, res.EndTime.Before(res.StartTime))
	}

	ok := byID["png-only"]
	assert.Equal(t, StatusPassed, ok.Status)
	assert.True(t, ok.Matched)
	assert.Equal(t, 2, ok.Trials)
	assert.Equal(t, probe.KindContentType, ok.Kind)
	assert.Equal(t, "validate the content types allowed on attachment avatar", ok.Description)

	wrong := byID["gif-too"]
	assert.Equal(t, StatusFailed, wrong.Status)
	assert.False(t, wrong.Matched)
	assert.Equal(t, matcher.FailureRuleMismatch, wrong.Failure)
	assert.Equal(t, []string{"allowed:image/gif"}, wrong.Mismatches)
	assert.Contains(t, wrong.FailureMessage, "image/gif were rejected")

	negative := byID["png-rejected"]
	assert.Equal(t, StatusPassed, negative.Status)
	assert.False(t, negative.Matched)
	assert.False(t, negative.Expected)

	broken := byID["broken-cover"]
	assert.Equal(t, StatusError, broken.Status)
	assert.Contains(t, broken.Error, "validation has no validator")
}

func TestRunner_Run(t *testing.T) {
	r := NewRunner(WithBank(loadBank(t)))

	res, err := r.Run(context.Background(), "png-only")
	require.NoError(t, err)
	assert.Equal(t, StatusPassed, res.Status)
	assert.NotEmpty(t, res.RunID)

	_, err = r.Run(context.Background(), "missing")
	assert.Error(t, err)
}

func TestRunner_RunSequence(t *testing.T) {
	r := NewRunner(WithBank(loadBank(t)))

	results, err := r.RunSequence(context.Background(),
		[]string{"png-rejected", "png-only"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "png-rejected", results[0].ExpectationID)
	assert.Equal(t, "png-only", results[1].ExpectationID)

	results, err = r.RunSequence(context.Background(),
		[]string{"png-only", "missing"})
	assert.Error(t, err)
	assert.Empty(t, results)
}

func TestRunner_ContextCancelled(t *testing.T) {
	r := NewRunner(WithBank(loadBank(t)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := r.RunAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestRunner_Hooks(t *testing.T) {
	var post []string
	r := NewRunner(
		WithBank(loadBank(t)),
		WithPreHook(func(_ context.Context, e *bank.Expectation) error {
			if e.ID == "gif-too" {
				return errors.New("skip me")
			}
			return nil
		}),
		WithPostHook(func(_ context.Context, e *bank.Expectation) error {
			post = append(post, e.ID)
			return errors.New("ignored")
		}),
	)

	results, err := r.RunSequence(context.Background(),
		[]string{"png-only", "gif-too"})
	require.NoError(t, err)
	assert.Equal(t, StatusPassed, results[0].Status)
	assert.Equal(t, StatusError, results[1].Status)
	assert.Contains(t, results[1].Error, "pre-hook failed: skip me")
	assert.Equal(t, []string{"png-only"}, post)
}

func TestRunner_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := metrics.NewPrometheusMetrics(reg, "test")
	r := NewRunner(WithBank(loadBank(t)), WithMetrics(pm))

	_, err := r.RunAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(pm.RunTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		pm.Assertions.WithLabelValues("content_type", "passed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(
		pm.Assertions.WithLabelValues("content_type", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		pm.TrialMismatches.WithLabelValues("content_type", "allowed:image/gif")))
}

func TestRunner_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewRunner(
		WithBank(loadBank(t)),
		WithLogger(logging.NewFromZap(zap.New(core))),
	)

	_, err := r.RunSequence(context.Background(), []string{"png-only"})
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("run_started").Len())
	assert.Equal(t, 1, logs.FilterMessage("expectation_completed").Len())
	assert.Equal(t, 2, logs.FilterMessage("probe trial").Len())

	done := logs.FilterMessage("expectation_completed").All()[0]
	assert.Equal(t, "png-only", done.ContextMap()["expectation_id"])
	assert.Equal(t, StatusPassed, done.ContextMap()["status"])
}

func TestRunner_EngineOptions(t *testing.T) {
	var calls int
	r := NewRunner(
		WithBank(loadBank(t)),
		WithEngineOptions(probe.WithMetrics(countingMetrics{&calls})),
	)
	_, err := r.Run(context.Background(), "png-only")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

type countingMetrics struct {
	trials *int
}

func (m countingMetrics) RecordTrial(_, _ string, _, _ bool) { *m.trials++ }

func (countingMetrics) RecordAssertion(string, bool, time.Duration) {}

func (countingMetrics) IncrementRunTotal() {}
