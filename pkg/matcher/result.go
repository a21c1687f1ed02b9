package matcher

import (
	"fmt"
	"strconv"
	"strings"

	"digital.vasic.attachprobe/pkg/message"
	"digital.vasic.attachprobe/pkg/probe"
	"digital.vasic.attachprobe/pkg/record"
)

// Failure identifies the stage at which an assertion failed.
type Failure string

// Failure kinds.
const (
	FailureNone                  Failure = ""
	FailureNotAnAttachmentField  Failure = "not_an_attachment_field"
	FailureUnsupportedContext    Failure = "unsupported_context"
	FailureRuleMismatch          Failure = "rule_mismatch"
	FailureCustomMessageMismatch Failure = "custom_message_mismatch"
)

// Result is the outcome of one Match.
type Result struct {
	Field   string         `json:"field"`
	Kind    probe.Kind     `json:"kind"`
	Context record.Context `json:"context,omitempty"`
	Passed  bool           `json:"passed"`
	Failure Failure        `json:"failure,omitempty"`

	// Outcome is nil when gating failed.
	Outcome *probe.Outcome `json:"outcome,omitempty"`

	// Message is nil unless a custom message was declared and the
	// rule probe passed.
	Message *message.Result `json:"message,omitempty"`

	cause  error
	render func(*Result) string
}

// Err returns nil when the assertion passed, otherwise the sentinel
// error of the failing stage, wrapped with its details.
func (r *Result) Err() error {
	if r.Passed {
		return nil
	}
	return r.cause
}

// Trials returns the number of trials run by the rule probe.
func (r *Result) Trials() int {
	if r.Outcome == nil {
		return 0
	}
	return len(r.Outcome.Results)
}

// FailureMessage renders a diagnostic for a failed assertion, or
// the empty string when it passed.
func (r *Result) FailureMessage() string {
	switch r.Failure {
	case FailureNone:
		return ""
	case FailureNotAnAttachmentField:
		return fmt.Sprintf("Expected %s to be an attachment field", r.Field)
	case FailureUnsupportedContext:
		return fmt.Sprintf(
			"Expected %s to be validated on context %q", r.Field, r.Context,
		)
	case FailureRuleMismatch:
		if r.render != nil {
			return r.render(r)
		}
	case FailureCustomMessageMismatch:
		if r.Message != nil {
			return fmt.Sprintf(
				"Expected %s to report custom message %q\nGot: %s",
				r.Field, r.Message.Expected, quoteAll(r.Message.Actual),
			)
		}
	}
	if r.cause != nil {
		return r.cause.Error()
	}
	return string(r.Failure)
}

// renderSet lays out a set rule mismatch: the declared tokens of each
// side, then the tokens observed on the wrong side.
func renderSet(noun string, rule probe.SetRule) func(*Result) string {
	return func(r *Result) string {
		lines := []string{"Expected " + r.Field}
		if bad := r.Outcome.AllowedButRejected(); len(bad) > 0 {
			lines = append(lines,
				fmt.Sprintf("Accept %s: %s", noun, strings.Join(rule.Allowed, ", ")),
				strings.Join(bad, ", ")+" were rejected",
			)
		}
		if bad := r.Outcome.RejectedButAllowed(); len(bad) > 0 {
			lines = append(lines,
				fmt.Sprintf("Reject %s: %s", noun, strings.Join(rule.Rejected, ", ")),
				strings.Join(bad, ", ")+" were accepted",
			)
		}
		return strings.Join(lines, "\n")
	}
}

// renderRange lists the declared bounds followed by the trials that
// contradicted them.
func renderRange(rule probe.RangeRule) func(*Result) string {
	return func(r *Result) string {
		lines := []string{
			"is expected to validate dimensions of " + r.Field,
			fmt.Sprintf("  width between %s and %s",
				bound(rule.WidthMin), bound(rule.WidthMax)),
			fmt.Sprintf("  height between %s and %s",
				bound(rule.HeightMin), bound(rule.HeightMax)),
		}
		for _, mm := range r.Outcome.Mismatches() {
			verb := "rejected"
			if mm.Passed {
				verb = "accepted"
			}
			lines = append(lines, fmt.Sprintf("  %s %d was %s",
				mm.Trial.Dimension, mm.Trial.Value, verb))
		}
		return strings.Join(lines, "\n")
	}
}

func bound(v *int) string {
	if v == nil {
		return "any"
	}
	return strconv.Itoa(*v)
}

func quoteAll(msgs []string) string {
	if len(msgs) == 0 {
		return "no errors"
	}
	q := make([]string, len(msgs))
	for i, m := range msgs {
		q[i] = strconv.Quote(m)
	}
	return strings.Join(q, ", ")
}
