package probe

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRuleMismatch is returned when observed validation behavior
// differs from the declared rule.
var ErrRuleMismatch = errors.New("rule mismatch")

// Trial is one synthetic attachment plus an expected outcome.
type Trial struct {
	// Label names the trial (e.g., "allowed:image/png",
	// "width_min-1").
	Label string `json:"label"`

	// Token is the set-rule token under test.
	Token string `json:"token,omitempty"`

	// Dimension is "width" or "height" for range trials.
	Dimension string `json:"dimension,omitempty"`

	// Value is the probed value of Dimension.
	Value int `json:"value,omitempty"`

	// ContentType is the declared type of the attachment. Empty
	// means the builder default.
	ContentType string `json:"content_type,omitempty"`

	// Mocked reports whether Width and Height are substituted
	// for the attachment's metadata.
	Mocked bool `json:"mocked"`

	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// ExpectPass is the outcome the declared rule requires.
	ExpectPass bool `json:"expect_pass"`
}

// TrialResult is the observed outcome of a trial.
type TrialResult struct {
	Trial  Trial    `json:"trial"`
	Ran    bool     `json:"ran"`
	Passed bool     `json:"passed"`
	Errors []string `json:"errors,omitempty"`
}

// Mismatch reports whether the observed outcome contradicts the
// expected one.
func (r TrialResult) Mismatch() bool {
	return !r.Ran || r.Passed != r.Trial.ExpectPass
}

// Outcome aggregates every trial run for one rule.
type Outcome struct {
	Rule    Rule          `json:"-"`
	Results []TrialResult `json:"results"`
}

// Satisfied reports whether every trial matched its expectation.
func (o *Outcome) Satisfied() bool {
	return len(o.Mismatches()) == 0
}

// Mismatches returns the trials whose outcome contradicted the rule.
func (o *Outcome) Mismatches() []TrialResult {
	var out []TrialResult
	for _, r := range o.Results {
		if r.Mismatch() {
			out = append(out, r)
		}
	}
	return out
}

// AllowedButRejected returns declared-allowed tokens that failed.
func (o *Outcome) AllowedButRejected() []string {
	var out []string
	for _, r := range o.Mismatches() {
		if r.Trial.Token != "" && r.Trial.ExpectPass {
			out = append(out, r.Trial.Token)
		}
	}
	return out
}

// RejectedButAllowed returns declared-rejected tokens that passed.
func (o *Outcome) RejectedButAllowed() []string {
	var out []string
	for _, r := range o.Mismatches() {
		if r.Trial.Token != "" && !r.Trial.ExpectPass {
			out = append(out, r.Trial.Token)
		}
	}
	return out
}

// Err returns nil when satisfied, otherwise ErrRuleMismatch wrapped
// with every mismatching trial label.
func (o *Outcome) Err() error {
	mm := o.Mismatches()
	if len(mm) == 0 {
		return nil
	}
	labels := make([]string, len(mm))
	for i, r := range mm {
		labels[i] = r.Trial.Label
	}
	return fmt.Errorf("%w: %s", ErrRuleMismatch, strings.Join(labels, ", "))
}
