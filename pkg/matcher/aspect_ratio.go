package matcher

import (
	"slices"

	"digital.vasic.attachprobe/pkg/probe"
	"digital.vasic.attachprobe/pkg/record"
)

// AspectRatioMatcher asserts which aspect ratios an image attachment
// accepts and rejects. Tokens are "square", "portrait", "landscape",
// "W:H" or "is_W_H".
type AspectRatioMatcher struct {
	cfg      config
	allowed  []string
	rejected []string
}

// ValidateAspectRatioOf starts an aspect ratio assertion on field.
func ValidateAspectRatioOf(field string) AspectRatioMatcher {
	return AspectRatioMatcher{cfg: config{field: field}}
}

// Allowing returns a copy declaring ratios as accepted.
func (m AspectRatioMatcher) Allowing(ratios ...string) AspectRatioMatcher {
	m.allowed = slices.Clone(ratios)
	return m
}

// Rejecting returns a copy declaring ratios as rejected.
func (m AspectRatioMatcher) Rejecting(ratios ...string) AspectRatioMatcher {
	m.rejected = slices.Clone(ratios)
	return m
}

// On returns a copy that validates in vctx.
func (m AspectRatioMatcher) On(vctx record.Context) AspectRatioMatcher {
	m.cfg.vctx = vctx
	return m
}

// WithMessage returns a copy that also requires msg on invalid input.
func (m AspectRatioMatcher) WithMessage(msg string) AspectRatioMatcher {
	m.cfg.message = msg
	return m
}

// Using returns a copy that runs trials on e.
func (m AspectRatioMatcher) Using(e *probe.Engine) AspectRatioMatcher {
	m.cfg.engine = e
	return m
}

// Field implements Matcher.
func (m AspectRatioMatcher) Field() string { return m.cfg.field }

// Kind implements Matcher.
func (m AspectRatioMatcher) Kind() probe.Kind { return probe.KindAspectRatio }

// Rule implements Matcher.
func (m AspectRatioMatcher) Rule() probe.Rule { return m.rule() }

func (m AspectRatioMatcher) rule() probe.SetRule {
	return probe.AspectRatios(m.allowed, m.rejected)
}

// Description implements Matcher.
func (m AspectRatioMatcher) Description() string {
	return "validate the aspect ratios allowed on attachment " + m.cfg.field
}

// Match implements Matcher.
func (m AspectRatioMatcher) Match(s record.Subject) (*Result, error) {
	rule := m.rule()
	return match(m.cfg, rule, s, renderSet("aspect ratios", rule))
}
