package matcher

import (
	"digital.vasic.attachprobe/pkg/probe"
	"digital.vasic.attachprobe/pkg/record"
)

// DimensionMatcher asserts the inclusive width and height bounds of
// an image attachment.
type DimensionMatcher struct {
	cfg  config
	rule probe.RangeRule
}

// ValidateDimensionsOf starts a dimension assertion on field.
func ValidateDimensionsOf(field string) DimensionMatcher {
	return DimensionMatcher{cfg: config{field: field}}
}

// Width returns a copy requiring exactly v pixels of width.
func (m DimensionMatcher) Width(v int) DimensionMatcher {
	m.rule.WidthMin, m.rule.WidthMax = ptr(v), ptr(v)
	return m
}

// WidthMin returns a copy with a minimum width.
func (m DimensionMatcher) WidthMin(v int) DimensionMatcher {
	m.rule.WidthMin = ptr(v)
	return m
}

// WidthMax returns a copy with a maximum width.
func (m DimensionMatcher) WidthMax(v int) DimensionMatcher {
	m.rule.WidthMax = ptr(v)
	return m
}

// WidthBetween returns a copy with both width bounds.
func (m DimensionMatcher) WidthBetween(lo, hi int) DimensionMatcher {
	m.rule.WidthMin, m.rule.WidthMax = ptr(lo), ptr(hi)
	return m
}

// Height returns a copy requiring exactly v pixels of height.
func (m DimensionMatcher) Height(v int) DimensionMatcher {
	m.rule.HeightMin, m.rule.HeightMax = ptr(v), ptr(v)
	return m
}

// HeightMin returns a copy with a minimum height.
func (m DimensionMatcher) HeightMin(v int) DimensionMatcher {
	m.rule.HeightMin = ptr(v)
	return m
}

// HeightMax returns a copy with a maximum height.
func (m DimensionMatcher) HeightMax(v int) DimensionMatcher {
	m.rule.HeightMax = ptr(v)
	return m
}

// HeightBetween returns a copy with both height bounds.
func (m DimensionMatcher) HeightBetween(lo, hi int) DimensionMatcher {
	m.rule.HeightMin, m.rule.HeightMax = ptr(lo), ptr(hi)
	return m
}

// On returns a copy that validates in vctx.
func (m DimensionMatcher) On(vctx record.Context) DimensionMatcher {
	m.cfg.vctx = vctx
	return m
}

// WithMessage returns a copy that also requires msg on invalid input.
func (m DimensionMatcher) WithMessage(msg string) DimensionMatcher {
	m.cfg.message = msg
	return m
}

// Using returns a copy that runs trials on e.
func (m DimensionMatcher) Using(e *probe.Engine) DimensionMatcher {
	m.cfg.engine = e
	return m
}

// Field implements Matcher.
func (m DimensionMatcher) Field() string { return m.cfg.field }

// Kind implements Matcher.
func (m DimensionMatcher) Kind() probe.Kind { return probe.KindDimension }

// Rule implements Matcher.
func (m DimensionMatcher) Rule() probe.Rule { return m.rule }

// Description implements Matcher.
func (m DimensionMatcher) Description() string {
	return "validate image dimensions of " + m.cfg.field
}

// Match implements Matcher.
func (m DimensionMatcher) Match(s record.Subject) (*Result, error) {
	return match(m.cfg, m.rule, s, renderRange(m.rule))
}

// ptr returns a fresh pointer so copies never share bounds.
func ptr(v int) *int { return &v }
